package casefile

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/gabayhq/gabay/core"
)

// Status is the coarse workflow stage of a case.
type Status string

const (
	StatusPending     Status = "Pending"
	StatusConfirmed   Status = "Confirmed"
	StatusRescheduled Status = "Rescheduled"
	StatusReviewed    Status = "Reviewed"
	StatusCancelled   Status = "Cancelled"
	StatusCompleted   Status = "Completed"
)

// Remark is the outcome label applied after a session concludes
// or a follow-up is scheduled. It is orthogonal to Status.
type Remark string

const (
	RemarkNone       Remark = ""
	RemarkAttended   Remark = "Attended"
	RemarkNoShow     Remark = "No Show"
	RemarkNoResponse Remark = "No Response"
	RemarkTerminated Remark = "Terminated"
	RemarkFollowUp   Remark = "Follow up"
)

var (
	AllStatuses = []Status{StatusPending, StatusConfirmed, StatusRescheduled, StatusReviewed, StatusCancelled, StatusCompleted}
	AllRemarks  = []Remark{RemarkAttended, RemarkNoShow, RemarkNoResponse, RemarkTerminated, RemarkFollowUp}
)

// Concerns is the normalized category -> codes representation shared by
// walk-in and referral cases.
type Concerns struct {
	Personal      []string `json:"personal"`
	Interpersonal []string `json:"interpersonal"`
	Academic      []string `json:"academic"`
	Family        []string `json:"family"`
}

func (c Concerns) IsEmpty() bool {
	return len(c.Personal) == 0 && len(c.Interpersonal) == 0 && len(c.Academic) == 0 && len(c.Family) == 0
}

// Flatten joins all categories into a single list, category order fixed.
func (c Concerns) Flatten() []string {
	all := make([]string, 0, len(c.Personal)+len(c.Interpersonal)+len(c.Academic)+len(c.Family))
	all = append(all, c.Personal...)
	all = append(all, c.Interpersonal...)
	all = append(all, c.Academic...)
	all = append(all, c.Family...)
	return all
}

func (c Concerns) String() string { return strings.Join(c.Flatten(), ", ") }

type (
	Case struct {
		ID                string
		UserID            string // submitting account, notifications only
		StudentName       string
		Email             string
		CourseYearSection string
		DateOfBirth       string
		ContactNo         string
		PresentAddress    string
		EmergencyContact  string
		EmergencyNo       string

		// self-assessment, walk-in forms only
		AgeSex             string
		SelfDescription    string
		ImportantThings    string
		Friends            string
		ClassParticipation string
		Family             string
		Confidant          string
		AdditionalComments string

		IsReferral    bool
		FacultyID     string
		FacultyName   string
		ReferredBy    string
		Observations  string
		OtherConcerns string

		Concerns Concerns

		Status         Status
		PreviousStatus Status
		Remarks        Remark
		SessionNotes   string

		ScheduledDate string
		ScheduledTime string
		FollowUpDate  string
		FollowUpTime  string

		SubmissionDate time.Time
		UpdatedAt      time.Time
	}

	// NewIntake is a student's self-submitted walk-in form.
	NewIntake struct {
		StudentName        string   `json:"student_name" validate:"required"`
		CourseYearSection  string   `json:"course_year_section" validate:"required"`
		DateOfBirth        string   `json:"date_of_birth" validate:"required,date_"`
		ContactNo          string   `json:"contact_no"`
		PresentAddress     string   `json:"present_address"`
		EmergencyContact   string   `json:"emergency_contact_person"`
		EmergencyNo        string   `json:"emergency_contact_no"`
		AgeSex             string   `json:"age_sex"`
		SelfDescription    string   `json:"self_description"`
		ImportantThings    string   `json:"important_things"`
		Friends            string   `json:"friends"`
		ClassParticipation string   `json:"class_participation"`
		Family             string   `json:"family"`
		Confidant          string   `json:"comfortable_confidant"`
		AdditionalComments string   `json:"additional_comments"`
		AreasOfConcern     Concerns `json:"areas_of_concern"`
	}

	// NewReferral is a faculty-submitted referral. Concerns arrive as a
	// flat checklist and are categorized at ingestion.
	NewReferral struct {
		StudentName       string   `json:"student_name" validate:"required"`
		CourseYearSection string   `json:"course_year_section" validate:"required"`
		Concerns          []string `json:"concerns" validate:"required,min=1"`
		OtherConcerns     string   `json:"other_concerns"`
		Observations      string   `json:"observations"`
		ReferredBy        string   `json:"referred_by"`
		FacultyName       string   `json:"faculty_name"`
	}

	// UpdateCase carries an administrator's status/remark transition
	// plus any scheduling fields that go with it.
	UpdateCase struct {
		Status        Status `json:"status"`
		Remark        Remark `json:"remark"`
		ScheduledDate string `json:"scheduled_date" validate:"omitempty,date_"`
		ScheduledTime string `json:"scheduled_time" validate:"omitempty,clock_"`
		FollowUpDate  string `json:"follow_up_date" validate:"omitempty,date_"`
		FollowUpTime  string `json:"follow_up_time" validate:"omitempty,clock_"`
		SessionNotes  string `json:"session_notes"`
	}

	// FollowUp schedules a follow-up session on an active case.
	FollowUp struct {
		Date  string `json:"date" validate:"required,date_"`
		Time  string `json:"time" validate:"required,clock_"`
		Notes string `json:"notes"`
	}
)

// Active reports whether the case is still on the admin worklist.
func (c Case) Active() bool { return c.Status != StatusCompleted }

// SessionType derives the report label from the case origin.
func (c Case) SessionType() string {
	if c.IsReferral {
		return "Referral"
	}
	return "Walk-in"
}

// Referrer resolves who sent the student in, defaulting to the
// student themselves for walk-ins.
func (c Case) Referrer() string {
	if c.ReferredBy != "" {
		return c.ReferredBy
	}
	if c.FacultyName != "" {
		return c.FacultyName
	}
	return "Self"
}

// ScheduleDate is the calendar day the case occupies on the scheduling
// view: the follow-up date when one is set, else the scheduled date,
// else the submission day.
func (c Case) ScheduleDate() string {
	if c.Remarks == RemarkFollowUp && c.FollowUpDate != "" {
		return c.FollowUpDate
	}
	if c.ScheduledDate != "" {
		return c.ScheduledDate
	}
	return c.SubmissionDate.Format(dateFormat)
}

const dateFormat = "2006-01-02"

func (f *NewIntake) Validate(ctx context.Context, validate *validator.Validate) error {
	f.StudentName = core.CleanString(f.StudentName)
	f.CourseYearSection = core.CleanString(f.CourseYearSection)
	if err := validate.StructCtx(ctx, f); err != nil {
		return err
	}
	return nil
}

func (f *NewReferral) Validate(ctx context.Context, validate *validator.Validate) error {
	f.StudentName = core.CleanString(f.StudentName)
	f.CourseYearSection = core.CleanString(f.CourseYearSection)
	if err := validate.StructCtx(ctx, f); err != nil {
		return err
	}
	return nil
}

func (f *UpdateCase) Validate(ctx context.Context, validate *validator.Validate) error {
	if f.Status != "" && !validStatus(f.Status) {
		return core.NewValidationError(errors.New("invalid status"), core.FieldError{Field: "status", Error: "invalid status"})
	}
	if f.Remark != "" && !validRemark(f.Remark) {
		return core.NewValidationError(errors.New("invalid remark"), core.FieldError{Field: "remark", Error: "invalid remark"})
	}
	return validate.StructCtx(ctx, f)
}

// Validate rejects a follow-up whose date is absent, malformed or in the past.
func (f *FollowUp) Validate(ctx context.Context, validate *validator.Validate) error {
	if err := validate.StructCtx(ctx, f); err != nil {
		return err
	}
	day, err := time.Parse(dateFormat, f.Date)
	if err != nil {
		return core.NewValidationError(errors.New("invalid follow-up date"), core.FieldError{Field: "date", Error: "invalid date"})
	}
	today, _ := time.Parse(dateFormat, time.Now().Format(dateFormat))
	if day.Before(today) {
		return core.NewValidationError(errors.New("invalid follow-up date"), core.FieldError{Field: "date", Error: "date must not be in the past"})
	}
	return nil
}

func validStatus(s Status) bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func validRemark(r Remark) bool {
	for _, rm := range AllRemarks {
		if rm == r {
			return true
		}
	}
	return false
}

// referral checklist -> category tables
var (
	referralPersonalConcerns = []string{
		"Adjustment to college life", "Attitudes toward studies", "Financial problems",
		"Health", "Lack of self-confidence/Self-esteem", "Relationship with family/friends/BF/GF",
	}
	referralAcademicConcerns = []string{
		"Unmet Subject requiremnts/projects", "attendance:absences/tardiness",
		"course choice: own/Sombody else", "failing grade", "school choice",
		"study habit", "time mgt./schedule",
	}
)

// CategorizeConcerns splits a referral's flat concern checklist into the
// normalized representation. Items on neither list are not case concerns
// (free text travels in OtherConcerns) and are dropped.
func CategorizeConcerns(items []string) Concerns {
	var cns Concerns
	for _, it := range items {
		switch {
		case containsString(referralPersonalConcerns, it):
			cns.Personal = append(cns.Personal, it)
		case containsString(referralAcademicConcerns, it):
			cns.Academic = append(cns.Academic, it)
		}
	}
	return cns
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

type (
	// QueryFilter holds the searchable fields for case listings.
	QueryFilter struct {
		Search        string `query:"search"`
		Status        Status `query:"status"`
		Remark        Remark `query:"remark"`
		IsReferral    *bool  `query:"is_referral"`
		Email         string `query:"email"`
		FacultyID     string `query:"faculty_id"`
		Active        *bool  `query:"active"`
		SubmittedFrom string `query:"submitted_from"`
		SubmittedTo   string `query:"submitted_to"`
	}

	GetFilter struct {
		ID string
	}
)

func (f *QueryFilter) IsEmpty() bool {
	return f == nil || (f.Search == "" && f.Status == "" && f.Remark == "" && f.IsReferral == nil &&
		f.Email == "" && f.FacultyID == "" && f.Active == nil && f.SubmittedFrom == "" && f.SubmittedTo == "")
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Email = core.CleanString(f.Email, true)
}

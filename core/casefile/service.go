package casefile

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/user"
)

var (
	ErrNotFound  = errors.New("case not found")
	ErrForbidden = errors.New("permission denied")
)

type (
	// Repository abstracts the case collection.
	Repository interface {
		CreateCase(ctx context.Context, cs Case, exec ...core.DBExecutor) (Case, error)
		GetCase(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Case, error)
		QueryCases(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Case, error)
		UpdateCase(ctx context.Context, cs Case, exec ...core.DBExecutor) error
	}

	// Notifier dispatches user-facing notifications for case events.
	// Dispatch is best-effort; failures never roll back a case write.
	Notifier interface {
		CaseReceived(ctx context.Context, userID, caseID string) error
		CaseStatusChanged(ctx context.Context, userID, caseID, status, remark, date, clock string) error
	}

	Service interface {
		SubmitIntake(ctx context.Context, prin user.Principal, form NewIntake) (Case, error)
		SubmitReferral(ctx context.Context, prin user.Principal, form NewReferral) (Case, error)
		Update(ctx context.Context, prin user.Principal, id string, up UpdateCase) (Case, error)
		ScheduleFollowUp(ctx context.Context, prin user.Principal, id string, fu FollowUp) (Case, error)
		GetByID(ctx context.Context, prin user.Principal, id string) (Case, error)
		Query(ctx context.Context, prin user.Principal, filter *QueryFilter, ordering ...core.DBOrdering) ([]Case, error)
		ListActive(ctx context.Context, prin user.Principal) ([]Case, error)
		ListCompleted(ctx context.Context, prin user.Principal) ([]Case, error)
		ScheduleFor(ctx context.Context, prin user.Principal, date string) ([]Case, error)
		QueryByEmail(ctx context.Context, prin user.Principal, email string) ([]Case, error)
		QueryByFaculty(ctx context.Context, prin user.Principal, facultyID string) ([]Case, error)
	}

	service struct {
		repo     Repository
		notifSvc Notifier
		logger   core.Logger
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, notifSvc Notifier, logger core.Logger, conf *core.Config) Service {
	return &service{
		repo:     repo,
		notifSvc: notifSvc,
		logger:   logger,
		conf:     conf,
	}
}

// SubmitIntake records a student's walk-in request and acknowledges it
// with a notification to the submitting account.
func (svc *service) SubmitIntake(ctx context.Context, prin user.Principal, form NewIntake) (Case, error) {
	now := time.Now()
	cs := Case{
		UserID:             prin.ID,
		StudentName:        form.StudentName,
		Email:              prin.Email,
		CourseYearSection:  form.CourseYearSection,
		DateOfBirth:        form.DateOfBirth,
		ContactNo:          form.ContactNo,
		PresentAddress:     form.PresentAddress,
		EmergencyContact:   form.EmergencyContact,
		EmergencyNo:        form.EmergencyNo,
		AgeSex:             form.AgeSex,
		SelfDescription:    form.SelfDescription,
		ImportantThings:    form.ImportantThings,
		Friends:            form.Friends,
		ClassParticipation: form.ClassParticipation,
		Family:             form.Family,
		Confidant:          form.Confidant,
		AdditionalComments: form.AdditionalComments,
		IsReferral:         false,
		Concerns:           form.AreasOfConcern,
		Status:             StatusPending,
		Remarks:            RemarkNone,
		SubmissionDate:     now,
		UpdatedAt:          now,
	}
	created, err := svc.repo.CreateCase(ctx, cs)
	if err != nil {
		return Case{}, errors.Wrap(err, "creating case")
	}

	if created.UserID != "" {
		if err := svc.notifSvc.CaseReceived(ctx, created.UserID, created.ID); err != nil {
			svc.logger.Error("sending intake notification", "error", err)
		}
	}
	return created, nil
}

// SubmitReferral records a faculty referral on a student's behalf.
func (svc *service) SubmitReferral(ctx context.Context, prin user.Principal, form NewReferral) (Case, error) {
	if !prin.IsFaculty() && !prin.IsAdmin() {
		return Case{}, ErrForbidden
	}

	referredBy := form.ReferredBy
	if referredBy == "" {
		referredBy = form.FacultyName
	}
	now := time.Now()
	cs := Case{
		StudentName:       form.StudentName,
		CourseYearSection: form.CourseYearSection,
		IsReferral:        true,
		FacultyID:         prin.ID,
		FacultyName:       form.FacultyName,
		ReferredBy:        referredBy,
		Observations:      form.Observations,
		OtherConcerns:     form.OtherConcerns,
		Concerns:          CategorizeConcerns(form.Concerns),
		Status:            StatusPending,
		Remarks:           RemarkNone,
		SubmissionDate:    now,
		UpdatedAt:         now,
	}
	created, err := svc.repo.CreateCase(ctx, cs)
	return created, errors.Wrap(err, "creating referral case")
}

// Update applies a status/remark transition to a case. Admin only.
// The notification side effect is best-effort and never fails the update.
func (svc *service) Update(ctx context.Context, prin user.Principal, id string, up UpdateCase) (Case, error) {
	if !prin.IsAdmin() {
		return Case{}, ErrForbidden
	}

	cs, err := svc.repo.GetCase(ctx, GetFilter{ID: id})
	if err != nil {
		return Case{}, svc.trapNotFound(err)
	}

	ch, err := Transition(cs, Event{
		Status:       up.Status,
		Remark:       up.Remark,
		FollowUpDate: up.FollowUpDate,
		FollowUpTime: up.FollowUpTime,
	})
	if err != nil {
		return Case{}, err
	}

	cs.PreviousStatus = ch.PreviousStatus
	cs.Status = ch.Status
	if ch.RemarkSet {
		cs.Remarks = ch.Remark
	}
	if ch.FollowUpDate != "" {
		cs.FollowUpDate = ch.FollowUpDate
		cs.FollowUpTime = ch.FollowUpTime
	}
	if up.ScheduledDate != "" {
		cs.ScheduledDate = up.ScheduledDate
	}
	if up.ScheduledTime != "" {
		cs.ScheduledTime = up.ScheduledTime
	}
	if up.SessionNotes != "" {
		cs.SessionNotes = up.SessionNotes
	}
	cs.UpdatedAt = time.Now()

	if err := svc.repo.UpdateCase(ctx, cs); err != nil {
		return Case{}, errors.Wrap(err, "updating case")
	}

	svc.notifyChange(ctx, cs, ch)
	return cs, nil
}

// ScheduleFollowUp is a convenience wrapper over Update for the
// follow-up transition.
func (svc *service) ScheduleFollowUp(ctx context.Context, prin user.Principal, id string, fu FollowUp) (Case, error) {
	return svc.Update(ctx, prin, id, UpdateCase{
		Remark:       RemarkFollowUp,
		FollowUpDate: fu.Date,
		FollowUpTime: fu.Time,
		SessionNotes: fu.Notes,
	})
}

func (svc *service) GetByID(ctx context.Context, prin user.Principal, id string) (Case, error) {
	cs, err := svc.repo.GetCase(ctx, GetFilter{ID: id})
	if err != nil {
		return Case{}, svc.trapNotFound(err)
	}
	if !prin.IsAdmin() && cs.UserID != prin.ID && cs.FacultyID != prin.ID {
		return Case{}, ErrForbidden
	}
	return cs, nil
}

// Query lists cases by arbitrary filter. Admin only.
func (svc *service) Query(ctx context.Context, prin user.Principal, filter *QueryFilter, ordering ...core.DBOrdering) ([]Case, error) {
	if !prin.IsAdmin() {
		return nil, ErrForbidden
	}
	if filter != nil {
		filter.Clean()
	}
	css, err := svc.repo.QueryCases(ctx, filter, ordering)
	return css, errors.Wrap(err, "querying cases")
}

func (svc *service) ListActive(ctx context.Context, prin user.Principal) ([]Case, error) {
	active := true
	return svc.Query(ctx, prin, &QueryFilter{Active: &active})
}

func (svc *service) ListCompleted(ctx context.Context, prin user.Principal) ([]Case, error) {
	active := false
	return svc.Query(ctx, prin, &QueryFilter{Active: &active})
}

// ScheduleFor returns the active cases that occupy the given calendar
// day on the scheduling view.
func (svc *service) ScheduleFor(ctx context.Context, prin user.Principal, date string) ([]Case, error) {
	css, err := svc.ListActive(ctx, prin)
	if err != nil {
		return nil, err
	}
	scheduled := make([]Case, 0, len(css))
	for _, cs := range css {
		if cs.ScheduleDate() == date {
			scheduled = append(scheduled, cs)
		}
	}
	return scheduled, nil
}

// QueryByEmail lists a student's own cases. Admins may look up any student.
func (svc *service) QueryByEmail(ctx context.Context, prin user.Principal, email string) ([]Case, error) {
	email = core.CleanString(email, true)
	if email == "" {
		return nil, core.NewValidationError(errors.New("email is required"),
			core.FieldError{Field: "email", Error: "required"})
	}
	if !prin.IsAdmin() && core.CleanString(prin.Email, true) != email {
		return nil, ErrForbidden
	}
	css, err := svc.repo.QueryCases(ctx, &QueryFilter{Email: email}, nil)
	return css, errors.Wrap(err, "querying cases by email")
}

// QueryByFaculty lists the referrals a faculty member submitted.
func (svc *service) QueryByFaculty(ctx context.Context, prin user.Principal, facultyID string) ([]Case, error) {
	if !prin.IsAdmin() && prin.ID != facultyID {
		return nil, ErrForbidden
	}
	isRef := true
	css, err := svc.repo.QueryCases(ctx, &QueryFilter{FacultyID: facultyID, IsReferral: &isRef}, nil)
	return css, errors.Wrap(err, "querying cases by faculty")
}

// notifyChange dispatches the transition notification when the event
// moved the case: a completing remark wins over a plain status change.
// Cases without a submitting account are skipped silently.
func (svc *service) notifyChange(ctx context.Context, cs Case, ch Change) {
	if cs.UserID == "" {
		return
	}

	var err error
	switch {
	case ch.RemarkSet && ch.Remark != RemarkFollowUp:
		err = svc.notifSvc.CaseStatusChanged(ctx, cs.UserID, cs.ID,
			string(StatusCompleted), string(ch.Remark), cs.ScheduledDate, cs.ScheduledTime)
	case ch.Status != ch.PreviousStatus:
		err = svc.notifSvc.CaseStatusChanged(ctx, cs.UserID, cs.ID,
			string(ch.Status), "", cs.ScheduledDate, cs.ScheduledTime)
	default:
		return
	}
	if err != nil {
		svc.logger.Error("sending status notification", "case", cs.ID, "error", err)
	}
}

func (svc *service) trapNotFound(err error) error {
	if errors.Cause(err) == ErrNotFound {
		return ErrNotFound
	}
	return errors.Wrap(err, "getting case")
}

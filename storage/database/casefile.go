package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/casefile"
)

type caseRow struct {
	ID                 string         `db:"id"`
	UserID             null.String    `db:"user_id"`
	StudentName        string         `db:"student_name"`
	Email              string         `db:"email"`
	CourseYearSection  string         `db:"course_year_section"`
	DateOfBirth        string         `db:"date_of_birth"`
	ContactNo          string         `db:"contact_no"`
	PresentAddress     string         `db:"present_address"`
	EmergencyContact   string         `db:"emergency_contact"`
	EmergencyNo        string         `db:"emergency_no"`
	AgeSex             string         `db:"age_sex"`
	SelfDescription    string         `db:"self_description"`
	ImportantThings    string         `db:"important_things"`
	Friends            string         `db:"friends"`
	ClassParticipation string         `db:"class_participation"`
	Family             string         `db:"family"`
	Confidant          string         `db:"confidant"`
	AdditionalComments string         `db:"additional_comments"`
	IsReferral         bool           `db:"is_referral"`
	FacultyID          null.String    `db:"faculty_id"`
	FacultyName        string         `db:"faculty_name"`
	ReferredBy         string         `db:"referred_by"`
	Observations       string         `db:"observations"`
	OtherConcerns      string         `db:"other_concerns"`
	Concerns           types.JSONText `db:"concerns"`
	Status             string         `db:"status"`
	PreviousStatus     string         `db:"previous_status"`
	Remarks            string         `db:"remarks"`
	SessionNotes       string         `db:"session_notes"`
	ScheduledDate      string         `db:"scheduled_date"`
	ScheduledTime      string         `db:"scheduled_time"`
	FollowUpDate       string         `db:"follow_up_date"`
	FollowUpTime       string         `db:"follow_up_time"`
	SubmissionDate     time.Time      `db:"submission_date"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

var caseColumns = []string{
	"id", "user_id", "student_name", "email", "course_year_section", "date_of_birth",
	"contact_no", "present_address", "emergency_contact", "emergency_no",
	"age_sex", "self_description", "important_things", "friends", "class_participation",
	"family", "confidant", "additional_comments",
	"is_referral", "faculty_id", "faculty_name", "referred_by", "observations", "other_concerns",
	"concerns", "status", "previous_status", "remarks", "session_notes",
	"scheduled_date", "scheduled_time", "follow_up_date", "follow_up_time",
	"submission_date", "updated_at",
}

type caseRepository struct {
	exec core.DBExecutor
}

var _ casefile.Repository = (*caseRepository)(nil) // interface compliance check

func NewCaseRepository(exec core.DBExecutor) *caseRepository {
	return &caseRepository{exec: exec}
}

func (repo caseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo caseRepository) row(cs casefile.Case) (caseRow, error) {
	concerns, err := json.Marshal(cs.Concerns)
	if err != nil {
		return caseRow{}, errors.Wrap(err, "encoding concerns")
	}
	return caseRow{
		ID:                 cs.ID,
		UserID:             null.NewString(cs.UserID, cs.UserID != ""),
		StudentName:        cs.StudentName,
		Email:              cs.Email,
		CourseYearSection:  cs.CourseYearSection,
		DateOfBirth:        cs.DateOfBirth,
		ContactNo:          cs.ContactNo,
		PresentAddress:     cs.PresentAddress,
		EmergencyContact:   cs.EmergencyContact,
		EmergencyNo:        cs.EmergencyNo,
		AgeSex:             cs.AgeSex,
		SelfDescription:    cs.SelfDescription,
		ImportantThings:    cs.ImportantThings,
		Friends:            cs.Friends,
		ClassParticipation: cs.ClassParticipation,
		Family:             cs.Family,
		Confidant:          cs.Confidant,
		AdditionalComments: cs.AdditionalComments,
		IsReferral:         cs.IsReferral,
		FacultyID:          null.NewString(cs.FacultyID, cs.FacultyID != ""),
		FacultyName:        cs.FacultyName,
		ReferredBy:         cs.ReferredBy,
		Observations:       cs.Observations,
		OtherConcerns:      cs.OtherConcerns,
		Concerns:           types.JSONText(concerns),
		Status:             string(cs.Status),
		PreviousStatus:     string(cs.PreviousStatus),
		Remarks:            string(cs.Remarks),
		SessionNotes:       cs.SessionNotes,
		ScheduledDate:      cs.ScheduledDate,
		ScheduledTime:      cs.ScheduledTime,
		FollowUpDate:       cs.FollowUpDate,
		FollowUpTime:       cs.FollowUpTime,
		SubmissionDate:     cs.SubmissionDate.UTC(),
		UpdatedAt:          cs.UpdatedAt.UTC(),
	}, nil
}

func (repo caseRepository) unrow(row caseRow) (casefile.Case, error) {
	var concerns casefile.Concerns
	if len(row.Concerns) > 0 {
		if err := json.Unmarshal(row.Concerns, &concerns); err != nil {
			return casefile.Case{}, errors.Wrap(err, "decoding concerns")
		}
	}
	return casefile.Case{
		ID:                 row.ID,
		UserID:             row.UserID.String,
		StudentName:        row.StudentName,
		Email:              row.Email,
		CourseYearSection:  row.CourseYearSection,
		DateOfBirth:        row.DateOfBirth,
		ContactNo:          row.ContactNo,
		PresentAddress:     row.PresentAddress,
		EmergencyContact:   row.EmergencyContact,
		EmergencyNo:        row.EmergencyNo,
		AgeSex:             row.AgeSex,
		SelfDescription:    row.SelfDescription,
		ImportantThings:    row.ImportantThings,
		Friends:            row.Friends,
		ClassParticipation: row.ClassParticipation,
		Family:             row.Family,
		Confidant:          row.Confidant,
		AdditionalComments: row.AdditionalComments,
		IsReferral:         row.IsReferral,
		FacultyID:          row.FacultyID.String,
		FacultyName:        row.FacultyName,
		ReferredBy:         row.ReferredBy,
		Observations:       row.Observations,
		OtherConcerns:      row.OtherConcerns,
		Concerns:           concerns,
		Status:             casefile.Status(row.Status),
		PreviousStatus:     casefile.Status(row.PreviousStatus),
		Remarks:            casefile.Remark(row.Remarks),
		SessionNotes:       row.SessionNotes,
		ScheduledDate:      row.ScheduledDate,
		ScheduledTime:      row.ScheduledTime,
		FollowUpDate:       row.FollowUpDate,
		FollowUpTime:       row.FollowUpTime,
		SubmissionDate:     row.SubmissionDate,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

func (repo caseRepository) unrowSlice(rows []caseRow) ([]casefile.Case, error) {
	cases := make([]casefile.Case, 0, len(rows))
	for _, row := range rows {
		cs, err := repo.unrow(row)
		if err != nil {
			return nil, err
		}
		cases = append(cases, cs)
	}
	return cases, nil
}

func (repo caseRepository) selectRows(ctx context.Context, exe core.DBExecutor, query string, args []interface{}) ([]caseRow, error) {
	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rws []caseRow
	if err = sqlx.StructScan(rows, &rws); err != nil {
		return nil, err
	}
	return rws, nil
}

func (repo caseRepository) CreateCase(ctx context.Context, cs casefile.Case, exec ...core.DBExecutor) (casefile.Case, error) {
	cs.ID = uuid.New().String()
	row, err := repo.row(cs)
	if err != nil {
		return casefile.Case{}, err
	}

	placeholders := make([]string, 0, len(caseColumns))
	for i := range caseColumns {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	query := fmt.Sprintf(
		`INSERT INTO cases (%s) VALUES (%s)`,
		strings.Join(caseColumns, ", "), strings.Join(placeholders, ", "))

	_, err = repo.getExec(exec).ExecContext(ctx, query,
		row.ID, row.UserID, row.StudentName, row.Email, row.CourseYearSection, row.DateOfBirth,
		row.ContactNo, row.PresentAddress, row.EmergencyContact, row.EmergencyNo,
		row.AgeSex, row.SelfDescription, row.ImportantThings, row.Friends, row.ClassParticipation,
		row.Family, row.Confidant, row.AdditionalComments,
		row.IsReferral, row.FacultyID, row.FacultyName, row.ReferredBy, row.Observations, row.OtherConcerns,
		row.Concerns, row.Status, row.PreviousStatus, row.Remarks, row.SessionNotes,
		row.ScheduledDate, row.ScheduledTime, row.FollowUpDate, row.FollowUpTime,
		row.SubmissionDate, row.UpdatedAt)
	if err != nil {
		return casefile.Case{}, errors.Wrap(err, "inserting case")
	}
	return cs, nil
}

func (repo caseRepository) GetCase(ctx context.Context, filter casefile.GetFilter, exec ...core.DBExecutor) (casefile.Case, error) {
	if _, err := uuid.Parse(filter.ID); err != nil {
		return casefile.Case{}, casefile.ErrNotFound
	}

	query := `SELECT ` + strings.Join(caseColumns, ", ") + ` FROM cases WHERE id = $1 LIMIT 1`
	rws, err := repo.selectRows(ctx, repo.getExec(exec), query, []interface{}{filter.ID})
	if err != nil {
		return casefile.Case{}, errors.Wrap(err, "finding case")
	}
	if len(rws) == 0 {
		return casefile.Case{}, casefile.ErrNotFound
	}
	return repo.unrow(rws[0])
}

func (repo caseRepository) QueryCases(ctx context.Context, filter *casefile.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]casefile.Case, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		// cases with student name, email or course matching the search keyword
		if filter.Search != "" {
			val := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf(
				"(student_name ILIKE %s OR email ILIKE %s OR course_year_section ILIKE %s)", val, val, val))
		}
		if filter.Status != "" {
			conds = append(conds, "status = "+arg(string(filter.Status)))
		}
		if filter.Remark != "" {
			conds = append(conds, "remarks = "+arg(string(filter.Remark)))
		}
		if filter.IsReferral != nil {
			conds = append(conds, "is_referral = "+arg(*filter.IsReferral))
		}
		if filter.Email != "" {
			conds = append(conds, "email = "+arg(filter.Email))
		}
		if filter.FacultyID != "" {
			conds = append(conds, "faculty_id = "+arg(filter.FacultyID))
		}
		if filter.Active != nil {
			op := "="
			if *filter.Active {
				op = "<>"
			}
			conds = append(conds, fmt.Sprintf("status %s %s", op, arg(string(casefile.StatusCompleted))))
		}
		if filter.SubmittedFrom != "" {
			conds = append(conds, "submission_date >= "+arg(filter.SubmittedFrom))
		}
		if filter.SubmittedTo != "" {
			conds = append(conds, "submission_date <= "+arg(filter.SubmittedTo))
		}
	}

	query := `SELECT ` + strings.Join(caseColumns, ", ") + ` FROM cases`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	rws, err := repo.selectRows(ctx, repo.getExec(exec), query, args)
	if err != nil {
		return nil, errors.Wrap(err, "querying cases")
	}
	return repo.unrowSlice(rws)
}

func (repo caseRepository) UpdateCase(ctx context.Context, cs casefile.Case, exec ...core.DBExecutor) error {
	row, err := repo.row(cs)
	if err != nil {
		return err
	}

	query := `
UPDATE cases
SET status = $1, previous_status = $2, remarks = $3, session_notes = $4,
    scheduled_date = $5, scheduled_time = $6, follow_up_date = $7, follow_up_time = $8,
    updated_at = $9
WHERE id = $10`
	res, err := repo.getExec(exec).ExecContext(ctx, query,
		row.Status, row.PreviousStatus, row.Remarks, row.SessionNotes,
		row.ScheduledDate, row.ScheduledTime, row.FollowUpDate, row.FollowUpTime,
		row.UpdatedAt, row.ID)
	if err != nil {
		return errors.Wrap(err, "updating case")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return casefile.ErrNotFound
	}
	return nil
}

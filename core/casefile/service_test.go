package casefile

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/user"
)

type fakeRepo struct {
	mu    sync.Mutex
	seq   int
	cases map[string]Case
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{cases: map[string]Case{}}
}

func (r *fakeRepo) CreateCase(_ context.Context, cs Case, _ ...core.DBExecutor) (Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cs.ID = strconv.Itoa(r.seq)
	r.cases[cs.ID] = cs
	return cs, nil
}

func (r *fakeRepo) GetCase(_ context.Context, filter GetFilter, _ ...core.DBExecutor) (Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.cases[filter.ID]
	if !ok {
		return Case{}, ErrNotFound
	}
	return cs, nil
}

func (r *fakeRepo) QueryCases(_ context.Context, filter *QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var css []Case
	for _, cs := range r.cases {
		if filter != nil {
			if filter.Active != nil && cs.Active() != *filter.Active {
				continue
			}
			if filter.Email != "" && cs.Email != filter.Email {
				continue
			}
			if filter.FacultyID != "" && cs.FacultyID != filter.FacultyID {
				continue
			}
			if filter.IsReferral != nil && cs.IsReferral != *filter.IsReferral {
				continue
			}
		}
		css = append(css, cs)
	}
	return css, nil
}

func (r *fakeRepo) UpdateCase(_ context.Context, cs Case, _ ...core.DBExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cases[cs.ID]; !ok {
		return ErrNotFound
	}
	r.cases[cs.ID] = cs
	return nil
}

type notifCall struct {
	userID, caseID, status, remark string
}

type fakeNotifier struct {
	received []notifCall
	changed  []notifCall
}

func (n *fakeNotifier) CaseReceived(_ context.Context, userID, caseID string) error {
	n.received = append(n.received, notifCall{userID: userID, caseID: caseID})
	return nil
}

func (n *fakeNotifier) CaseStatusChanged(_ context.Context, userID, caseID, status, remark, _, _ string) error {
	n.changed = append(n.changed, notifCall{userID: userID, caseID: caseID, status: status, remark: remark})
	return nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var (
	adminPrin   = user.Principal{ID: "admin-1", Username: "admin", Email: "admin@test.test", Roles: []string{user.RoleAdmin}}
	studentPrin = user.Principal{ID: "student-1", Username: "student", Email: "student@test.test", Roles: []string{user.RoleStudent}}
	facultyPrin = user.Principal{ID: "faculty-1", Username: "faculty", Email: "faculty@test.test", Roles: []string{user.RoleFaculty}}
)

func newTestService(t *testing.T) (Service, *fakeRepo, *fakeNotifier) {
	t.Helper()
	repo := newFakeRepo()
	notif := &fakeNotifier{}
	conf := &core.Config{TestMode: true}
	return NewService(repo, notif, nopLogger{}, conf), repo, notif
}

func TestServiceSubmitIntake(t *testing.T) {
	svc, _, notif := newTestService(t)
	ctx := context.Background()

	cs, err := svc.SubmitIntake(ctx, studentPrin, NewIntake{
		StudentName:       "Juan dela Cruz",
		CourseYearSection: "BSCS 2A",
		DateOfBirth:       "2004-03-14",
		AreasOfConcern:    Concerns{Academic: []string{"notMotivatedStudy"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cs.ID)
	assert.Equal(t, StatusPending, cs.Status)
	assert.Equal(t, RemarkNone, cs.Remarks)
	assert.Equal(t, studentPrin.ID, cs.UserID)
	assert.Equal(t, studentPrin.Email, cs.Email)
	assert.False(t, cs.IsReferral)
	assert.True(t, cs.Active())

	require.Len(t, notif.received, 1)
	assert.Equal(t, studentPrin.ID, notif.received[0].userID)
	assert.Equal(t, cs.ID, notif.received[0].caseID)
}

func TestServiceSubmitReferral(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("student forbidden", func(t *testing.T) {
		_, err := svc.SubmitReferral(ctx, studentPrin, NewReferral{})
		assert.Equal(t, ErrForbidden, err)
	})

	t.Run("concerns categorized", func(t *testing.T) {
		cs, err := svc.SubmitReferral(ctx, facultyPrin, NewReferral{
			StudentName:       "Maria Clara",
			CourseYearSection: "BSN 3B",
			FacultyName:       "Dr. X",
			Concerns:          []string{"failing grade", "Health", "not on any list"},
		})
		require.NoError(t, err)
		assert.True(t, cs.IsReferral)
		assert.Equal(t, facultyPrin.ID, cs.FacultyID)
		assert.Equal(t, "Dr. X", cs.Referrer())
		assert.Equal(t, []string{"failing grade"}, cs.Concerns.Academic)
		assert.Equal(t, []string{"Health"}, cs.Concerns.Personal)
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc Service) Case {
		t.Helper()
		cs, err := svc.SubmitIntake(ctx, studentPrin, NewIntake{
			StudentName:       "Juan dela Cruz",
			CourseYearSection: "BSCS 2A",
			DateOfBirth:       "2004-03-14",
		})
		require.NoError(t, err)
		return cs
	}

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		cs := seed(t, svc)
		_, err := svc.Update(ctx, studentPrin, cs.ID, UpdateCase{Status: StatusConfirmed})
		assert.Equal(t, ErrForbidden, err)
	})

	t.Run("unknown case", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Update(ctx, adminPrin, "nope", UpdateCase{Status: StatusConfirmed})
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("follow up without date leaves case untouched", func(t *testing.T) {
		svc, repo, notif := newTestService(t)
		cs := seed(t, svc)
		notif.received = nil

		_, err := svc.Update(ctx, adminPrin, cs.ID, UpdateCase{Remark: RemarkFollowUp})
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)

		stored, err := repo.GetCase(ctx, GetFilter{ID: cs.ID})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status)
		assert.Equal(t, RemarkNone, stored.Remarks)
		assert.Empty(t, notif.changed)
	})

	t.Run("no show completes case with one notification", func(t *testing.T) {
		svc, _, notif := newTestService(t)
		cs := seed(t, svc)
		_, err := svc.Update(ctx, adminPrin, cs.ID, UpdateCase{Status: StatusConfirmed})
		require.NoError(t, err)
		notif.changed = nil

		got, err := svc.Update(ctx, adminPrin, cs.ID, UpdateCase{Remark: RemarkNoShow})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
		assert.Equal(t, RemarkNoShow, got.Remarks)
		assert.Equal(t, StatusConfirmed, got.PreviousStatus)

		require.Len(t, notif.changed, 1)
		assert.Equal(t, studentPrin.ID, notif.changed[0].userID)
		assert.Equal(t, string(StatusCompleted), notif.changed[0].status)
		assert.Equal(t, string(RemarkNoShow), notif.changed[0].remark)
	})

	t.Run("lifecycle scenario", func(t *testing.T) {
		svc, _, notif := newTestService(t)
		cs := seed(t, svc)

		got, err := svc.Update(ctx, adminPrin, cs.ID, UpdateCase{Status: StatusConfirmed})
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, got.Status)
		assert.Equal(t, StatusPending, got.PreviousStatus)
		require.Len(t, notif.changed, 1)
		assert.Equal(t, string(StatusConfirmed), notif.changed[0].status)
		assert.Empty(t, notif.changed[0].remark)

		got, err = svc.Update(ctx, adminPrin, cs.ID, UpdateCase{Remark: RemarkAttended})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
		assert.Equal(t, RemarkAttended, got.Remarks)
		assert.Equal(t, StatusConfirmed, got.PreviousStatus)
		require.Len(t, notif.changed, 2)
		assert.Equal(t, string(RemarkAttended), notif.changed[1].remark)

		active, err := svc.ListActive(ctx, adminPrin)
		require.NoError(t, err)
		assert.Empty(t, active)

		completed, err := svc.ListCompleted(ctx, adminPrin)
		require.NoError(t, err)
		require.Len(t, completed, 1)
		assert.Equal(t, cs.ID, completed[0].ID)
	})

	t.Run("no user id skips notification", func(t *testing.T) {
		svc, repo, notif := newTestService(t)
		cs, err := repo.CreateCase(ctx, Case{StudentName: "n/a", Status: StatusPending})
		require.NoError(t, err)

		_, err = svc.Update(ctx, adminPrin, cs.ID, UpdateCase{Status: StatusConfirmed})
		require.NoError(t, err)
		assert.Empty(t, notif.changed)
	})
}

func TestServiceScheduleFollowUp(t *testing.T) {
	svc, _, notif := newTestService(t)
	ctx := context.Background()

	cs, err := svc.SubmitIntake(ctx, studentPrin, NewIntake{
		StudentName:       "Juan dela Cruz",
		CourseYearSection: "BSCS 2A",
		DateOfBirth:       "2004-03-14",
	})
	require.NoError(t, err)
	notif.changed = nil

	got, err := svc.ScheduleFollowUp(ctx, adminPrin, cs.ID, FollowUp{Date: "2026-09-15", Time: "10:30", Notes: "bring forms"})
	require.NoError(t, err)
	assert.Equal(t, RemarkFollowUp, got.Remarks)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "2026-09-15", got.FollowUpDate)
	assert.Equal(t, "10:30", got.FollowUpTime)
	assert.Equal(t, "bring forms", got.SessionNotes)
	assert.True(t, got.Active())
	assert.Empty(t, notif.changed)
}

func TestServiceScheduleFor(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := repo.CreateCase(ctx, Case{StudentName: "a", Status: StatusPending, Remarks: RemarkFollowUp, FollowUpDate: "2026-09-15"})
	require.NoError(t, err)
	_, err = repo.CreateCase(ctx, Case{StudentName: "b", Status: StatusConfirmed, ScheduledDate: "2026-09-15"})
	require.NoError(t, err)
	_, err = repo.CreateCase(ctx, Case{StudentName: "c", Status: StatusConfirmed, ScheduledDate: "2026-09-16"})
	require.NoError(t, err)
	_, err = repo.CreateCase(ctx, Case{StudentName: "d", Status: StatusCompleted, ScheduledDate: "2026-09-15"})
	require.NoError(t, err)

	t.Run("non-admin forbidden", func(t *testing.T) {
		_, err := svc.ScheduleFor(ctx, studentPrin, "2026-09-15")
		assert.Equal(t, ErrForbidden, err)
	})

	css, err := svc.ScheduleFor(ctx, adminPrin, "2026-09-15")
	require.NoError(t, err)
	names := make([]string, 0, len(css))
	for _, cs := range css {
		names = append(names, cs.StudentName)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestServiceQueryScopes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SubmitIntake(ctx, studentPrin, NewIntake{
		StudentName:       "Juan dela Cruz",
		CourseYearSection: "BSCS 2A",
		DateOfBirth:       "2004-03-14",
	})
	require.NoError(t, err)
	_, err = svc.SubmitReferral(ctx, facultyPrin, NewReferral{
		StudentName:       "Maria Clara",
		CourseYearSection: "BSN 3B",
		Concerns:          []string{"failing grade"},
	})
	require.NoError(t, err)

	t.Run("students see their own cases only", func(t *testing.T) {
		css, err := svc.QueryByEmail(ctx, studentPrin, studentPrin.Email)
		require.NoError(t, err)
		assert.Len(t, css, 1)

		_, err = svc.QueryByEmail(ctx, studentPrin, "someone@else.test")
		assert.Equal(t, ErrForbidden, err)
	})

	t.Run("faculty see their own referrals only", func(t *testing.T) {
		css, err := svc.QueryByFaculty(ctx, facultyPrin, facultyPrin.ID)
		require.NoError(t, err)
		assert.Len(t, css, 1)

		_, err = svc.QueryByFaculty(ctx, facultyPrin, "other-faculty")
		assert.Equal(t, ErrForbidden, err)
	})

	t.Run("bulk listing is admin only", func(t *testing.T) {
		_, err := svc.Query(ctx, facultyPrin, nil)
		assert.Equal(t, ErrForbidden, err)

		css, err := svc.Query(ctx, adminPrin, nil)
		require.NoError(t, err)
		assert.Len(t, css, 2)
	})
}

func TestCategorizeConcerns(t *testing.T) {
	got := CategorizeConcerns([]string{
		"Unmet Subject requiremnts/projects",
		"Adjustment to college life",
		"study habit",
		"free text that matches nothing",
	})
	assert.Equal(t, []string{"Unmet Subject requiremnts/projects", "study habit"}, got.Academic)
	assert.Equal(t, []string{"Adjustment to college life"}, got.Personal)
	assert.Empty(t, got.Interpersonal)
	assert.Empty(t, got.Family)

	assert.True(t, Concerns{}.IsEmpty())
	assert.Equal(t, "a, b", Concerns{Personal: []string{"a"}, Academic: []string{"b"}}.String())
}

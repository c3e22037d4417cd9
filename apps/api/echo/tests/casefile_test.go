package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabayhq/gabay/core/casefile"
	"github.com/gabayhq/gabay/core/notification"
	"github.com/gabayhq/gabay/core/user"
	testutil "github.com/gabayhq/gabay/tests"
)

func Test_caseApi_submitIntake(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, app.usrRepo, "Hero", "hero", "hero@test.ph", "", []string{user.RoleStudent}, true)
	studentToken := getToken(t, student, app.conf)

	form := casefile.NewIntake{
		StudentName:       "Hero Student",
		CourseYearSection: "BSIT 3A",
		DateOfBirth:       "2004-05-06",
		ContactNo:         "09171234567",
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/cases/intake", marchallObj(t, form))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/cases/intake", studentToken, marchallObj(t, casefile.NewIntake{}))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad date of birth", func(t *testing.T) {
		bad := form
		bad.DateOfBirth = "05/06/2004"
		req, rec := newAuthRequest(http.MethodPost, "/v1/cases/intake", studentToken, marchallObj(t, bad))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date_of_birth": "must be a date in YYYY-MM-DD format"}),
		}, rec)
	})

	t.Run("submitted", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/cases/intake", studentToken, marchallObj(t, form))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var cs casefile.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cs))
		assert.NotEmpty(t, cs.ID)
		assert.Equal(t, student.ID, cs.UserID)
		assert.Equal(t, student.Email, cs.Email)
		assert.Equal(t, casefile.StatusPending, cs.Status)
		assert.False(t, cs.IsReferral)

		// submission acknowledged
		ns, err := app.notifRepo.QueryNotifications(context.Background(),
			&notification.QueryFilter{UserID: student.ID}, nil)
		require.NoError(t, err)
		require.Len(t, ns, 1)
		assert.Equal(t, "Counseling Request Received", ns[0].Title)
	})
}

func Test_caseApi_submitReferral(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, app.usrRepo, "Hero", "hero", "hero@test.ph", "", []string{user.RoleStudent}, true)
	faculty := testutil.CreateUser(t, app.usrRepo, "Prof", "profsy", "prof@test.ph", "", []string{user.RoleFaculty}, true)

	form := casefile.NewReferral{
		StudentName:       "Slacker Student",
		CourseYearSection: "BSCS 2B",
		Concerns:          []string{"failing grade", "Health", "not a real concern"},
		OtherConcerns:     "sleeps in class",
		FacultyName:       "Prof. X",
	}

	t.Run("students cannot refer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/cases/referral", getToken(t, student, app.conf), marchallObj(t, form))
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}, rec)
	})

	t.Run("referred", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/cases/referral", getToken(t, faculty, app.conf), marchallObj(t, form))
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var cs casefile.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cs))
		assert.True(t, cs.IsReferral)
		assert.Equal(t, faculty.ID, cs.FacultyID)
		assert.Equal(t, "Prof. X", cs.Referrer())
		assert.Equal(t, []string{"failing grade"}, cs.Concerns.Academic)
		assert.Equal(t, []string{"Health"}, cs.Concerns.Personal)
	})
}

func Test_caseApi_update(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, app.usrRepo, "Hero", "hero", "hero@test.ph", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "adminy", "admin@test.ph", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin, app.conf)

	cs := testutil.CreateCase(t, app.caseRepo, "Hero Student", "BSIT 3A", student.Email, student.ID, casefile.StatusPending)

	t.Run("admin required", func(t *testing.T) {
		body := marchallObj(t, casefile.UpdateCase{Status: casefile.StatusConfirmed})
		req, rec := newAuthRequest(http.MethodPut, "/v1/cases/"+cs.ID, getToken(t, student, app.conf), body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		}, rec)
	})

	t.Run("unknown case", func(t *testing.T) {
		body := marchallObj(t, casefile.UpdateCase{Status: casefile.StatusConfirmed})
		req, rec := newAuthRequest(http.MethodPut, "/v1/cases/nope", adminToken, body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "case not found"}),
		}, rec)
	})

	t.Run("status confirmed", func(t *testing.T) {
		body := marchallObj(t, casefile.UpdateCase{Status: casefile.StatusConfirmed, ScheduledDate: "2030-06-01", ScheduledTime: "09:30"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/cases/"+cs.ID, adminToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got casefile.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, casefile.StatusConfirmed, got.Status)
		assert.Equal(t, casefile.StatusPending, got.PreviousStatus)
		assert.Equal(t, "2030-06-01", got.ScheduledDate)
	})

	t.Run("remark completes the case", func(t *testing.T) {
		body := marchallObj(t, casefile.UpdateCase{Remark: casefile.RemarkAttended})
		req, rec := newAuthRequest(http.MethodPut, "/v1/cases/"+cs.ID, adminToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got casefile.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, casefile.StatusCompleted, got.Status)
		assert.Equal(t, casefile.RemarkAttended, got.Remarks)
	})
}

func Test_caseApi_followUp(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "adminy", "admin@test.ph", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin, app.conf)

	cs := testutil.CreateCase(t, app.caseRepo, "Hero Student", "BSIT 3A", "hero@test.ph", "", casefile.StatusConfirmed)

	t.Run("date required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/cases/"+cs.ID+"/follow-up", adminToken, marchallObj(t, casefile.FollowUp{}))
		app.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("past date rejected", func(t *testing.T) {
		body := marchallObj(t, casefile.FollowUp{Date: "2020-01-01", Time: "10:00"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/cases/"+cs.ID+"/follow-up", adminToken, body)
		app.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "date must not be in the past"}),
		}, rec)
	})

	t.Run("scheduled", func(t *testing.T) {
		body := marchallObj(t, casefile.FollowUp{Date: "2030-06-01", Time: "10:00"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/cases/"+cs.ID+"/follow-up", adminToken, body)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got casefile.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, casefile.RemarkFollowUp, got.Remarks)
		assert.Equal(t, casefile.StatusConfirmed, got.Status) // still active
		assert.Equal(t, "2030-06-01", got.FollowUpDate)
	})
}

func Test_caseApi_listings(t *testing.T) {
	app := setup(t)

	student := testutil.CreateUser(t, app.usrRepo, "Hero", "hero", "hero@test.ph", "", []string{user.RoleStudent}, true)
	faculty := testutil.CreateUser(t, app.usrRepo, "Prof", "profsy", "prof@test.ph", "", []string{user.RoleFaculty}, true)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "adminy", "admin@test.ph", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin, app.conf)

	active := testutil.CreateCase(t, app.caseRepo, "Hero Student", "BSIT 3A", student.Email, student.ID, casefile.StatusConfirmed)
	done := testutil.CreateCase(t, app.caseRepo, "Hero Student", "BSIT 3A", student.Email, student.ID, casefile.StatusCompleted)

	referral := casefile.Case{
		StudentName:       "Slacker Student",
		CourseYearSection: "BSCS 2B",
		IsReferral:        true,
		FacultyID:         faculty.ID,
		Status:            casefile.StatusPending,
	}
	referral, err := app.caseRepo.CreateCase(context.Background(), referral)
	require.NoError(t, err)

	tests := []httpTest{
		{
			name: "active is admin only", path: "/v1/cases/active", token: getToken(t, student, app.conf),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "active", path: "/v1/cases/active", token: adminToken, wantData: marchallList(t, active, referral)},
		{name: "completed", path: "/v1/cases/completed", token: adminToken, wantData: marchallList(t, done)},
		{name: "all", path: "/v1/cases", token: adminToken, wantData: marchallList(t, active, done, referral)},
		{name: "mine", path: "/v1/cases/mine", token: getToken(t, student, app.conf), wantData: marchallList(t, active, done)},
		{name: "referrals", path: "/v1/cases/referrals", token: getToken(t, faculty, app.conf), wantData: marchallList(t, referral)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("schedule by day", func(t *testing.T) {
		day := active.ScheduleDate()
		req, rec := newAuthRequest(http.MethodGet, "/v1/cases/schedule?date="+day, adminToken)
		app.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []casefile.Case
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		for _, cs := range got {
			assert.Equal(t, day, cs.ScheduleDate())
		}
		assert.NotEmpty(t, got)
	})
}

func Test_caseApi_retrieve(t *testing.T) {
	app := setup(t)

	owner := testutil.CreateUser(t, app.usrRepo, "Hero", "hero", "hero@test.ph", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, app.usrRepo, "Nosy", "nosy01", "nosy@test.ph", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "adminy", "admin@test.ph", "", []string{user.RoleAdmin}, true)

	cs := testutil.CreateCase(t, app.caseRepo, "Hero Student", "BSIT 3A", owner.Email, owner.ID, casefile.StatusPending)

	tests := []httpTest{
		{name: "owner", token: getToken(t, owner, app.conf), wantData: marchallObj(t, cs)},
		{name: "admin", token: getToken(t, admin, app.conf), wantData: marchallObj(t, cs)},
		{
			name: "stranger", token: getToken(t, other, app.conf),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/cases/" + cs.ID
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/gabayhq/gabay/core/casefile"
	"github.com/gabayhq/gabay/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCase(
	t *testing.T,
	repo casefile.Repository,
	studentName, course, email, userID string,
	status casefile.Status,
	submittedAt ...time.Time,
) casefile.Case {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(submittedAt) > 0 {
		tstamp = submittedAt[0].UTC()
	}
	cs := casefile.Case{
		UserID:            userID,
		StudentName:       studentName,
		Email:             email,
		CourseYearSection: course,
		Status:            status,
		SubmissionDate:    tstamp,
		UpdatedAt:         tstamp,
	}
	cs, err := repo.CreateCase(context.Background(), cs)
	if err != nil {
		t.Fatalf("CreateCase() failed: %v", err)
	}
	return cs
}

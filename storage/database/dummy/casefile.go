package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gabayhq/gabay/core"
	"github.com/gabayhq/gabay/core/casefile"
)

type caseRepository struct {
	db *caseTable
}

var _ casefile.Repository = (*caseRepository)(nil) // interface compliance check

func NewCaseRepository(db *DB) *caseRepository {
	return &caseRepository{db: db.casefile}
}

func (repo *caseRepository) query() []casefile.Case {
	cases := make([]casefile.Case, 0, len(repo.db.table))
	for _, cs := range repo.db.table {
		cases = append(cases, *cs)
	}
	return cases
}

func (repo *caseRepository) CreateCase(ctx context.Context, cs casefile.Case, exec ...core.DBExecutor) (casefile.Case, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cs.ID = uuid.New().String()
	repo.db.table[cs.ID] = &cs
	return cs, nil
}

func (repo *caseRepository) GetCase(ctx context.Context, filter casefile.GetFilter, exec ...core.DBExecutor) (casefile.Case, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cs, ok := repo.db.table[filter.ID]; ok {
		return *cs, nil
	}
	return casefile.Case{}, casefile.ErrNotFound
}

func (repo *caseRepository) QueryCases(ctx context.Context, filter *casefile.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]casefile.Case, error) {
	repo.db.RLock()
	cases := repo.query()
	repo.db.RUnlock()

	if filter != nil {
		var filtered []casefile.Case
		for _, cs := range cases {
			if matchCase(cs, filter) {
				filtered = append(filtered, cs)
			}
		}
		cases = filtered
	}

	sortCases(cases, ordering)
	return cases, nil
}

func matchCase(cs casefile.Case, filter *casefile.QueryFilter) bool {
	if filter.Search != "" {
		kw := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(cs.StudentName), kw) &&
			!strings.Contains(strings.ToLower(cs.Email), kw) &&
			!strings.Contains(strings.ToLower(cs.CourseYearSection), kw) {
			return false
		}
	}
	if filter.Status != "" && cs.Status != filter.Status {
		return false
	}
	if filter.Remark != "" && cs.Remarks != filter.Remark {
		return false
	}
	if filter.IsReferral != nil && cs.IsReferral != *filter.IsReferral {
		return false
	}
	if filter.Email != "" && cs.Email != filter.Email {
		return false
	}
	if filter.FacultyID != "" && cs.FacultyID != filter.FacultyID {
		return false
	}
	if filter.Active != nil && cs.Active() != *filter.Active {
		return false
	}
	if filter.SubmittedFrom != "" {
		if from, err := time.Parse("2006-01-02", filter.SubmittedFrom); err == nil && cs.SubmissionDate.Before(from) {
			return false
		}
	}
	if filter.SubmittedTo != "" {
		if to, err := time.Parse("2006-01-02", filter.SubmittedTo); err == nil && cs.SubmissionDate.After(to) {
			return false
		}
	}
	return true
}

func sortCases(cases []casefile.Case, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		return
	}
	ord := ordering[0]
	sort.SliceStable(cases, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "submission_date":
			less = cases[i].SubmissionDate.Before(cases[j].SubmissionDate)
		case "updated_at":
			less = cases[i].UpdatedAt.Before(cases[j].UpdatedAt)
		case "status":
			less = cases[i].Status < cases[j].Status
		default:
			less = cases[i].StudentName < cases[j].StudentName
		}
		if ord.Ascending {
			return less
		}
		return !less
	})
}

func (repo *caseRepository) UpdateCase(ctx context.Context, cs casefile.Case, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[cs.ID]; !ok {
		return casefile.ErrNotFound
	}
	repo.db.table[cs.ID] = &cs
	return nil
}

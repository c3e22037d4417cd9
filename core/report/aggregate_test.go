package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabayhq/gabay/core/casefile"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleCases() []casefile.Case {
	return []casefile.Case{
		{
			CourseYearSection: "BSCS 2A",
			SubmissionDate:    day("2026-08-03"),
			Status:            casefile.StatusCompleted,
			Remarks:           casefile.RemarkAttended,
			Concerns:          casefile.Concerns{Academic: []string{"failing grade"}},
		},
		{
			CourseYearSection: "BSCS 3B",
			SubmissionDate:    day("2026-08-03"),
			Status:            casefile.StatusConfirmed,
			Concerns:          casefile.Concerns{Personal: []string{"Health"}},
		},
		{
			CourseYearSection: "BSN 1A",
			SubmissionDate:    day("2026-08-04"),
			Status:            casefile.StatusCompleted,
			Remarks:           casefile.RemarkAttended,
			IsReferral:        true,
			Concerns:          casefile.Concerns{Academic: []string{"failing grade"}},
		},
		{
			CourseYearSection: "whatever",
			SubmissionDate:    day("2026-08-05"),
			Status:            casefile.StatusPending,
		},
	}
}

func bucketCount(bks []Bucket, label string) int {
	for _, bk := range bks {
		if bk.Label == label {
			return bk.Count
		}
	}
	return -1
}

func TestAggregate(t *testing.T) {
	rep := Aggregate(sampleCases())

	assert.Equal(t, 2, bucketCount(rep.Colleges, "CCS"))
	assert.Equal(t, 1, bucketCount(rep.Colleges, "CN"))
	assert.Equal(t, 1, bucketCount(rep.Colleges, UnknownCollege))
	assert.Equal(t, 0, bucketCount(rep.Colleges, "CM"))
	assert.Len(t, rep.Colleges, len(AllColleges))

	assert.Equal(t, 1, bucketCount(rep.SessionTypes, "Referral"))
	assert.Equal(t, 3, bucketCount(rep.SessionTypes, "Walk-in"))

	require.Len(t, rep.SubmissionsPerDay, 3)
	assert.Equal(t, Bucket{Label: "2026-08-03", Count: 2}, rep.SubmissionsPerDay[0])
	assert.Equal(t, Bucket{Label: "2026-08-04", Count: 1}, rep.SubmissionsPerDay[1])
	assert.Equal(t, Bucket{Label: "2026-08-05", Count: 1}, rep.SubmissionsPerDay[2])

	assert.Equal(t, 1, bucketCount(rep.YearLevels, "1st Year"))
	assert.Equal(t, 1, bucketCount(rep.YearLevels, "2nd Year"))
	assert.Equal(t, 1, bucketCount(rep.YearLevels, "3rd Year"))
	assert.Equal(t, 1, bucketCount(rep.YearLevels, "Other"))

	assert.Equal(t, 2, bucketCount(rep.Remarks, "Attended"))
	assert.Equal(t, 2, bucketCount(rep.Remarks, "None"))

	sum := rep.Summary
	assert.Equal(t, 4, sum.TotalSessions)
	assert.Equal(t, 2, sum.TotalCompletedSessions)
	assert.InDelta(t, 1.3, sum.AverageSessionsPerDay, 0.001)
	assert.Equal(t, "CCS", sum.MostActiveCollege)
	assert.Equal(t, "CN", sum.LeastActiveCollege)
	assert.Equal(t, "failing grade", sum.MostCommonReason)
	assert.Equal(t, "Attended", sum.MostCommonRemark)
}

func TestAggregateOrderIndependent(t *testing.T) {
	css := sampleCases()
	want := Aggregate(css)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := make([]casefile.Case, len(css))
		copy(shuffled, css)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Aggregate(shuffled))
	}
}

func TestAggregateEmpty(t *testing.T) {
	rep := Aggregate(nil)
	assert.Equal(t, 0, rep.Summary.TotalSessions)
	assert.Equal(t, 0.0, rep.Summary.AverageSessionsPerDay)
	assert.Equal(t, "None", rep.Summary.LeastActiveCollege)
	assert.Equal(t, "None", rep.Summary.MostCommonRemark)
	assert.Equal(t, "None", rep.Summary.MostCommonReason)
	assert.Empty(t, rep.SubmissionsPerDay)
	assert.Len(t, rep.Colleges, len(AllColleges))
}

func TestAggregateTieBreaks(t *testing.T) {
	// CAH comes before CCS in bucket order, so it wins both ties
	css := []casefile.Case{
		{CourseYearSection: "ABCOM 1A"},
		{CourseYearSection: "BSCS 1A"},
	}
	sum := Aggregate(css).Summary
	assert.Equal(t, "CAH", sum.MostActiveCollege)
	assert.Equal(t, "CAH", sum.LeastActiveCollege)
}

func TestFilterByTimeframe(t *testing.T) {
	defer func() { NowFunc = time.Now }()
	NowFunc = func() time.Time {
		return time.Date(2026, time.August, 19, 15, 0, 0, 0, time.UTC) // a Wednesday
	}

	css := []casefile.Case{
		{StudentName: "this week", SubmissionDate: day("2026-08-17")},
		{StudentName: "last week", SubmissionDate: day("2026-08-12")},
		{StudentName: "first of this month", SubmissionDate: day("2026-08-01")},
		{StudentName: "last day of july", SubmissionDate: day("2026-07-31")},
		{StudentName: "first of july", SubmissionDate: day("2026-07-01")},
		{StudentName: "june", SubmissionDate: day("2026-06-10")},
		{StudentName: "ancient", SubmissionDate: day("2024-01-01")},
		{StudentName: "undated"},
	}

	names := func(css []casefile.Case) []string {
		out := make([]string, 0, len(css))
		for _, cs := range css {
			out = append(out, cs.StudentName)
		}
		return out
	}

	tests := []struct {
		tf   Timeframe
		want []string
	}{
		{TimeframeThisWeek, []string{"this week"}},
		{TimeframeLastWeek, []string{"last week"}},
		{TimeframeThisMonth, []string{"this week", "last week", "first of this month"}},
		{TimeframeLastMonth, []string{"last day of july", "first of july"}},
		{TimeframePast3Months, []string{"this week", "last week", "first of this month", "last day of july", "first of july", "june"}},
		{TimeframeAllTime, names(css)},
	}
	for _, tt := range tests {
		t.Run(string(tt.tf), func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterByTimeframe(css, tt.tf)))
		})
	}
}

func TestFilterByCollege(t *testing.T) {
	css := []casefile.Case{
		{StudentName: "a", CourseYearSection: "BSCS 2A"},
		{StudentName: "b", CourseYearSection: "BSN 3B"},
	}

	got := FilterByCollege(css, "ccs")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].StudentName)

	assert.Len(t, FilterByCollege(css, "all"), 2)
	assert.Len(t, FilterByCollege(css, "unknown tag"), 2)
}

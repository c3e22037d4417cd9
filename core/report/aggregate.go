package report

import (
	"math"
	"sort"
	"time"

	"github.com/gabayhq/gabay/core/casefile"
)

// NowFunc facilitates mocking time.Now in tests
var NowFunc = time.Now

const dateFormat = "2006-01-02"

type (
	// Bucket is one labeled count in a histogram. Bucket order within a
	// Report is fixed so chart output is deterministic.
	Bucket struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	}

	Summary struct {
		TotalSessions          int     `json:"total_sessions"`
		TotalCompletedSessions int     `json:"total_completed_sessions"`
		AverageSessionsPerDay  float64 `json:"average_sessions_per_day"`
		MostActiveCollege      string  `json:"most_active_college"`
		LeastActiveCollege     string  `json:"least_active_college"`
		MostCommonReason       string  `json:"most_common_reason"`
		MostCommonRemark       string  `json:"most_common_remark"`
	}

	// Report is the chart-ready aggregation of a case set.
	Report struct {
		Colleges          []Bucket `json:"colleges"`
		SessionTypes      []Bucket `json:"session_types"`
		SubmissionsPerDay []Bucket `json:"submissions_per_day"`
		YearLevels        []Bucket `json:"year_levels"`
		Remarks           []Bucket `json:"remarks"`
		Summary           Summary  `json:"summary"`
	}
)

var (
	yearLabels   = []string{"1st Year", "2nd Year", "3rd Year", "4th Year", "Other"}
	remarkLabels = []string{"Attended", "No Show", "No Response", "Terminated", "Follow up", "None"}
)

// Aggregate classifies and counts the given cases in a single pass, so
// the chart buckets and the summary statistics always agree on how a
// case was classified. It is pure and order-independent except for the
// documented first-wins tie break on most/least active college.
func Aggregate(css []casefile.Case) Report {
	collegeCounts := make(map[string]int, len(AllColleges))
	sessionTypes := map[string]int{"Referral": 0, "Walk-in": 0}
	perDay := map[string]int{}
	yearCounts := make(map[string]int, len(yearLabels))
	remarkCounts := make(map[string]int, len(remarkLabels))
	reasonCounts := map[string]int{}
	var reasonOrder []string

	completed := 0
	for _, cs := range css {
		collegeCounts[CollegeFromCourse(cs.CourseYearSection)]++
		sessionTypes[cs.SessionType()]++
		yearCounts[YearLevel(cs.CourseYearSection)]++
		remarkCounts[remarkLabel(cs.Remarks)]++

		if !cs.SubmissionDate.IsZero() {
			perDay[cs.SubmissionDate.Format(dateFormat)]++
		}
		if cs.Status == casefile.StatusCompleted {
			completed++
		}

		reason := leadingConcern(cs.Concerns)
		if _, seen := reasonCounts[reason]; !seen {
			reasonOrder = append(reasonOrder, reason)
		}
		reasonCounts[reason]++
	}

	rep := Report{
		Colleges:     abbrBuckets(AllColleges, collegeCounts),
		SessionTypes: buckets([]string{"Referral", "Walk-in"}, sessionTypes),
		YearLevels:   buckets(yearLabels, yearCounts),
		Remarks:      buckets(remarkLabels, remarkCounts),
	}

	days := sortedKeys(perDay)
	rep.SubmissionsPerDay = make([]Bucket, 0, len(days))
	for _, day := range days {
		rep.SubmissionsPerDay = append(rep.SubmissionsPerDay, Bucket{Label: day, Count: perDay[day]})
	}

	rep.Summary = summarize(css, collegeCounts, remarkCounts, reasonCounts, reasonOrder, len(days), completed)
	return rep
}

func summarize(css []casefile.Case, collegeCounts, remarkCounts, reasonCounts map[string]int, reasonOrder []string, days, completed int) Summary {
	sum := Summary{
		TotalSessions:          len(css),
		TotalCompletedSessions: completed,
		MostActiveCollege:      "None",
		LeastActiveCollege:     "None",
		MostCommonReason:       "None",
		MostCommonRemark:       "None",
	}

	// denominator floors at 1 so an empty set averages to 0.0
	if days < 1 {
		days = 1
	}
	sum.AverageSessionsPerDay = math.Round(float64(len(css))/float64(days)*10) / 10

	// most: plain argmax; least: argmin over non-zero buckets.
	// Ties go to the first college in bucket order.
	maxCount, minCount := -1, math.MaxInt32
	for _, college := range AllColleges {
		count := collegeCounts[college]
		if count > maxCount {
			sum.MostActiveCollege = CollegeAbbr(college)
			maxCount = count
		}
		if count > 0 && count < minCount {
			sum.LeastActiveCollege = CollegeAbbr(college)
			minCount = count
		}
	}

	maxCount = -1
	for _, reason := range reasonOrder {
		if count := reasonCounts[reason]; count > maxCount {
			sum.MostCommonReason = reason
			maxCount = count
		}
	}

	// "None" is not a remark, just the empty bucket
	maxCount = -1
	for _, remark := range remarkLabels {
		if remark == "None" {
			continue
		}
		if count := remarkCounts[remark]; count > maxCount {
			sum.MostCommonRemark = remark
			maxCount = count
		}
	}
	return sum
}

// leadingConcern picks the case's representative concern: the first
// academic one, then personal, interpersonal, family.
func leadingConcern(cns casefile.Concerns) string {
	switch {
	case len(cns.Academic) > 0:
		return cns.Academic[0]
	case len(cns.Personal) > 0:
		return cns.Personal[0]
	case len(cns.Interpersonal) > 0:
		return cns.Interpersonal[0]
	case len(cns.Family) > 0:
		return cns.Family[0]
	}
	return "Not specified"
}

func remarkLabel(r casefile.Remark) string {
	if r == casefile.RemarkNone {
		return "None"
	}
	return string(r)
}

func buckets(labels []string, counts map[string]int) []Bucket {
	bks := make([]Bucket, 0, len(labels))
	for _, lbl := range labels {
		bks = append(bks, Bucket{Label: lbl, Count: counts[lbl]})
	}
	return bks
}

func abbrBuckets(labels []string, counts map[string]int) []Bucket {
	bks := make([]Bucket, 0, len(labels))
	for _, lbl := range labels {
		bks = append(bks, Bucket{Label: CollegeAbbr(lbl), Count: counts[lbl]})
	}
	return bks
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Timeframe is a report window relative to now.
type Timeframe string

const (
	TimeframeThisWeek    Timeframe = "thisWeek"
	TimeframeLastWeek    Timeframe = "lastWeek"
	TimeframeThisMonth   Timeframe = "thisMonth"
	TimeframeLastMonth   Timeframe = "lastMonth"
	TimeframePast3Months Timeframe = "past3Months"
	TimeframeAllTime     Timeframe = "allTime"
)

// FilterByTimeframe keeps the cases submitted within the given window.
// Cases without a submission date never match a bounded window. An
// unrecognized timeframe behaves like thisMonth.
func FilterByTimeframe(css []casefile.Case, tf Timeframe) []casefile.Case {
	if tf == TimeframeAllTime {
		return css
	}

	now := NowFunc()
	year, month, _ := now.Date()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())

	var start, end time.Time
	switch tf {
	case TimeframeThisWeek:
		start = weekStart(now)
	case TimeframeLastWeek:
		end = weekStart(now)
		start = end.AddDate(0, 0, -7)
	case TimeframeLastMonth:
		start = monthStart.AddDate(0, -1, 0)
		end = monthStart
	case TimeframePast3Months:
		start = monthStart.AddDate(0, -3, 0)
	default: // thisMonth
		start = monthStart
	}

	kept := make([]casefile.Case, 0, len(css))
	for _, cs := range css {
		if cs.SubmissionDate.IsZero() {
			continue
		}
		if cs.SubmissionDate.Before(start) {
			continue
		}
		if !end.IsZero() && !cs.SubmissionDate.Before(end) {
			continue
		}
		kept = append(kept, cs)
	}
	return kept
}

// weekStart truncates to the Monday of t's week.
func weekStart(t time.Time) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	offset := (int(t.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// FilterByCollege keeps the cases classified under the college the tag
// names. "all" and unknown tags keep everything.
func FilterByCollege(css []casefile.Case, tag string) []casefile.Case {
	if tag == "all" {
		return css
	}
	college := CollegeForTag(tag)
	if college == "" {
		return css
	}

	kept := make([]casefile.Case, 0, len(css))
	for _, cs := range css {
		if CollegeFromCourse(cs.CourseYearSection) == college {
			kept = append(kept, cs)
		}
	}
	return kept
}

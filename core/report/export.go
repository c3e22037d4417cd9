package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/gabayhq/gabay/core/casefile"
)

// exportColumns is the wire contract of the export row, shared by the
// CSV and XLSX writers.
var exportColumns = []string{
	"Student Name",
	"Course/Year/Section",
	"Submission Date",
	"Session Type",
	"Status",
	"Remarks",
	"Referrer",
	"Concerns",
}

// ConcernText renders the case's concerns for export. Referrals show
// one category, academic over personal; walk-ins show everything.
func ConcernText(cs casefile.Case) string {
	if cs.IsReferral {
		if len(cs.Concerns.Academic) > 0 {
			return strings.Join(cs.Concerns.Academic, ", ")
		}
		if len(cs.Concerns.Personal) > 0 {
			return strings.Join(cs.Concerns.Personal, ", ")
		}
		return "Not specified"
	}

	if cs.Concerns.IsEmpty() {
		return "Not specified"
	}
	all := make([]string, 0, 8)
	all = append(all, cs.Concerns.Academic...)
	all = append(all, cs.Concerns.Personal...)
	all = append(all, cs.Concerns.Interpersonal...)
	all = append(all, cs.Concerns.Family...)
	return strings.Join(all, ", ")
}

func exportRow(cs casefile.Case) []string {
	submitted := "N/A"
	if !cs.SubmissionDate.IsZero() {
		submitted = cs.SubmissionDate.Format(time.RFC3339)
	}
	return []string{
		defaultTo(cs.StudentName, "N/A"),
		defaultTo(cs.CourseYearSection, "N/A"),
		submitted,
		cs.SessionType(),
		defaultTo(string(cs.Status), "N/A"),
		defaultTo(string(cs.Remarks), "None"),
		cs.Referrer(),
		ConcernText(cs),
	}
}

func defaultTo(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// WriteCSV writes the case set as CSV, one row per case.
func WriteCSV(w io.Writer, css []casefile.Case) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, cs := range css {
		if err := cw.Write(exportRow(cs)); err != nil {
			return errors.Wrap(err, "writing csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

const (
	casesSheet   = "Cases"
	summarySheet = "Summary"
)

// WriteXLSX writes the case set as a workbook: the export rows on one
// sheet and the aggregated summary statistics on another.
func WriteXLSX(w io.Writer, css []casefile.Case) error {
	f := excelize.NewFile()
	defer f.Close()

	index := f.NewSheet(casesSheet)
	f.NewSheet(summarySheet)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := make([]interface{}, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(casesSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing xlsx header")
	}
	for i, cs := range css {
		row := exportRow(cs)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating xlsx row")
		}
		if err := f.SetSheetRow(casesSheet, axis, &cells); err != nil {
			return errors.Wrap(err, "writing xlsx row")
		}
	}

	if err := writeSummarySheet(f, Aggregate(css)); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

func writeSummarySheet(f *excelize.File, rep Report) error {
	rows := [][]interface{}{
		{"Total Sessions", rep.Summary.TotalSessions},
		{"Completed Sessions", rep.Summary.TotalCompletedSessions},
		{"Average Sessions Per Day", rep.Summary.AverageSessionsPerDay},
		{"Most Active College", rep.Summary.MostActiveCollege},
		{"Least Active College", rep.Summary.LeastActiveCollege},
		{"Most Common Reason", rep.Summary.MostCommonReason},
		{"Most Common Remark", rep.Summary.MostCommonRemark},
	}
	for _, bk := range rep.Colleges {
		rows = append(rows, []interface{}{fmt.Sprintf("Sessions - %s", bk.Label), bk.Count})
	}

	for i := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "locating summary row")
		}
		if err := f.SetSheetRow(summarySheet, axis, &rows[i]); err != nil {
			return errors.Wrap(err, "writing summary row")
		}
	}
	return nil
}

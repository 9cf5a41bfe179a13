// Package auditexport renders reconciled attendance as an XLSX workbook so
// operators can review how every day's hours were derived.
package auditexport

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Daily Hours"

var headers = []string{
	"Date", "Weekday", "Hours", "Reason", "Sessions",
	"Break Deducted", "Provisional", "Source Record", "Irregularities",
}

// Render writes one row per day followed by a total row.
func Render(employeeID string, days []attendance.DailyHours) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("error naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("error creating header style: %w", err)
	}

	if err := f.SetCellValue(SheetName, "A1", "Employee"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(SheetName, "B1", employeeID); err != nil {
		return nil, err
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%c3", 'A'+i)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(SheetName, "A3", fmt.Sprintf("%c3", 'A'+len(headers)-1), bold); err != nil {
		return nil, err
	}

	rowNum := 4
	var total float64
	for _, day := range days {
		values := []interface{}{
			attendance.DayKey(day.Date),
			day.Date.Weekday().String(),
			roundHours(day.Hours),
			string(day.Reason),
			day.Sessions,
			yesNo(day.BreakDeducted),
			yesNo(day.Provisional),
			day.SourceRecordID,
			describe(day.Irregularities),
		}
		for i, v := range values {
			if err := f.SetCellValue(SheetName, fmt.Sprintf("%c%d", 'A'+i, rowNum), v); err != nil {
				return nil, err
			}
		}
		total += day.Hours
		rowNum++
	}

	if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", rowNum), "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(SheetName, fmt.Sprintf("C%d", rowNum), roundHours(total)); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("C%d", rowNum), bold); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(SheetName, "I", "I", 60); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func roundHours(h float64) float64 {
	return float64(int64(h*100+0.5)) / 100
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func describe(irregularities []attendance.Irregularity) string {
	parts := make([]string, 0, len(irregularities))
	for _, irr := range irregularities {
		s := string(irr.Kind)
		if irr.Detail != "" {
			s += " (" + irr.Detail + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

// Package export writes employee rosters as spreadsheets and PDFs, and reads
// spreadsheets back as create forms for bulk import.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/employee-directory/internal/forms"
	"github.com/jonathan/employee-directory/internal/types"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Employees"

// ErrEmptySheet is returned by ReadXLSX when the workbook has no header row.
var ErrEmptySheet = errors.New("worksheet is empty")

type column struct {
	header string
	key    string
	width  float64
	value  func(e *types.Employee) any
	set    func(f *types.CreateForm, v string) error
}

func text(get func(e *types.Employee) string, set func(f *types.CreateForm, v string)) (func(*types.Employee) any, func(*types.CreateForm, string) error) {
	return func(e *types.Employee) any { return get(e) },
		func(f *types.CreateForm, v string) error { set(f, v); return nil }
}

func number(get func(e *types.Employee) int, set func(f *types.CreateForm, n int)) (func(*types.Employee) any, func(*types.CreateForm, string) error) {
	return func(e *types.Employee) any {
			if n := get(e); n != 0 {
				return n
			}
			return nil
		}, func(f *types.CreateForm, v string) error {
			if v == "" {
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			set(f, n)
			return nil
		}
}

var columns = buildColumns()

func buildColumns() []column {
	col := func(header, key string, width float64, value func(*types.Employee) any, set func(*types.CreateForm, string) error) column {
		return column{header: header, key: key, width: width, value: value, set: set}
	}
	textCol := func(header, key string, width float64, get func(e *types.Employee) string, set func(f *types.CreateForm, v string)) column {
		value, setter := text(get, set)
		return col(header, key, width, value, setter)
	}
	numberCol := func(header, key string, get func(e *types.Employee) int, set func(f *types.CreateForm, n int)) column {
		value, setter := number(get, set)
		return col(header, key, 12, value, setter)
	}

	return []column{
		col("ID", "id", 18, func(e *types.Employee) any { return e.ID }, nil),
		textCol("Name", "name", 24, func(e *types.Employee) string { return e.Name }, func(f *types.CreateForm, v string) { f.Name = v }),
		textCol("Email", "email", 30, func(e *types.Employee) string { return e.Email }, func(f *types.CreateForm, v string) { f.Email = v }),
		textCol("Department", "department", 14, func(e *types.Employee) string { return e.Department }, func(f *types.CreateForm, v string) { f.Department = v }),
		textCol("Designation", "designation", 26, func(e *types.Employee) string { return e.Designation }, func(f *types.CreateForm, v string) { f.Designation = v }),
		textCol("Joining Date", "joining_date", 13, func(e *types.Employee) string { return e.JoiningDate }, func(f *types.CreateForm, v string) { f.JoiningDate = v }),
		textCol("Date Of Birth", "date_of_birth", 13, func(e *types.Employee) string { return e.DateOfBirth }, func(f *types.CreateForm, v string) { f.DateOfBirth = v }),
		textCol("Emergency Contact", "emergency_contact", 18, func(e *types.Employee) string { return e.EmergencyContact }, func(f *types.CreateForm, v string) { f.EmergencyContact = v }),
		textCol("LinkedIn Profile", "linkedin_profile", 30, func(e *types.Employee) string { return e.LinkedInProfile }, func(f *types.CreateForm, v string) { f.LinkedInProfile = v }),
		textCol("Employment Type", "employment_type", 15, func(e *types.Employee) string { return e.EmploymentType }, func(f *types.CreateForm, v string) { f.EmploymentType = v }),
		textCol("Contract End Date", "contract_end_date", 15, func(e *types.Employee) string { return e.ContractEndDate }, func(f *types.CreateForm, v string) { f.ContractEndDate = v }),
		textCol("Work Location", "work_location", 13, func(e *types.Employee) string { return e.WorkLocation }, func(f *types.CreateForm, v string) { f.WorkLocation = v }),
		col("Remote", "is_remote", 8,
			func(e *types.Employee) any {
				if e.IsRemote {
					return "yes"
				}
				return "no"
			},
			func(f *types.CreateForm, v string) error {
				switch strings.ToLower(v) {
				case "yes", "true", "1", "on":
					f.IsRemote = true
				case "", "no", "false", "0", "off":
					f.IsRemote = false
				default:
					return fmt.Errorf("not a yes/no value: %q", v)
				}
				return nil
			}),
		textCol("Preferred Working Hours", "preferred_working_hours", 12, func(e *types.Employee) string { return e.PreferredWorkingHours }, func(f *types.CreateForm, v string) { f.PreferredWorkingHours = v }),
		textCol("Preferred Communication", "preferred_communication", 14, func(e *types.Employee) string { return e.PreferredCommunication }, func(f *types.CreateForm, v string) { f.PreferredCommunication = v }),
		textCol("Skills", "skills", 30, func(e *types.Employee) string { return e.Skills }, func(f *types.CreateForm, v string) { f.Skills = forms.SplitSkills(v) }),
		numberCol("Performance Rating", "performance_rating", func(e *types.Employee) int { return e.PerformanceRating }, func(f *types.CreateForm, n int) { f.PerformanceRating = n }),
		numberCol("Years Of Experience", "years_of_experience", func(e *types.Employee) int { return e.YearsOfExperience }, func(f *types.CreateForm, n int) { f.YearsOfExperience = n }),
		textCol("Notification Preferences", "notification_preferences", 30,
			func(e *types.Employee) string { return strings.Join(e.NotificationPreferences, ", ") },
			func(f *types.CreateForm, v string) { f.NotificationPreferences = forms.SplitSkills(v) }),
		textCol("Bio", "bio", 40, func(e *types.Employee) string { return e.Bio }, func(f *types.CreateForm, v string) { f.Bio = v }),
		col("Created", "created", 24, func(e *types.Employee) any { return e.Created }, nil),
	}
}

// WriteXLSX writes employees to a single-sheet workbook with a frozen header row.
func WriteXLSX(w io.Writer, employees []types.Employee) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.header
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range employees {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = c.value(&employees[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := styleSheet(f); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func styleSheet(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, c := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, c.width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}

	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// RowError reports a spreadsheet row that could not be read.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ReadXLSX reads the first worksheet of a workbook into create forms. Columns
// are matched by header, either the label WriteXLSX uses or the field name.
// Unknown columns and the ID and Created columns are ignored, and blank rows
// are skipped.
func ReadXLSX(r io.Reader) ([]types.CreateForm, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	byHeader := make(map[string]*column, len(columns)*2)
	for i := range columns {
		byHeader[normalizeHeader(columns[i].header)] = &columns[i]
		byHeader[normalizeHeader(columns[i].key)] = &columns[i]
	}
	mapped := make([]*column, len(rows[0]))
	for i, h := range rows[0] {
		if c := byHeader[normalizeHeader(h)]; c != nil && c.set != nil {
			mapped[i] = c
		}
	}

	out := make([]types.CreateForm, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		form := types.CreateForm{Skills: []string{}, NotificationPreferences: []string{}}
		for i, c := range mapped {
			if c == nil || i >= len(row) {
				continue
			}
			if err := c.set(&form, strings.TrimSpace(row[i])); err != nil {
				return nil, &RowError{Row: n + 2, Column: c.header, Err: err}
			}
		}
		out = append(out, form)
	}
	return out, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(header), " ", "_"))
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

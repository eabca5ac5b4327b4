package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/jonathan/employee-directory/internal/forms"
	"github.com/jonathan/employee-directory/internal/types"
)

type pdfColumn struct {
	header string
	width  float64
	value  func(e *types.Employee) string
}

// Landscape A4 leaves 277mm between the 10mm margins.
var rosterColumns = []pdfColumn{
	{header: "Name", width: 50, value: func(e *types.Employee) string { return e.Name }},
	{header: "Email", width: 70, value: func(e *types.Employee) string { return e.Email }},
	{header: "Department", width: 32, value: func(e *types.Employee) string { return e.Department }},
	{header: "Designation", width: 65, value: func(e *types.Employee) string { return e.Designation }},
	{header: "Joined", width: 25, value: func(e *types.Employee) string { return e.JoiningDate }},
	{header: "Location", width: 35, value: func(e *types.Employee) string { return e.WorkLocation }},
}

// WriteRosterPDF writes employees as a landscape table with a title and a
// generation timestamp.
func WriteRosterPDF(w io.Writer, title string, employees []types.Employee, generated time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetCreationDate(generated)
	pdf.SetAutoPageBreak(true, 15)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(221, 235, 247)
		for _, c := range rosterColumns {
			pdf.CellFormat(c.width, 8, c.header, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%d employees, generated %s", len(employees), generated.Format("2006-01-02 15:04")))
	pdf.Ln(10)
	header()

	for i := range employees {
		for _, c := range rosterColumns {
			pdf.CellFormat(c.width, 7, tr(fit(pdf, c.value(&employees[i]), c.width-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// WriteProfilePDF writes a one-page profile of e.
func WriteProfilePDF(w io.Writer, e *types.Employee) error {
	if e == nil {
		return fmt.Errorf("failed to write PDF: no employee")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(e.Name, true)
	pdf.AddPage()

	pdf.SetFillColor(221, 235, 247)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(24, 24, forms.Initials(e.Name), "1", 0, "C", true, 0, "")
	pdf.SetX(40)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(e.Name))
	pdf.Ln(10)
	pdf.SetX(40)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(strings.TrimSuffix(e.Designation+", "+e.Department, ", ")))
	pdf.Ln(20)

	row := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(50, 8, label)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 8, tr(value), "", "L", false)
	}
	row("Email", e.Email)
	row("Joining Date", e.JoiningDate)
	row("Date Of Birth", e.DateOfBirth)
	row("Emergency Contact", e.EmergencyContact)
	row("LinkedIn", e.LinkedInProfile)
	row("Employment Type", e.EmploymentType)
	row("Contract End Date", e.ContractEndDate)
	row("Work Location", e.WorkLocation)
	if e.IsRemote {
		row("Remote", "Yes")
	}
	row("Working Hours", e.PreferredWorkingHours)
	row("Communication", e.PreferredCommunication)
	if e.PerformanceRating > 0 {
		row("Performance Rating", fmt.Sprintf("%d / 10", e.PerformanceRating))
	}
	if e.YearsOfExperience > 0 {
		row("Experience", fmt.Sprintf("%d years", e.YearsOfExperience))
	}
	row("Skills", e.Skills)
	row("Notifications", strings.Join(e.NotificationPreferences, ", "))
	row("Bio", e.Bio)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// fit shortens s until it fits width at the current font.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

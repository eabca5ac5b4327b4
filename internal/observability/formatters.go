// Package observability renders employee records, pages, dashboards and
// validation results for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/jonathan/employee-directory/internal/forms"
	"github.com/jonathan/employee-directory/internal/search"
	"github.com/jonathan/employee-directory/internal/types"
	"github.com/jonathan/employee-directory/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes human-readable output.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// PrintEmployee outputs the full profile of one employee.
func (p *Printer) PrintEmployee(e *types.Employee) {
	if e == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s]  %s\n", forms.Initials(e.Name), e.Name))
	sb.WriteString(fmt.Sprintf("%s · %s\n", e.Designation, e.Department))
	sb.WriteString("\n")

	field := func(label, value string) {
		if value != "" {
			sb.WriteString(fmt.Sprintf("%-14s %s\n", label+":", value))
		}
	}
	field("ID", e.ID)
	field("Email", e.Email)
	field("Joined", e.JoiningDate)
	field("Born", e.DateOfBirth)
	field("Emergency", e.EmergencyContact)
	field("LinkedIn", e.LinkedInProfile)
	field("Employment", e.EmploymentType)
	field("Contract ends", e.ContractEndDate)
	field("Location", e.WorkLocation)
	if e.IsRemote {
		field("Remote", "yes")
	}
	field("Hours", e.PreferredWorkingHours)
	field("Contact via", e.PreferredCommunication)
	if e.PerformanceRating > 0 {
		field("Rating", fmt.Sprintf("%d/10", e.PerformanceRating))
	}
	if e.YearsOfExperience > 0 {
		field("Experience", fmt.Sprintf("%d years", e.YearsOfExperience))
	}
	field("Picture", e.ProfilePicture)

	if skills := forms.SplitSkills(e.Skills); len(skills) > 0 {
		sb.WriteString("\nSkills:\n")
		for _, s := range skills {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	}
	if len(e.NotificationPreferences) > 0 {
		sb.WriteString("\nNotifications:\n")
		for _, n := range e.NotificationPreferences {
			sb.WriteString(fmt.Sprintf("  • %s\n", n))
		}
	}
	if e.Bio != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Bio)
	}

	p.printBox("EMPLOYEE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEmployees outputs employees as an aligned table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEmployees(employees []types.Employee) {
	if len(employees) == 0 {
		fmt.Fprintln(p.out, "No employees found.")
		return
	}

	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tDEPARTMENT\tDESIGNATION\tJOINED")
	for _, e := range employees {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Name, e.Email, e.Department, e.Designation, e.JoiningDate)
	}
	tw.Flush()
}

// PrintEmployeePage outputs one page of employees followed by the page position.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEmployeePage(page *types.EmployeePage) {
	if page == nil {
		return
	}
	p.PrintEmployees(page.Items)
	fmt.Fprintf(p.out, "\nPage %d of %d (%d employees)\n", page.Page, page.TotalPages, page.TotalItems)
}

// PrintDashboard outputs the landing page figures.
func (p *Printer) PrintDashboard(d *types.Dashboard) {
	if d == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total employees:   %d\n", d.TotalEmployees))
	sb.WriteString(fmt.Sprintf("Added this month:  %d (since %s)\n", d.AddedThisMonth, d.MonthStartsOn))
	sb.WriteString(fmt.Sprintf("Departments:       %d\n", d.DepartmentCount))

	if len(d.RecentlyAdded) > 0 {
		sb.WriteString("\nRecently added:\n")
		count := min(len(d.RecentlyAdded), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := d.RecentlyAdded[i]
			sb.WriteString(fmt.Sprintf("  [%s] %s, %s\n", forms.Initials(e.Name), e.Name, e.Department))
		}
	}

	p.printBox("DASHBOARD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the result of validating a form.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidation(errs validation.Errors) {
	if len(errs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ FORM IS VALID")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problems:\n\n", len(errs)))
	fields := errs.Fields()
	for i, field := range fields {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", field))
		sb.WriteString(fmt.Sprintf("  %s\n", errs[field]))
		if i < len(fields)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("VALIDATION ERRORS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSearchResult outputs one settled search.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSearchResult(res search.Result) {
	switch {
	case res.Cleared:
		fmt.Fprintln(p.out, "Search cleared.")
	case res.Err != nil:
		fmt.Fprintf(p.out, "Search for %q failed: %v\n", res.Text, res.Err)
	default:
		fmt.Fprintf(p.out, "Results for %q: %d\n", res.Text, len(res.Employees))
		p.PrintEmployees(res.Employees)
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-directory/internal/directory"
	"github.com/jonathan/employee-directory/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		out    string
		format string
		id     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the directory as a spreadsheet or PDF",
		Long: "Write every employee to an XLSX workbook or a PDF roster. With --id, write a " +
			"single employee's profile as a PDF instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			if format == "" {
				format = "xlsx"
			}
			if format != "xlsx" && format != "pdf" {
				return fmt.Errorf("unsupported format %q: use xlsx or pdf", format)
			}
			if id != "" && format != "pdf" {
				return fmt.Errorf("single-employee export is only available as pdf")
			}

			w, closeFn, err := openOutput(cmd, out)
			if err != nil {
				return err
			}
			defer closeFn()

			if id != "" {
				emp, err := a.service.GetEmployee(cmd.Context(), id)
				if err != nil {
					return err
				}
				return export.WriteProfilePDF(w, emp)
			}

			employees, err := a.service.AllEmployees(cmd.Context(), a.cfg.PerPage)
			if err != nil {
				return err
			}
			if format == "pdf" {
				err = export.WriteRosterPDF(w, "Employee Directory", employees, time.Now())
			} else {
				err = export.WriteXLSX(w, employees)
			}
			if err != nil {
				return err
			}
			if out != "" && out != "-" {
				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d employees to %s\n", len(employees), out)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVar(&format, "format", "", "xlsx or pdf (default from the --out extension, else xlsx)")
	cmd.Flags().StringVar(&id, "id", "", "Export one employee's profile")
	return cmd
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func newImportCmd(a *app) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Add employees from a spreadsheet",
		Long: "Read the first worksheet, one employee per row, matching columns by header. " +
			"Each row is validated and created independently; invalid rows are reported and skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open workbook: %w", err)
			}
			defer func() { _ = f.Close() }()

			batch, err := export.ReadXLSX(f)
			if err != nil {
				return err
			}

			results := a.service.ImportEmployees(cmd.Context(), batch, concurrency)
			return a.reportImport(cmd, results)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", directory.DefaultImportConcurrency, "Maximum concurrent create requests")
	return cmd
}

func (a *app) reportImport(cmd *cobra.Command, results []directory.ImportResult) error {
	type row struct {
		Row   int    `json:"row"`
		ID    string `json:"id,omitempty"`
		Error string `json:"error,omitempty"`
	}

	rows := make([]row, len(results))
	var failed int
	for i, r := range results {
		// Spreadsheet rows are 1-based and the header takes row 1.
		rows[i] = row{Row: r.Index + 2}
		if r.Err != nil {
			failed++
			rows[i].Error = r.Err.Error()
		} else {
			rows[i].ID = r.Employee.ID
		}
	}

	if a.jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range rows {
			if r.Error != "" {
				fmt.Fprintf(w, "row %d: %s\n", r.Row, r.Error)
			} else {
				fmt.Fprintf(w, "row %d: created %s\n", r.Row, r.ID)
			}
		}
		fmt.Fprintf(w, "Imported %d of %d employees\n", len(rows)-failed, len(rows))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rows failed", failed, len(rows))
	}
	return nil
}

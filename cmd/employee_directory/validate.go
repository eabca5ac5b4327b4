package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-directory/internal/observability"
	"github.com/jonathan/employee-directory/internal/validation"
)

func newValidateCmd(a *app) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an employee form without saving it",
		Long:  "Validate the form given by --file and field flags. Exits non-zero when the form is invalid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := ff.createForm(cmd.Flags())
			if err != nil {
				return err
			}
			errs := a.service.Validate(form)
			if errs == nil {
				errs = validation.Errors{}
			}
			if err := a.emit(cmd, map[string]any{"valid": len(errs) == 0, "errors": errs},
				func(p *observability.Printer) { p.PrintValidation(errs) }); err != nil {
				return err
			}
			if len(errs) > 0 {
				return fmt.Errorf("form has %d invalid fields", len(errs))
			}
			return nil
		},
	}
	ff.bind(cmd.Flags(), true)
	return cmd
}

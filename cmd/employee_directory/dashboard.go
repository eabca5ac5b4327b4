package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/employee-directory/internal/observability"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show headcount, hires this month and the most recent additions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := a.service.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(cmd, dash, func(p *observability.Printer) { p.PrintDashboard(dash) })
		},
	}
}

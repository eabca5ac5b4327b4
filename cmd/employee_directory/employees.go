package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/employee-directory/internal/forms"
	"github.com/jonathan/employee-directory/internal/observability"
	"github.com/jonathan/employee-directory/internal/types"
	"github.com/jonathan/employee-directory/internal/validation"
)

func newListCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.service.ListEmployees(cmd.Context(), page, a.cfg.PerPage)
			if err != nil {
				return err
			}
			return a.emit(cmd, result, func(p *observability.Printer) { p.PrintEmployeePage(result) })
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, starting at 1")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			emp, err := a.service.GetEmployee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(cmd, emp, func(p *observability.Printer) { p.PrintEmployee(emp) })
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an employee",
		Long:  "Validate the form and add the employee. Nothing is sent when the form is invalid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := ff.createForm(cmd.Flags())
			if err != nil {
				return err
			}
			upload, file, err := ff.openPicture()
			if err != nil {
				return err
			}
			if file != nil {
				defer func() { _ = file.Close() }()
			}
			form.ProfilePicture = upload

			emp, err := a.service.CreateEmployee(cmd.Context(), form)
			if err != nil {
				return a.reportInvalid(cmd, err)
			}
			return a.emit(cmd, emp, func(p *observability.Printer) { p.PrintEmployee(emp) })
		},
	}
	ff.bind(cmd.Flags(), true)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var ff formFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change individual fields of an employee",
		Long:  "Send only the fields given as flags. Fields not mentioned are left unchanged.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := ff.patch(cmd.Flags())
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update: set at least one field flag")
			}
			emp, err := a.service.UpdateEmployee(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.emit(cmd, emp, func(p *observability.Printer) { p.PrintEmployee(emp) })
		},
	}
	ff.bind(cmd.Flags(), false)
	return cmd
}

// profileEdits are incremental changes applied on top of the stored profile.
type profileEdits struct {
	toClear              []string
	addSkills, dropSkill []string
	notifyOn, notifyOff  []string
}

func (e *profileEdits) bind(fs *pflag.FlagSet) {
	fs.StringSliceVar(&e.toClear, "clear", nil, "Optional field to clear, by field name (repeatable)")
	fs.StringSliceVar(&e.addSkills, "add-skill", nil, "Add a skill to the stored list (repeatable)")
	fs.StringSliceVar(&e.dropSkill, "remove-skill", nil, "Remove a skill from the stored list (repeatable)")
	fs.StringSliceVar(&e.notifyOn, "notify-on", nil, "Enable a notification preference (repeatable)")
	fs.StringSliceVar(&e.notifyOff, "notify-off", nil, "Disable a notification preference (repeatable)")
}

func (e *profileEdits) apply(form *types.ProfileForm) error {
	if err := clearFields(form, e.toClear); err != nil {
		return err
	}
	for _, skill := range e.addSkills {
		skills, err := validation.AddSkill(form.Skills, skill)
		if err != nil {
			return fmt.Errorf("cannot add skill %q: %w", skill, err)
		}
		form.Skills = skills
	}
	for _, skill := range e.dropSkill {
		idx := slices.IndexFunc(form.Skills, func(s string) bool { return strings.EqualFold(s, skill) })
		if idx < 0 {
			return fmt.Errorf("cannot remove skill %q: not in the list", skill)
		}
		form.Skills = validation.RemoveSkill(form.Skills, idx)
	}
	for _, pref := range e.notifyOn {
		form.NotificationPreferences = validation.ToggleNotification(form.NotificationPreferences, pref, true)
	}
	for _, pref := range e.notifyOff {
		form.NotificationPreferences = validation.ToggleNotification(form.NotificationPreferences, pref, false)
	}
	return nil
}

func newEditCmd(a *app) *cobra.Command {
	var ff formFlags
	var edits profileEdits
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an employee profile",
		Long: "Load the stored profile, apply the given flags, validate the result and send " +
			"the fields that changed. Use --clear to empty optional fields, and --add-skill, " +
			"--remove-skill, --notify-on or --notify-off to change the stored lists in place.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.service.GetEmployee(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			form := forms.RecordToProfileForm(current)
			ff.applyToProfile(cmd.Flags(), &form)
			if err := edits.apply(&form); err != nil {
				return err
			}

			emp, err := a.service.UpdateProfile(cmd.Context(), args[0], form)
			if err != nil {
				return a.reportInvalid(cmd, err)
			}
			return a.emit(cmd, emp, func(p *observability.Printer) { p.PrintEmployee(emp) })
		},
	}
	ff.bind(cmd.Flags(), false)
	edits.bind(cmd.Flags())
	return cmd
}

func clearFields(form *types.ProfileForm, fields []string) error {
	for _, field := range fields {
		switch field {
		case "date_of_birth":
			form.DateOfBirth = ""
		case "emergency_contact":
			form.EmergencyContact = ""
		case "linkedin_profile":
			form.LinkedInProfile = ""
		case "employment_type":
			form.EmploymentType = ""
		case "contract_end_date":
			form.ContractEndDate = ""
		case "work_location":
			form.WorkLocation = ""
		case "is_remote":
			form.IsRemote = false
		case "preferred_working_hours":
			form.PreferredWorkingHours = ""
		case "preferred_communication":
			form.PreferredCommunication = ""
		case "skills":
			form.Skills = []string{}
		case "performance_rating":
			form.PerformanceRating = 0
		case "years_of_experience":
			form.YearsOfExperience = 0
		case "bio":
			form.Bio = ""
		case "notification_preferences":
			form.NotificationPreferences = []string{}
		default:
			return fmt.Errorf("cannot clear %q: not an optional field", field)
		}
	}
	return nil
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.service.DeleteEmployee(cmd.Context(), args[0]); err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted employee %s\n", args[0])
			return err
		},
	}
}

// reportInvalid prints the field messages of a validation failure before
// returning the error.
func (a *app) reportInvalid(cmd *cobra.Command, err error) error {
	var invalid *validation.Error
	if errors.As(err, &invalid) {
		if a.jsonOutput {
			_ = writeJSON(cmd.OutOrStdout(), map[string]any{"valid": false, "errors": invalid.Fields})
		} else {
			a.printer(cmd).PrintValidation(invalid.Fields)
		}
	}
	return err
}

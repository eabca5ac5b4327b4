package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/jonathan/employee-directory/internal/forms"
	"github.com/jonathan/employee-directory/internal/schemas"
	"github.com/jonathan/employee-directory/internal/types"
)

// formFlags are the employee fields as command-line flags. Each flag maps to
// the json field name used in patches.
type formFlags struct {
	file string

	name, email, department, designation, joiningDate string
	dateOfBirth, emergencyContact, linkedIn           string
	employmentType, contractEndDate, workLocation     string
	remote                                            bool
	workingHours, communication, bio                  string
	skills, notify                                    []string
	rating, experience                                int
	picture                                           string
}

// fieldFlags maps flag names to json field names.
var fieldFlags = []struct{ flag, field string }{
	{"name", "name"},
	{"email", "email"},
	{"department", "department"},
	{"designation", "designation"},
	{"joining-date", "joining_date"},
	{"date-of-birth", "date_of_birth"},
	{"emergency-contact", "emergency_contact"},
	{"linkedin", "linkedin_profile"},
	{"employment-type", "employment_type"},
	{"contract-end-date", "contract_end_date"},
	{"work-location", "work_location"},
	{"remote", "is_remote"},
	{"working-hours", "preferred_working_hours"},
	{"communication", "preferred_communication"},
	{"skill", "skills"},
	{"rating", "performance_rating"},
	{"experience", "years_of_experience"},
	{"bio", "bio"},
	{"notify", "notification_preferences"},
}

func (f *formFlags) bind(fs *pflag.FlagSet, withFile bool) {
	fs.StringVar(&f.name, "name", "", "Full name")
	fs.StringVar(&f.email, "email", "", "Email address")
	fs.StringVar(&f.department, "department", "", "Department")
	fs.StringVar(&f.designation, "designation", "", "Job title")
	fs.StringVar(&f.joiningDate, "joining-date", "", "Joining date (YYYY-MM-DD)")
	fs.StringVar(&f.dateOfBirth, "date-of-birth", "", "Date of birth (YYYY-MM-DD)")
	fs.StringVar(&f.emergencyContact, "emergency-contact", "", "Emergency contact")
	fs.StringVar(&f.linkedIn, "linkedin", "", "LinkedIn profile URL")
	fs.StringVar(&f.employmentType, "employment-type", "", "Employment type")
	fs.StringVar(&f.contractEndDate, "contract-end-date", "", "Contract end date (YYYY-MM-DD)")
	fs.StringVar(&f.workLocation, "work-location", "", "Work location")
	fs.BoolVar(&f.remote, "remote", false, "Works remotely")
	fs.StringVar(&f.workingHours, "working-hours", "", "Preferred working hours (HH:MM)")
	fs.StringVar(&f.communication, "communication", "", "Preferred communication medium")
	fs.StringSliceVar(&f.skills, "skill", nil, "Skill (repeatable or comma-separated)")
	fs.IntVar(&f.rating, "rating", 0, "Performance rating (1-10)")
	fs.IntVar(&f.experience, "experience", 0, "Years of experience")
	fs.StringVar(&f.bio, "bio", "", "Short biography")
	fs.StringSliceVar(&f.notify, "notify", nil, "Notification preference (repeatable or comma-separated)")
	if withFile {
		fs.StringVarP(&f.file, "file", "f", "", "Read the form from a JSON file; flags override its values")
		fs.StringVar(&f.picture, "picture", "", "Profile picture to upload")
	}
}

// createForm builds a create form from --file (if any) and the flags that were set.
func (f *formFlags) createForm(fs *pflag.FlagSet) (types.CreateForm, error) {
	form := types.CreateForm{Skills: []string{}, NotificationPreferences: []string{}}
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return form, fmt.Errorf("failed to read form file: %w", err)
		}
		if err := schemas.Validate(schemas.EmployeeForm, data); err != nil {
			return form, fmt.Errorf("invalid form file %s: %w", f.file, err)
		}
		if err := json.Unmarshal(data, &form); err != nil {
			return form, fmt.Errorf("failed to parse form file %s: %w", f.file, err)
		}
	}

	set := func(flag string, apply func()) {
		if fs.Changed(flag) {
			apply()
		}
	}
	set("name", func() { form.Name = f.name })
	set("email", func() { form.Email = f.email })
	set("department", func() { form.Department = f.department })
	set("designation", func() { form.Designation = f.designation })
	set("joining-date", func() { form.JoiningDate = f.joiningDate })
	set("date-of-birth", func() { form.DateOfBirth = f.dateOfBirth })
	set("emergency-contact", func() { form.EmergencyContact = f.emergencyContact })
	set("linkedin", func() { form.LinkedInProfile = f.linkedIn })
	set("employment-type", func() { form.EmploymentType = f.employmentType })
	set("contract-end-date", func() { form.ContractEndDate = f.contractEndDate })
	set("work-location", func() { form.WorkLocation = f.workLocation })
	set("remote", func() { form.IsRemote = f.remote })
	set("working-hours", func() { form.PreferredWorkingHours = f.workingHours })
	set("communication", func() { form.PreferredCommunication = f.communication })
	set("skill", func() { form.Skills = append([]string{}, f.skills...) })
	set("rating", func() { form.PerformanceRating = f.rating })
	set("experience", func() { form.YearsOfExperience = f.experience })
	set("bio", func() { form.Bio = f.bio })
	set("notify", func() { form.NotificationPreferences = append([]string{}, f.notify...) })

	if form.Skills == nil {
		form.Skills = []string{}
	}
	if form.NotificationPreferences == nil {
		form.NotificationPreferences = []string{}
	}
	return form, nil
}

// openPicture opens --picture as an upload. The caller closes the file.
func (f *formFlags) openPicture() (*types.Upload, *os.File, error) {
	if f.picture == "" {
		return nil, nil, nil
	}
	file, err := os.Open(f.picture)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open profile picture: %w", err)
	}
	return &types.Upload{
		Filename:    filepath.Base(f.picture),
		ContentType: mime.TypeByExtension(filepath.Ext(f.picture)),
		Content:     file,
	}, file, nil
}

// applyToProfile overwrites the profile fields whose flags were set.
func (f *formFlags) applyToProfile(fs *pflag.FlagSet, form *types.ProfileForm) {
	set := func(flag string, apply func()) {
		if fs.Changed(flag) {
			apply()
		}
	}
	set("name", func() { form.Name = f.name })
	set("email", func() { form.Email = f.email })
	set("department", func() { form.Department = f.department })
	set("designation", func() { form.Designation = f.designation })
	set("joining-date", func() { form.JoiningDate = f.joiningDate })
	set("date-of-birth", func() { form.DateOfBirth = f.dateOfBirth })
	set("emergency-contact", func() { form.EmergencyContact = f.emergencyContact })
	set("linkedin", func() { form.LinkedInProfile = f.linkedIn })
	set("employment-type", func() { form.EmploymentType = f.employmentType })
	set("contract-end-date", func() { form.ContractEndDate = f.contractEndDate })
	set("work-location", func() { form.WorkLocation = f.workLocation })
	set("remote", func() { form.IsRemote = f.remote })
	set("working-hours", func() { form.PreferredWorkingHours = f.workingHours })
	set("communication", func() { form.PreferredCommunication = f.communication })
	set("skill", func() { form.Skills = append([]string{}, f.skills...) })
	set("rating", func() { form.PerformanceRating = f.rating })
	set("experience", func() { form.YearsOfExperience = f.experience })
	set("bio", func() { form.Bio = f.bio })
	set("notify", func() { form.NotificationPreferences = append([]string{}, f.notify...) })
}

// patch returns only the fields whose flags were set, in wire form.
func (f *formFlags) patch(fs *pflag.FlagSet) types.Patch {
	values := map[string]any{
		"name":                     f.name,
		"email":                    f.email,
		"department":               f.department,
		"designation":              f.designation,
		"joining_date":             f.joiningDate,
		"date_of_birth":            f.dateOfBirth,
		"emergency_contact":        f.emergencyContact,
		"linkedin_profile":         f.linkedIn,
		"employment_type":          f.employmentType,
		"contract_end_date":        f.contractEndDate,
		"work_location":            f.workLocation,
		"is_remote":                f.remote,
		"preferred_working_hours":  f.workingHours,
		"preferred_communication":  f.communication,
		"skills":                   forms.JoinSkills(f.skills),
		"performance_rating":       f.rating,
		"years_of_experience":      f.experience,
		"bio":                      f.bio,
		"notification_preferences": append([]string{}, f.notify...),
	}

	patch := types.Patch{}
	for _, ff := range fieldFlags {
		if fs.Changed(ff.flag) {
			patch[ff.field] = values[ff.field]
		}
	}
	return patch
}

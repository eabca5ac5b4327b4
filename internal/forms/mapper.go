// Package forms maps between the canonical employee record and the create/profile form shapes.
package forms

import (
	"slices"
	"strings"

	"github.com/jonathan/employee-directory/internal/types"
)

// skillSeparator joins skills on the wire.
const skillSeparator = ", "

// SplitSkills expands the comma-joined wire representation into trimmed, non-empty entries.
// It always returns a non-nil slice.
func SplitSkills(joined string) []string {
	skills := []string{}
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}

// JoinSkills joins skills for the wire, dropping blank entries.
// An empty list yields "" so the field can be omitted.
func JoinSkills(skills []string) string {
	kept := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			kept = append(kept, skill)
		}
	}
	return strings.Join(kept, skillSeparator)
}

// RecordToProfileForm expands a stored record into the profile editor's shape.
// Absent optional fields become "", false or 0; slices are never nil.
func RecordToProfileForm(e *types.Employee) types.ProfileForm {
	if e == nil {
		return types.ProfileForm{Skills: []string{}, NotificationPreferences: []string{}}
	}

	prefs := make([]string, 0, len(e.NotificationPreferences))
	prefs = append(prefs, e.NotificationPreferences...)

	return types.ProfileForm{
		Name:                    e.Name,
		Email:                   e.Email,
		Department:              e.Department,
		Designation:             e.Designation,
		JoiningDate:             e.JoiningDate,
		DateOfBirth:             e.DateOfBirth,
		EmergencyContact:        e.EmergencyContact,
		LinkedInProfile:         e.LinkedInProfile,
		EmploymentType:          e.EmploymentType,
		ContractEndDate:         e.ContractEndDate,
		WorkLocation:            e.WorkLocation,
		IsRemote:                e.IsRemote,
		PreferredWorkingHours:   e.PreferredWorkingHours,
		PreferredCommunication:  e.PreferredCommunication,
		Skills:                  SplitSkills(e.Skills),
		PerformanceRating:       e.PerformanceRating,
		YearsOfExperience:       e.YearsOfExperience,
		Bio:                     e.Bio,
		NotificationPreferences: prefs,
	}
}

// ProfileFormToInput converts the profile editor's values into a record payload.
// Empty optional values are left zero so they are omitted from the request.
func ProfileFormToInput(f types.ProfileForm) types.EmployeeInput {
	return types.EmployeeInput{
		Name:                    strings.TrimSpace(f.Name),
		Email:                   strings.TrimSpace(f.Email),
		Department:              f.Department,
		Designation:             strings.TrimSpace(f.Designation),
		JoiningDate:             f.JoiningDate,
		DateOfBirth:             f.DateOfBirth,
		EmergencyContact:        strings.TrimSpace(f.EmergencyContact),
		LinkedInProfile:         strings.TrimSpace(f.LinkedInProfile),
		EmploymentType:          f.EmploymentType,
		ContractEndDate:         f.ContractEndDate,
		WorkLocation:            f.WorkLocation,
		IsRemote:                f.IsRemote,
		PreferredWorkingHours:   f.PreferredWorkingHours,
		PreferredCommunication:  f.PreferredCommunication,
		Skills:                  JoinSkills(f.Skills),
		PerformanceRating:       f.PerformanceRating,
		YearsOfExperience:       f.YearsOfExperience,
		Bio:                     f.Bio,
		NotificationPreferences: nonEmpty(f.NotificationPreferences),
	}
}

// CreateFormToInput converts the add-employee form into a record payload.
// The profile picture, when chosen, is passed through untouched.
func CreateFormToInput(f types.CreateForm) types.EmployeeInput {
	in := ProfileFormToInput(types.ProfileForm{
		Name:                    f.Name,
		Email:                   f.Email,
		Department:              f.Department,
		Designation:             f.Designation,
		JoiningDate:             f.JoiningDate,
		DateOfBirth:             f.DateOfBirth,
		EmergencyContact:        f.EmergencyContact,
		LinkedInProfile:         f.LinkedInProfile,
		EmploymentType:          f.EmploymentType,
		ContractEndDate:         f.ContractEndDate,
		WorkLocation:            f.WorkLocation,
		IsRemote:                f.IsRemote,
		PreferredWorkingHours:   f.PreferredWorkingHours,
		PreferredCommunication:  f.PreferredCommunication,
		Skills:                  f.Skills,
		PerformanceRating:       f.PerformanceRating,
		YearsOfExperience:       f.YearsOfExperience,
		Bio:                     f.Bio,
		NotificationPreferences: f.NotificationPreferences,
	})
	in.ProfilePicture = f.ProfilePicture
	return in
}

// nonEmpty returns nil for an empty list so it is omitted, and a copy otherwise.
func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return slices.Clone(values)
}

// Initials returns the upper-cased first letter of each word in name.
// Example: "Linda Myers" -> "LM".
func Initials(name string) string {
	var sb strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)
		sb.WriteString(strings.ToUpper(string(r[0])))
	}
	return sb.String()
}

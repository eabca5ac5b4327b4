package forms

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/jonathan/employee-directory/internal/types"
)

// profileWire is the wire view of every editable field, with nothing omitted,
// so that a cleared field shows up as a change rather than as an absence.
type profileWire struct {
	Name                    string   `json:"name"`
	Email                   string   `json:"email"`
	Department              string   `json:"department"`
	Designation             string   `json:"designation"`
	JoiningDate             string   `json:"joining_date"`
	DateOfBirth             string   `json:"date_of_birth"`
	EmergencyContact        string   `json:"emergency_contact"`
	LinkedInProfile         string   `json:"linkedin_profile"`
	EmploymentType          string   `json:"employment_type"`
	ContractEndDate         string   `json:"contract_end_date"`
	WorkLocation            string   `json:"work_location"`
	IsRemote                bool     `json:"is_remote"`
	PreferredWorkingHours   string   `json:"preferred_working_hours"`
	PreferredCommunication  string   `json:"preferred_communication"`
	Skills                  string   `json:"skills"`
	PerformanceRating       int      `json:"performance_rating"`
	YearsOfExperience       int      `json:"years_of_experience"`
	Bio                     string   `json:"bio"`
	NotificationPreferences []string `json:"notification_preferences"`
}

func toWire(f types.ProfileForm) profileWire {
	in := ProfileFormToInput(f)
	prefs := in.NotificationPreferences
	if prefs == nil {
		prefs = []string{}
	}
	return profileWire{
		Name:                    in.Name,
		Email:                   in.Email,
		Department:              in.Department,
		Designation:             in.Designation,
		JoiningDate:             in.JoiningDate,
		DateOfBirth:             in.DateOfBirth,
		EmergencyContact:        in.EmergencyContact,
		LinkedInProfile:         in.LinkedInProfile,
		EmploymentType:          in.EmploymentType,
		ContractEndDate:         in.ContractEndDate,
		WorkLocation:            in.WorkLocation,
		IsRemote:                in.IsRemote,
		PreferredWorkingHours:   in.PreferredWorkingHours,
		PreferredCommunication:  in.PreferredCommunication,
		Skills:                  in.Skills,
		PerformanceRating:       in.PerformanceRating,
		YearsOfExperience:       in.YearsOfExperience,
		Bio:                     in.Bio,
		NotificationPreferences: prefs,
	}
}

// ProfileChanges returns the partial update that turns original into edited.
// Only fields whose value differs are included, and a field the user cleared is
// sent explicitly as its empty value instead of being dropped.
func ProfileChanges(original *types.Employee, edited types.ProfileForm) (types.Patch, error) {
	before, err := json.Marshal(toWire(RecordToProfileForm(original)))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stored record: %w", err)
	}
	after, err := json.Marshal(toWire(edited))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edited profile: %w", err)
	}

	merge, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return nil, fmt.Errorf("failed to diff profile: %w", err)
	}

	patch := types.Patch{}
	if err := json.Unmarshal(merge, &patch); err != nil {
		return nil, fmt.Errorf("failed to decode profile diff: %w", err)
	}
	return patch, nil
}

// Package types provides type definitions for the employee records exchanged with the record store
// and the form shapes used to create and edit them.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"io"
	"math"
)

// Employee is the canonical employee record as persisted by the record store.
// The store owns ID, CollectionID, CollectionName, Created and Updated.
type Employee struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collectionId,omitempty"`
	CollectionName string `json:"collectionName,omitempty"`
	Created        string `json:"created,omitempty"`
	Updated        string `json:"updated,omitempty"`

	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	JoiningDate string `json:"joining_date"`

	DateOfBirth             string   `json:"date_of_birth,omitempty"`
	EmergencyContact        string   `json:"emergency_contact,omitempty"`
	LinkedInProfile         string   `json:"linkedin_profile,omitempty"`
	EmploymentType          string   `json:"employment_type,omitempty"`
	ContractEndDate         string   `json:"contract_end_date,omitempty"`
	WorkLocation            string   `json:"work_location,omitempty"`
	IsRemote                bool     `json:"is_remote,omitempty"`
	PreferredWorkingHours   string   `json:"preferred_working_hours,omitempty"`
	PreferredCommunication  string   `json:"preferred_communication,omitempty"`
	Skills                  string   `json:"skills,omitempty"` // comma-joined on the wire
	PerformanceRating       int      `json:"performance_rating,omitempty"`
	YearsOfExperience       int      `json:"years_of_experience,omitempty"`
	ProfilePicture          string   `json:"profile_picture,omitempty"`
	Bio                     string   `json:"bio,omitempty"`
	NotificationPreferences []string `json:"notification_preferences,omitempty"`
}

// EmployeeInput is the payload sent to create an employee. It never carries an ID.
// Optional fields tagged omitempty are left out of the request when empty.
type EmployeeInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	JoiningDate string `json:"joining_date"`

	DateOfBirth             string   `json:"date_of_birth,omitempty"`
	EmergencyContact        string   `json:"emergency_contact,omitempty"`
	LinkedInProfile         string   `json:"linkedin_profile,omitempty"`
	EmploymentType          string   `json:"employment_type,omitempty"`
	ContractEndDate         string   `json:"contract_end_date,omitempty"`
	WorkLocation            string   `json:"work_location,omitempty"`
	IsRemote                bool     `json:"is_remote,omitempty"`
	PreferredWorkingHours   string   `json:"preferred_working_hours,omitempty"`
	PreferredCommunication  string   `json:"preferred_communication,omitempty"`
	Skills                  string   `json:"skills,omitempty"`
	PerformanceRating       int      `json:"performance_rating,omitempty"`
	YearsOfExperience       int      `json:"years_of_experience,omitempty"`
	Bio                     string   `json:"bio,omitempty"`
	NotificationPreferences []string `json:"notification_preferences,omitempty"`

	// ProfilePicture is passed through to the store as a multipart file part.
	ProfilePicture *Upload `json:"-"`
}

// Upload references a file chosen by the user. The content is streamed as-is.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// ToEmployee returns the record the store would hold after creating this input under id.
func (in EmployeeInput) ToEmployee(id string) Employee {
	return Employee{
		ID:                      id,
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
		NotificationPreferences: append([]string(nil), in.NotificationPreferences...),
	}
}

// Patch is a partial update: only the keys present are changed by the store.
type Patch map[string]any

// EmployeePage is one page of a list response.
type EmployeePage struct {
	Page       int        `json:"page"`
	PerPage    int        `json:"perPage"`
	TotalItems int        `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
	Items      []Employee `json:"items"`
}

// ExpectedTotalPages returns ceil(totalItems/perPage), or 0 when perPage is not positive.
func ExpectedTotalPages(totalItems, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalItems) / float64(perPage)))
}

// Dashboard aggregates the headline numbers shown on the landing page.
type Dashboard struct {
	TotalEmployees  int        `json:"total_employees"`
	AddedThisMonth  int        `json:"added_this_month"`
	RecentlyAdded   []Employee `json:"recently_added"`
	MonthStartsOn   string     `json:"month_starts_on"`
	DepartmentCount int        `json:"department_count"`
}

package types

// CreateForm holds the values submitted from the add-employee form.
// Multi-valued fields are always slices; the form never carries an ID.
type CreateForm struct {
	Name        string `json:"name" form:"name" validate:"required,min=2"`
	Email       string `json:"email" form:"email" validate:"required,emailaddr"`
	Department  string `json:"department" form:"department" validate:"required,department"`
	Designation string `json:"designation" form:"designation" validate:"required"`
	JoiningDate string `json:"joining_date" form:"joining_date" validate:"required,datetime=2006-01-02"`

	DateOfBirth             string   `json:"date_of_birth" form:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	EmergencyContact        string   `json:"emergency_contact" form:"emergency_contact"`
	LinkedInProfile         string   `json:"linkedin_profile" form:"linkedin_profile" validate:"omitempty,url"`
	EmploymentType          string   `json:"employment_type" form:"employment_type" validate:"omitempty,employment_type"`
	ContractEndDate         string   `json:"contract_end_date" form:"contract_end_date" validate:"omitempty,datetime=2006-01-02"`
	WorkLocation            string   `json:"work_location" form:"work_location" validate:"omitempty,work_location"`
	IsRemote                bool     `json:"is_remote" form:"is_remote"`
	PreferredWorkingHours   string   `json:"preferred_working_hours" form:"preferred_working_hours" validate:"omitempty,datetime=15:04"`
	PreferredCommunication  string   `json:"preferred_communication" form:"preferred_communication" validate:"omitempty,communication"`
	Skills                  []string `json:"skills" form:"skills" validate:"uniqueskills,dive,required"`
	PerformanceRating       int      `json:"performance_rating" form:"performance_rating" validate:"omitempty,min=1,max=10"`
	YearsOfExperience       int      `json:"years_of_experience" form:"years_of_experience" validate:"min=0"`
	Bio                     string   `json:"bio" form:"bio"`
	NotificationPreferences []string `json:"notification_preferences" form:"notification_preferences" validate:"dive,notification"`

	ProfilePicture *Upload `json:"-" form:"-" validate:"-"`
}

// ProfileForm holds the values of the employee profile editor.
// It mirrors CreateForm without the file upload; every field is always populated.
type ProfileForm struct {
	Name        string `json:"name" form:"name" validate:"required,min=2"`
	Email       string `json:"email" form:"email" validate:"required,emailaddr"`
	Department  string `json:"department" form:"department" validate:"required,department"`
	Designation string `json:"designation" form:"designation" validate:"required"`
	JoiningDate string `json:"joining_date" form:"joining_date" validate:"required,datetime=2006-01-02"`

	DateOfBirth             string   `json:"date_of_birth" form:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	EmergencyContact        string   `json:"emergency_contact" form:"emergency_contact"`
	LinkedInProfile         string   `json:"linkedin_profile" form:"linkedin_profile" validate:"omitempty,url"`
	EmploymentType          string   `json:"employment_type" form:"employment_type" validate:"omitempty,employment_type"`
	ContractEndDate         string   `json:"contract_end_date" form:"contract_end_date" validate:"omitempty,datetime=2006-01-02"`
	WorkLocation            string   `json:"work_location" form:"work_location" validate:"omitempty,work_location"`
	IsRemote                bool     `json:"is_remote" form:"is_remote"`
	PreferredWorkingHours   string   `json:"preferred_working_hours" form:"preferred_working_hours" validate:"omitempty,datetime=15:04"`
	PreferredCommunication  string   `json:"preferred_communication" form:"preferred_communication" validate:"omitempty,communication"`
	Skills                  []string `json:"skills" form:"skills" validate:"uniqueskills,dive,required"`
	PerformanceRating       int      `json:"performance_rating" form:"performance_rating" validate:"omitempty,min=1,max=10"`
	YearsOfExperience       int      `json:"years_of_experience" form:"years_of_experience" validate:"min=0"`
	Bio                     string   `json:"bio" form:"bio"`
	NotificationPreferences []string `json:"notification_preferences" form:"notification_preferences" validate:"dive,notification"`
}

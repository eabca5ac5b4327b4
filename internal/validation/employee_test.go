package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/employee-directory/internal/types"
)

func validCreateForm() types.CreateForm {
	return types.CreateForm{
		Name:                    "John Doe",
		Email:                   "john.doe@company.com",
		Department:              types.DepartmentEngineering,
		Designation:             "Senior Software Engineer",
		JoiningDate:             "2024-01-15",
		Skills:                  []string{},
		NotificationPreferences: []string{},
	}
}

func TestValidateCreate_Valid(t *testing.T) {
	v := New()
	assert.Empty(t, v.ValidateCreate(validCreateForm()))
}

func TestValidateCreate_AllEmpty(t *testing.T) {
	v := New()
	errs := v.ValidateCreate(types.CreateForm{})

	assert.ElementsMatch(t, RequiredFields, errs.Fields())
	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "Department is required", errs["department"])
	assert.Equal(t, "Designation is required", errs["designation"])
	assert.Equal(t, "Joining Date is required", errs["joining_date"])
}

func TestValidateCreate_WhitespaceIsEmpty(t *testing.T) {
	v := New()
	f := validCreateForm()
	f.Name = "   "
	f.Designation = "\t"

	errs := v.ValidateCreate(f)
	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Designation is required", errs["designation"])
	assert.Equal(t, "   ", f.Name, "caller's form is untouched")
}

func TestValidateCreate_Email(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"john.doe@company.com", true},
		{"JANE+hr@sub.example.org", true},
		{"john@company", false},
		{"john.company.com", false},
		{"john@company.c", false},
		{"john doe@company.com", false},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			f := validCreateForm()
			f.Email = tt.email
			errs := v.ValidateCreate(f)
			if tt.valid {
				assert.NotContains(t, errs, "email")
			} else {
				assert.Equal(t, "Invalid email address", errs["email"])
			}
		})
	}
}

func TestValidateCreate_OptionalFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*types.CreateForm)
		field string
		msg   string
	}{
		{"bad department", func(f *types.CreateForm) { f.Department = "Legal" }, "department", ""},
		{"bad joining date", func(f *types.CreateForm) { f.JoiningDate = "15/01/2024" }, "joining_date", "Joining Date must be a valid date (YYYY-MM-DD)"},
		{"bad rating", func(f *types.CreateForm) { f.PerformanceRating = 11 }, "performance_rating", "Performance Rating must be between 1 and 10"},
		{"negative years", func(f *types.CreateForm) { f.YearsOfExperience = -1 }, "years_of_experience", "Years Of Experience cannot be negative"},
		{"bad working hours", func(f *types.CreateForm) { f.PreferredWorkingHours = "9am" }, "preferred_working_hours", "Preferred Working Hours must be a valid time (HH:MM)"},
		{"bad linkedin", func(f *types.CreateForm) { f.LinkedInProfile = "not a url" }, "linkedin_profile", "Linkedin Profile must be a valid URL"},
		{"bad employment type", func(f *types.CreateForm) { f.EmploymentType = "Freelance" }, "employment_type", ""},
		{"bad notification", func(f *types.CreateForm) { f.NotificationPreferences = []string{"fax"} }, "notification_preferences", ""},
		{"duplicate skills", func(f *types.CreateForm) { f.Skills = []string{"JavaScript", "javascript"} }, "skills", "This skill already exists"},
		{"blank skill", func(f *types.CreateForm) { f.Skills = []string{"Go", " "} }, "skills", "Skills cannot contain empty entries"},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validCreateForm()
			tt.edit(&f)
			errs := v.ValidateCreate(f)
			require.Contains(t, errs, tt.field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, errs[tt.field])
			}
			assert.Len(t, errs, 1)
		})
	}
}

func TestValidateCreate_EmptyOptionalFieldsPass(t *testing.T) {
	v := New()
	f := validCreateForm()
	f.Skills = nil
	f.NotificationPreferences = nil
	assert.Empty(t, v.ValidateCreate(f))
}

func TestValidateProfile(t *testing.T) {
	v := New()
	errs := v.ValidateProfile(types.ProfileForm{
		Name:        "J",
		Email:       "jane@company.com",
		Department:  types.DepartmentHR,
		Designation: "Recruiter",
		JoiningDate: "2023-02-01",
	})
	assert.Equal(t, Errors{"name": "Name must be at least 2 characters"}, errs)
}

func TestNewError(t *testing.T) {
	assert.NoError(t, NewError(Errors{}))

	err := NewError(Errors{"email": "Invalid email address"})
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "validation failed: email: Invalid email address", err.Error())
}

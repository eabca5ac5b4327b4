// Package validation checks employee form values before they are mapped and submitted.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/employee-directory/internal/types"
)

// ErrDuplicateSkill is returned when a skill already exists in the list (case-insensitive).
var ErrDuplicateSkill = errors.New("This skill already exists") //nolint:revive,staticcheck // shown to users as-is

// ErrEmptySkill is returned when the candidate skill is blank.
var ErrEmptySkill = errors.New("Skill cannot be empty") //nolint:revive,staticcheck // shown to users as-is

// RequiredFields are the fields every employee must have.
var RequiredFields = []string{"name", "email", "department", "designation", "joining_date"}

var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Errors maps a field name to a single message. An empty map means the form is valid.
type Errors map[string]string

// Fields returns the field names with errors, sorted.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// String renders the errors as "field: message" pairs in field order.
func (e Errors) String() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return strings.Join(parts, "; ")
}

// Validator runs the employee form rules.
type Validator struct {
	validate *validator.Validate
	caser    cases.Caser
}

// New creates a Validator with the employee-specific rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "emailaddr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "department", oneOf(types.Departments))
	mustRegister(v, "employment_type", oneOf(types.EmploymentTypes))
	mustRegister(v, "work_location", oneOf(types.WorkLocations))
	mustRegister(v, "communication", oneOf(types.CommunicationMedia))
	mustRegister(v, "notification", oneOf(types.NotificationPreferences))
	mustRegister(v, "uniqueskills", func(fl validator.FieldLevel) bool {
		skills, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		return !hasDuplicateSkill(skills)
	})

	return &Validator{
		validate: v,
		caser:    cases.Title(language.English),
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return types.IsOneOf(fl.Field().String(), allowed)
	}
}

// ValidateCreate checks the add-employee form.
func (v *Validator) ValidateCreate(f types.CreateForm) Errors {
	NormalizeCreate(&f)
	return v.collect(v.validate.Struct(f))
}

// ValidateProfile checks the profile editor's values.
func (v *Validator) ValidateProfile(f types.ProfileForm) Errors {
	NormalizeProfile(&f)
	return v.collect(v.validate.Struct(f))
}

// NormalizeCreate trims free-text fields in place.
func NormalizeCreate(f *types.CreateForm) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Designation = strings.TrimSpace(f.Designation)
	f.JoiningDate = strings.TrimSpace(f.JoiningDate)
	f.Skills = trimAll(f.Skills)
}

// NormalizeProfile trims free-text fields in place.
func NormalizeProfile(f *types.ProfileForm) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Designation = strings.TrimSpace(f.Designation)
	f.JoiningDate = strings.TrimSpace(f.JoiningDate)
	f.Skills = trimAll(f.Skills)
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// collect turns validator errors into one message per field; the first failure wins.
func (v *Validator) collect(err error) Errors {
	result := Errors{}
	if err == nil {
		return result
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		result["_form"] = "Invalid input"
		return result
	}

	for _, fe := range validationErrors {
		field := baseField(fe.Field())
		if _, exists := result[field]; exists {
			continue
		}
		result[field] = v.message(field, fe)
	}
	return result
}

// baseField strips a slice index, e.g. "skills[2]" -> "skills".
func baseField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

func (v *Validator) label(field string) string {
	return v.caser.String(strings.ReplaceAll(field, "_", " "))
}

func (v *Validator) message(field string, fe validator.FieldError) string {
	label := v.label(field)

	switch fe.Tag() {
	case "required":
		if field == "skills" {
			return "Skills cannot contain empty entries"
		}
		return fmt.Sprintf("%s is required", label)
	case "emailaddr":
		return "Invalid email address"
	case "min":
		switch field {
		case "name":
			return "Name must be at least 2 characters"
		case "years_of_experience":
			return "Years Of Experience cannot be negative"
		case "performance_rating":
			return "Performance Rating must be between 1 and 10"
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if field == "performance_rating" {
			return "Performance Rating must be between 1 and 10"
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "datetime":
		if fe.Param() == "15:04" {
			return fmt.Sprintf("%s must be a valid time (HH:MM)", label)
		}
		return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", label)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "department":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(types.Departments, ", "))
	case "employment_type":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(types.EmploymentTypes, ", "))
	case "work_location":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(types.WorkLocations, ", "))
	case "communication":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(types.CommunicationMedia, ", "))
	case "notification":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(types.NotificationPreferences, ", "))
	case "uniqueskills":
		return ErrDuplicateSkill.Error()
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

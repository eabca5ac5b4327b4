package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CreatePayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantValid bool
		wantField string
	}{
		{
			name:      "required only",
			payload:   `{"name":"John Doe","email":"john.doe@company.com","department":"Engineering","designation":"Engineer","joining_date":"2024-01-15"}`,
			wantValid: true,
		},
		{
			name:      "full record",
			payload:   `{"name":"John Doe","email":"j@c.io","department":"HR","designation":"Recruiter","joining_date":"2024-01-15","skills":"Go, SQL","is_remote":true,"performance_rating":7,"notification_preferences":["email_notifications"],"employment_type":"Contract","contract_end_date":"2025-01-01"}`,
			wantValid: true,
		},
		{
			name:      "missing required",
			payload:   `{"name":"John Doe"}`,
			wantField: "(root)",
		},
		{
			name:      "skills as array",
			payload:   `{"name":"John Doe","email":"j@c.io","department":"HR","designation":"R","joining_date":"2024-01-15","skills":["Go"]}`,
			wantField: "skills",
		},
		{
			name:      "empty skills string",
			payload:   `{"name":"John Doe","email":"j@c.io","department":"HR","designation":"R","joining_date":"2024-01-15","skills":""}`,
			wantField: "skills",
		},
		{
			name:      "client supplied id",
			payload:   `{"id":"abc","name":"John Doe","email":"j@c.io","department":"HR","designation":"R","joining_date":"2024-01-15"}`,
			wantField: "(root)",
		},
		{
			name:      "rating out of range",
			payload:   `{"name":"John Doe","email":"j@c.io","department":"HR","designation":"R","joining_date":"2024-01-15","performance_rating":11}`,
			wantField: "performance_rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(EmployeeCreate, []byte(tt.payload))
			if tt.wantValid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, EmployeeCreate, verr.Schema)

			fields := make([]string, 0, len(verr.Errors))
			for _, fe := range verr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidate_PatchPayload(t *testing.T) {
	assert.NoError(t, Validate(EmployeePatch, []byte(`{"is_remote":true}`)))
	assert.NoError(t, Validate(EmployeePatch, []byte(`{"bio":"","skills":"","notification_preferences":[]}`)))
	assert.NoError(t, Validate(EmployeePatch, []byte(`{}`)))

	assert.Error(t, Validate(EmployeePatch, []byte(`{"id":"other"}`)))
	assert.Error(t, Validate(EmployeePatch, []byte(`{"department":"Legal"}`)))
	assert.Error(t, Validate(EmployeePatch, []byte(`{"skills":"Go,,SQL"}`)))
}

func TestValidateValue(t *testing.T) {
	err := ValidateValue(EmployeePatch, map[string]any{"performance_rating": 4})
	assert.NoError(t, err)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("employee/missing.json", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "employee/missing.json")
}

func TestValidate_FormFile(t *testing.T) {
	assert.NoError(t, Validate(EmployeeForm, []byte(`{"name":"Ada","skills":["Go","Rust"],"is_remote":true}`)))
	assert.NoError(t, Validate(EmployeeForm, []byte(`{"department":"Legal"}`)), "values are the validator's job")

	err := Validate(EmployeeForm, []byte(`{"joiningDate":"2024-01-15"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, EmployeeForm, verr.Schema)

	err = Validate(EmployeeForm, []byte(`{"skills":"Go, Rust"}`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "skills", verr.Errors[0].Field)
}

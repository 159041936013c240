package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email,allowed_email_domain"`
	Password  string `json:"password" validate:"required,min=8"`
}

type siteInput struct {
	Sites []string `json:"amazon_site" validate:"omitempty,max=50,dive,site_code"`
	Code  string   `json:"code" validate:"required,reset_code"`
}

func TestValidate_FieldErrorsUseJSONNames(t *testing.T) {
	v := New([]string{"@dtgpower.com", " @Amazon.com "})

	err := v.Validate(&signupInput{FirstName: "A", Email: "ann@gmail.com", Password: "short"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be at least 2 characters long", vErr.Errors["first_name"])
	assert.Contains(t, vErr.Errors["email"], "Email domain is not allowed")
	assert.Contains(t, vErr.Errors["email"], "@amazon.com")
	assert.Equal(t, "Must be at least 8 characters long", vErr.Errors["password"])
}

func TestValidate_AllowedDomainIsCaseInsensitive(t *testing.T) {
	v := New([]string{"@dtgpower.com"})
	assert.NoError(t, v.Validate(&signupInput{FirstName: "Ann", Email: "Ann@DTGPower.com", Password: "password1"}))
}

func TestValidate_CustomRules(t *testing.T) {
	v := New([]string{"@amazon.com"})

	tests := []struct {
		name      string
		in        siteInput
		wantField string
	}{
		{name: "valid", in: siteInput{Sites: []string{"Amazon CTZ", "DEN2"}, Code: "012345"}},
		{name: "blank site", in: siteInput{Sites: []string{"CTZ", "  "}, Code: "012345"}, wantField: "amazon_site[1]"},
		{name: "prefix only", in: siteInput{Sites: []string{"Amazon"}, Code: "012345"}, wantField: "amazon_site[0]"},
		{name: "short code", in: siteInput{Code: "12345"}, wantField: "code"},
		{name: "non numeric code", in: siteInput{Code: "12345a"}, wantField: "code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.in)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			vErr, ok := err.(*ValidationError)
			require.True(t, ok, "expected *ValidationError, got %v", err)
			assert.Contains(t, vErr.Errors, tt.wantField)
		})
	}
}

package validation

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

type sample struct {
	FirstName string `json:"firstName" validate:"required,max=5"`
	EmailID   string `json:"emailId" validate:"required,email"`
	Role      string `json:"role" validate:"omitempty,oneof=A B"`
	Hidden    string `json:"-" validate:"required"`
}

func TestStructReportsEveryField(t *testing.T) {
	err := Struct(sample{FirstName: "toolong", EmailID: "nope", Role: "C"})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.ElementsMatch(t, []string{
		"firstName must be at most 5 characters",
		"emailId must be a valid email address",
		"role must be one of [A B]",
		"Hidden is required",
	}, domainErr.Violations)
}

func TestStructAcceptsValid(t *testing.T) {
	assert.NoError(t, Struct(sample{FirstName: "Ann", EmailID: "a@b.com", Hidden: "x"}))
	assert.Nil(t, Check(sample{FirstName: "Ann", EmailID: "a@b.com", Role: "A", Hidden: "x"}))
}

func TestPasswordViolations(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"valid", "Secret1!", nil},
		{"unicode symbol counts", "Secret1€", nil},
		{"too short", "Se1!", []string{"password must be at least 8 characters"}},
		{"missing upper and symbol", "secret123", []string{
			"password must contain an uppercase letter",
			"password must contain a symbol",
		}},
		{"empty breaks every rule", "", []string{
			"password must be at least 8 characters",
			"password must contain an uppercase letter",
			"password must contain a lowercase letter",
			"password must contain a digit",
			"password must contain a symbol",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordViolations(tt.password))
		})
	}
}

func TestPasswordError(t *testing.T) {
	assert.NoError(t, Password("Secret1!"))

	err := apperrors.ToDomainError(Password("weak"))
	assert.Equal(t, apperrors.CodeValidation, err.Code)
	assert.Len(t, err.Violations, 4)
}

type nameUpdate struct {
	FirstName *string `json:"firstName" validate:"omitnil,notblank,max=50"`
	LastName  string  `json:"lastName" validate:"required,notblank"`
}

func TestNotBlank(t *testing.T) {
	blank := "   "
	empty := ""
	name := "Ann"

	assert.Equal(t, []string{"firstName must not be blank", "lastName must not be blank"},
		Check(nameUpdate{FirstName: &blank, LastName: " \t "}))
	assert.Equal(t, []string{"firstName must not be blank"}, Check(nameUpdate{FirstName: &empty, LastName: "Lee"}))
	assert.Nil(t, Check(nameUpdate{FirstName: &name, LastName: "Lee"}))
	assert.Nil(t, Check(nameUpdate{LastName: "Lee"}))
}

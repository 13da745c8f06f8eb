package user

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/usergate/pkg/errors"
)

func TestValidate(t *testing.T) {
	valid := Payload{Name: "Ada", Email: "ada@example.com", Department: "R&D"}

	cases := []struct {
		name    string
		payload *Payload
		field   string
		message string
	}{
		{"missing record", nil, "user", "user data is required"},
		{"empty name", &Payload{Email: "a@b", Department: "HR"}, "name", "name is required"},
		{"empty email", &Payload{Name: "Ada", Department: "HR"}, "email", "email is required"},
		{"empty department", &Payload{Name: "Ada", Email: "a@b"}, "department", "department is required"},
		{"email without at", &Payload{Name: "Ada", Email: "ada.example.com", Department: "HR"}, "email", "invalid email address"},
		{"short name", &Payload{Name: "A", Email: "a@b", Department: "HR"}, "name", "name must be at least 2 characters"},
		// first failing rule wins
		{"empty email and short name", &Payload{Name: "A", Department: "HR"}, "email", "email is required"},
		{"bad email and short name", &Payload{Name: "A", Email: "nope", Department: "HR"}, "email", "invalid email address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.payload)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, "invalid_input"))
			require.Equal(t, tc.field, apperrors.FieldOf(err))
			require.Equal(t, tc.message, err.Error())
		})
	}

	require.NoError(t, Validate(&valid))
	require.NoError(t, Validate(&Payload{Name: "Zé", Email: "z@e", Department: "Ops"}))
}

func TestValidateKeepsWhitespace(t *testing.T) {
	require.NoError(t, Validate(&Payload{Name: "A ", Email: "a@b", Department: "HR"}))
	require.NoError(t, Validate(&Payload{Name: "Ada", Email: "a@b", Department: " "}))
}

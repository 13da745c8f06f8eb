package user

import (
	"strings"
	"unicode/utf8"

	apperrors "github.com/yanqian/usergate/pkg/errors"
)

const minNameLen = 2

// Validate applies the field rules in order and returns the first violation as
// an invalid_input error naming the field.
func Validate(p *Payload) error {
	switch {
	case p == nil:
		return apperrors.Invalid("user", "user data is required")
	case p.Name == "":
		return apperrors.Invalid("name", "name is required")
	case p.Email == "":
		return apperrors.Invalid("email", "email is required")
	case p.Department == "":
		return apperrors.Invalid("department", "department is required")
	case !strings.Contains(p.Email, "@"):
		return apperrors.Invalid("email", "invalid email address")
	case utf8.RuneCountInString(p.Name) < minNameLen:
		return apperrors.Invalid("name", "name must be at least 2 characters")
	}
	return nil
}

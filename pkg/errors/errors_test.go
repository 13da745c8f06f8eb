package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap("user_error", "failed to list users", io.ErrUnexpectedEOF)
	require.True(t, IsCode(err, "user_error"))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, "failed to list users: unexpected EOF", err.Error())
}

func TestInvalidCarriesField(t *testing.T) {
	err := fmt.Errorf("create: %w", Invalid("email", "invalid email address"))
	require.True(t, IsCode(err, "invalid_input"))
	require.Equal(t, "email", FieldOf(err))
	require.Empty(t, FieldOf(io.EOF))
}

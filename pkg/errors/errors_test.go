package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, "VALIDATION_ERROR"},
		{http.StatusUnauthorized, "UNAUTHORIZED"},
		{http.StatusForbidden, "FORBIDDEN"},
		{http.StatusNotFound, "NOT_FOUND"},
		{http.StatusInternalServerError, "INTERNAL_ERROR"},
		{http.StatusBadGateway, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		err := FromStatus(tc.status, "")
		assert.Equal(t, tc.code, err.Code)
		assert.Equal(t, tc.status, err.Status)
	}
}

func TestFromStatusKeepsServerMessage(t *testing.T) {
	err := FromStatus(http.StatusForbidden, "pas autorisé")
	assert.Equal(t, "pas autorisé", err.Message)

	err = FromStatus(http.StatusForbidden, "")
	assert.Equal(t, ErrForbidden.Message, err.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	err := Clone(ErrInvalidCredentials, "nope")
	assert.True(t, Is(err, ErrInvalidCredentials))
	assert.False(t, Is(err, ErrNetwork))

	wrapped := fmt.Errorf("context: %w", Wrap(fmt.Errorf("refused"), ErrNetwork.Code, 0, "unreachable"))
	assert.True(t, Is(wrapped, ErrNetwork))

	assert.False(t, Is(nil, ErrNetwork))
	assert.False(t, Is(fmt.Errorf("plain"), ErrNetwork))
}

func TestErrorFormatting(t *testing.T) {
	base := New("X", 400, "message")
	assert.Equal(t, "message", base.Error())

	wrapped := Wrap(fmt.Errorf("cause"), "X", 400, "message")
	assert.Equal(t, "message: cause", wrapped.Error())
	assert.EqualError(t, wrapped.Unwrap(), "cause")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrNotFound, "")
	assert.Equal(t, typed, FromError(typed))

	plain := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
}

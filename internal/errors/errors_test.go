// FilePath: internal/errors/errors_test.go
package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorEnvelope(t *testing.T) {
	apiErr := NewAuthError("notAuthenticated", nil)

	payload, err := json.Marshal(apiErr)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "authentication", envelope["type"])
	assert.Equal(t, "notAuthenticated", envelope["error"])
	_, hasCode := envelope["code"]
	assert.False(t, hasCode, "http status must not leak into the body")
}

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		err  *APIError
		code int
	}{
		{NewValidationError("v", nil), http.StatusBadRequest},
		{NewAuthError("a", nil), http.StatusUnauthorized},
		{NewNotFoundError("n", nil), http.StatusNotFound},
		{NewVendorError("ve", nil), http.StatusInternalServerError},
		{NewTransportError("t", nil), http.StatusInternalServerError},
		{NewDatabaseError("d", nil), http.StatusInternalServerError},
		{NewInternalError("i", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code, string(tt.err.Type))
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("x", nil)))
	assert.True(t, IsValidation(NewValidationError("x", nil)))
	assert.True(t, IsAuth(NewAuthError("x", nil)))
	assert.False(t, IsNotFound(NewAuthError("x", nil)))
	assert.False(t, IsAuth(assert.AnError))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := assert.AnError
	apiErr := NewVendorError("wrapped", cause)
	assert.Equal(t, cause, apiErr.Unwrap())
	assert.Contains(t, apiErr.Error(), "wrapped")
}

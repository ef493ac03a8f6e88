package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/auth-service/internal/core/domain"
)

func runErrorHandler(t *testing.T, err error) (*httptest.ResponseRecorder, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
	NewHTTPErrorHandler(zerolog.New(&buf))(err, c)
	return rec, &buf
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: domain.ErrInvalidCredentials, want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: bad email", domain.ErrInvalidCredentials), want: http.StatusBadRequest},
		{err: domain.ErrIncorrectCredentials, want: http.StatusUnauthorized},
		{err: domain.ErrUserAlreadyExists, want: http.StatusConflict},
		{err: domain.ErrUserNotFound, want: http.StatusNotFound},
		{err: domain.ErrMissingToken, want: http.StatusBadRequest},
		{err: domain.ErrInvalidToken, want: http.StatusUnauthorized},
		{err: echo.NewHTTPError(http.StatusUnprocessableEntity, "bad"), want: http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		rec, logs := runErrorHandler(t, tc.err)
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
		assert.Zero(t, logs.Len(), "expected errors are not logged")
	}
}

func TestErrorHandler_UnexpectedIsOpaqueAndLogged(t *testing.T) {
	cause := oops.In("redis").Code("CHALLENGE_PUT_FAILED").With("key_prefix", "two_fa_code:").Wrap(errors.New("connection refused"))
	err := fmt.Errorf("%w: store challenge: %w", domain.ErrUnexpected, cause)

	rec, logs := runErrorHandler(t, err)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unexpected error", body.Error)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry["error"], "connection refused")
	assert.Equal(t, "CHALLENGE_PUT_FAILED", entry["code"])
	assert.Equal(t, "two_fa_code:", entry["key_prefix"])
}

func TestErrorHandler_UnexpectedWinsOverWrappedSentinel(t *testing.T) {
	corrupt := oops.In("redis").Code("CHALLENGE_DECODE_FAILED").With("field", "login_attempt_id").
		Wrap(fmt.Errorf("%w: bad login attempt id", domain.ErrInvalidCredentials))
	err := fmt.Errorf("%w: consume challenge: %w", domain.ErrUnexpected, corrupt)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	rec, logs := runErrorHandler(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unexpected error")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "CHALLENGE_DECODE_FAILED", entry["code"])
	assert.Equal(t, "login_attempt_id", entry["field"])
}

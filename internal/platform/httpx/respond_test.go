package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customtruckbeds/site/internal/quote"
	"github.com/customtruckbeds/site/internal/shared"
)

func TestRespondErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&quote.ValidationError{Fields: quote.FieldErrors{"email": "Please enter a valid email address"}}, http.StatusUnprocessableEntity},
		{quote.ErrSubmissionInProgress, http.StatusConflict},
		{&quote.DispatchError{Err: errors.New("connection refused")}, http.StatusBadGateway},
		{fmt.Errorf("wrap: %w", shared.ErrCSRFTokenMismatch), http.StatusForbidden},
		{shared.ErrIdempotencyConflict, http.StatusConflict},
		{fmt.Errorf("%w: eof", ErrBadRequest), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		res := httptest.NewRecorder()
		RespondError(res, tc.err)
		assert.Equal(t, tc.status, res.Code, tc.err.Error())
		assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
	}
}

func TestRespondErrorCarriesFieldErrors(t *testing.T) {
	res := httptest.NewRecorder()
	RespondError(res, &quote.ValidationError{Fields: quote.FieldErrors{"phone": "Phone is required"}})

	var problem ProblemDetail
	require.NoError(t, json.NewDecoder(res.Body).Decode(&problem))
	assert.Equal(t, http.StatusUnprocessableEntity, problem.Status)
	assert.Equal(t, "Phone is required", problem.Errors["phone"])
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &target))
	assert.Equal(t, "a@b.co", target.Email)

	for _, body := range []string{`{"unknown":1}`, `{"email":"a"}{"email":"b"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(httptest.NewRecorder(), req, &target)
		assert.ErrorIs(t, err, ErrBadRequest, body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), req, &target), ErrBadRequest)
}

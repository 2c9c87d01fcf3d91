package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"navexpo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (b registerBody) Validate() []string {
	var errs []string
	if b.Email == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) APIError {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		ok      bool
		message string
	}{
		{name: "valid", body: `{"name":"Ada","email":"a@x.com"}`, ok: true},
		{name: "empty", body: ``, message: "request body is empty"},
		{name: "unknown field", body: `{"email":"a@x.com","admin":true}`, message: "unknown field"},
		{name: "trailing object", body: `{"email":"a@x.com"}{"email":"b@x.com"}`, message: "single JSON object"},
		{name: "validation", body: `{"name":"Ada"}`, message: "email is required"},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, message: "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest registerBody

			ok := DecodeAndValidate(rr, req, &dest)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				return
			}
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			apiErr := decodeError(t, rr)
			assert.Equal(t, ErrCodeBadRequest, apiErr.Code)
			assert.Contains(t, apiErr.Message, tt.message)
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: bad", domain.ErrInvalidInput), http.StatusBadRequest, ErrCodeBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
		{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{domain.ErrEventFull, http.StatusConflict, ErrCodeEventFull},
		{domain.ErrDuplicateRegistration, http.StatusConflict, ErrCodeDuplicateRegistration},
		{domain.ErrDuplicateEmail, http.StatusConflict, ErrCodeConflict},
		{domain.ErrInvariantViolation, http.StatusInternalServerError, ErrCodeInvariantViolation},
		{fmt.Errorf("get event: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable, ErrCodeUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := ErrorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}

	assert.Equal(t, "Internal Server Error", ErrorMessage(errors.New("pq: secret detail"), http.StatusInternalServerError))
	assert.Equal(t, "event is full", ErrorMessage(domain.ErrEventFull, http.StatusConflict))
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}},
		{"page=3&page_size=5", domain.PaginationParams{Page: 3, PageSize: 5}},
		{"page=0&page_size=-1", domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}},
		{"page=x&page_size=1000", domain.PaginationParams{Page: DefaultPage, PageSize: MaxPageSize}},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/events?"+tt.query, nil)
		assert.Equal(t, tt.want, ParsePagination(req), tt.query)
	}

	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 10, Total: 21, TotalPages: 3}, NewPaginationMeta(2, 10, 21))
	assert.Equal(t, 0, NewPaginationMeta(1, 0, 5).TotalPages)
}

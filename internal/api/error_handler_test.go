package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/staffdesk/auth-service/internal/core/domain"
)

func TestResolveError_DomainMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrAccountExists, http.StatusConflict},
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrNotApproved, http.StatusForbidden},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrInvalidResetToken, http.StatusBadRequest},
		{domain.ErrResetTokenExpired, http.StatusBadRequest},
		{domain.ErrInvalidRole, http.StatusBadRequest},
		{domain.ErrForbidden, http.StatusForbidden},
		{errors.New("mongo: connection refused"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		code, _ := resolveError(tt.err, zerolog.Nop(), c)
		if code != tt.code {
			t.Fatalf("resolveError(%v) = %d, want %d", tt.err, code, tt.code)
		}
	}
}

func TestHTTPErrorHandler_Envelope(t *testing.T) {
	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(domain.ErrInvalidCredentials, c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); body == "" || body[0] != '{' {
		t.Fatalf("expected JSON envelope, got %q", body)
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/parkingapp/auth-service/internal/core/domain"
)

func TestResolveError_DomainMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrEmailTaken, http.StatusConflict},
		{domain.ErrUsernameTaken, http.StatusConflict},
		{domain.ErrCodeNotFound, http.StatusNotFound},
		{domain.ErrCodeAlreadyUsed, http.StatusGone},
		{domain.ErrCodeExpired, http.StatusGone},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrRoleNotConfigured, http.StatusInternalServerError},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		code, _ := resolveError(tc.err, zerolog.Nop(), c)
		if code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
	}
}

func TestResolveError_WrappedStoreError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	wrapped := fmt.Errorf("%w: find user: connection reset", domain.ErrStoreUnavailable)
	code, msg := resolveError(wrapped, zerolog.Nop(), c)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	// Backend details must never reach the client.
	if msg != "service unavailable" {
		t.Fatalf("leaked internal detail: %q", msg)
	}
}

func TestResolveError_AuthFailuresAreUniform(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	_, msgCreds := resolveError(domain.ErrInvalidCredentials, zerolog.Nop(), c)
	_, msgToken := resolveError(domain.ErrInvalidToken, zerolog.Nop(), c)
	if msgCreds != msgToken {
		t.Fatalf("auth failures must be indistinguishable: %q vs %q", msgCreds, msgToken)
	}
}

func TestResolveError_EchoHTTPError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	code, msg := resolveError(echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), zerolog.Nop(), c)
	if code != http.StatusBadRequest || msg != "invalid payload" {
		t.Fatalf("unexpected mapping: %d %q", code, msg)
	}
}

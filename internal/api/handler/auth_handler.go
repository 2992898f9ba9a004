package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parkingapp/auth-service/internal/api/metrics"
	"github.com/parkingapp/auth-service/internal/core/domain"
	"github.com/parkingapp/auth-service/internal/core/ports"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account gated by a single-use access code.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      410   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		AccessCode: req.AccessCode,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, registerResponse{Message: "user registered"})
}

// Login verifies credentials and issues a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrTooManyAttempts) {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Token:     result.Token,
		TokenType: result.TokenType,
		User: userSummaryResponse{
			Username:    result.User.Username,
			Email:       result.User.Email,
			PrimaryRole: result.User.PrimaryRole,
			Roles:       result.User.Roles,
		},
	})
}

// Me returns the summary of the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  userSummaryResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	summary, err := h.authService.Whoami(c.Request().Context(), username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userSummaryResponse{
		Username:    summary.Username,
		Email:       summary.Email,
		PrimaryRole: summary.PrimaryRole,
		Roles:       summary.Roles,
	})
}

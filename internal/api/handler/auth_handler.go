package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/api/metrics"
	"github.com/99minutos/auth-service/internal/api/middleware"
	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Pointer fields tell a missing field (422) apart from an empty one (400).
type signupRequest struct {
	Email       *string `json:"email"       validate:"required"`
	Password    *string `json:"password"    validate:"required"`
	Requires2FA *bool   `json:"requires2FA" validate:"required"`
}

type loginRequest struct {
	Email    *string `json:"email"    validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type verify2FARequest struct {
	Email          *string `json:"email"          validate:"required"`
	LoginAttemptID *string `json:"loginAttemptId" validate:"required"`
	TwoFACode      *string `json:"2FACode"        validate:"required"`
}

type verifyTokenRequest struct {
	Token *string `json:"token" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type twoFactorResponse struct {
	Message        string `json:"message"`
	LoginAttemptID string `json:"loginAttemptId"`
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "malformed request body")
	}
	return c.Validate(req)
}

func record(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnexpected):
		outcome = metrics.OutcomeError
	default:
		outcome = metrics.OutcomeRejected
	}
	metrics.AuthRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// Signup creates a new account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Email:       *req.Email,
		Password:    *req.Password,
		Requires2FA: *req.Requires2FA,
	})
	record("signup", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{Message: "User created successfully!"})
}

// Login checks the credentials. Accounts without 2FA get the session cookie;
// accounts with 2FA get a login attempt id and the code by email.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200
// @Success      206   {object}  twoFactorResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    *req.Email,
		Password: *req.Password,
	})
	if err != nil {
		record("login", err)
		return err
	}

	if res.Requires2FA() {
		metrics.AuthRequestsTotal.WithLabelValues("login", metrics.OutcomeChallenge).Inc()
		return c.JSON(http.StatusPartialContent, twoFactorResponse{
			Message:        "2FA required",
			LoginAttemptID: res.LoginAttemptID,
		})
	}

	record("login", nil)
	c.SetCookie(middleware.NewSessionCookie(res.Token))
	return c.NoContent(http.StatusOK)
}

// Verify2FA exchanges a pending challenge for the session cookie.
//
// @Summary      Verify 2FA code
// @Tags         auth
// @Accept       json
// @Param        body  body      verify2FARequest  true  "Challenge answer"
// @Success      200
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /verify-2fa [post]
func (h *AuthHandler) Verify2FA(c echo.Context) error {
	var req verify2FARequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Verify2FA(c.Request().Context(), ports.Verify2FAInput{
		Email:          *req.Email,
		LoginAttemptID: *req.LoginAttemptID,
		Code:           *req.TwoFACode,
	})
	record("verify_2fa", err)
	if err != nil {
		return err
	}

	c.SetCookie(middleware.NewSessionCookie(token))
	return c.NoContent(http.StatusOK)
}

// Logout bans the session token and clears the cookie. Must be mounted
// behind middleware.SessionCookie.
//
// @Summary      Log out
// @Tags         auth
// @Success      200
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	err := h.authService.Logout(c.Request().Context(), middleware.SessionToken(c))
	record("logout", err)
	if err != nil {
		return err
	}

	metrics.TokensRevokedTotal.Inc()
	c.SetCookie(middleware.ExpiredSessionCookie())
	return c.NoContent(http.StatusOK)
}

// VerifyToken lets other services check a bearer token.
//
// @Summary      Verify a session token
// @Tags         auth
// @Accept       json
// @Param        body  body      verifyTokenRequest  true  "Token"
// @Success      200
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /verify-token [post]
func (h *AuthHandler) VerifyToken(c echo.Context) error {
	var req verifyTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	_, err := h.authService.VerifyToken(c.Request().Context(), *req.Token)
	record("verify_token", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffdesk/auth-service/internal/api/metrics"
	"github.com/staffdesk/auth-service/internal/core/domain"
	"github.com/staffdesk/auth-service/internal/core/ports"
)

type AuthHandler struct {
	accounts ports.AccountService
}

func NewAuthHandler(accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, account, err := h.accounts.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.Inc()

	return c.JSON(http.StatusOK, authResponse{Token: token, Account: account})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrNotApproved):
		return "not_approved"
	}
	return "error"
}

// Register self-registers a new pending account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	req, err := bindRegister(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	metrics.AccountsCreatedTotal.WithLabelValues("self_registration").Inc()
	return c.JSON(http.StatusCreated, authResponse{Account: account})
}

// AddUser creates an approved account with the user role (admin only).
//
// @Summary      Add a user account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/add-user [post]
func (h *AuthHandler) AddUser(c echo.Context) error {
	return h.adminCreate(c, domain.RoleUser)
}

// AddManager creates an approved account with the manager role (admin only).
//
// @Summary      Add a manager account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/add-manager [post]
func (h *AuthHandler) AddManager(c echo.Context) error {
	return h.adminCreate(c, domain.RoleManager)
}

func (h *AuthHandler) adminCreate(c echo.Context, role domain.Role) error {
	req, err := bindRegister(c)
	if err != nil {
		return err
	}

	account, err := h.accounts.AdminCreate(c.Request().Context(), req, role)
	if err != nil {
		return err
	}

	metrics.AccountsCreatedTotal.WithLabelValues("admin").Inc()
	return c.JSON(http.StatusCreated, authResponse{Account: account})
}

// ApproveUser approves a pending account (admin only).
//
// @Summary      Approve an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      usernameRequest  true  "Account to approve"
// @Success      200   {object}  authResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/approve-user [post]
func (h *AuthHandler) ApproveUser(c echo.Context) error {
	var req usernameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accounts.Approve(c.Request().Context(), req.Username)
	if err != nil {
		return err
	}

	metrics.AccountDecisionsTotal.WithLabelValues("approved").Inc()
	return c.JSON(http.StatusOK, authResponse{Account: account})
}

// RejectUser rejects a pending account (admin only).
//
// @Summary      Reject an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      usernameRequest  true  "Account to reject"
// @Success      200   {object}  authResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/reject-user [post]
func (h *AuthHandler) RejectUser(c echo.Context) error {
	var req usernameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accounts.Reject(c.Request().Context(), req.Username)
	if err != nil {
		return err
	}

	metrics.AccountDecisionsTotal.WithLabelValues("rejected").Inc()
	return c.JSON(http.StatusOK, authResponse{Account: account})
}

// ForgotPassword issues a fresh reset token to the account holding the email.
//
// @Summary      Initiate password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.InitiatePasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password reset email sent"})
}

// ResetPassword consumes a reset token and stores the new password.
//
// @Summary      Complete password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		metrics.PasswordResetsTotal.WithLabelValues(resetResult(err)).Inc()
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

func resetResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrResetTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvalidResetToken):
		return "invalid_token"
	}
	return "error"
}

// ChangePassword rotates the authenticated caller's password.
//
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), username, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}

func bindRegister(c echo.Context) (ports.RegisterInput, error) {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return ports.RegisterInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.RegisterInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return ports.RegisterInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		ContactNumber: req.ContactNumber,
		EmployeeID:    req.EmployeeID,
		Designation:   req.Designation,
	}, nil
}

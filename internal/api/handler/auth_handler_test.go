package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/staffdesk/auth-service/internal/core/domain"
	"github.com/staffdesk/auth-service/internal/core/ports"
)

// stubAccountService returns canned results per method.
type stubAccountService struct {
	loginToken   string
	loginAccount *domain.Account
	loginErr     error

	registered *domain.Account
	registerIn ports.RegisterInput
	createErr  error

	approveErr error
	resetErr   error
	changeErr  error
}

func (s *stubAccountService) Register(_ context.Context, in ports.RegisterInput) (*domain.Account, error) {
	s.registerIn = in
	return s.registered, s.createErr
}

func (s *stubAccountService) AdminCreate(_ context.Context, in ports.RegisterInput, role domain.Role) (*domain.Account, error) {
	s.registerIn = in
	if s.createErr != nil {
		return nil, s.createErr
	}
	account := *s.registered
	account.Roles = []domain.Role{role}
	return &account, nil
}

func (s *stubAccountService) Approve(_ context.Context, username string) (*domain.Account, error) {
	if s.approveErr != nil {
		return nil, s.approveErr
	}
	return &domain.Account{Username: username, Status: domain.StatusApproved}, nil
}

func (s *stubAccountService) Reject(_ context.Context, username string) (*domain.Account, error) {
	if s.approveErr != nil {
		return nil, s.approveErr
	}
	return &domain.Account{Username: username, Status: domain.StatusRejected}, nil
}

func (s *stubAccountService) Login(_ context.Context, _, _ string) (string, *domain.Account, error) {
	return s.loginToken, s.loginAccount, s.loginErr
}

func (s *stubAccountService) InitiatePasswordReset(_ context.Context, _ string) error {
	return s.resetErr
}

func (s *stubAccountService) ResetPassword(_ context.Context, _, _ string) error {
	return s.resetErr
}

func (s *stubAccountService) ChangePassword(_ context.Context, _, _, _ string) error {
	return s.changeErr
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &stubAccountService{
		loginToken:   "token-123",
		loginAccount: &domain.Account{Username: "alice", Roles: []domain.Role{domain.RoleAdmin}},
	}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"pass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "token-123" {
		t.Fatalf("expected token in response, got %q", resp.Token)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &stubAccountService{loginErr: domain.ErrInvalidCredentials}
	h := NewAuthHandler(svc)

	c, _ := newTestContext(t, http.MethodPost, "/auth/login", `{"username":"alice","password":"bad"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAccountService{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/login", `{"username":"alice"}`)
	err := h.Login(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %v", err)
	}
}

func TestAuthHandler_Register_Created(t *testing.T) {
	svc := &stubAccountService{
		registered: &domain.Account{Username: "bob", Status: domain.StatusPending, Roles: []domain.Role{domain.RoleUser}},
	}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"bob","email":"bob@example.com","password":"pass123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.registerIn.Username != "bob" || svc.registerIn.Email != "bob@example.com" {
		t.Fatalf("unexpected register input: %+v", svc.registerIn)
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	svc := &stubAccountService{createErr: domain.ErrAccountExists}
	h := NewAuthHandler(svc)

	c, _ := newTestContext(t, http.MethodPost, "/auth/register",
		`{"username":"bob","email":"bob@example.com","password":"pass123"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists to propagate, got %v", err)
	}
}

func TestAuthHandler_AddManager_AssignsRole(t *testing.T) {
	svc := &stubAccountService{
		registered: &domain.Account{Username: "bob", Status: domain.StatusApproved},
	}
	h := NewAuthHandler(svc)

	c, rec := newTestContext(t, http.MethodPost, "/auth/add-manager",
		`{"username":"bob","email":"bob@example.com","password":"pw123"}`)
	if err := h.AddManager(c); err != nil {
		t.Fatalf("AddManager returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Account.Roles) != 1 || resp.Account.Roles[0] != domain.RoleManager {
		t.Fatalf("expected manager role, got %v", resp.Account.Roles)
	}
}

func TestAuthHandler_ResetPassword_Expired(t *testing.T) {
	svc := &stubAccountService{resetErr: domain.ErrResetTokenExpired}
	h := NewAuthHandler(svc)

	c, _ := newTestContext(t, http.MethodPost, "/auth/reset-password",
		`{"token":"abc","new_password":"newpass"}`)
	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrResetTokenExpired) {
		t.Fatalf("expected ErrResetTokenExpired to propagate, got %v", err)
	}
}

func TestAuthHandler_ChangePassword_RequiresClaims(t *testing.T) {
	h := NewAuthHandler(&stubAccountService{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/change-password",
		`{"old_password":"old","new_password":"newpass"}`)
	err := h.ChangePassword(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth claims, got %v", err)
	}
}

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	h := NewAuthHandler(&stubAccountService{})

	c, rec := newTestContext(t, http.MethodPost, "/auth/change-password",
		`{"old_password":"old","new_password":"newpass"}`)
	c.Set("username", "alice")

	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

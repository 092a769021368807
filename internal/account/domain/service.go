package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the raw session token exactly once; it is never
// persisted or logged.
type LoginResult struct {
	User      User
	RawToken  string
	ExpiresAt time.Time
}

// OnboardRequest captures business and banking details.
type OnboardRequest struct {
	BusinessName    string `json:"business_name"`
	Address         string `json:"address"`
	BankName        string `json:"bank_name"`
	BankAccountName string `json:"bank_account_name"`
	AccountNumber   string `json:"account_number"`
	BranchCode      string `json:"branch_code"`
}

// Validate reports every missing field at once so forms can highlight
// them together.
func (r OnboardRequest) Validate() error {
	v := &ValidationError{}
	if len(strings.TrimSpace(r.BusinessName)) < 2 {
		v.Add("business_name", "required", "business name is required")
	}
	if len(strings.TrimSpace(r.Address)) < 2 {
		v.Add("address", "too_short", "address should be more than 2 characters")
	}
	if strings.TrimSpace(r.BankName) == "" {
		v.Add("bank_name", "required", "bank name is required")
	}
	if strings.TrimSpace(r.BankAccountName) == "" {
		v.Add("bank_account_name", "required", "bank account name is required")
	}
	if strings.TrimSpace(r.AccountNumber) == "" {
		v.Add("account_number", "required", "account number is required")
	}
	if strings.TrimSpace(r.BranchCode) == "" {
		v.Add("branch_code", "required", "branch code is required")
	}
	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*LoginResult, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*User, error)
	Onboard(ctx context.Context, req OnboardRequest) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

var (
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidPassword     = errors.New("invalid_password")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidSession      = errors.New("invalid_session")
	ErrSessionExpired      = errors.New("session_expired")
	ErrUserExists          = errors.New("user_exists")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrNoAuthenticatedUser = errors.New("no_authenticated_user")
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError accumulates per-field failures.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (v *ValidationError) Error() string { return "validation_error" }

func (v *ValidationError) Add(field, code, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Code: code, Message: message})
}

package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// SignupInput is the raw, unparsed signup request.
type SignupInput struct {
	Email       string
	Password    string
	Requires2FA bool
}

// LoginInput is the raw, unparsed login request.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is either a session (Token set) or a pending 2FA challenge
// (LoginAttemptID set). The code itself is never part of the result.
type LoginResult struct {
	Token          string
	LoginAttemptID string
}

// Requires2FA reports whether the login stopped at the challenge step.
func (r LoginResult) Requires2FA() bool { return r.LoginAttemptID != "" }

// Verify2FAInput is the raw, unparsed verify-2fa request.
type Verify2FAInput struct {
	Email          string
	LoginAttemptID string
	Code           string
}

// AuthService is the authentication state machine.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) error
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	Verify2FA(ctx context.Context, in Verify2FAInput) (string, error)
	Logout(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) (domain.Claims, error)
}

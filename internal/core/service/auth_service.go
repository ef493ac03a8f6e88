package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// TwoFASubject is the subject line of the email carrying the 2FA code.
const TwoFASubject = "2FA Code"

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Identities  ports.IdentityStore
	Challenges  ports.ChallengeStore
	Revocations ports.RevocationStore
	Vault       ports.CredentialVault
	Tokens      ports.TokenCodec
	Email       ports.EmailClient
	Log         zerolog.Logger
}

// AuthService implements signup, login with optional 2FA, logout and token
// verification on top of the stores. It holds no state of its own.
type AuthService struct {
	identities  ports.IdentityStore
	challenges  ports.ChallengeStore
	revocations ports.RevocationStore
	vault       ports.CredentialVault
	tokens      ports.TokenCodec
	email       ports.EmailClient
	log         zerolog.Logger
}

func NewAuthService(d AuthDeps) *AuthService {
	return &AuthService{
		identities:  d.Identities,
		challenges:  d.Challenges,
		revocations: d.Revocations,
		vault:       d.Vault,
		tokens:      d.Tokens,
		email:       d.Email,
		log:         d.Log.With().Str("component", "auth_service").Logger(),
	}
}

var _ ports.AuthService = (*AuthService)(nil)

func unexpected(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrUnexpected, op, err)
}

func parseCredentials(rawEmail, rawPassword string) (domain.Email, domain.Password, error) {
	email, err := domain.ParseEmail(rawEmail)
	if err != nil {
		return domain.Email{}, domain.Password{}, err
	}
	password, err := domain.ParsePassword(rawPassword)
	if err != nil {
		return domain.Email{}, domain.Password{}, err
	}
	return email, password, nil
}

func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) error {
	email, password, err := parseCredentials(in.Email, in.Password)
	if err != nil {
		return err
	}

	// Skip the hash when the answer is already known. Add still enforces
	// uniqueness for concurrent signups.
	switch _, err := s.identities.Get(ctx, email); {
	case err == nil:
		return domain.ErrUserAlreadyExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return unexpected("lookup identity", err)
	}

	hash, err := s.vault.Hash(ctx, password)
	if err != nil {
		return unexpected("hash password", err)
	}

	if err := s.identities.Add(ctx, domain.NewUser(email, hash, in.Requires2FA)); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return domain.ErrUserAlreadyExists
		}
		return unexpected("add identity", err)
	}

	s.log.Info().Str("email", email.String()).Bool("requires_2fa", in.Requires2FA).Msg("user signed up")
	return nil
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (ports.LoginResult, error) {
	email, password, err := parseCredentials(in.Email, in.Password)
	if err != nil {
		return ports.LoginResult{}, err
	}

	if err := s.identities.Validate(ctx, email, password); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrIncorrectCredentials) {
			return ports.LoginResult{}, domain.ErrIncorrectCredentials
		}
		return ports.LoginResult{}, unexpected("validate credentials", err)
	}

	user, err := s.identities.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.LoginResult{}, domain.ErrIncorrectCredentials
		}
		return ports.LoginResult{}, unexpected("load identity", err)
	}

	if !user.Requires2FA {
		token, err := s.tokens.Issue(email)
		if err != nil {
			return ports.LoginResult{}, unexpected("issue token", err)
		}
		s.log.Info().Str("email", email.String()).Msg("login succeeded")
		return ports.LoginResult{Token: token}, nil
	}

	return s.startChallenge(ctx, email)
}

// startChallenge stores a fresh challenge for email and mails the code.
// A dispatch failure fails the login even though the challenge is stored.
func (s *AuthService) startChallenge(ctx context.Context, email domain.Email) (ports.LoginResult, error) {
	id, err := domain.NewLoginAttemptID()
	if err != nil {
		return ports.LoginResult{}, unexpected("generate login attempt id", err)
	}
	code, err := domain.NewTwoFACode()
	if err != nil {
		return ports.LoginResult{}, unexpected("generate 2fa code", err)
	}

	if err := s.challenges.Put(ctx, domain.Challenge{Email: email, LoginAttemptID: id, Code: code}); err != nil {
		return ports.LoginResult{}, unexpected("store challenge", err)
	}
	if err := s.email.SendEmail(ctx, email, TwoFASubject, code.String()); err != nil {
		return ports.LoginResult{}, unexpected("send 2fa code", err)
	}

	s.log.Info().Str("email", email.String()).Str("login_attempt_id", id.String()).Msg("2fa challenge issued")
	return ports.LoginResult{LoginAttemptID: id.String()}, nil
}

func (s *AuthService) Verify2FA(ctx context.Context, in ports.Verify2FAInput) (string, error) {
	email, err := domain.ParseEmail(in.Email)
	if err != nil {
		return "", err
	}
	id, err := domain.ParseLoginAttemptID(in.LoginAttemptID)
	if err != nil {
		return "", err
	}
	code, err := domain.ParseTwoFACode(in.Code)
	if err != nil {
		return "", err
	}

	// Compare and delete in one store operation so a code is redeemed once.
	consumed, err := s.challenges.Consume(ctx, email, id, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrIncorrectCredentials
		}
		return "", unexpected("consume challenge", err)
	}
	if !consumed {
		return "", domain.ErrIncorrectCredentials
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return "", unexpected("issue token", err)
	}
	s.log.Info().Str("email", email.String()).Str("login_attempt_id", id.String()).Msg("2fa verified")
	return token, nil
}

// Logout bans a signature-valid token. Logging out twice with the same token
// succeeds both times.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingToken
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return domain.ErrInvalidToken
	}

	if err := s.revocations.Add(ctx, token); err != nil {
		return unexpected("revoke token", err)
	}
	s.log.Info().Str("email", claims.Subject).Msg("logged out")
	return nil
}

func (s *AuthService) VerifyToken(ctx context.Context, token string) (domain.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return domain.Claims{}, domain.ErrInvalidToken
	}

	revoked, err := s.revocations.Contains(ctx, token)
	if err != nil {
		return domain.Claims{}, unexpected("check revocation", err)
	}
	if revoked {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	return claims, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samber/oops"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

const (
	insertUserQuery = `INSERT INTO users (email, password_hash, requires_2fa)
         VALUES ($1, $2, $3)
         ON CONFLICT (email) DO NOTHING`

	selectUserQuery = `SELECT email, password_hash, requires_2fa FROM users
         WHERE email = $1`

	selectHashQuery = `SELECT password_hash FROM users
         WHERE email = $1`
)

type IdentityStore struct {
	db    DBTX
	vault ports.CredentialVault
}

func NewIdentityStore(db DBTX, vault ports.CredentialVault) *IdentityStore {
	return &IdentityStore{db: db, vault: vault}
}

// Add inserts the user. A conflicting email leaves the existing row untouched
// and reports ErrUserAlreadyExists.
func (s *IdentityStore) Add(ctx context.Context, user domain.User) error {
	res, err := s.db.ExecContext(ctx, insertUserQuery, user.Email.String(), user.PasswordHash, user.Requires2FA)
	if err != nil {
		return oops.In("postgres").Code("USER_INSERT_FAILED").Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.In("postgres").Code("USER_INSERT_FAILED").With("operation", "rows affected").Wrap(err)
	}
	if n == 0 {
		return domain.ErrUserAlreadyExists
	}
	return nil
}

func (s *IdentityStore) Get(ctx context.Context, email domain.Email) (domain.User, error) {
	var (
		rawEmail, hash string
		requires2FA    bool
	)
	err := s.db.QueryRowContext(ctx, selectUserQuery, email.String()).Scan(&rawEmail, &hash, &requires2FA)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, oops.In("postgres").Code("USER_SELECT_FAILED").Wrap(err)
	}

	stored, err := domain.ParseEmail(rawEmail)
	if err != nil {
		return domain.User{}, oops.In("postgres").Code("USER_CORRUPT").With("column", "email").Wrap(err)
	}
	return domain.NewUser(stored, hash, requires2FA), nil
}

func (s *IdentityStore) Validate(ctx context.Context, email domain.Email, password domain.Password) error {
	var hash string
	err := s.db.QueryRowContext(ctx, selectHashQuery, email.String()).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return oops.In("postgres").Code("USER_SELECT_FAILED").Wrap(err)
	}

	ok, err := s.vault.Verify(ctx, hash, password)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrIncorrectCredentials
	}
	return nil
}

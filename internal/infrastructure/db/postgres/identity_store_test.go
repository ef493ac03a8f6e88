package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/infrastructure/db/postgres/migrations"
)

type stubVault struct {
	ok  bool
	err error
}

func (v stubVault) Hash(context.Context, domain.Password) (string, error) { return "", nil }

func (v stubVault) Verify(context.Context, string, domain.Password) (bool, error) {
	return v.ok, v.err
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func mustEmail(t *testing.T, s string) domain.Email {
	t.Helper()
	e, err := domain.ParseEmail(s)
	require.NoError(t, err)
	return e
}

func mustPassword(t *testing.T, s string) domain.Password {
	t.Helper()
	p, err := domain.ParsePassword(s)
	require.NoError(t, err)
	return p
}

func TestIdentityStore_Add(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewIdentityStore(db, stubVault{})
	email := mustEmail(t, "a@b.com")

	mock.ExpectExec(insertUserQuery).
		WithArgs("a@b.com", "$argon2id$h", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Add(context.Background(), domain.NewUser(email, "$argon2id$h", true)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityStore_AddConflict(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewIdentityStore(db, stubVault{})

	mock.ExpectExec(insertUserQuery).
		WithArgs("a@b.com", "h", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Add(context.Background(), domain.NewUser(mustEmail(t, "a@b.com"), "h", false))
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestIdentityStore_AddBackendError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewIdentityStore(db, stubVault{})

	mock.ExpectExec(insertUserQuery).WillReturnError(errors.New("conn refused"))

	err := s.Add(context.Background(), domain.NewUser(mustEmail(t, "a@b.com"), "h", false))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserAlreadyExists)
	assert.Contains(t, err.Error(), "conn refused")
}

func TestIdentityStore_Get(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewIdentityStore(db, stubVault{})

	mock.ExpectQuery(selectUserQuery).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows([]string{"email", "password_hash", "requires_2fa"}).
			AddRow("a@b.com", "h", true))

	u, err := s.Get(context.Background(), mustEmail(t, "a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email.String())
	assert.Equal(t, "h", u.PasswordHash)
	assert.True(t, u.Requires2FA)
}

func TestIdentityStore_GetNotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := NewIdentityStore(db, stubVault{})

	mock.ExpectQuery(selectUserQuery).WithArgs("a@b.com").WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), mustEmail(t, "a@b.com"))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestIdentityStore_Validate(t *testing.T) {
	tests := []struct {
		name    string
		vault   stubVault
		rows    bool
		wantErr error
	}{
		{name: "match", vault: stubVault{ok: true}, rows: true},
		{name: "mismatch", vault: stubVault{ok: false}, rows: true, wantErr: domain.ErrIncorrectCredentials},
		{name: "unknown user", vault: stubVault{ok: true}, rows: false, wantErr: domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			s := NewIdentityStore(db, tt.vault)

			q := mock.ExpectQuery(selectHashQuery).WithArgs("a@b.com")
			if tt.rows {
				q.WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow("h"))
			} else {
				q.WillReturnRows(sqlmock.NewRows([]string{"password_hash"}))
			}

			err := s.Validate(context.Background(), mustEmail(t, "a@b.com"), mustPassword(t, "password123"))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMigrate(t *testing.T) {
	db, _ := newSQLMockDB(t)

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, ".", gotDir)

	gooseUp = func(context.Context, *sql.DB, string) error { return errors.New("boom") }
	err := Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMigrations_Embedded(t *testing.T) {
	raw, err := migrations.FS.ReadFile("00001_create_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "+goose Up")
	assert.Contains(t, string(raw), "email         TEXT        PRIMARY KEY")
}

package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const TwoFACodeLength = 6

// LoginAttemptID identifies one outstanding 2FA challenge. New ids are
// UUIDv7 so they sort by creation time in logs.
type LoginAttemptID struct {
	value string
}

func NewLoginAttemptID() (LoginAttemptID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return LoginAttemptID{}, fmt.Errorf("generate login attempt id: %w", err)
	}
	return LoginAttemptID{value: id.String()}, nil
}

// ParseLoginAttemptID accepts any UUID form understood by uuid.Parse and
// stores it in canonical lowercase form.
func ParseLoginAttemptID(s string) (LoginAttemptID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return LoginAttemptID{}, fmt.Errorf("%w: login attempt id is not a valid uuid", ErrInvalidCredentials)
	}
	return LoginAttemptID{value: id.String()}, nil
}

func (id LoginAttemptID) String() string { return id.value }

// TwoFACode is a six digit numeric code, leading zeros included.
type TwoFACode struct {
	value string
}

var ten = big.NewInt(10)

// NewTwoFACode draws every digit independently from crypto/rand so codes
// starting with zero are as likely as any other.
func NewTwoFACode() (TwoFACode, error) {
	buf := make([]byte, TwoFACodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return TwoFACode{}, fmt.Errorf("generate 2fa code: %w", err)
		}
		buf[i] = byte('0' + n.Int64())
	}
	return TwoFACode{value: string(buf)}, nil
}

func ParseTwoFACode(s string) (TwoFACode, error) {
	if len(s) != TwoFACodeLength {
		return TwoFACode{}, fmt.Errorf("%w: 2fa code must be %d digits", ErrInvalidCredentials, TwoFACodeLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return TwoFACode{}, fmt.Errorf("%w: 2fa code must be numeric", ErrInvalidCredentials)
		}
	}
	return TwoFACode{value: s}, nil
}

func (c TwoFACode) String() string { return c.value }

// Challenge is the outstanding second factor for one email.
type Challenge struct {
	Email          Email
	LoginAttemptID LoginAttemptID
	Code           TwoFACode
}

// Matches compares both fields and only reports the combined result.
func (c Challenge) Matches(id LoginAttemptID, code TwoFACode) bool {
	idOK := c.LoginAttemptID == id
	codeOK := c.Code == code
	return idOK && codeOK
}

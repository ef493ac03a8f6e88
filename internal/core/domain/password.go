package domain

import (
	"fmt"
	"unicode/utf8"
)

const MinPasswordLength = 8

// Password holds a plaintext candidate password. String redacts it so it
// never ends up in logs; use Expose to get the raw value.
type Password struct {
	value string
}

func ParsePassword(s string) (Password, error) {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return Password{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidCredentials, MinPasswordLength)
	}
	return Password{value: s}, nil
}

func (p Password) Expose() string { return p.value }

func (p Password) String() string { return "[REDACTED]" }

package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Email is a syntactically validated address. Equality is defined on the
// normalized string, so Email can be used directly as a map key.
type Email struct {
	value string
}

// ParseEmail trims surrounding whitespace and validates the address.
// Matching is case-sensitive: no case folding is applied.
func ParseEmail(s string) (Email, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return Email{}, fmt.Errorf("%w: email is empty", ErrInvalidCredentials)
	}
	if err := validate.Var(v, "required,email"); err != nil {
		return Email{}, fmt.Errorf("%w: email is not a valid address", ErrInvalidCredentials)
	}
	return Email{value: v}, nil
}

func (e Email) String() string { return e.value }

// IsZero reports whether e was never parsed.
func (e Email) IsZero() bool { return e.value == "" }

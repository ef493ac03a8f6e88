package domain

import "time"

// User is an account as held by the identity store. PasswordHash is the
// encoded argon2id hash and is never compared in plaintext.
type User struct {
	Email        Email
	PasswordHash string
	Requires2FA  bool
}

func NewUser(email Email, passwordHash string, requires2FA bool) User {
	return User{Email: email, PasswordHash: passwordHash, Requires2FA: requires2FA}
}

// Claims are the verified contents of a session token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

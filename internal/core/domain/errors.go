package domain

import "errors"

// Input that fails to parse (bad email syntax, short password, malformed
// attempt id or code).
var ErrInvalidCredentials = errors.New("invalid credentials")

// Well-formed credentials that do not match what is stored.
var ErrIncorrectCredentials = errors.New("incorrect credentials")

var ErrUserAlreadyExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")

// ErrNotFound is returned by the challenge store when no live challenge exists.
var ErrNotFound = errors.New("not found")

var ErrMissingToken = errors.New("missing auth token")
var ErrInvalidToken = errors.New("invalid auth token")

// ErrUnexpected tags infrastructure failures. The wrapped cause is logged
// server-side and never rendered to the client.
var ErrUnexpected = errors.New("unexpected error")

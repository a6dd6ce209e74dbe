package auth

import "errors"

var (
	ErrAccountExists      = errors.New("auth: account already exists")
	ErrAccountNotFound    = errors.New("auth: account not found")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrChallengeNotFound  = errors.New("auth: challenge not found")
	ErrChallengeExpired   = errors.New("auth: challenge expired")
	ErrTooManyAttempts    = errors.New("auth: too many attempts")
	ErrInvalidCode        = errors.New("auth: invalid code")
	ErrInvalidToken       = errors.New("auth: invalid session token")
	ErrUploadTooLarge     = errors.New("auth: upload too large")
)

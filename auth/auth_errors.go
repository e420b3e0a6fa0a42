package auth

import "errors"

var (
	InvalidEmailErr       = errors.New("a valid email address is required")
	PasswordTooShortErr   = errors.New("password must be at least 6 characters")
	PasswordsDontMatchErr = errors.New("passwords do not match")
	MissingResetTokenErr  = errors.New("reset token is required")
	MissingUsernameErr    = errors.New("username is required")
	MissingJWTErr         = errors.New("sign-in response did not include a token")
)

package auth

import (
	"net/mail"
	"strings"

	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
)

const minPasswordLength = 6

// Validator checks form input before it is sent to the backend
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return inverrors.ErrEmptyCredentials
	}
	return nil
}

func (v *Validator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return InvalidEmailErr
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return InvalidEmailErr
	}
	return nil
}

func (v *Validator) ValidatePassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return PasswordTooShortErr
	}
	if confirm != "" && confirm != password {
		return PasswordsDontMatchErr
	}
	return nil
}

func (v *Validator) ValidateSignup(req SignupRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return MissingUsernameErr
	}
	if err := v.ValidateEmail(req.Email); err != nil {
		return err
	}
	return v.ValidatePassword(req.Password, req.ConfirmPassword)
}

func (v *Validator) ValidateReset(req ResetPasswordRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return MissingResetTokenErr
	}
	return v.ValidatePassword(req.NewPassword, req.ConfirmPassword)
}

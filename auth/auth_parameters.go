package auth

import "github.com/jrsteele09/go-inventory-ui/users"

// SigninRequest is the body of POST /auth/signin
type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SigninResponse is what the backend returns for a successful sign-in. Roles may
// arrive as a bare string.
type SigninResponse struct {
	Username     string      `json:"username"`
	Roles        users.Roles `json:"roles"`
	JWTToken     string      `json:"jwtToken"`
	RefreshToken string      `json:"refreshToken"`
}

// SignupRequest is the body of POST /auth/signup. ConfirmPassword never leaves the client.
type SignupRequest struct {
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"-"`
	FirstName       string   `json:"firstName,omitempty"`
	LastName        string   `json:"lastName,omitempty"`
	Roles           []string `json:"role,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"-"`
}

// MessageResponse is the {message} reply of the password endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/auth"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
)

const accountCreatedMessage = "Account created. You can now log in."

// SignupGetHandler renders the signup page
func (s *Server) SignupGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "signup.html", s.page(r, "Create account", "signup"))
	}
}

// SignupPostHandler registers the account and sends the visitor to the login page
func (s *Server) SignupPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		req := auth.SignupRequest{
			Username:        strings.TrimSpace(r.FormValue("username")),
			Email:           strings.TrimSpace(r.FormValue("email")),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirmPassword"),
			FirstName:       strings.TrimSpace(r.FormValue("firstName")),
			LastName:        strings.TrimSpace(r.FormValue("lastName")),
		}

		guest := s.builder.Build()
		if _, err := guest.Auth.Signup(r.Context(), req); err != nil {
			data := s.page(r, "Create account", "signup")
			data.Error = formErrorMessage(err)
			data.Fields = validationFields(err)
			data.Form = map[string]string{
				"username":  req.Username,
				"email":     req.Email,
				"firstName": req.FirstName,
				"lastName":  req.LastName,
			}
			s.render(w, r, http.StatusUnprocessableEntity, "signup.html", data)
			return
		}

		redirectSuccess(w, r, withQuery(withQuery(RouteLogin, "message", accountCreatedMessage), "username", req.Username))
	}
}

// ForgotPasswordGetHandler renders the forgot-password page
func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "forgot_password.html", s.page(r, "Forgot password", "forgot"))
	}
}

// ForgotPasswordPostHandler asks the backend to send a reset link
func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		data := s.page(r, "Forgot password", "forgot")
		data.Form = map[string]string{"email": email}

		message, err := s.builder.Build().Auth.ForgotPassword(r.Context(), email)
		if err != nil {
			data.Error = formErrorMessage(err)
			data.Fields = validationFields(err)
			s.render(w, r, http.StatusUnprocessableEntity, "forgot_password.html", data)
			return
		}
		data.Message = message
		s.render(w, r, http.StatusOK, "forgot_password.html", data)
	}
}

// ResetPasswordGetHandler renders the reset form for the token in the emailed link
func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(r, "Reset password", "reset")
		data.Form = map[string]string{"token": r.URL.Query().Get("token")}
		s.render(w, r, http.StatusOK, "reset_password.html", data)
	}
}

func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		req := auth.ResetPasswordRequest{
			Token:           strings.TrimSpace(r.FormValue("token")),
			NewPassword:     r.FormValue("newPassword"),
			ConfirmPassword: r.FormValue("confirmPassword"),
		}
		message, err := s.builder.Build().Auth.ResetPassword(r.Context(), req)
		if err != nil {
			data := s.page(r, "Reset password", "reset")
			data.Error = formErrorMessage(err)
			data.Fields = validationFields(err)
			data.Form = map[string]string{"token": req.Token}
			s.render(w, r, http.StatusUnprocessableEntity, "reset_password.html", data)
			return
		}
		redirectSuccess(w, r, withQuery(RouteLogin, "message", message))
	}
}

// formErrorMessage is the message shown above a form that failed
func formErrorMessage(err error) string {
	var validation *api.ValidationError
	if inverrors.As(err, &validation) {
		return validation.Summary()
	}
	return err.Error()
}

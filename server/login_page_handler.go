package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/auth"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/rs/zerolog/log"
)

const invalidCredentialsMessage = "Invalid username or password"

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if accessToken := cookieValue(r, s.config.GetAccessTokenCookie()); accessToken != "" {
			if ws, err := s.workspaces.Get(accessToken); err == nil && ws.Store.IsAuthenticated() && !ws.Expired() {
				redirectSuccess(w, r, RouteDashboard)
				return
			}
		}

		data := s.page(r, "Sign in", "login")
		data.Form = map[string]string{
			"username": r.URL.Query().Get("username"),
			"next":     safeNext(r.URL.Query().Get("next")),
		}
		s.render(w, r, http.StatusOK, "login.html", data)
	}
}

// LoginSubmissionHandler signs in against the backend and binds a new workspace to
// the returned access token.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		next := safeNext(r.FormValue("next"))

		ws := s.builder.Build()
		if _, err := ws.Auth.Login(r.Context(), username, password); err != nil {
			log.Debug().Err(err).Str("username", username).Msg("sign in failed")
			s.renderLoginError(w, r, loginErrorMessage(err), username, next)
			return
		}

		accessToken := ws.Store.AccessToken()
		if err := s.workspaces.Upsert(accessToken, ws); err != nil {
			log.Err(err).Msg("Failed to store workspace")
			s.renderLoginError(w, r, "Could not start your session", username, next)
			return
		}
		s.setTokenCookies(w, r, accessToken, ws.Store.RefreshToken())

		if next == "" {
			next = RouteDashboard
		}
		redirectSuccess(w, r, next)
	}
}

func loginErrorMessage(err error) string {
	switch {
	case inverrors.Is(err, inverrors.ErrEmptyCredentials):
		return "Username and password are required"
	case api.IsUnauthorized(err):
		return invalidCredentialsMessage
	case inverrors.Is(err, auth.MissingJWTErr):
		return api.InvalidResponseMessage
	}
	return err.Error()
}

// LogoutHandler signs out on the backend, forgets the workspace and clears the cookies
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := RouteHome
		if accessToken := cookieValue(r, s.config.GetAccessTokenCookie()); accessToken != "" {
			if ws, err := s.workspaces.Get(accessToken); err == nil {
				ws.Auth.Logout(r.Context())
				target = ws.History.Path()
			}
			if err := s.workspaces.Delete(accessToken); err != nil {
				log.Err(err).Msg("Failed to delete workspace")
			}
		}
		s.clearTokenCookies(w, r)
		redirectSuccess(w, r, withQuery(target, "message", auth.LoggedOutMessage))
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username, next string) {
	redirectURL := withQuery(RouteLogin, "error", errorMsg)
	if username != "" {
		redirectURL = withQuery(redirectURL, "username", username)
	}
	if next != "" {
		redirectURL = withQuery(redirectURL, "next", next)
	}
	redirectSuccess(w, r, redirectURL)
}

package server

import (
	"math"
	"net/http"

	"github.com/jrsteele09/go-inventory-ui/api"
)

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(r, "Home", "home")
		data.Data = map[string]any{
			"SignedIn": cookieValue(r, s.config.GetAccessTokenCookie()) != "",
		}
		s.render(w, r, http.StatusOK, "index.html", data)
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderStatusPage(w, r, http.StatusNotFound, "not_found.html", "")
	}
}

// UnauthorizedHandler explains that the signed-in user lacks the role for a page
func (s *Server) UnauthorizedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusForbidden, "unauthorized.html", s.page(r, "Access denied", ""))
	}
}

// SessionExpiredHandler drops the rejected session and shows the notice for the
// redirect delay before the browser moves on to the login page.
func (s *Server) SessionExpiredHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if accessToken := cookieValue(r, s.config.GetAccessTokenCookie()); accessToken != "" {
			_ = s.workspaces.Delete(accessToken)
		}
		s.clearTokenCookies(w, r)

		data := s.page(r, "Session expired", "")
		data.Message = api.SessionExpiredMessage
		data.RefreshSeconds = int(math.Ceil(s.config.GetRedirectDelay().Seconds()))
		data.RefreshURL = RouteLogin
		s.render(w, r, http.StatusOK, "session_expired.html", data)
	}
}

package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-inventory-ui/api"
	"github.com/jrsteele09/go-inventory-ui/guard"
	"github.com/jrsteele09/go-inventory-ui/server/workspace"
	"github.com/jrsteele09/go-inventory-ui/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyWorkspace stores the signed-in browser's workspace
	ContextKeyWorkspace ContextKey = "workspace"
	// ContextKeyUser stores the profile the guard admitted
	ContextKeyUser ContextKey = "user"
)

func workspaceFrom(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(ContextKeyWorkspace).(*workspace.Workspace)
	return ws
}

func userFrom(ctx context.Context) *users.UserProfile {
	user, _ := ctx.Value(ContextKeyUser).(*users.UserProfile)
	return user
}

// RequireSession resolves the access token cookie to a workspace. The cookie is
// checked locally first: a token that is malformed or carries a bad signature never
// reaches the backend. A valid token without a workspace (the front-end restarted)
// gets a new one seeded from its claims.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			accessToken := cookieValue(r, s.config.GetAccessTokenCookie())
			if accessToken == "" {
				s.redirectToLogin(w, r)
				return
			}

			introspection, err := s.inspector.Inspect(accessToken)
			if err != nil || !introspection.Active {
				s.logger.Debug().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("rejected access token cookie")
				_ = s.workspaces.Delete(accessToken)
				s.clearTokenCookies(w, r)
				redirectWithError(w, r, RouteLogin, "Invalid session")
				return
			}
			if introspection.Expired {
				redirectSuccess(w, r, RouteSessionExpired)
				return
			}

			ws, err := s.workspaces.Get(accessToken)
			if err != nil {
				ws, err = s.builder.Restore(introspection.Subject, introspection.Roles, accessToken, cookieValue(r, s.config.GetRefreshTokenCookie()))
				if err != nil {
					s.logger.Err(err).Msg("failed to restore workspace")
					s.renderStatusPage(w, r, http.StatusInternalServerError, "error.html", "Could not restore your session")
					return
				}
				if err := s.workspaces.Upsert(accessToken, ws); err != nil {
					s.logger.Err(err).Msg("failed to store workspace")
				}
			}
			if ws.Expired() {
				redirectSuccess(w, r, RouteSessionExpired)
				return
			}
			ws.Touch(s.now())

			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyWorkspace, ws)))
		}
	}
}

// RequireRoles runs the route guard before anything is written: anonymous visitors
// go to the login page, a rejected token to the session expired page, and a user
// holding none of roles to the unauthorized page. No roles admits any signed-in user.
func (s *Server) RequireRoles(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ws := workspaceFrom(r.Context())
			if ws == nil {
				s.redirectToLogin(w, r)
				return
			}

			state := ws.Auth.Current(r.Context())
			result := guard.Evaluate(state, roles)
			switch result.Decision {
			case guard.Allow:
				next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, state.User)))
			case guard.RedirectUnauthorized:
				redirectSuccess(w, r, RouteUnauthorized)
			default:
				// Current never reports loading, so this is an anonymous result
				if ws.Expired() || api.IsUnauthorized(state.Err) {
					redirectSuccess(w, r, RouteSessionExpired)
					return
				}
				s.redirectToLogin(w, r)
			}
		}
	}
}

// protected wraps a page handler in the HTML chain plus the session and role checks
func (s *Server) protected(handler http.HandlerFunc, roles ...string) http.HandlerFunc {
	return ChainMiddleware(handler, s.HTMLMiddleWare(s.RequireSession(), s.RequireRoles(roles...))...)
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := RouteLogin
	if r.Method == http.MethodGet && r.URL.Path != RouteHome {
		target = withQuery(target, "next", r.URL.RequestURI())
	}
	redirectSuccess(w, r, target)
}

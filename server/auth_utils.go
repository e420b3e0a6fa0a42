package server

import (
	"net/http"
	"net/url"
	"strings"
)

// setTokenCookies stores the session tokens in HttpOnly cookies named by config
func (s *Server) setTokenCookies(w http.ResponseWriter, r *http.Request, accessToken, refreshToken string) {
	maxAge := int(s.config.GetCookieMaxAge().Seconds())
	s.setCookie(w, r, s.config.GetAccessTokenCookie(), accessToken, maxAge)
	if refreshToken != "" {
		s.setCookie(w, r, s.config.GetRefreshTokenCookie(), refreshToken, maxAge)
	}
}

func (s *Server) clearTokenCookies(w http.ResponseWriter, r *http.Request) {
	s.setCookie(w, r, s.config.GetAccessTokenCookie(), "", -1)
	s.setCookie(w, r, s.config.GetRefreshTokenCookie(), "", -1)
}

func (s *Server) setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

func withQuery(path, key, value string) string {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + key + "=" + url.QueryEscape(value)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// safeNext keeps only local absolute paths, so a login link cannot send the
// browser to another site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

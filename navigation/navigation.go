// Package navigation turns client-side events into page changes. The API client
// never navigates by itself; it reports unauthorized responses and a Coordinator
// decides whether and when to move the user to the login page.
package navigation

import (
	"strings"
	"sync"
)

const (
	HomePath           = "/"
	LoginPath          = "/login"
	SignupPath         = "/signup"
	ForgotPasswordPath = "/forgot-password"
	ResetPasswordPath  = "/reset-password"
	UnauthorizedPath   = "/unauthorized"
)

var authPages = []string{LoginPath, SignupPath, ForgotPasswordPath, ResetPasswordPath}

// IsAuthPage reports whether path is one of the sign-in related pages, where an
// unauthorized response must not bounce the user to the login page again.
func IsAuthPage(path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSuffix(path, "/")
	for _, page := range authPages {
		if path == page {
			return true
		}
	}
	return false
}

type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Location reports where the user currently is
type Location interface {
	Path() string
}

type LocationFunc func() string

func (f LocationFunc) Path() string { return f() }

// History is an in-memory Navigator and Location
type History struct {
	mu      sync.Mutex
	current string
	visits  []string
}

func NewHistory(start string) *History {
	if start == "" {
		start = HomePath
	}
	return &History{current: start}
}

func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = path
	h.visits = append(h.visits, path)
}

func (h *History) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Visits returns every path navigated to, oldest first
func (h *History) Visits() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.visits))
	copy(out, h.visits)
	return out
}

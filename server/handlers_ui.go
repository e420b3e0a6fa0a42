package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-inventory-ui/api"
	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/rs/zerolog/log"
)

// UIPageData is the model every page template receives
type UIPageData struct {
	AppName string
	Title   string
	Active  string
	User    *users.UserProfile
	Flashes []notify.Notice
	Error   string
	Message string
	// Fields holds per-input validation messages for forms
	Fields map[string]string
	// Form echoes submitted values back into a re-rendered form
	Form map[string]string
	Data any

	RefreshSeconds int
	RefreshURL     string
}

// page builds the page model, draining the workspace's pending notices
func (s *Server) page(r *http.Request, title, active string) UIPageData {
	data := UIPageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Active:  active,
		User:    userFrom(r.Context()),
		Error:   r.URL.Query().Get("error"),
		Message: r.URL.Query().Get("message"),
	}
	if ws := workspaceFrom(r.Context()); ws != nil {
		data.Flashes = ws.Notices.Drain()
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data UIPageData) {
	tmpl, ok := s.templates[name]
	if !ok {
		log.Error().Str("template", name).Msg("unknown template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) renderStatusPage(w http.ResponseWriter, r *http.Request, status int, name, message string) {
	data := s.page(r, http.StatusText(status), "")
	data.Error = message
	s.render(w, r, status, name, data)
}

// handleAPIError finishes a request whose backend call failed. A rejected token
// goes to the session expired page. A failed read renders the error page; a failed
// write returns to fallback where the notice recorded by the client is shown.
func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case api.IsUnauthorized(err):
		redirectSuccess(w, r, RouteSessionExpired)
	case inverrors.Is(err, inverrors.ErrQueryDisabled), api.StatusOf(err) == http.StatusNotFound:
		s.NotFoundHandler()(w, r)
	case r.Method == http.MethodGet:
		data := s.page(r, "Error", "")
		if len(data.Flashes) == 0 {
			data.Error = err.Error()
		}
		s.render(w, r, http.StatusBadGateway, "error.html", data)
	default:
		log.Err(err).Str("path", r.URL.Path).Str("request_id", requestIDFrom(r.Context())).Msg("backend call failed")
		redirectSuccess(w, r, fallback)
	}
}

// pathID parses the {id} segment; zero is returned for anything invalid
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// validationFields returns the per-field messages of a validation failure
func validationFields(err error) map[string]string {
	var validation *api.ValidationError
	if inverrors.As(err, &validation) {
		return validation.Fields
	}
	return nil
}

package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/internal/utils"
	"github.com/jrsteele09/go-inventory-ui/users"
)

// assignableRoles are offered by the user forms, most privileged first
var assignableRoles = []string{users.RoleAdmin, users.RoleManager, users.RoleSales, users.RoleUser}

// UserFormData is the model of the create and edit forms
type UserFormData struct {
	Editing bool
	User    users.User
	Roles   []string
}

func userPath(id int64) string {
	return fmt.Sprintf("%s/%d", RouteAdminUsers, id)
}

// returnTo is the page an action posts back to: the form's "return" field when it
// is a local path, else fallback.
func returnTo(r *http.Request, fallback string) string {
	if target := safeNext(r.FormValue("return")); target != "" {
		return target
	}
	return fallback
}

// AdminUsersListHandler lists users, or the search results when q is given
func (s *Server) AdminUsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		keyword := strings.TrimSpace(r.URL.Query().Get("q"))

		var (
			list []users.User
			err  error
		)
		if keyword != "" {
			list, err = ws.Users.Search(r.Context(), keyword)
		} else {
			list, err = ws.Users.List(r.Context())
		}
		if err != nil {
			s.handleAPIError(w, r, err, RouteDashboard)
			return
		}

		data := s.page(r, "Users", "users")
		data.Form = map[string]string{"q": keyword}
		data.Data = list
		s.render(w, r, http.StatusOK, "users_list.html", data)
	}
}

func (s *Server) AdminUserNewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(r, "New user", "users")
		data.Data = UserFormData{Roles: assignableRoles, User: users.User{Roles: users.Roles{users.RoleUser}}}
		s.render(w, r, http.StatusOK, "user_form.html", data)
	}
}

func (s *Server) AdminUserCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())

		req := users.CreateRequest{
			Username:  strings.TrimSpace(r.FormValue("username")),
			Email:     strings.TrimSpace(r.FormValue("email")),
			Password:  r.FormValue("password"),
			FirstName: strings.TrimSpace(r.FormValue("firstName")),
			LastName:  strings.TrimSpace(r.FormValue("lastName")),
			Roles:     formRoles(r),
			CompanyID: formCompanyID(r),
		}
		created, err := ws.Users.Create(r.Context(), req)
		if fields := validationFields(err); fields != nil {
			data := s.page(r, "New user", "users")
			data.Fields = fields
			data.Data = UserFormData{Roles: assignableRoles, User: users.User{
				Username:  req.Username,
				Email:     req.Email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Roles:     req.Roles,
				CompanyID: req.CompanyID,
			}}
			s.render(w, r, http.StatusUnprocessableEntity, "user_form.html", data)
			return
		}
		if err != nil {
			s.handleAPIError(w, r, err, RouteAdminUserNew)
			return
		}
		redirectSuccess(w, r, userPath(created.UserID))
	}
}

func (s *Server) AdminUserDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		user, err := ws.Users.Get(r.Context(), pathID(r))
		if err != nil {
			s.handleAPIError(w, r, err, RouteAdminUsers)
			return
		}

		data := s.page(r, user.Username, "users")
		data.Data = UserFormData{User: *user, Roles: assignableRoles}
		s.render(w, r, http.StatusOK, "user_detail.html", data)
	}
}

func (s *Server) AdminUserEditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		user, err := ws.Users.Get(r.Context(), pathID(r))
		if err != nil {
			s.handleAPIError(w, r, err, RouteAdminUsers)
			return
		}

		data := s.page(r, "Edit "+user.Username, "users")
		data.Data = UserFormData{Editing: true, User: *user, Roles: assignableRoles}
		s.render(w, r, http.StatusOK, "user_form.html", data)
	}
}

func (s *Server) AdminUserUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())
		id := pathID(r)

		in := users.UpdateInput{UserID: id, UpdateRequest: users.UpdateRequest{
			Username:  strings.TrimSpace(r.FormValue("username")),
			Email:     strings.TrimSpace(r.FormValue("email")),
			FirstName: strings.TrimSpace(r.FormValue("firstName")),
			LastName:  strings.TrimSpace(r.FormValue("lastName")),
			CompanyID: formCompanyID(r),
		}}
		_, err := ws.Users.Update(r.Context(), in)
		if fields := validationFields(err); fields != nil {
			data := s.page(r, "Edit user", "users")
			data.Fields = fields
			data.Data = UserFormData{Editing: true, Roles: assignableRoles, User: users.User{
				UserID:    id,
				Username:  in.Username,
				Email:     in.Email,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				CompanyID: in.CompanyID,
			}}
			s.render(w, r, http.StatusUnprocessableEntity, "user_form.html", data)
			return
		}
		if err != nil {
			s.handleAPIError(w, r, err, userPath(id))
			return
		}
		redirectSuccess(w, r, userPath(id))
	}
}

func (s *Server) AdminUserDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		id := pathID(r)
		if err := ws.Users.Delete(r.Context(), id); err != nil {
			s.handleAPIError(w, r, err, userPath(id))
			return
		}
		redirectSuccess(w, r, RouteAdminUsers)
	}
}

// AdminUserLockHandler locks the account when lock=true and unlocks it otherwise
func (s *Server) AdminUserLockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())
		id := pathID(r)
		update := users.LockStatusUpdate{UserID: id, Lock: formBool(r, "lock")}
		if err := ws.Users.UpdateLockStatus(r.Context(), update); err != nil {
			s.handleAPIError(w, r, err, returnTo(r, userPath(id)))
			return
		}
		redirectSuccess(w, r, returnTo(r, userPath(id)))
	}
}

func (s *Server) AdminUserEnabledHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())
		id := pathID(r)
		update := users.EnabledStatusUpdate{UserID: id, Enabled: formBool(r, "enabled")}
		if err := ws.Users.UpdateEnabledStatus(r.Context(), update); err != nil {
			s.handleAPIError(w, r, err, returnTo(r, userPath(id)))
			return
		}
		redirectSuccess(w, r, returnTo(r, userPath(id)))
	}
}

// AdminUserRoleHandler replaces the user's roles with the submitted ones. A single
// role goes through the role endpoint, several through the roles endpoint.
func (s *Server) AdminUserRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ws := workspaceFrom(r.Context())
		id := pathID(r)

		var err error
		if roles := formRoles(r); len(roles) == 1 {
			err = ws.Users.UpdateRole(r.Context(), users.RoleUpdate{UserID: id, Role: roles[0]})
		} else {
			err = ws.Users.UpdateRoles(r.Context(), users.RolesUpdate{UserID: id, Roles: roles})
		}
		if err != nil {
			s.handleAPIError(w, r, err, userPath(id))
			return
		}
		redirectSuccess(w, r, userPath(id))
	}
}

func formRoles(r *http.Request) []string {
	return users.NormalizeRoles(r.Form["role"])
}

func formBool(r *http.Request, name string) bool {
	value, _ := strconv.ParseBool(r.FormValue(name))
	return value
}

func formCompanyID(r *http.Request) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("companyId")), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return utils.Ptr(id)
}

package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/users"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Roles admitted by each gated area
var (
	usersAdminRoles     = []string{users.RoleAdmin}
	companiesAdminRoles = []string{users.RoleAdmin, users.RoleManager}
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET /", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteUnauthorized, ChainMiddleware(s.UnauthorizedHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteSessionExpired, ChainMiddleware(s.SessionExpiredHandler(), s.HTMLMiddleWare()...))

	// SIGNUP AND PASSWORDS
	s.RegisterRouteFunc("GET "+RouteSignup, ChainMiddleware(s.SignupGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteSignup, ChainMiddleware(s.SignupPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteResetPassword, ChainMiddleware(s.ResetPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordPostHandler(), s.HTMLMiddleWare()...))

	// DASHBOARDS
	s.RegisterRouteFunc("GET "+RouteDashboard, s.protected(s.DashboardHandler()))
	s.RegisterRouteFunc("GET "+RouteDashboardAdmin, s.protected(s.RoleDashboardHandler(users.RoleAdmin), users.RoleAdmin))
	s.RegisterRouteFunc("GET "+RouteDashboardManager, s.protected(s.RoleDashboardHandler(users.RoleManager), users.RoleManager))
	s.RegisterRouteFunc("GET "+RouteDashboardSales, s.protected(s.RoleDashboardHandler(users.RoleSales), users.RoleSales))
	s.RegisterRouteFunc("GET "+RouteDashboardUser, s.protected(s.RoleDashboardHandler(users.RoleUser)))

	// USERS
	s.RegisterRouteFunc("GET "+RouteAdminUsers, s.protected(s.AdminUsersListHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminUsers, s.protected(s.AdminUserCreateHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("GET "+RouteAdminUserNew, s.protected(s.AdminUserNewHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("GET "+RouteAdminUser, s.protected(s.AdminUserDetailHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("GET "+RouteAdminUserEdit, s.protected(s.AdminUserEditHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminUserEdit, s.protected(s.AdminUserUpdateHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminUserDelete, s.protected(s.AdminUserDeleteHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminUserLock, s.protected(s.AdminUserLockHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminUserEnabled, s.protected(s.AdminUserEnabledHandler(), usersAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminUserRole, s.protected(s.AdminUserRoleHandler(), usersAdminRoles...))

	// COMPANIES
	s.RegisterRouteFunc("GET "+RouteAdminCompanies, s.protected(s.AdminCompaniesListHandler(), companiesAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminCompanies, s.protected(s.AdminCompanyCreateHandler(), companiesAdminRoles...))
	s.RegisterRouteFunc("GET "+RouteAdminCompanyNew, s.protected(s.AdminCompanyNewHandler(), companiesAdminRoles...))
	s.RegisterRouteFunc("GET "+RouteAdminCompany, s.protected(s.AdminCompanyDetailHandler(), companiesAdminRoles...))
	s.RegisterRouteFunc("GET "+RouteAdminCompanyEdit, s.protected(s.AdminCompanyEditHandler(), companiesAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminCompanyEdit, s.protected(s.AdminCompanyUpdateHandler(), companiesAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminCompanyDelete, s.protected(s.AdminCompanyDeleteHandler(), companiesAdminRoles...))
	s.RegisterRouteFunc("POST "+RouteAdminCompanyImage, s.protected(s.AdminCompanyImageHandler(), companiesAdminRoles...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			s.logger.Debug().Err(err).Str("path", filePath).Msg("static file not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

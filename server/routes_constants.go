package server

import "github.com/jrsteele09/go-inventory-ui/navigation"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHome = navigation.HomePath

	// Auth Routes
	RouteLogin          = navigation.LoginPath
	RouteLogout         = "/logout"
	RouteSignup         = navigation.SignupPath
	RouteForgotPassword = navigation.ForgotPasswordPath
	RouteResetPassword  = navigation.ResetPasswordPath
	RouteUnauthorized   = navigation.UnauthorizedPath
	RouteSessionExpired = "/session-expired"

	// Dashboard Routes
	RouteDashboard        = "/dashboard"
	RouteDashboardAdmin   = "/dashboard/admin"
	RouteDashboardManager = "/dashboard/manager"
	RouteDashboardSales   = "/dashboard/sales"
	RouteDashboardUser    = "/dashboard/user"

	// Users Admin Routes
	RouteAdminUsers       = "/admin/users"
	RouteAdminUserNew     = "/admin/users/new"
	RouteAdminUser        = "/admin/users/{id}"
	RouteAdminUserEdit    = "/admin/users/{id}/edit"
	RouteAdminUserDelete  = "/admin/users/{id}/delete"
	RouteAdminUserLock    = "/admin/users/{id}/lock"
	RouteAdminUserEnabled = "/admin/users/{id}/enabled"
	RouteAdminUserRole    = "/admin/users/{id}/role"

	// Companies Admin Routes
	RouteAdminCompanies     = "/admin/companies"
	RouteAdminCompanyNew    = "/admin/companies/new"
	RouteAdminCompany       = "/admin/companies/{id}"
	RouteAdminCompanyEdit   = "/admin/companies/{id}/edit"
	RouteAdminCompanyDelete = "/admin/companies/{id}/delete"
	RouteAdminCompanyImage  = "/admin/companies/{id}/image"

	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)

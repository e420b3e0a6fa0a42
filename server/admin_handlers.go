package server

import (
	"net/http"

	"github.com/jrsteele09/go-inventory-ui/companies"
	"github.com/jrsteele09/go-inventory-ui/users"
)

var dashboardRoutes = map[string]string{
	users.RoleAdmin:   RouteDashboardAdmin,
	users.RoleManager: RouteDashboardManager,
	users.RoleSales:   RouteDashboardSales,
	users.RoleUser:    RouteDashboardUser,
}

// DashboardSummary is what the role dashboards show
type DashboardSummary struct {
	Role          string
	UserCount     int
	LockedCount   int
	DisabledCount int
	CompanyCount  int
	Companies     []companies.Company
}

// DashboardHandler sends the user to the dashboard of their most privileged role
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, dashboardRoutes[userFrom(r.Context()).PrimaryRole()])
	}
}

// RoleDashboardHandler renders the dashboard of one role
func (s *Server) RoleDashboardHandler(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		summary := DashboardSummary{Role: role}

		switch role {
		case users.RoleAdmin:
			list, err := ws.Users.List(r.Context())
			if err != nil {
				s.handleAPIError(w, r, err, RouteHome)
				return
			}
			summary.UserCount = len(list)
			for _, u := range list {
				if u.Locked() {
					summary.LockedCount++
				}
				if !u.Enabled {
					summary.DisabledCount++
				}
			}
			fallthrough
		case users.RoleManager, users.RoleSales:
			companyList, err := ws.Companies.List(r.Context())
			if err != nil {
				s.handleAPIError(w, r, err, RouteHome)
				return
			}
			summary.CompanyCount = len(companyList)
			summary.Companies = companyList
		}

		data := s.page(r, users.RoleLabel(role)+" dashboard", "dashboard")
		data.Data = summary
		s.render(w, r, http.StatusOK, "dashboard.html", data)
	}
}

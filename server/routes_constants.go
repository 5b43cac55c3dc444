package server

import (
	"github.com/immoflow/accessgate/gate"
	"github.com/immoflow/accessgate/roles"
)

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHealth = "/healthz"

	// Auth Routes
	RouteLogin          = gate.PathLogin
	RouteAuthLogin      = "/auth/login"
	RouteAuthLogout     = "/auth/logout"
	RouteAuthRefresh    = "/auth/refresh"
	RouteSignup         = "/auth/signup"
	RouteForgotPassword = "/auth/forgot-password"
	RouteResetPassword  = "/auth/reset-password"
	RouteAccessDenied   = gate.PathAccessDenied

	// Resident portal (tenants and owners)
	RouteHome         = "/"
	RouteDeclarations = "/declarations"

	// Admin back office
	RouteAdminDashboard    = "/admin/dashboard"
	RouteAdminDeclarations = "/admin/declarations"
	RouteAdminProviders    = "/admin/providers"
	RouteAdminTechnicians  = "/admin/technicians"
	RouteAdminSettings     = "/admin/settings"

	// Technician / provider extranet
	RouteExtranetDashboard   = "/extranet/dashboard"
	RouteExtranetAssignments = "/extranet/assignments"
)

// LandingPath is where a freshly signed-in principal is sent, by role.
func LandingPath(role roles.Role) string {
	switch role {
	case roles.RoleAdmin, roles.RoleManager:
		return RouteAdminDashboard
	case roles.RoleProvider:
		return RouteExtranetDashboard
	}
	return RouteHome
}

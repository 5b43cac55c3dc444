package server

import (
	"github.com/immoflow/accessgate/roles"
	"github.com/immoflow/accessgate/session"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginPageHandler())
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))
	if refresher, ok := s.identity.(session.Refresher); ok {
		s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(refresher), s.APIMiddleware()...))
	}
	s.RegisterRouteFunc("GET "+RouteAccessDenied, s.AccessDeniedHandler())

	// Account provisioning + password reset
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordHandler(), s.APIMiddleware()...))

	// Resident portal: any authenticated session
	s.RegisterRouteHandler("GET "+RouteDeclarations,
		ChainMiddleware(s.sectionHandler("declarations"), s.HTMLMiddleware(s.WithSession(), s.RequireRole(roles.RoleUser))...))

	// Admin back office
	admin := func(section string) {
		s.RegisterRouteHandler("GET /admin/"+section,
			ChainMiddleware(s.sectionHandler("admin/"+section), s.HTMLMiddleware(s.WithSession(), s.RequireRole(roles.RoleAdmin))...))
	}
	admin("dashboard")
	admin("declarations")
	admin("providers")
	admin("technicians")

	// Notification/webhook settings are extra sensitive: staff accounts only,
	// whatever their role row says.
	s.RegisterRouteHandler("GET "+RouteAdminSettings,
		ChainMiddleware(s.sectionHandler("admin/settings"),
			s.HTMLMiddleware(s.WithSession(), s.RequireTrustedDomain(s.config.GetTrustedDomain()))...))

	// Technician / provider extranet
	s.RegisterRouteHandler("GET "+RouteExtranetDashboard,
		ChainMiddleware(s.sectionHandler("extranet/dashboard"), s.HTMLMiddleware(s.WithSession(), s.RequireRole(roles.RoleProvider))...))
	s.RegisterRouteHandler("GET "+RouteExtranetAssignments,
		ChainMiddleware(s.sectionHandler("extranet/assignments"), s.HTMLMiddleware(s.WithSession(), s.RequireRole(roles.RoleProvider))...))

	// Home: authenticated-only gate
	s.RegisterRouteHandler("GET "+RouteHome,
		ChainMiddleware(s.sectionHandler("home"), s.HTMLMiddleware(s.WithSession(), s.RequireSession())...))
}

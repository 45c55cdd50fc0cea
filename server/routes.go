package server

func (s *Server) initRoutes() {
	// Proxy routes, callable cross-origin from any host page
	s.RegisterRouteHandler("GET "+RouteTermsConditions, ChainMiddleware(s.TermsConditionsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteTermsConditions, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteTestExternalAPI, ChainMiddleware(s.TestExternalAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteTestExternalAPI, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteTest, ChainMiddleware(s.APITestHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteTest, ChainMiddleware(s.APITestHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteTest, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))

	// Dev host
	if s.bridge != nil {
		s.RegisterRouteHandler("GET "+RouteHostData, ChainMiddleware(s.HostDataGetHandler(), s.APIMiddleware()...))
		s.RegisterRouteHandler("POST "+RouteHostDataRefresh, ChainMiddleware(s.HostDataRefreshHandler(), s.APIMiddleware()...))
	}
	if s.publisher != nil {
		s.RegisterRouteHandler("POST "+RouteHostData, ChainMiddleware(s.HostDataPostHandler(), s.APIMiddleware()...))
	}

	// Authenticated downstream API
	if s.api != nil {
		s.RegisterRouteHandler("GET "+RouteCredentialsStatus, ChainMiddleware(s.CredentialsStatusHandler(), s.APIMiddleware()...))
		s.RegisterRouteHandler("GET "+RouteCredentialsTest, ChainMiddleware(s.CredentialsTestHandler(), s.APIMiddleware()...))
		s.RegisterRouteHandler("GET "+RouteCertEligibility, ChainMiddleware(s.CertEligibilityHandler(), s.APIMiddleware()...))
	}
}

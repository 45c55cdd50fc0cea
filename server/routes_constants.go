package server

// Route path constants
const (
	// Proxy routes
	RouteTermsConditions = "/api/terms-conditions"
	RouteTest            = "/api/test"
	RouteTestExternalAPI = "/api/test-external-api"

	// Dev host routes
	RouteHostData        = "/api/host-data"
	RouteHostDataRefresh = "/api/host-data/refresh"

	// Downstream API routes
	RouteCredentialsStatus = "/api/credentials/status"
	RouteCredentialsTest   = "/api/credentials/test"
	RouteCertEligibility   = "/api/policies/{policyNo}/certificate"
)

package config

import "time"

const defaultTermsAPIURL = "https://preprod-ap.manulife.com.kh/graphql/execute.json/insurance/getKHTermConditionsByLocale"

type APIConfig interface {
	GetHTTPTimeout() time.Duration
	GetTermsAPIURL() string
	GetBFFBaseURL() string
	GetAPIKey() string
	GetOAuthTokenURL() string
	GetOAuthClientID() string
	GetOAuthClientSecret() string
}

type API struct{}

var _ APIConfig = API{}

func (API) GetHTTPTimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", DefaultHTTPTimeout)
}

func (API) GetTermsAPIURL() string {
	return GetEnv("TERMS_API_URL", defaultTermsAPIURL)
}

// The dev host hands these to the bridge as its apiCredentials bundle.
func (API) GetBFFBaseURL() string {
	return GetEnv("BFF_BASE_URL", "")
}

func (API) GetAPIKey() string {
	return GetEnv("X_API_KEY", "")
}

func (API) GetOAuthTokenURL() string {
	return GetEnv("OAUTH_TOKEN_URL", "")
}

func (API) GetOAuthClientID() string {
	return GetEnv("OAUTH_CLIENT_ID", "")
}

func (API) GetOAuthClientSecret() string {
	return GetEnv("OAUTH_CLIENT_SECRET", "")
}

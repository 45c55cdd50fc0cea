package hostdata

import "net/url"

// Query parameter names the host may use when it links to the remote.
const (
	ParamUserID    = "userId"
	ParamClaimType = "claimType"
	ParamLanguage  = "language"
	ParamLang      = "lang"
	ParamContext   = "context"
)

// FromQuery extracts the recognised parameters from a page query string. All
// parameters, recognised or not, are also returned under KeyURLParams.
func FromQuery(values url.Values) RawRecord {
	rec := RawRecord{}
	if len(values) == 0 {
		return rec
	}
	if v := values.Get(ParamUserID); v != "" {
		rec[KeyUserID] = v
	}
	if v := values.Get(ParamClaimType); v != "" {
		rec[KeyClaimType] = v
	}
	if v := values.Get(ParamLanguage); v != "" {
		rec[KeyLanguage] = v
	} else if v := values.Get(ParamLang); v != "" {
		rec[KeyLanguage] = v
	}
	if v := values.Get(ParamContext); v != "" {
		rec[KeyPageContext] = v
	}

	params := make(map[string]any, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	rec[KeyURLParams] = params
	return rec
}

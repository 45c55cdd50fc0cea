package hostdata

import "encoding/json"

// RawRecord is an untyped payload as it crosses the host/remote boundary.
// It is converted to BridgeData by Normalize and never stored as-is.
type RawRecord map[string]any

// Recognised top-level keys of the shared host data.
const (
	KeyUserID         = "userId"
	KeyUserProfile    = "userProfile"
	KeyClaimType      = "claimType"
	KeyLanguage       = "language"
	KeySessionData    = "sessionData"
	KeyPageContext    = "pageContext"
	KeyTimestamp      = "timestamp"
	KeyClaimData      = "claimData"
	KeyAPICredentials = "apiCredentials"
	KeyURLParams      = "urlParams"
)

const DefaultLanguage = "en"

// BridgeData is the normalised view of everything the host shares with the remote.
// Zero values mean absent. Keys the remote does not recognise, and recognised keys
// whose value has an unexpected type, are kept verbatim in Extra.
type BridgeData struct {
	UserID         string
	UserProfile    *UserProfile
	ClaimType      string
	Language       string
	SessionData    *SessionData
	PageContext    string
	Timestamp      string
	ClaimData      any
	APICredentials *APICredentials
	Extra          RawRecord
}

// UserProfile describes the logged in host user.
type UserProfile struct {
	Name     string
	Email    string
	Phone    string
	UserID   string
	Language string
	Extra    RawRecord
}

// SessionData carries the host's login session.
type SessionData struct {
	IsLoggedIn bool
	Token      string
	Extra      RawRecord
}

// APICredentials is the bundle needed to call the authenticated downstream API.
type APICredentials struct {
	AccessToken  string `json:"accessToken,omitempty"`
	XAPIKey      string `json:"xApiKey,omitempty"`
	BaseURLBFF   string `json:"baseUrlBFF,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenExpiry  string `json:"tokenExpiry,omitempty"`
}

// Usable reports whether the bundle carries an access token.
func (c *APICredentials) Usable() bool {
	return c != nil && c.AccessToken != ""
}

// Complete reports whether every field needed to build a request is present.
func (c *APICredentials) Complete() bool {
	return c.Usable() && c.XAPIKey != "" && c.BaseURLBFF != ""
}

// GetLanguage returns the language or DefaultLanguage when none was shared.
func (d BridgeData) GetLanguage() string {
	if d.Language == "" {
		return DefaultLanguage
	}
	return d.Language
}

// IsLoggedIn is true only when the host explicitly marked the session as logged in.
func (d BridgeData) IsLoggedIn() bool {
	return d.SessionData != nil && d.SessionData.IsLoggedIn
}

// IsEmpty reports whether no key at all is present.
func (d BridgeData) IsEmpty() bool {
	return len(d.ToRecord()) == 0
}

// ToRecord flattens d back into its wire form. The result is a deep copy.
func (d BridgeData) ToRecord() RawRecord {
	rec := cloneRecord(d.Extra)
	if rec == nil {
		rec = RawRecord{}
	}
	setString(rec, KeyUserID, d.UserID)
	setString(rec, KeyClaimType, d.ClaimType)
	setString(rec, KeyLanguage, d.Language)
	setString(rec, KeyPageContext, d.PageContext)
	setString(rec, KeyTimestamp, d.Timestamp)
	if d.UserProfile != nil {
		rec[KeyUserProfile] = d.UserProfile.toRecord()
	}
	if d.SessionData != nil {
		rec[KeySessionData] = d.SessionData.toRecord()
	}
	if d.ClaimData != nil {
		rec[KeyClaimData] = cloneValue(d.ClaimData)
	}
	if d.APICredentials != nil {
		rec[KeyAPICredentials] = d.APICredentials.toRecord()
	}
	return rec
}

// Clone returns a deep copy of d.
func (d BridgeData) Clone() BridgeData {
	return Normalize(d)
}

func (d BridgeData) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(d.ToRecord()))
}

func (d *BridgeData) UnmarshalJSON(b []byte) error {
	var rec map[string]any
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	*d = Normalize(rec)
	return nil
}

func (p *UserProfile) toRecord() RawRecord {
	rec := cloneRecord(p.Extra)
	if rec == nil {
		rec = RawRecord{}
	}
	setString(rec, "name", p.Name)
	setString(rec, "email", p.Email)
	setString(rec, "phone", p.Phone)
	setString(rec, "userId", p.UserID)
	setString(rec, "language", p.Language)
	return rec
}

func (p UserProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(p.toRecord()))
}

func (s *SessionData) toRecord() RawRecord {
	rec := cloneRecord(s.Extra)
	if rec == nil {
		rec = RawRecord{}
	}
	// A non-boolean isLoggedIn from the host is kept as it was sent.
	if _, kept := rec["isLoggedIn"]; !kept || s.IsLoggedIn {
		rec["isLoggedIn"] = s.IsLoggedIn
	}
	setString(rec, "token", s.Token)
	return rec
}

func (s SessionData) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s.toRecord()))
}

func (c *APICredentials) toRecord() RawRecord {
	rec := RawRecord{}
	setString(rec, "accessToken", c.AccessToken)
	setString(rec, "xApiKey", c.XAPIKey)
	setString(rec, "baseUrlBFF", c.BaseURLBFF)
	setString(rec, "refreshToken", c.RefreshToken)
	setString(rec, "tokenExpiry", c.TokenExpiry)
	return rec
}

// ToRecord returns the wire form of the bundle.
func (c *APICredentials) ToRecord() RawRecord {
	if c == nil {
		return nil
	}
	return c.toRecord()
}

func setString(rec RawRecord, key, value string) {
	if value != "" {
		rec[key] = value
	}
}

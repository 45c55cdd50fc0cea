package hostdata

import (
	"encoding/json"
	"reflect"

	"github.com/jrsteele09/go-mfe-bridge/internal/utils"
)

// Normalize maps an arbitrary host payload onto BridgeData.
//
// Anything that is not an object yields an empty BridgeData. Recognised keys are
// copied only when their value is truthy. A recognised key holding a value of an
// unexpected type is not coerced; it is kept in Extra under its original name.
// Every other key is kept in Extra verbatim. The result shares no maps with v.
func Normalize(v any) BridgeData {
	rec, ok := AsRecord(v)
	if !ok {
		return BridgeData{}
	}

	var d BridgeData
	for key, value := range rec {
		switch key {
		case KeyUserID, KeyClaimType, KeyLanguage, KeyPageContext, KeyTimestamp:
			if !utils.Truthy(value) {
				continue
			}
			s, isString := value.(string)
			if !isString {
				d.setExtra(key, value)
				continue
			}
			d.setString(key, s)
		case KeyUserProfile:
			if !utils.Truthy(value) {
				continue
			}
			if profile, ok := normalizeProfile(value); ok {
				d.UserProfile = profile
			} else {
				d.setExtra(key, value)
			}
		case KeySessionData:
			if !utils.Truthy(value) {
				continue
			}
			if session, ok := normalizeSession(value); ok {
				d.SessionData = session
			} else {
				d.setExtra(key, value)
			}
		case KeyAPICredentials:
			if !utils.Truthy(value) {
				continue
			}
			if creds, ok := NormalizeCredentials(value); ok {
				d.APICredentials = creds
			} else {
				d.setExtra(key, value)
			}
		case KeyClaimData:
			if !utils.Truthy(value) {
				continue
			}
			d.ClaimData = cloneValue(value)
		default:
			d.setExtra(key, value)
		}
	}
	return d
}

// NormalizeCredentials converts a raw credential bundle. It reports false when v
// is not an object.
func NormalizeCredentials(v any) (*APICredentials, bool) {
	if c, ok := v.(*APICredentials); ok {
		if c == nil {
			return nil, false
		}
		out := *c
		return &out, true
	}
	if c, ok := v.(APICredentials); ok {
		return &c, true
	}
	rec, ok := AsRecord(v)
	if !ok {
		return nil, false
	}
	c := &APICredentials{}
	c.AccessToken, _ = utils.String(rec["accessToken"])
	c.XAPIKey, _ = utils.String(rec["xApiKey"])
	c.BaseURLBFF, _ = utils.String(rec["baseUrlBFF"])
	c.RefreshToken, _ = utils.String(rec["refreshToken"])
	c.TokenExpiry, _ = utils.String(rec["tokenExpiry"])
	return c, true
}

// AsRecord returns the object form of v. Maps keyed by string are used directly;
// other maps and structs go through their JSON encoding.
func AsRecord(v any) (RawRecord, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case RawRecord:
		return cloneRecord(t), true
	case map[string]any:
		return cloneRecord(t), true
	case map[string]string:
		rec := make(RawRecord, len(t))
		for k, s := range t {
			rec[k] = s
		}
		return rec, true
	case BridgeData:
		return t.ToRecord(), true
	case *BridgeData:
		if t == nil {
			return nil, false
		}
		return t.ToRecord(), true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map && rv.Kind() != reflect.Struct {
		return nil, false
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var rec RawRecord
	if err := json.Unmarshal(b, &rec); err != nil || rec == nil {
		return nil, false
	}
	return rec, true
}

func normalizeProfile(v any) (*UserProfile, bool) {
	rec, ok := AsRecord(v)
	if !ok {
		return nil, false
	}
	p := &UserProfile{}
	for key, value := range rec {
		s, isString := value.(string)
		switch {
		case key == "name" && isString:
			p.Name = s
		case key == "email" && isString:
			p.Email = s
		case key == "phone" && isString:
			p.Phone = s
		case key == "userId" && isString:
			p.UserID = s
		case key == "language" && isString:
			p.Language = s
		default:
			if p.Extra == nil {
				p.Extra = RawRecord{}
			}
			p.Extra[key] = value
		}
	}
	return p, true
}

func normalizeSession(v any) (*SessionData, bool) {
	rec, ok := AsRecord(v)
	if !ok {
		return nil, false
	}
	s := &SessionData{}
	for key, value := range rec {
		switch key {
		case "isLoggedIn":
			if b, isBool := value.(bool); isBool {
				s.IsLoggedIn = b
				continue
			}
		case "token":
			if token, isString := value.(string); isString {
				s.Token = token
				continue
			}
		}
		if s.Extra == nil {
			s.Extra = RawRecord{}
		}
		s.Extra[key] = value
	}
	return s, true
}

func (d *BridgeData) setString(key, value string) {
	switch key {
	case KeyUserID:
		d.UserID = value
	case KeyClaimType:
		d.ClaimType = value
	case KeyLanguage:
		d.Language = value
	case KeyPageContext:
		d.PageContext = value
	case KeyTimestamp:
		d.Timestamp = value
	}
}

func (d *BridgeData) setExtra(key string, value any) {
	if d.Extra == nil {
		d.Extra = RawRecord{}
	}
	d.Extra[key] = cloneValue(value)
}

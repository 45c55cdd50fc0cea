package credentials_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-mfe-bridge/credentials"
	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/stretchr/testify/require"
)

func TestInspectToken(t *testing.T) {
	exp := fixedNow.Add(30 * time.Minute)
	info, err := credentials.InspectToken(mintToken(t, exp))
	require.NoError(t, err)
	require.Equal(t, "u1", info.Subject)
	require.True(t, exp.Equal(info.ExpiresAt))

	_, err = credentials.InspectToken("opaque-token")
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	tests := []struct {
		name  string
		creds *hostdata.APICredentials
		want  bool
	}{
		{"nil bundle", nil, false},
		{"opaque token", &hostdata.APICredentials{AccessToken: "opaque"}, false},
		{"jwt in the future", &hostdata.APICredentials{AccessToken: mintToken(t, fixedNow.Add(time.Hour))}, false},
		{"jwt in the past", &hostdata.APICredentials{AccessToken: mintToken(t, fixedNow.Add(-time.Hour))}, true},
		{"tokenExpiry wins over jwt", &hostdata.APICredentials{
			AccessToken: mintToken(t, fixedNow.Add(time.Hour)),
			TokenExpiry: fixedNow.Add(-time.Second).Format(time.RFC3339),
		}, true},
		{"unparseable tokenExpiry falls back", &hostdata.APICredentials{AccessToken: "opaque", TokenExpiry: "soon"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, credentials.Expired(tt.creds, fixedNow))
		})
	}
}

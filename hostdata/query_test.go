package hostdata_test

import (
	"net/url"
	"testing"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/stretchr/testify/require"
)

func TestFromQuery(t *testing.T) {
	t.Run("recognised parameters", func(t *testing.T) {
		q, err := url.ParseQuery("userId=u2&claimType=medical&language=km&context=claims&ref=email")
		require.NoError(t, err)

		rec := hostdata.FromQuery(q)
		require.Equal(t, "u2", rec["userId"])
		require.Equal(t, "medical", rec["claimType"])
		require.Equal(t, "km", rec["language"])
		require.Equal(t, "claims", rec["pageContext"])
		require.Equal(t, map[string]any{
			"userId": "u2", "claimType": "medical", "language": "km", "context": "claims", "ref": "email",
		}, rec["urlParams"])
	})

	t.Run("lang alias", func(t *testing.T) {
		q, _ := url.ParseQuery("userId=u2&lang=en")
		d := hostdata.Normalize(hostdata.FromQuery(q))
		require.Equal(t, "u2", d.UserID)
		require.Equal(t, "en", d.GetLanguage())
	})

	t.Run("language wins over lang", func(t *testing.T) {
		q, _ := url.ParseQuery("lang=en&language=km")
		require.Equal(t, "km", hostdata.FromQuery(q)["language"])
	})

	t.Run("empty query", func(t *testing.T) {
		require.Empty(t, hostdata.FromQuery(url.Values{}))
	})
}

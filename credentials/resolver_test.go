package credentials_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-mfe-bridge/bridge"
	"github.com/jrsteele09/go-mfe-bridge/credentials"
	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/hostenv"
	"github.com/jrsteele09/go-mfe-bridge/internal/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func bundle(token string) map[string]any {
	return map[string]any{
		"accessToken": token,
		"xApiKey":     "key-" + token,
		"baseUrlBFF":  "https://bff.example.com",
	}
}

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

type fixture struct {
	scope    *hostenv.Scope
	consumer *bridge.Consumer
	store    *credentials.MemoryStore
	refreshN atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	scope := hostenv.NewScope()
	consumer, err := bridge.New(scope, bridge.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(consumer.Teardown)
	return &fixture{scope: scope, consumer: consumer, store: credentials.NewMemoryStore()}
}

func (f *fixture) resolver(t *testing.T) *credentials.Resolver {
	t.Helper()
	r, err := credentials.NewResolver(f.scope, f.consumer,
		credentials.WithStore(f.store),
		credentials.WithLogger(zerolog.Nop()),
		credentials.WithNowTime(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return r
}

func (f *fixture) refreshWith(token string) {
	f.scope.SetCredentialRefresher(func(context.Context) (any, error) {
		f.refreshN.Add(1)
		return bundle(token), nil
	})
}

func TestNewResolver_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := credentials.NewResolver(nil, f.consumer)
	require.Error(t, err)
	_, err = credentials.NewResolver(f.scope, nil)
	require.Error(t, err)
}

func TestGetCredentials_PriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		want  string
	}{
		{
			name: "accessor wins over everything",
			setup: func(f *fixture) {
				f.scope.SetCredentialAccessor(func() any { return bundle("accessor") })
				f.scope.SetHostSharedData(map[string]any{"apiCredentials": bundle("shared")})
				f.consumer.UpdateState(map[string]any{"apiCredentials": bundle("state")})
				f.refreshWith("refresh")
			},
			want: "accessor",
		},
		{
			name: "shared state when accessor has no token",
			setup: func(f *fixture) {
				f.scope.SetCredentialAccessor(func() any { return map[string]any{"xApiKey": "k"} })
				f.scope.SetHostSharedData(map[string]any{"apiCredentials": bundle("shared")})
				f.consumer.UpdateState(map[string]any{"apiCredentials": bundle("state")})
				f.refreshWith("refresh")
			},
			want: "shared",
		},
		{
			name: "consumer state when host has nothing",
			setup: func(f *fixture) {
				f.scope.SetHostSharedData(map[string]any{"userId": "u1"})
				f.consumer.UpdateState(map[string]any{"apiCredentials": bundle("state")})
				f.refreshWith("refresh")
			},
			want: "state",
		},
		{
			name: "refresh as the last resort",
			setup: func(f *fixture) {
				f.scope.SetHostSharedData(map[string]any{"userId": "u1"})
				f.refreshWith("refresh")
			},
			want: "refresh",
		},
		{
			name: "throwing accessor is skipped",
			setup: func(f *fixture) {
				f.scope.SetCredentialAccessor(func() any { panic("host bug") })
				f.scope.SetHostSharedData(map[string]any{"apiCredentials": bundle("shared")})
			},
			want: "shared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)
			creds, err := f.resolver(t).GetCredentials(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.want, creds.AccessToken)
		})
	}
}

func TestGetCredentials_Missing(t *testing.T) {
	f := newFixture(t)
	r := f.resolver(t)

	_, err := r.GetCredentials(context.Background())
	require.ErrorIs(t, err, errors.ErrCredentialsMissing)
	require.ErrorIs(t, err, errors.ErrNotLoggedIn)
	require.Contains(t, credentials.UserMessage(err), "not logged in")

	f.consumer.UpdateState(map[string]any{"sessionData": map[string]any{"isLoggedIn": true}})
	_, err = r.GetCredentials(context.Background())
	require.ErrorIs(t, err, errors.ErrCredentialsMissing)
	require.NotErrorIs(t, err, errors.ErrNotLoggedIn)
}

func TestGetCredentials_SkipsExpiredTokens(t *testing.T) {
	f := newFixture(t)
	expired := mintToken(t, fixedNow.Add(-time.Minute))
	valid := mintToken(t, fixedNow.Add(time.Hour))

	f.scope.SetCredentialAccessor(func() any { return bundle(expired) })
	f.scope.SetHostSharedData(map[string]any{"apiCredentials": bundle(valid)})

	creds, err := f.resolver(t).GetCredentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, valid, creds.AccessToken)
}

func TestGetCredentials_LocalStoreOnlyWhenHostAbsent(t *testing.T) {
	t.Run("host absent", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Save(&hostdata.APICredentials{AccessToken: "stored", XAPIKey: "k", BaseURLBFF: "b"}))
		f.refreshWith("refresh")

		creds, err := f.resolver(t).GetCredentials(context.Background())
		require.NoError(t, err)
		require.Equal(t, "stored", creds.AccessToken)
		require.Equal(t, int32(0), f.refreshN.Load())
	})

	t.Run("shared state present without credentials", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Save(&hostdata.APICredentials{AccessToken: "stored"}))
		f.scope.SetHostSharedData(map[string]any{"userId": "u1"})
		f.refreshWith("refresh")

		creds, err := f.resolver(t).GetCredentials(context.Background())
		require.NoError(t, err)
		require.Equal(t, "refresh", creds.AccessToken)
	})
}

func TestGetCredentials_WritesThroughToStore(t *testing.T) {
	f := newFixture(t)
	f.scope.SetCredentialAccessor(func() any { return bundle("accessor") })

	_, err := f.resolver(t).GetCredentials(context.Background())
	require.NoError(t, err)

	stored, err := f.store.Load()
	require.NoError(t, err)
	require.Equal(t, "accessor", stored.AccessToken)
	require.Equal(t, "key-accessor", stored.XAPIKey)
}

func TestRefresh_UpdatesStateAndStore(t *testing.T) {
	f := newFixture(t)
	f.refreshWith("fresh")
	r := f.resolver(t)

	creds, err := r.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh", creds.AccessToken)
	require.Equal(t, "fresh", f.consumer.GetAPICredentials().AccessToken)

	stored, err := f.store.Load()
	require.NoError(t, err)
	require.Equal(t, "fresh", stored.AccessToken)

	require.NoError(t, r.ClearStoredCredentials())
	stored, err = f.store.Load()
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestRefresh_Failures(t *testing.T) {
	f := newFixture(t)
	r := f.resolver(t)

	_, err := r.Refresh(context.Background())
	require.ErrorIs(t, err, errors.ErrRefreshFailed)

	f.scope.SetCredentialRefresher(func(context.Context) (any, error) {
		return map[string]any{"xApiKey": "k"}, nil
	})
	_, err = r.Refresh(context.Background())
	require.ErrorIs(t, err, errors.ErrRefreshFailed)
}

func TestRefresh_ConcurrentCallersShareOneRefresh(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.scope.SetCredentialRefresher(func(context.Context) (any, error) {
		f.refreshN.Add(1)
		<-release
		return bundle("shared-refresh"), nil
	})
	r := f.resolver(t)

	const callers = 5
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			creds, err := r.Refresh(context.Background())
			if err == nil {
				tokens[i] = creds.AccessToken
			}
		}(i)
	}

	require.Eventually(t, func() bool { return f.refreshN.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), f.refreshN.Load())
	for _, token := range tokens {
		require.Equal(t, "shared-refresh", token)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	token := mintToken(t, fixedNow.Add(time.Hour))
	f.scope.SetCredentialAccessor(func() any {
		return map[string]any{"accessToken": token, "xApiKey": "k"}
	})

	status := f.resolver(t).Status(context.Background())
	require.True(t, status.Available)
	require.True(t, status.HasAccessToken)
	require.True(t, status.HasXAPIKey)
	require.False(t, status.HasBaseURL)
	require.Equal(t, fixedNow.Add(time.Hour).Format(time.RFC3339), status.TokenExpiry)

	empty := newFixture(t)
	status = empty.resolver(t).Status(context.Background())
	require.False(t, status.Available)
	require.NotEmpty(t, status.Error)
}

func TestUserMessage(t *testing.T) {
	require.Empty(t, credentials.UserMessage(nil))
	require.NotEqual(t,
		credentials.UserMessage(errors.ErrCredentialsMissing),
		credentials.UserMessage(errors.Join(errors.ErrCredentialsMissing, errors.ErrNotLoggedIn)),
	)
	require.Contains(t, credentials.UserMessage(errors.Wrapf(errors.ErrUnauthorized, "call")), "expired")
}

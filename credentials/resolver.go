package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/hostenv"
	"github.com/jrsteele09/go-mfe-bridge/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// State is the part of the bridge consumer the resolver reads and updates.
type State interface {
	GetAPICredentials() *hostdata.APICredentials
	IsLoggedIn() bool
	UpdateState(patch any)
}

// Resolver finds the API credential bundle for downstream calls.
type Resolver struct {
	env    hostenv.Environment
	state  State
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	refreshes singleflight.Group
}

func NewResolver(env hostenv.Environment, state State, options ...Option) (*Resolver, error) {
	if env == nil {
		return nil, fmt.Errorf("[credentials.NewResolver] environment is required")
	}
	if state == nil {
		return nil, fmt.Errorf("[credentials.NewResolver] state is required")
	}
	r := &Resolver{
		env:    env,
		state:  state,
		logger: log.Logger,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Usable reports whether creds has an access token that is not known to have
// expired.
func (r *Resolver) Usable(creds *hostdata.APICredentials) bool {
	return creds.Usable() && !Expired(creds, r.now())
}

// GetCredentials returns the first usable bundle from, in order: the host
// credential accessor, the apiCredentials field of the host shared state, the
// consumer state, the local store and finally the host refresh function. The
// local store is consulted only when the host exposes neither the accessor nor
// the shared state.
func (r *Resolver) GetCredentials(ctx context.Context) (*hostdata.APICredentials, error) {
	creds, accessorErr := r.fromAccessor()
	if r.Usable(creds) {
		r.logger.Debug().Str("source", "getMfeApiCredentials").Msg("Resolved API credentials")
		r.save(creds)
		return creds, nil
	}

	creds, sharedErr := r.fromSharedState()
	if r.Usable(creds) {
		r.logger.Debug().Str("source", "hostSharedData").Msg("Resolved API credentials")
		r.save(creds)
		return creds, nil
	}

	if creds = r.state.GetAPICredentials(); r.Usable(creds) {
		r.logger.Debug().Str("source", "state").Msg("Resolved API credentials")
		return creds, nil
	}

	if r.store != nil && errors.Is(accessorErr, hostenv.ErrUnavailable) && errors.Is(sharedErr, hostenv.ErrUnavailable) {
		stored, err := r.store.Load()
		if err != nil {
			r.logger.Warn().Err(err).Msg("Failed to read local credential store")
		} else if r.Usable(stored) {
			r.logger.Debug().Str("source", "store").Msg("Resolved API credentials")
			return stored, nil
		}
	}

	creds, err := r.Refresh(ctx)
	if err == nil {
		return creds, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	r.logger.Debug().Err(err).Msg("No API credentials available")
	return nil, r.missing()
}

func (r *Resolver) missing() error {
	if !r.state.IsLoggedIn() {
		return errors.Join(errors.ErrCredentialsMissing, errors.ErrNotLoggedIn)
	}
	return errors.ErrCredentialsMissing
}

func (r *Resolver) fromAccessor() (*hostdata.APICredentials, error) {
	raw, err := r.env.ReadCredentialAccessor()
	if err != nil {
		r.logSourceError("getMfeApiCredentials", err)
		return nil, err
	}
	creds, _ := hostdata.NormalizeCredentials(raw)
	return creds, nil
}

func (r *Resolver) fromSharedState() (*hostdata.APICredentials, error) {
	raw, err := r.env.ReadSharedState()
	if err != nil {
		r.logSourceError("hostSharedData", err)
		return nil, err
	}
	rec, ok := hostdata.AsRecord(raw)
	if !ok {
		return nil, nil
	}
	creds, _ := hostdata.NormalizeCredentials(rec[hostdata.KeyAPICredentials])
	return creds, nil
}

// Refresh asks the host for a new bundle. Concurrent callers share a single
// in-flight refresh. A usable bundle is merged into the consumer state and
// written to the local store.
func (r *Resolver) Refresh(ctx context.Context) (*hostdata.APICredentials, error) {
	v, err, shared := r.refreshes.Do("refresh", func() (any, error) {
		raw, err := r.env.RefreshCredentials(ctx)
		if err != nil {
			r.logSourceError("refreshMfeApiCredentials", err)
			return nil, fmt.Errorf("%w: %w", errors.ErrRefreshFailed, err)
		}
		creds, _ := hostdata.NormalizeCredentials(raw)
		if !r.Usable(creds) {
			return nil, errors.Wrapf(errors.ErrRefreshFailed, "no usable bundle returned")
		}

		r.state.UpdateState(map[string]any{hostdata.KeyAPICredentials: creds.ToRecord()})
		r.save(creds)
		r.logger.Info().Msg("Refreshed API credentials")
		return creds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug().Msg("Joined in-flight credential refresh")
	}
	out := *v.(*hostdata.APICredentials)
	return &out, nil
}

// ClearStoredCredentials empties the local store, if there is one.
func (r *Resolver) ClearStoredCredentials() error {
	if r.store == nil {
		return nil
	}
	return r.store.Clear()
}

// Status summarises the credentials GetCredentials would return.
type Status struct {
	Available      bool   `json:"available"`
	HasAccessToken bool   `json:"hasAccessToken"`
	HasXAPIKey     bool   `json:"hasXApiKey"`
	HasBaseURL     bool   `json:"hasBaseUrl"`
	TokenExpiry    string `json:"tokenExpiry,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Status resolves credentials and reports which parts are present. Token
// values are never included.
func (r *Resolver) Status(ctx context.Context) Status {
	creds, err := r.GetCredentials(ctx)
	if err != nil {
		return Status{Error: UserMessage(err)}
	}
	status := Status{
		Available:      true,
		HasAccessToken: creds.AccessToken != "",
		HasXAPIKey:     creds.XAPIKey != "",
		HasBaseURL:     creds.BaseURLBFF != "",
	}
	if expiry := Expiry(creds); !expiry.IsZero() {
		status.TokenExpiry = expiry.UTC().Format(time.RFC3339)
	}
	return status
}

func (r *Resolver) save(creds *hostdata.APICredentials) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(creds); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to write local credential store")
	}
}

func (r *Resolver) logSourceError(name string, err error) {
	if errors.Is(err, hostenv.ErrUnavailable) {
		r.logger.Debug().Str("source", name).Msg("Credential source not available")
		return
	}
	r.logger.Warn().Err(err).Str("source", name).Msg("Credential source failed")
}

// UserMessage turns a credential or call error into text that can be shown to
// the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errors.ErrNotLoggedIn):
		return "You are not logged in. Please log in through the main application and try again."
	case errors.Is(err, errors.ErrCredentialsMissing):
		return "API credentials are not available. Please try again later."
	case errors.Is(err, errors.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, errors.ErrNetwork):
		return "The service could not be reached. Check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

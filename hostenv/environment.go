// Package hostenv adapts the host page's shared execution context for the
// remote. Everything the host exposes is reached through Environment, so the
// bridge never touches global state directly.
package hostenv

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jrsteele09/go-mfe-bridge/internal/errors"
)

var (
	// ErrUnavailable is returned when the host does not expose a source.
	ErrUnavailable = errors.ErrSourceUnavailable
	// ErrThrew is returned when a host source panicked or failed.
	ErrThrew = errors.ErrSourceThrew
)

// Subscription is the handle returned by a push registration.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a plain function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// Environment is the remote's view of the host contract. Every method returns
// ErrUnavailable when the host does not provide the corresponding name.
type Environment interface {
	// ReadSharedState returns the host's shared data object (hostSharedData).
	ReadSharedState() (any, error)
	// ReadAccessorFn calls the host accessor function (getMfeData).
	ReadAccessorFn() (any, error)
	// ReadServiceAccessor calls the service getter (mfeSharedDataService.getHostData).
	ReadServiceAccessor() (any, error)
	// ReadQuery returns the query parameters of the page the remote runs in.
	ReadQuery() (url.Values, error)
	// RegisterSubscription registers cb for host pushes (subscribeMfeData).
	RegisterSubscription(cb func(any)) (Subscription, error)
	// ReadCredentialAccessor calls getMfeApiCredentials.
	ReadCredentialAccessor() (any, error)
	// RefreshCredentials calls refreshMfeApiCredentials and waits for the result.
	RefreshCredentials(ctx context.Context) (any, error)
}

// guard runs fn and converts a panic into ErrThrew.
func guard[T any](source string, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v: %w", source, r, ErrThrew)
		}
	}()
	return fn()
}

package hostenv

import (
	"context"
	"net/url"
	"sync"
)

// DataService is the service-style accessor a host may expose.
type DataService interface {
	GetHostData() any
}

// Scope is the shared execution context a host and its remotes run in. The
// host fills the slots it supports; the remote reads them through the
// Environment methods. Unset slots read as ErrUnavailable.
type Scope struct {
	mu                  sync.RWMutex
	sharedData          any
	accessor            func() any
	service             DataService
	subscriber          func(cb func(any)) Subscription
	credentialAccessor  func() any
	credentialRefresher func(ctx context.Context) (any, error)
	location            *url.URL
}

var _ Environment = (*Scope)(nil)

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// SetHostSharedData binds hostSharedData.
func (s *Scope) SetHostSharedData(data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sharedData = data
}

// SetAccessor binds getMfeData.
func (s *Scope) SetAccessor(fn func() any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessor = fn
}

// SetService binds mfeSharedDataService.
func (s *Scope) SetService(service DataService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.service = service
}

// SetSubscriber binds subscribeMfeData.
func (s *Scope) SetSubscriber(fn func(cb func(any)) Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriber = fn
}

// SetCredentialAccessor binds getMfeApiCredentials.
func (s *Scope) SetCredentialAccessor(fn func() any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentialAccessor = fn
}

// SetCredentialRefresher binds refreshMfeApiCredentials.
func (s *Scope) SetCredentialRefresher(fn func(ctx context.Context) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentialRefresher = fn
}

// SetLocation sets the URL of the page the remote is loaded in.
func (s *Scope) SetLocation(u *url.URL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = u
}

func (s *Scope) ReadSharedState() (any, error) {
	s.mu.RLock()
	data := s.sharedData
	s.mu.RUnlock()
	if data == nil {
		return nil, ErrUnavailable
	}
	return data, nil
}

func (s *Scope) ReadAccessorFn() (any, error) {
	s.mu.RLock()
	fn := s.accessor
	s.mu.RUnlock()
	if fn == nil {
		return nil, ErrUnavailable
	}
	return guard("getMfeData", func() (any, error) { return fn(), nil })
}

func (s *Scope) ReadServiceAccessor() (any, error) {
	s.mu.RLock()
	service := s.service
	s.mu.RUnlock()
	if service == nil {
		return nil, ErrUnavailable
	}
	return guard("mfeSharedDataService.getHostData", func() (any, error) { return service.GetHostData(), nil })
}

func (s *Scope) ReadQuery() (url.Values, error) {
	s.mu.RLock()
	location := s.location
	s.mu.RUnlock()
	if location == nil {
		return nil, ErrUnavailable
	}
	return location.Query(), nil
}

func (s *Scope) RegisterSubscription(cb func(any)) (Subscription, error) {
	s.mu.RLock()
	fn := s.subscriber
	s.mu.RUnlock()
	if fn == nil {
		return nil, ErrUnavailable
	}
	sub, err := guard("subscribeMfeData", func() (Subscription, error) { return fn(cb), nil })
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = SubscriptionFunc(nil)
	}
	return sub, nil
}

func (s *Scope) ReadCredentialAccessor() (any, error) {
	s.mu.RLock()
	fn := s.credentialAccessor
	s.mu.RUnlock()
	if fn == nil {
		return nil, ErrUnavailable
	}
	return guard("getMfeApiCredentials", func() (any, error) { return fn(), nil })
}

func (s *Scope) RefreshCredentials(ctx context.Context) (any, error) {
	s.mu.RLock()
	fn := s.credentialRefresher
	s.mu.RUnlock()
	if fn == nil {
		return nil, ErrUnavailable
	}
	return guard("refreshMfeApiCredentials", func() (any, error) { return fn(ctx) })
}

package hostenv

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Publisher is the host side of the bridge: a single last-write-wins bag of
// shared data with a merge-style setter that notifies subscribers.
type Publisher struct {
	mu          sync.RWMutex
	data        hostdata.RawRecord
	subscribers map[string]func(any)
	order       []string
	scopes      []*Scope

	// setMu serialises SetHostData so subscribers see updates in order.
	setMu  sync.Mutex
	logger zerolog.Logger
}

var _ DataService = (*Publisher)(nil)

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger used for subscriber failures.
func WithPublisherLogger(logger zerolog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher holding a copy of initial.
func NewPublisher(initial hostdata.RawRecord, options ...PublisherOption) *Publisher {
	seed, _ := hostdata.AsRecord(initial)
	p := &Publisher{
		data:        hostdata.MergeRecords(nil, seed),
		subscribers: make(map[string]func(any)),
		logger:      log.Logger,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// GetHostData returns a snapshot of the shared data.
func (p *Publisher) GetHostData() any {
	return p.Snapshot()
}

// Snapshot returns a deep copy of the shared data.
func (p *Publisher) Snapshot() hostdata.RawRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rec, _ := hostdata.AsRecord(p.data)
	if rec == nil {
		rec = hostdata.RawRecord{}
	}
	return rec
}

// SetHostData merges patch into the shared data and notifies every subscriber
// with the full merged data. Subscribers must not call SetHostData themselves.
func (p *Publisher) SetHostData(patch hostdata.RawRecord) {
	p.setMu.Lock()
	defer p.setMu.Unlock()

	patch, _ = hostdata.AsRecord(patch)

	p.mu.Lock()
	p.data = hostdata.MergeRecords(p.data, patch)
	scopes := append([]*Scope(nil), p.scopes...)
	callbacks := make([]func(any), 0, len(p.order))
	for _, id := range p.order {
		callbacks = append(callbacks, p.subscribers[id])
	}
	p.mu.Unlock()

	for _, s := range scopes {
		s.SetHostSharedData(p.Snapshot())
	}
	for _, cb := range callbacks {
		p.notify(cb, p.Snapshot())
	}
}

func (p *Publisher) notify(cb func(any), data hostdata.RawRecord) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("Subscriber callback failed")
		}
	}()
	cb(data)
}

// Subscribe registers cb for future updates.
func (p *Publisher) Subscribe(cb func(any)) Subscription {
	id := uuid.New().String()

	p.mu.Lock()
	p.subscribers[id] = cb
	p.order = append(p.order, id)
	count := len(p.order)
	p.mu.Unlock()

	p.logger.Debug().Str("subscriber", id).Int("count", count).Msg("Subscriber added")

	var once sync.Once
	return SubscriptionFunc(func() {
		once.Do(func() { p.unsubscribe(id) })
	})
}

func (p *Publisher) unsubscribe(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subscribers, id)
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// SubscriberCount reports how many subscribers are registered.
func (p *Publisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}

// Install binds the publisher into every data slot of s: hostSharedData,
// getMfeData, mfeSharedDataService and subscribeMfeData.
func (p *Publisher) Install(s *Scope) {
	s.SetHostSharedData(p.Snapshot())
	s.SetAccessor(p.GetHostData)
	s.SetService(p)
	s.SetSubscriber(p.Subscribe)

	p.mu.Lock()
	p.scopes = append(p.scopes, s)
	p.mu.Unlock()
}

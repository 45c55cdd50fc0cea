package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/hostenv"
	"github.com/jrsteele09/go-mfe-bridge/internal/config"
	"github.com/jrsteele09/go-mfe-bridge/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Consumer is the remote side of the bridge. It owns the normalised copy of the
// host data and is the only thing UI components read host data from.
type Consumer struct {
	env          hostenv.Environment
	logger       zerolog.Logger
	pollInterval time.Duration

	mu    sync.RWMutex
	state hostdata.BridgeData

	readers *broadcaster

	lifeMu       sync.Mutex
	holding      atomic.Bool
	initialized  bool
	tornDown     atomic.Bool
	subscription hostenv.Subscription
	poller       *poller
}

// Subscription is returned by SubscribeToState.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe detaches the reader. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

// New creates a Consumer reading from env. Nothing is read and no polling is
// started until Initialize is called.
func New(env hostenv.Environment, options ...Option) (*Consumer, error) {
	if env == nil {
		return nil, fmt.Errorf("[bridge.New] environment is required")
	}
	c := &Consumer{
		env:          env,
		logger:       log.Logger,
		pollInterval: config.DefaultPollInterval,
	}
	for _, opt := range options {
		opt(c)
	}
	c.readers = newBroadcaster(&c.logger)
	return c, nil
}

// Initialize reads the host data, publishes the first state and starts
// following the host: through its push subscription when it has one, by
// polling otherwise.
func (c *Consumer) Initialize() error {
	err := c.initialize()
	c.readers.drain()
	return err
}

// initialize runs with lifeMu held. States merged meanwhile, including pushes
// the host makes from inside its subscribe call, are queued and delivered once
// the lock is released.
func (c *Consumer) initialize() error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	c.holding.Store(true)
	defer c.holding.Store(false)

	if c.tornDown.Load() {
		return errors.ErrTornDown
	}
	if c.initialized {
		return errors.ErrAlreadyInitialized
	}
	c.initialized = true

	c.apply(c.readAll())

	sub, err := c.env.RegisterSubscription(c.onPush)
	if err != nil {
		c.logSourceError("subscribeMfeData", err)
		c.logger.Info().Dur("interval", c.pollInterval).Msg("Host push unavailable, polling for changes")
		c.startPolling(c.pollInterval)
		return nil
	}
	c.subscription = sub
	c.logger.Info().Msg("Subscribed to host data updates")
	return nil
}

func (c *Consumer) onPush(data any) {
	if c.tornDown.Load() {
		return
	}
	c.logger.Debug().Msg("Received host data update")
	c.apply(hostdata.Normalize(data))
}

// apply merges patch into the state and broadcasts the result.
func (c *Consumer) apply(patch hostdata.BridgeData) {
	c.mu.Lock()
	c.state = hostdata.Merge(c.state, patch)
	c.readers.publish(c.state.Clone())
	c.mu.Unlock()
	if !c.holding.Load() {
		c.readers.drain()
	}
}

// mergeIfChanged is the polling half of apply: it queues a broadcast only when
// the merge changes the state. The caller drains.
func (c *Consumer) mergeIfChanged(patch hostdata.BridgeData) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !hostdata.Changes(c.state, patch) {
		return false
	}
	c.state = hostdata.Merge(c.state, patch)
	c.readers.publish(c.state.Clone())
	return true
}

func (c *Consumer) pollOnce() bool {
	if !c.mergeIfChanged(c.readSnapshot()) {
		return false
	}
	c.logger.Debug().Msg("Detected host data change")
	return true
}

// GetState returns a copy of the current state.
func (c *Consumer) GetState() hostdata.BridgeData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// UpdateState normalises patch, merges it into the state and broadcasts.
func (c *Consumer) UpdateState(patch any) {
	c.apply(hostdata.Normalize(patch))
}

// SubscribeToState attaches fn as a reader. fn is called with the current state
// first and then with every later state, in the order the states were merged.
func (c *Consumer) SubscribeToState(fn func(hostdata.BridgeData)) *Subscription {
	c.mu.RLock()
	id := c.readers.add(fn, c.state.Clone())
	c.mu.RUnlock()
	c.readers.drain()

	if id == 0 {
		return &Subscription{}
	}
	return &Subscription{cancel: func() { c.readers.remove(id) }}
}

// RefreshState re-reads every host source and merges the result. Subscriptions
// and polling are left as they are.
func (c *Consumer) RefreshState() {
	c.apply(c.readAll())
}

// SetPollingEnabled starts or stops the fallback polling loop. Any running loop
// is stopped first. A non-positive interval selects the configured default.
func (c *Consumer) SetPollingEnabled(enabled bool, interval time.Duration) {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if c.tornDown.Load() {
		c.logger.Warn().Msg("Polling change ignored after teardown")
		return
	}
	c.stopPolling()
	if enabled {
		c.startPolling(interval)
	}
}

// IsPolling reports whether the fallback polling loop is running.
func (c *Consumer) IsPolling() bool {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	return c.poller != nil
}

// IsSubscribed reports whether a host push subscription is active.
func (c *Consumer) IsSubscribed() bool {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	return c.subscription != nil
}

// startPolling must be called with lifeMu held.
func (c *Consumer) startPolling(interval time.Duration) {
	if interval <= 0 {
		interval = c.pollInterval
	}
	c.poller = startPoller(interval, c.pollOnce, c.readers.drain)
}

// stopPolling must be called with lifeMu held.
func (c *Consumer) stopPolling() {
	if c.poller == nil {
		return
	}
	c.poller.Stop()
	c.poller = nil
}

// Teardown releases the host subscription, stops polling and stops all
// broadcasts. Later calls do nothing.
func (c *Consumer) Teardown() {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if c.tornDown.Swap(true) {
		return
	}
	c.stopPolling()
	if c.subscription != nil {
		unsubscribe(c.subscription, &c.logger)
		c.subscription = nil
	}
	c.readers.close()
	c.logger.Debug().Msg("Bridge torn down")
}

func unsubscribe(sub hostenv.Subscription, logger *zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Interface("panic", r).Msg("Host unsubscribe failed")
		}
	}()
	sub.Unsubscribe()
}

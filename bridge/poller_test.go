package bridge_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-mfe-bridge/bridge"
	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/jrsteele09/go-mfe-bridge/hostenv"
	"github.com/stretchr/testify/require"
)

const testInterval = 5 * time.Millisecond

// pollingHost exposes only an accessor function, so the consumer has to poll.
func pollingHost(t *testing.T, initial hostdata.RawRecord) (*hostenv.Scope, *hostenv.Publisher) {
	t.Helper()
	publisher := hostenv.NewPublisher(initial)
	scope := hostenv.NewScope()
	scope.SetAccessor(publisher.GetHostData)
	scope.SetLocation(pageURL(t, "https://host.example.com/claims?lang=km&ref=mail"))
	return scope, publisher
}

func TestPolling_NoChangeNoBroadcast(t *testing.T) {
	scope, _ := pollingHost(t, hostdata.RawRecord{"userId": "u1"})
	c := newConsumer(t, scope, bridge.WithPollInterval(testInterval))
	require.NoError(t, c.Initialize())
	require.True(t, c.IsPolling())

	r := &recorder{}
	c.SubscribeToState(r.record)
	require.Equal(t, 1, r.count())

	require.Never(t, func() bool { return r.count() > 1 }, 20*testInterval, testInterval)
}

func TestPolling_DetectsHostChange(t *testing.T) {
	scope, publisher := pollingHost(t, hostdata.RawRecord{"userId": "u1"})
	c := newConsumer(t, scope, bridge.WithPollInterval(testInterval))
	require.NoError(t, c.Initialize())

	r := &recorder{}
	c.SubscribeToState(r.record)

	publisher.SetHostData(hostdata.RawRecord{"claimType": "medical"})

	require.Eventually(t, func() bool { return c.GetClaimType() == "medical" }, time.Second, testInterval)
	require.Eventually(t, func() bool { return r.count() == 2 }, time.Second, testInterval)
	require.Equal(t, "km", c.GetLanguage(), "URL data survives polling merges")
	require.Never(t, func() bool { return r.count() > 2 }, 10*testInterval, testInterval)
}

func TestPolling_SetPollingEnabled(t *testing.T) {
	scope, publisher := pollingHost(t, hostdata.RawRecord{"userId": "u1"})
	c := newConsumer(t, scope, bridge.WithPollInterval(time.Hour))
	require.NoError(t, c.Initialize())
	require.True(t, c.IsPolling())

	c.SetPollingEnabled(false, 0)
	require.False(t, c.IsPolling())

	publisher.SetHostData(hostdata.RawRecord{"userId": "u2"})
	require.Never(t, func() bool { return c.GetUserID() == "u2" }, 10*testInterval, testInterval)

	// Restarting replaces the hour-long default with a short explicit interval.
	c.SetPollingEnabled(true, testInterval)
	c.SetPollingEnabled(true, testInterval)
	require.True(t, c.IsPolling())
	require.Eventually(t, func() bool { return c.GetUserID() == "u2" }, time.Second, testInterval)

	c.Teardown()
	require.False(t, c.IsPolling())

	c.SetPollingEnabled(true, testInterval)
	require.False(t, c.IsPolling(), "teardown is final")
}

func TestPolling_NotStartedWhenPushAvailable(t *testing.T) {
	scope := hostenv.NewScope()
	hostenv.NewPublisher(nil).Install(scope)

	c := newConsumer(t, scope, bridge.WithPollInterval(testInterval))
	require.NoError(t, c.Initialize())
	require.False(t, c.IsPolling())
}

func TestPolling_NotStartedBeforeInitialize(t *testing.T) {
	scope, _ := pollingHost(t, nil)
	c := newConsumer(t, scope, bridge.WithPollInterval(testInterval))
	require.False(t, c.IsPolling())
}

func TestPolling_TeardownStopsDelivery(t *testing.T) {
	scope, publisher := pollingHost(t, hostdata.RawRecord{"userId": "u1"})
	c := newConsumer(t, scope, bridge.WithPollInterval(testInterval))
	require.NoError(t, c.Initialize())

	r := &recorder{}
	c.SubscribeToState(r.record)
	c.Teardown()

	publisher.SetHostData(hostdata.RawRecord{"userId": "u2"})
	require.Never(t, func() bool { return r.count() > 1 }, 10*testInterval, testInterval)
}

func TestPolling_DisableWaitsForInFlightMerge(t *testing.T) {
	var (
		calls   atomic.Int32
		armed   atomic.Bool
		userID  atomic.Value
		entered = make(chan struct{})
		release = make(chan struct{})
		once    sync.Once
	)
	userID.Store("u1")
	scope := hostenv.NewScope()
	scope.SetAccessor(func() any {
		calls.Add(1)
		if armed.Load() {
			once.Do(func() { close(entered) })
			<-release
		}
		return map[string]any{"userId": userID.Load()}
	})

	c := newConsumer(t, scope, bridge.WithPollInterval(testInterval))
	require.NoError(t, c.Initialize())
	require.True(t, c.IsPolling())

	armed.Store(true)
	<-entered
	armed.Store(false)

	disabled := make(chan struct{})
	go func() {
		c.SetPollingEnabled(false, 0)
		close(disabled)
	}()
	require.Never(t, func() bool {
		select {
		case <-disabled:
			return true
		default:
			return false
		}
	}, 10*testInterval, testInterval)

	userID.Store("u2")
	close(release)
	<-disabled
	require.Equal(t, "u2", c.GetUserID(), "the in-flight merge lands before disabling returns")

	seen := calls.Load()
	userID.Store("u3")
	require.Never(t, func() bool { return calls.Load() != seen || c.GetUserID() != "u2" }, 10*testInterval, testInterval)
}

func TestPolling_ReaderMayDisablePollingFromTick(t *testing.T) {
	scope, publisher := pollingHost(t, hostdata.RawRecord{"userId": "u1"})
	c := newConsumer(t, scope, bridge.WithPollInterval(testInterval))
	require.NoError(t, c.Initialize())

	stopped := make(chan struct{})
	var once sync.Once
	c.SubscribeToState(func(d hostdata.BridgeData) {
		if d.UserID == "u2" {
			c.SetPollingEnabled(false, 0)
			once.Do(func() { close(stopped) })
		}
	})

	publisher.SetHostData(hostdata.RawRecord{"userId": "u2"})
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "reader could not disable polling")
	}
	require.False(t, c.IsPolling())
}

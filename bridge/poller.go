package bridge

import (
	"sync"
	"sync/atomic"
	"time"
)

// poller runs merge on a fixed interval until stopped, calling deliver after
// every merge that reports a change.
type poller struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}

	mu         sync.Mutex
	stopped    bool
	delivering atomic.Bool
}

func startPoller(interval time.Duration, merge func() bool, deliver func()) *poller {
	p := &poller{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run(merge, deliver)
	return p
}

func (p *poller) run(merge func() bool, deliver func()) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.delivering.Store(true)
			if p.mergeOnce(merge) {
				deliver()
			}
			p.delivering.Store(false)
		}
	}
}

// mergeOnce runs merge unless the poller has been stopped. Stop blocks while a
// merge is in progress.
func (p *poller) mergeOnce(merge func() bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	return merge()
}

// Stop ends the loop. Once it returns no further merge runs. It waits for the
// loop goroutine to exit unless that goroutine is delivering, which may be the
// caller itself.
func (p *poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.stop)
	p.mu.Unlock()

	if p.delivering.Load() {
		return
	}
	<-p.done
}

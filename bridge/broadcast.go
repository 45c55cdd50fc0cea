package bridge

import (
	"sync"

	"github.com/jrsteele09/go-mfe-bridge/hostdata"
	"github.com/rs/zerolog"
)

type delivery struct {
	seq    uint64
	state  hostdata.BridgeData
	target uint64 // zero for a broadcast to every reader
}

type reader struct {
	fn    func(hostdata.BridgeData)
	since uint64
}

// broadcaster delivers states to readers in the order they were published.
// Deliveries are queued and drained by whichever goroutine gets there first,
// so a reader may call back into the Consumer from its callback.
type broadcaster struct {
	mu       sync.Mutex
	readers  map[uint64]*reader
	order    []uint64
	nextID   uint64
	seq      uint64
	queue    []delivery
	draining bool
	closed   bool
	logger   *zerolog.Logger
}

func newBroadcaster(logger *zerolog.Logger) *broadcaster {
	return &broadcaster{
		readers: make(map[uint64]*reader),
		logger:  logger,
	}
}

// publish queues state for every current reader. Callers publish in merge order.
func (b *broadcaster) publish(state hostdata.BridgeData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.seq++
	b.queue = append(b.queue, delivery{seq: b.seq, state: state})
}

// add registers fn and queues current as its first value. The reader receives
// only broadcasts published after it was added.
func (b *broadcaster) add(fn func(hostdata.BridgeData), current hostdata.BridgeData) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	b.nextID++
	id := b.nextID
	b.readers[id] = &reader{fn: fn, since: b.seq}
	b.order = append(b.order, id)
	b.queue = append(b.queue, delivery{seq: b.seq, state: current, target: id})
	return id
}

func (b *broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.readers, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.readers)
}

// close drops pending deliveries and stops all future ones.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.queue = nil
	b.readers = make(map[uint64]*reader)
	b.order = nil
}

// drain delivers queued states unless another goroutine is already doing so.
func (b *broadcaster) drain() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	for len(b.queue) > 0 && !b.closed {
		d := b.queue[0]
		b.queue = b.queue[1:]

		var targets []func(hostdata.BridgeData)
		if d.target != 0 {
			if r, ok := b.readers[d.target]; ok {
				targets = append(targets, r.fn)
			}
		} else {
			for _, id := range b.order {
				if r := b.readers[id]; r != nil && d.seq > r.since {
					targets = append(targets, r.fn)
				}
			}
		}

		b.mu.Unlock()
		for _, fn := range targets {
			b.deliver(fn, d.state.Clone())
		}
		b.mu.Lock()
	}
	b.draining = false
	b.mu.Unlock()
}

func (b *broadcaster) deliver(fn func(hostdata.BridgeData), state hostdata.BridgeData) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("State reader failed")
		}
	}()
	fn(state)
}

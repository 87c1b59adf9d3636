package pkg

import (
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
)

// DefaultDebounceWindow is the delay after the last publish on a topic
// before its subscribers are invoked.
const DefaultDebounceWindow = 150 * time.Millisecond

// DebouncedBus is an in-process pub/sub bus that coalesces bursts of
// publishes per topic into a single delivery carrying the latest payload.
// Each Publish resets the topic's timer, so a continuous burst defers
// delivery until activity pauses. Intermediate payloads within a window
// are dropped, never merged or queued.
//
// A bus owns its own topic table; construct one per component (or per
// test) and shut it down explicitly.
type DebouncedBus struct {
	mu       sync.Mutex
	window   time.Duration
	topics   map[string]*busTopic
	nextID   int
	shutdown bool
	logger   aqm.Logger
}

type busTopic struct {
	timer       *time.Timer
	gen         uint64
	latest      interface{}
	subscribers []busSubscriber
}

type busSubscriber struct {
	id int
	fn func(payload interface{})
}

func NewDebouncedBus(window time.Duration, logger aqm.Logger) *DebouncedBus {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &DebouncedBus{
		window: window,
		topics: make(map[string]*busTopic),
		logger: logger,
	}
}

// Subscribe registers fn for topic and returns an unsubscribe handle.
// The handle is idempotent. After Shutdown, Subscribe returns a handle
// that does nothing and the callback is never invoked.
func (b *DebouncedBus) Subscribe(topic string, fn func(payload interface{})) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shutdown {
		return func() {}
	}

	t := b.topic(topic)
	b.nextID++
	id := b.nextID
	t.subscribers = append(t.subscribers, busSubscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.unsubscribe(topic, id)
		})
	}
}

// Publish records payload as the topic's latest value and (re)starts the
// debounce timer. After Shutdown, Publish is a no-op.
func (b *DebouncedBus) Publish(topic string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shutdown {
		return
	}

	t := b.topic(topic)
	t.latest = payload
	if t.timer != nil {
		t.timer.Stop()
	}
	// Stop() may lose the race with an already-fired timer whose deliver
	// is blocked on the mutex. The generation stamp lets that stale
	// deliver recognize it was superseded and bail out.
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(b.window, func() {
		b.deliver(topic, gen)
	})
}

// Shutdown cancels all pending timers and drops all subscribers. No
// deliveries occur afterwards.
func (b *DebouncedBus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shutdown = true
	for _, t := range b.topics {
		if t.timer != nil {
			t.timer.Stop()
		}
	}
	b.topics = make(map[string]*busTopic)
}

func (b *DebouncedBus) topic(name string) *busTopic {
	t, ok := b.topics[name]
	if !ok {
		t = &busTopic{}
		b.topics[name] = t
	}
	return t
}

func (b *DebouncedBus) unsubscribe(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[topic]
	if !ok {
		return
	}
	for i, sub := range t.subscribers {
		if sub.id == id {
			t.subscribers = append(t.subscribers[:i], t.subscribers[i+1:]...)
			return
		}
	}
}

func (b *DebouncedBus) deliver(topic string, gen uint64) {
	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return
	}
	t, ok := b.topics[topic]
	if !ok || t.gen != gen {
		b.mu.Unlock()
		return
	}
	payload := t.latest
	t.timer = nil
	subscribers := make([]busSubscriber, len(t.subscribers))
	copy(subscribers, t.subscribers)
	b.mu.Unlock()

	// Subscribers run in subscription order; a panic in one must not
	// starve the rest.
	for _, sub := range subscribers {
		b.invoke(topic, sub, payload)
	}
}

func (b *DebouncedBus) invoke(topic string, sub busSubscriber, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("bus subscriber panicked", "topic", topic, "panic", r)
		}
	}()
	sub.fn(payload)
}

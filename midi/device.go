package midi

import "sync"

// Handler receives device events. Handlers run on the device's dispatch
// goroutine and must not block.
type Handler func(Event)

// Device is an event source the engine can bind tracks and recorders to.
// Streams are multi-subscriber: every subscription sees every event.
type Device interface {
	Name() string
	Subscribe(h Handler) (unsubscribe func())
	Close() error
}

// Dispatcher fans events out to subscribers. Device implementations
// embed it and feed it through Dispatch; the zero value is ready to use.
type Dispatcher struct {
	mu     sync.Mutex
	subs   map[int]Handler
	nextID int
}

// Subscribe registers a handler and returns its removal func.
func (d *Dispatcher) Subscribe(h Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subs == nil {
		d.subs = map[int]Handler{}
	}
	id := d.nextID
	d.nextID++
	d.subs[id] = h
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// Dispatch delivers an event to every current subscriber, in order of
// no particular guarantee.
func (d *Dispatcher) Dispatch(e Event) {
	d.mu.Lock()
	handlers := make([]Handler, 0, len(d.subs))
	for _, h := range d.subs {
		handlers = append(handlers, h)
	}
	d.mu.Unlock()
	for _, h := range handlers {
		h(e)
	}
}

// VirtualDevice is an in-process device: callers inject messages and
// every subscriber sees them stamped against the supplied clock. It
// backs tests and clip round-trips the way a dummy client backs a MIDI
// SDK.
type VirtualDevice struct {
	Dispatcher
	name string
	now  func() float64
}

// NewVirtualDevice creates a virtual device reading arrival times from
// the given clock.
func NewVirtualDevice(name string, now func() float64) *VirtualDevice {
	return &VirtualDevice{name: name, now: now}
}

func (d *VirtualDevice) Name() string { return d.name }
func (d *VirtualDevice) Close() error { return nil }

// Send injects a message stamped with the current clock time.
func (d *VirtualDevice) Send(m Message) {
	d.Dispatch(Event{Time: d.now(), Message: m})
}

// SendAt injects a message with an explicit timestamp.
func (d *VirtualDevice) SendAt(m Message, at float64) {
	d.Dispatch(Event{Time: at, Message: m})
}

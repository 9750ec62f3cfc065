// Package hub holds the current published value and fans it out to every
// attached subscriber. All state lives in one goroutine; callers talk to
// it through the inbox.
package hub

import (
	"context"
	"errors"
)

// DefaultBacklog is how many undelivered values a subscriber may have queued.
const DefaultBacklog = 100

var ErrClosed = errors.New("hub closed")

type Snapshot[T any] struct {
	Version int
	Value   T
}

type View struct {
	Version        int
	NumSubscribers int
	Dropped        int // values discarded from lagging subscribers' queues
}

type hubMsg interface{ isHubMsg() }

type join[T any] struct {
	Reply chan *Subscription[T]
}

type leave struct{ ID uint64 }

type publish[T any] struct{ Value T }

type getState struct {
	Reply chan View
}

func (join[T]) isHubMsg()    {}
func (leave) isHubMsg()      {}
func (publish[T]) isHubMsg() {}
func (getState) isHubMsg()   {}

type Hub[T any] struct {
	inbox   chan hubMsg
	current T
	version int
	dropped int
	backlog int
	nextID  uint64
	subs    map[uint64]chan Snapshot[T]
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

type Option func(*options)

type options struct {
	backlog int
}

// WithBacklog sets the per-subscriber queue capacity.
func WithBacklog(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.backlog = n
		}
	}
}

// New starts a hub whose current value is initial. The hub stops when
// parent is cancelled or Shutdown is called.
func New[T any](parent context.Context, initial T, opts ...Option) *Hub[T] {
	o := options{backlog: DefaultBacklog}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(parent)
	h := &Hub[T]{
		inbox:   make(chan hubMsg, 64),
		current: initial,
		backlog: o.backlog,
		subs:    make(map[uint64]chan Snapshot[T]),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub[T]) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case join[T]:
				// The new queue is empty, so the current snapshot goes in
				// first and every later publish lands behind it.
				ch := make(chan Snapshot[T], h.backlog)
				ch <- Snapshot[T]{Version: h.version, Value: h.current}
				id := h.nextID
				h.nextID++
				h.subs[id] = ch
				msg.Reply <- &Subscription[T]{id: id, ch: ch, hub: h}

			case leave:
				if ch, ok := h.subs[msg.ID]; ok {
					close(ch)
					delete(h.subs, msg.ID)
				}

			case publish[T]:
				h.current = msg.Value
				h.version++
				h.broadcast(Snapshot[T]{Version: h.version, Value: h.current})

			case getState:
				msg.Reply <- View{
					Version:        h.version,
					NumSubscribers: len(h.subs),
					Dropped:        h.dropped,
				}
			}
		}
	}
}

func (h *Hub[T]) shutdown() {
	for id, ch := range h.subs {
		close(ch) // no more snapshots
		delete(h.subs, id)
	}
}

// broadcast never blocks. A subscriber whose queue is full loses its
// oldest pending value; newer values always supersede older ones.
func (h *Hub[T]) broadcast(snap Snapshot[T]) {
	for _, ch := range h.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
			h.dropped++
		default:
		}
		// this goroutine is the only sender, so there is room now
		ch <- snap
	}
}

func (h *Hub[T]) send(m hubMsg) error {
	if h.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case h.inbox <- m:
		return nil
	case <-h.ctx.Done():
		return ErrClosed
	}
}

// Publish replaces the current value and delivers it to every subscriber.
func (h *Hub[T]) Publish(v T) error {
	return h.send(publish[T]{Value: v})
}

// Subscribe attaches a new subscriber. The first value on its channel is
// the state current at the time the hub handled the request.
func (h *Hub[T]) Subscribe() (*Subscription[T], error) {
	reply := make(chan *Subscription[T], 1)
	if err := h.send(join[T]{Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case sub := <-reply:
		return sub, nil
	case <-h.done:
		return nil, ErrClosed
	}
}

func (h *Hub[T]) View() (View, error) {
	reply := make(chan View, 1)
	if err := h.send(getState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-h.done:
		return View{}, ErrClosed
	}
}

// Shutdown closes every subscriber channel and stops the hub.
// It returns once the hub goroutine has exited.
func (h *Hub[T]) Shutdown() {
	h.cancel()
	<-h.done
}

type Subscription[T any] struct {
	id  uint64
	ch  chan Snapshot[T]
	hub *Hub[T]
}

// C yields the snapshot taken at subscribe time, then every later publish
// in order. It is closed after Close or when the hub stops.
func (s *Subscription[T]) C() <-chan Snapshot[T] { return s.ch }

// Close detaches the subscriber. Safe to call more than once and after
// the hub has stopped.
func (s *Subscription[T]) Close() {
	_ = s.hub.send(leave{ID: s.id})
}

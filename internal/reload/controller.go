// Package reload turns bursts of team file events into at most one
// publish per logical edit.
package reload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Alexrp02/pokemon-team-overlay/internal/hub"
	"github.com/Alexrp02/pokemon-team-overlay/internal/platform/metrics"
	"github.com/Alexrp02/pokemon-team-overlay/internal/roster"
	"github.com/Alexrp02/pokemon-team-overlay/internal/teamfile"
	"github.com/Alexrp02/pokemon-team-overlay/internal/watcher"
)

// DefaultSettleDelay is how long to wait after an event before rereading.
const DefaultSettleDelay = 150 * time.Millisecond

// Publisher receives each new roster set. *hub.Hub[roster.Set] is one.
type Publisher interface {
	Publish(roster.Set) error
}

type Controller struct {
	dir     string
	pattern string
	settle  time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics

	// raw bytes of the last published content, keyed by team ID
	last map[string][]byte

	readSet func(dir, pattern string) (map[string][]byte, error)
}

type Option func(*Controller)

func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) { c.settle = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithMetrics may be omitted (or nil) to disable metric recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func New(dir, pattern string, opts ...Option) *Controller {
	c := &Controller{
		dir:     dir,
		pattern: pattern,
		settle:  DefaultSettleDelay,
		log:     zap.NewNop(),
		readSet: teamfile.ReadSet,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads every team file once and remembers the content as the
// baseline later reloads are compared against. An unreadable directory is
// an error; a single unreadable file is logged and left out.
func (c *Controller) Load() (roster.Set, error) {
	contents, err := c.readSet(c.dir, c.pattern)
	if contents == nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}
	if err != nil {
		c.log.Warn("some team files could not be read", zap.Error(err))
	}
	c.last = contents
	return parseAll(contents), nil
}

// Run consumes events from src until ctx is done. Each event opens a
// settle window; events arriving inside the window are absorbed, and when
// it closes the directory is reread. Only a change in file content leads
// to a publish.
//
// If src reports watcher.ErrClosed, Run logs it and returns nil: files
// are no longer watched but the rest of the server carries on.
func (c *Controller) Run(ctx context.Context, src watcher.Source, pub Publisher) error {
	events := make(chan watcher.Event)
	srcErr := make(chan error, 1)
	go func() {
		for {
			ev, err := src.Next(ctx)
			if err != nil {
				srcErr <- err
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-srcErr:
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, watcher.ErrClosed) {
				c.log.Error("file watcher channel closed, live updates stopped", zap.Error(err))
				return nil
			}
			return fmt.Errorf("watch: %w", err)

		case ev := <-events:
			c.observe(ev)
			if !c.wait(ctx, events) {
				return nil
			}
			if err := c.reload(pub); err != nil {
				if errors.Is(err, hub.ErrClosed) {
					return nil
				}
				return err
			}
		}
	}
}

// wait sleeps for the settle delay while soaking up further events.
// It returns false if ctx ended first.
func (c *Controller) wait(ctx context.Context, events <-chan watcher.Event) bool {
	timer := time.NewTimer(c.settle)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return true
		case ev := <-events:
			c.observe(ev)
		case <-ctx.Done():
			return false
		}
	}
}

func (c *Controller) observe(ev watcher.Event) {
	c.log.Debug("team file event", zap.Strings("paths", ev.Paths), zap.String("category", string(ev.Category)))
	if c.metrics != nil {
		c.metrics.IncWatchEvents(string(ev.Category))
	}
}

func (c *Controller) reload(pub Publisher) error {
	if c.metrics != nil {
		c.metrics.IncReloads()
	}

	contents, err := c.readSet(c.dir, c.pattern)
	if err != nil {
		// keep the last published state; the next event retries
		c.log.Warn("reread team files failed", zap.String("dir", c.dir), zap.Error(err))
		return nil
	}

	if sameContents(c.last, contents) {
		c.log.Debug("team files unchanged, skipping publish")
		if c.metrics != nil {
			c.metrics.IncSuppressed()
		}
		return nil
	}

	set := parseAll(contents)
	if err := pub.Publish(set); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	c.last = contents
	if c.metrics != nil {
		c.metrics.IncPublishes()
	}
	c.log.Info("published team update", zap.Int("teams", len(set)))
	return nil
}

func sameContents(a, b map[string][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for id, data := range a {
		other, ok := b[id]
		if !ok || !bytes.Equal(data, other) {
			return false
		}
	}
	return true
}

func parseAll(contents map[string][]byte) roster.Set {
	set := make(roster.Set, len(contents))
	for id, data := range contents {
		set[id] = roster.Parse(string(data))
	}
	return set
}

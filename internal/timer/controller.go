// Package timer drives an interview.State from a repeating clock tick.
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/interview"
)

// DefaultInterval is the length of one countdown tick.
const DefaultInterval = time.Second

// Listener observes every state change together with the edges it crossed.
// It runs outside the state lock, in change order, and must not call back
// into SetStarted or SetAnswer of the same Controller.
type Listener func(state interview.State, events []interview.Event)

// Config holds the Controller's collaborators.
type Config struct {
	Clock    clockwork.Clock
	Interval time.Duration
	Score    interview.ScoreFunc
	Listener Listener
}

// Controller owns one session's state and at most one active tick handle.
type Controller struct {
	mu     sync.Mutex
	emitMu sync.Mutex

	clock    clockwork.Clock
	interval time.Duration
	score    interview.ScoreFunc
	listener Listener
	log      zerolog.Logger

	state    interview.State
	handle   *handle
	lastTick time.Time
	closed   bool
}

// handle is a scoped repeating timer. Closing done retires it.
type handle struct {
	ticker clockwork.Ticker
	done   chan struct{}
}

// New creates a Controller. A restored state that is already running
// resumes ticking immediately.
func New(initial interview.State, cfg Config, log zerolog.Logger) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if !initial.Phase.Valid() {
		initial.Phase = interview.PhaseAt(initial.Remaining)
	}

	c := &Controller{
		clock:    cfg.Clock,
		interval: cfg.Interval,
		score:    cfg.Score,
		listener: cfg.Listener,
		log:      log.With().Str("component", "timer").Logger(),
		state:    initial,
	}

	c.mu.Lock()
	c.rescheduleLocked()
	c.mu.Unlock()

	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() interview.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active reports whether a tick handle is currently scheduled.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// SetStarted mirrors the host's "session started" flag.
func (c *Controller) SetStarted(started bool) interview.State {
	var action interview.Action = interview.Stop{}
	if started {
		action = interview.Start{}
	}

	c.mu.Lock()
	if c.closed {
		defer c.mu.Unlock()
		return c.state
	}

	next, events, _ := interview.Reduce(c.state, action, c.score)
	c.state = next
	if len(events) > 0 || (next.Started && c.handle == nil) {
		c.rescheduleLocked()
	}

	c.emitAndUnlock(next, events, len(events) > 0)
	return next
}

// SetAnswer replaces the coding answer. It fails with interview.ErrAnswerLocked
// outside the coding window.
func (c *Controller) SetAnswer(text string) (interview.State, error) {
	c.mu.Lock()
	next, events, err := interview.Reduce(c.state, interview.SetAnswer{Text: text}, c.score)
	if err != nil {
		defer c.mu.Unlock()
		return c.state, err
	}
	c.state = next

	c.emitAndUnlock(next, events, len(events) > 0)
	return next, nil
}

// Close retires the tick handle for good. Later SetStarted calls are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelLocked()
}

// rescheduleLocked cancels the current handle and, if the countdown should
// run, starts exactly one new one.
func (c *Controller) rescheduleLocked() {
	c.cancelLocked()
	if c.closed || !c.state.Started || c.state.Remaining <= 0 {
		return
	}

	h := &handle{
		ticker: c.clock.NewTicker(c.interval),
		done:   make(chan struct{}),
	}
	c.handle = h
	c.lastTick = c.clock.Now()

	go c.run(h)
}

func (c *Controller) cancelLocked() {
	if c.handle == nil {
		return
	}
	c.handle.ticker.Stop()
	close(c.handle.done)
	c.handle = nil
}

func (c *Controller) run(h *handle) {
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.Chan():
			c.onTick(h)
		}
	}
}

// onTick converts elapsed clock time into whole ticks so that a late or
// coalesced fire still advances the countdown by the right amount.
func (c *Controller) onTick(h *handle) {
	c.mu.Lock()
	if c.handle != h {
		c.mu.Unlock()
		return
	}

	elapsed := c.clock.Since(c.lastTick)
	n := int((elapsed + c.interval/2) / c.interval)
	if n < 1 {
		c.mu.Unlock()
		return
	}
	c.lastTick = c.lastTick.Add(time.Duration(n) * c.interval)

	if n > 1 {
		c.log.Debug().Int("ticks", n).Msg("Catching up on delayed ticks")
	}

	prev := c.state.Remaining
	next, events, _ := interview.Reduce(c.state, interview.Tick{Seconds: n}, c.score)
	c.state = next
	if next.Remaining == 0 {
		c.cancelLocked()
	}

	c.emitAndUnlock(next, events, next.Remaining != prev || len(events) > 0)
}

// emitAndUnlock releases the state lock and delivers the change while
// holding emitMu, so listeners observe changes in the order they happened.
func (c *Controller) emitAndUnlock(state interview.State, events []interview.Event, changed bool) {
	if !changed || c.listener == nil {
		c.mu.Unlock()
		return
	}

	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	c.listener(state, events)
}

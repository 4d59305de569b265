package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stemsi/mockview-backend/internal/events"
	"github.com/stemsi/mockview-backend/internal/interview"
	"github.com/stemsi/mockview-backend/internal/model"
	"github.com/stemsi/mockview-backend/internal/repository"
	"github.com/stemsi/mockview-backend/internal/timer"
	ws "github.com/stemsi/mockview-backend/internal/websocket"
)

// Interview service errors.
var (
	ErrSessionNotFound = errors.New("interview session not found")
	ErrResultNotReady  = errors.New("interview result is not ready yet")
)

const (
	// sideEffectTimeout bounds the I/O done for one state change.
	sideEffectTimeout = 3 * time.Second

	defaultIdleTTL       = 10 * time.Minute
	defaultSweepInterval = time.Minute
)

// SessionStore persists interview sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.InterviewSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.InterviewSession, error)
	MarkStarted(ctx context.Context, id uuid.UUID, at time.Time) error
}

// StateCache holds live snapshots and feeds the persistence queues.
type StateCache interface {
	SaveSnapshot(ctx context.Context, snap model.Snapshot) error
	LoadSnapshot(ctx context.Context, id uuid.UUID) (*model.Snapshot, error)
	PublishView(ctx context.Context, id uuid.UUID, payload []byte) error
	EnqueueAnswer(ctx context.Context, rec model.AnswerRecord) error
	EnqueueResult(ctx context.Context, rec model.ResultRecord) error
}

// InterviewOptions tunes the controllers the service creates.
type InterviewOptions struct {
	Clock        clockwork.Clock
	TickInterval time.Duration
	Score        interview.ScoreFunc
	// IdleTTL is how long a controller with no running countdown stays in
	// memory after its last use. It is rebuilt from the snapshot on demand.
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// liveSession is a registered controller and the time it was last looked up.
type liveSession struct {
	c       *timer.Controller
	touched time.Time
}

// InterviewService owns one timer.Controller per live interview session.
type InterviewService struct {
	store     SessionStore
	cache     StateCache
	publisher events.Publisher
	opts      InterviewOptions
	log       zerolog.Logger

	mu          sync.Mutex
	controllers map[uuid.UUID]*liveSession
}

// NewInterviewService creates a new InterviewService.
func NewInterviewService(
	store SessionStore,
	cache StateCache,
	publisher events.Publisher,
	opts InterviewOptions,
	log zerolog.Logger,
) *InterviewService {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Score == nil {
		opts.Score = interview.NewScorer(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &InterviewService{
		store:       store,
		cache:       cache,
		publisher:   publisher,
		opts:        opts,
		log:         log.With().Str("component", "interview_service").Logger(),
		controllers: make(map[uuid.UUID]*liveSession),
	}
}

// CreateSession opens a new interview in its initial (not started) state.
func (s *InterviewService) CreateSession(ctx context.Context, candidateName string) (*model.InterviewSession, error) {
	sess := &model.InterviewSession{
		ID:            uuid.New(),
		CandidateName: candidateName,
		Status:        model.SessionStatusPending,
	}

	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	state := interview.NewState()
	s.register(sess.ID, state)

	if err := s.cache.SaveSnapshot(ctx, s.snapshot(sess.ID, state)); err != nil {
		// Not fatal: the controller is authoritative and the next tick rewrites it.
		s.log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("Failed to cache initial snapshot")
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Msg("Interview session created")

	return sess, nil
}

// SetStarted applies the host's "session started" flag.
func (s *InterviewService) SetStarted(ctx context.Context, id uuid.UUID, started bool) (*model.SessionView, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return nil, err
	}

	state := c.SetStarted(started)

	if started {
		if err := s.store.MarkStarted(ctx, id, s.opts.Clock.Now()); err != nil {
			s.log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to mark session started")
		}
	}

	return model.NewSessionView(id, state), nil
}

// SubmitAnswer stores the candidate's coding answer. Returns
// interview.ErrAnswerLocked outside the coding window.
func (s *InterviewService) SubmitAnswer(ctx context.Context, id uuid.UUID, answer string) (*model.SessionView, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return nil, err
	}

	state, err := c.SetAnswer(answer)
	if err != nil {
		return nil, err
	}

	return model.NewSessionView(id, state), nil
}

// GetView returns the session's current state and rendered regions.
func (s *InterviewService) GetView(ctx context.Context, id uuid.UUID) (*model.SessionView, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.NewSessionView(id, c.State()), nil
}

// GetResult returns the computed result, or ErrResultNotReady.
func (s *InterviewService) GetResult(ctx context.Context, id uuid.UUID) (*interview.Result, error) {
	c, err := s.controller(ctx, id)
	if err != nil {
		return nil, err
	}

	state := c.State()
	if state.Result == nil {
		return nil, ErrResultNotReady
	}
	r := *state.Result
	return &r, nil
}

// Shutdown stops every live controller.
func (s *InterviewService) Shutdown() {
	s.mu.Lock()
	live := s.controllers
	s.controllers = make(map[uuid.UUID]*liveSession)
	s.mu.Unlock()

	for _, ls := range live {
		ls.c.Close()
	}
	s.log.Info().Msg("All interview timers stopped")
}

// Run evicts idle controllers every SweepInterval until ctx is cancelled.
func (s *InterviewService) Run(ctx context.Context) {
	ticker := s.opts.Clock.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	s.log.Info().
		Dur("idle_ttl", s.opts.IdleTTL).
		Dur("sweep_interval", s.opts.SweepInterval).
		Msg("Idle session sweeper started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := s.sweepIdle(); n > 0 {
				s.log.Debug().Int("evicted", n).Msg("Evicted idle sessions")
			}
		}
	}
}

// sweepIdle drops controllers whose countdown is not running and that have
// not been used for IdleTTL. Their snapshot is already in the cache.
//
// Controllers are inspected without s.mu held: a listener may hold a
// controller's emit lock while it waits for s.mu.
func (s *InterviewService) sweepIdle() int {
	cutoff := s.opts.Clock.Now().Add(-s.opts.IdleTTL)

	s.mu.Lock()
	stale := make(map[uuid.UUID]*liveSession)
	for id, ls := range s.controllers {
		if !ls.touched.After(cutoff) {
			stale[id] = ls
		}
	}
	s.mu.Unlock()

	n := 0
	for id, ls := range stale {
		if ls.c.Active() {
			continue
		}

		s.mu.Lock()
		current, ok := s.controllers[id]
		evicted := ok && current == ls && !ls.touched.After(cutoff)
		if evicted {
			delete(s.controllers, id)
		}
		s.mu.Unlock()

		if evicted {
			ls.c.Close()
			n++
		}
	}
	return n
}

// evict drops the controller for id once its interview has completed. Close
// runs on its own goroutine because the caller is the controller's listener.
func (s *InterviewService) evict(id uuid.UUID) {
	s.mu.Lock()
	ls, ok := s.controllers[id]
	if ok {
		delete(s.controllers, id)
	}
	s.mu.Unlock()

	if ok {
		go ls.c.Close()
	}
}

// controller returns the live controller for id, restoring it from the
// Redis snapshot or, failing that, from PostgreSQL.
func (s *InterviewService) controller(ctx context.Context, id uuid.UUID) (*timer.Controller, error) {
	s.mu.Lock()
	ls, ok := s.controllers[id]
	if ok {
		ls.touched = s.opts.Clock.Now()
	}
	s.mu.Unlock()
	if ok {
		return ls.c, nil
	}

	state, err := s.restoreState(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.register(id, state), nil
}

func (s *InterviewService) restoreState(ctx context.Context, id uuid.UUID) (interview.State, error) {
	snap, err := s.cache.LoadSnapshot(ctx, id)
	if err == nil {
		return snap.State, nil
	}
	if !errors.Is(err, repository.ErrSnapshotNotFound) {
		return interview.State{}, fmt.Errorf("load snapshot: %w", err)
	}

	// [CACHE MISS SCENARIO]
	// Snapshot expired or never written. Rebuild from the source of truth.
	sess, err := s.store.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return interview.State{}, ErrSessionNotFound
	}
	if err != nil {
		return interview.State{}, fmt.Errorf("get session: %w", err)
	}

	s.log.Debug().Str("session_id", id.String()).Msg("Restoring session from database")
	return stateFromSession(sess), nil
}

// stateFromSession rebuilds a paused state from a persisted record. Elapsed
// countdown time is not persisted, so unfinished sessions restart from the top.
func stateFromSession(sess *model.InterviewSession) interview.State {
	state := interview.NewState()
	state.Answer = sess.CodingAnswer

	if sess.Status == model.SessionStatusCompleted && sess.Score != nil {
		state.Started = true
		state.Remaining = 0
		state.Phase = interview.PhaseCompleted
		r := interview.Result{Score: *sess.Score}
		if sess.Feedback != nil {
			r.Feedback = *sess.Feedback
		}
		state.Result = &r
	}
	return state
}

// register installs a controller for id unless another goroutine won the race.
func (s *InterviewService) register(id uuid.UUID, state interview.State) *timer.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.controllers[id]; ok {
		existing.touched = s.opts.Clock.Now()
		return existing.c
	}

	c := timer.New(state, timer.Config{
		Clock:    s.opts.Clock,
		Interval: s.opts.TickInterval,
		Score:    s.opts.Score,
		Listener: s.listener(id),
	}, s.log.With().Str("session_id", id.String()).Logger())

	s.controllers[id] = &liveSession{c: c, touched: s.opts.Clock.Now()}
	return c
}

// listener fans a state change out to the snapshot cache, the live view
// channel, the persistence queues and the event bus.
func (s *InterviewService) listener(id uuid.UUID) timer.Listener {
	sessLog := s.log.With().Str("session_id", id.String()).Logger()

	return func(state interview.State, evts []interview.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		if err := s.cache.SaveSnapshot(ctx, s.snapshot(id, state)); err != nil {
			sessLog.Error().Err(err).Msg("Failed to save snapshot")
		}

		payload, err := json.Marshal(ws.ViewResponse{Event: ws.EventView, Data: model.NewSessionView(id, state)})
		if err == nil {
			if err := s.cache.PublishView(ctx, id, payload); err != nil {
				sessLog.Error().Err(err).Msg("Failed to publish view")
			}
		}

		now := s.opts.Clock.Now()
		completed := false
		for _, e := range evts {
			switch e.Type {
			case interview.EventAnswerUpdated:
				if err := s.cache.EnqueueAnswer(ctx, model.AnswerRecord{SessionID: id.String(), Answer: state.Answer}); err != nil {
					sessLog.Error().Err(err).Msg("Failed to queue answer")
				}
			case interview.EventResultComputed:
				rec := model.ResultRecord{
					SessionID:  id.String(),
					Score:      state.Result.Score,
					Feedback:   state.Result.Feedback,
					Answer:     state.Answer,
					FinishedAt: now,
				}
				if err := s.cache.EnqueueResult(ctx, rec); err != nil {
					sessLog.Error().Err(err).Msg("Failed to queue result")
				}
				sessLog.Info().Int("score", rec.Score).Msg("Interview scored")
			case interview.EventPhaseChanged:
				sessLog.Info().
					Str("from", string(e.From)).
					Str("to", string(e.Phase)).
					Int("remaining", e.Remaining).
					Msg("Phase changed")
			case interview.EventCompleted:
				completed = true
			}

			if err := s.publisher.Publish(ctx, toSessionEvent(id, state, e, now)); err != nil {
				sessLog.Warn().Err(err).Str("event", string(e.Type)).Msg("Failed to publish event")
			}
		}

		// A completed session never changes again; later reads come from the snapshot.
		if completed {
			s.evict(id)
			sessLog.Debug().Msg("Completed session evicted")
		}
	}
}

func (s *InterviewService) snapshot(id uuid.UUID, state interview.State) model.Snapshot {
	return model.Snapshot{SessionID: id, State: state, UpdatedAt: s.opts.Clock.Now()}
}

func toSessionEvent(id uuid.UUID, state interview.State, e interview.Event, at time.Time) events.SessionEvent {
	se := events.SessionEvent{
		SessionID:  id.String(),
		Type:       e.Type,
		Phase:      e.Phase,
		From:       e.From,
		Remaining:  e.Remaining,
		OccurredAt: at,
	}
	if e.Type == interview.EventResultComputed && state.Result != nil {
		score := state.Result.Score
		se.Score = &score
	}
	return se
}

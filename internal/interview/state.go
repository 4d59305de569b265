package interview

import "errors"

// ErrAnswerLocked is returned when the answer is edited outside the coding window.
var ErrAnswerLocked = errors.New("coding answer can only be edited while the coding panel is visible")

// State is the complete session state of one interview.
type State struct {
	Started         bool    `json:"started"`
	Remaining       int     `json:"remaining_seconds"`
	Phase           Phase   `json:"phase"`
	Answer          string  `json:"answer"`
	CodingPanelOpen bool    `json:"coding_panel_open"`
	Result          *Result `json:"result,omitempty"`
}

// NewState returns the initial state: not started, full budget, introduction.
func NewState() State {
	return State{
		Remaining: TotalSeconds,
		Phase:     PhaseIntroduction,
	}
}

// EventType identifies a transition edge.
type EventType string

const (
	EventStarted           EventType = "started"
	EventStopped           EventType = "stopped"
	EventPhaseChanged      EventType = "phase_changed"
	EventCodingPanelOpened EventType = "coding_panel_opened"
	EventCodingPanelClosed EventType = "coding_panel_closed"
	EventAnswerUpdated     EventType = "answer_updated"
	EventResultComputed    EventType = "result_computed"
	EventCompleted         EventType = "completed"
)

// Event describes something that happened during a reduction.
type Event struct {
	Type      EventType `json:"type"`
	Phase     Phase     `json:"phase"`
	From      Phase     `json:"from,omitempty"`
	Remaining int       `json:"remaining_seconds"`
}

// Action is an input to Reduce.
type Action interface {
	apply(s State, score ScoreFunc) (State, []Event, error)
}

// Start begins (or resumes) the countdown.
type Start struct{}

// Stop pauses the countdown. Remaining time is kept.
type Stop struct{}

// Tick advances the countdown by Seconds whole seconds (at least one).
type Tick struct {
	Seconds int
}

// SetAnswer replaces the candidate's coding answer.
type SetAnswer struct {
	Text string
}

// Reduce applies a to s and returns the new state with the edges it crossed.
// score is only consulted when a tick enters the feedback or completed phase.
func Reduce(s State, a Action, score ScoreFunc) (State, []Event, error) {
	return a.apply(s, score)
}

func (Start) apply(s State, _ ScoreFunc) (State, []Event, error) {
	if s.Started {
		return s, nil, nil
	}
	s.Started = true
	return s, []Event{{Type: EventStarted, Phase: s.Phase, Remaining: s.Remaining}}, nil
}

func (Stop) apply(s State, _ ScoreFunc) (State, []Event, error) {
	if !s.Started {
		return s, nil, nil
	}
	s.Started = false
	return s, []Event{{Type: EventStopped, Phase: s.Phase, Remaining: s.Remaining}}, nil
}

func (t Tick) apply(s State, score ScoreFunc) (State, []Event, error) {
	n := t.Seconds
	if n < 1 {
		n = 1
	}

	var events []Event
	for i := 0; i < n && s.Started && s.Remaining > 0; i++ {
		var stepEvents []Event
		s, stepEvents = step(s, score)
		events = append(events, stepEvents...)
	}
	return s, events, nil
}

func (a SetAnswer) apply(s State, _ ScoreFunc) (State, []Event, error) {
	if !s.Started || !s.CodingPanelOpen {
		return s, nil, ErrAnswerLocked
	}
	if s.Answer == a.Text {
		return s, nil, nil
	}
	s.Answer = a.Text
	return s, []Event{{Type: EventAnswerUpdated, Phase: s.Phase, Remaining: s.Remaining}}, nil
}

// step moves one second forward and fires side effects on the phase edge.
func step(s State, score ScoreFunc) (State, []Event) {
	prev := s.Phase
	s.Remaining--
	next := PhaseAt(s.Remaining)
	if next == prev {
		return s, nil
	}

	s.Phase = next
	events := []Event{{Type: EventPhaseChanged, Phase: next, From: prev, Remaining: s.Remaining}}

	if prev == PhaseCoding && s.CodingPanelOpen {
		s.CodingPanelOpen = false
		events = append(events, Event{Type: EventCodingPanelClosed, Phase: next, Remaining: s.Remaining})
	}
	if next == PhaseCoding {
		s.CodingPanelOpen = true
		events = append(events, Event{Type: EventCodingPanelOpened, Phase: next, Remaining: s.Remaining})
	}
	if next.showsResults() && s.Result == nil {
		r := score(s.Answer)
		s.Result = &r
		events = append(events, Event{Type: EventResultComputed, Phase: next, Remaining: s.Remaining})
	}
	if next == PhaseCompleted {
		events = append(events, Event{Type: EventCompleted, Phase: next, Remaining: s.Remaining})
	}

	return s, events
}

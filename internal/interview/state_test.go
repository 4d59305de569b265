package interview

import (
	"errors"
	"testing"
)

// countingScorer records how often a result was computed.
type countingScorer struct {
	calls int
	score int
}

func (c *countingScorer) fn(answer string) Result {
	c.calls++
	return Result{Score: c.score, Feedback: "ok:" + answer}
}

func mustReduce(t *testing.T, s State, a Action, score ScoreFunc) (State, []Event) {
	t.Helper()
	next, events, err := Reduce(s, a, score)
	if err != nil {
		t.Fatalf("Reduce(%T): %v", a, err)
	}
	return next, events
}

func startedAt(remaining int) State {
	s := NewState()
	s.Started = true
	s.Remaining = remaining
	s.Phase = PhaseAt(remaining)
	return s
}

func hasEvent(events []Event, typ EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestNewState(t *testing.T) {
	s := NewState()
	if s.Started || s.Remaining != 600 || s.Phase != PhaseIntroduction || s.Result != nil {
		t.Fatalf("unexpected initial state %+v", s)
	}
}

func TestTickIgnoredUntilStarted(t *testing.T) {
	sc := &countingScorer{score: 80}
	s, events := mustReduce(t, NewState(), Tick{Seconds: 1}, sc.fn)
	if s.Remaining != 600 || len(events) != 0 {
		t.Fatalf("tick applied to stopped session: %+v %v", s, events)
	}
}

func TestTickDecrementsByOne(t *testing.T) {
	sc := &countingScorer{score: 80}
	s, _ := mustReduce(t, NewState(), Start{}, sc.fn)

	for want := 599; want >= 590; want-- {
		s, _ = mustReduce(t, s, Tick{Seconds: 1}, sc.fn)
		if s.Remaining != want {
			t.Fatalf("remaining = %d want %d", s.Remaining, want)
		}
	}
}

func TestCodingPanelOpensAndClosesOnEdges(t *testing.T) {
	sc := &countingScorer{score: 80}

	s, events := mustReduce(t, startedAt(361), Tick{Seconds: 1}, sc.fn)
	if s.Phase != PhaseCoding || !s.CodingPanelOpen || !hasEvent(events, EventCodingPanelOpened) {
		t.Fatalf("panel did not open entering coding: %+v %v", s, events)
	}

	s, _, err := Reduce(s, SetAnswer{Text: "for x return y"}, sc.fn)
	if err != nil {
		t.Fatalf("SetAnswer during coding: %v", err)
	}

	s.Remaining = 121
	s, events = mustReduce(t, s, Tick{Seconds: 1}, sc.fn)
	if s.Phase != PhaseSystemDesign || s.CodingPanelOpen || !hasEvent(events, EventCodingPanelClosed) {
		t.Fatalf("panel did not close leaving coding: %+v %v", s, events)
	}
	if s.Answer != "for x return y" {
		t.Fatalf("answer lost after panel closed: %q", s.Answer)
	}
}

func TestAnswerLockedOutsideCoding(t *testing.T) {
	sc := &countingScorer{score: 80}
	for _, s := range []State{NewState(), startedAt(500), startedAt(100)} {
		if _, _, err := Reduce(s, SetAnswer{Text: "x"}, sc.fn); !errors.Is(err, ErrAnswerLocked) {
			t.Fatalf("state %+v: err = %v want ErrAnswerLocked", s, err)
		}
	}
}

func TestResultComputedOnceAcrossFeedbackAndCompleted(t *testing.T) {
	sc := &countingScorer{score: 75}
	s := startedAt(61)

	s, events := mustReduce(t, s, Tick{Seconds: 1}, sc.fn)
	if s.Phase != PhaseFeedback || s.Result == nil || !hasEvent(events, EventResultComputed) {
		t.Fatalf("result not computed entering feedback: %+v", s)
	}

	s, events = mustReduce(t, s, Tick{Seconds: 60}, sc.fn)
	if s.Phase != PhaseCompleted || s.Remaining != 0 {
		t.Fatalf("expected completed at 0, got %+v", s)
	}
	if !hasEvent(events, EventCompleted) {
		t.Fatal("missing completed event")
	}
	if hasEvent(events, EventResultComputed) || sc.calls != 1 {
		t.Fatalf("result recomputed: calls = %d", sc.calls)
	}
}

func TestBatchedTickNeverMissesEdges(t *testing.T) {
	sc := &countingScorer{score: 90}
	s := startedAt(400)

	// One coalesced tick jumps from dsa straight past feedback.
	s, events := mustReduce(t, s, Tick{Seconds: 450}, sc.fn)

	if s.Remaining != 0 || s.Phase != PhaseCompleted {
		t.Fatalf("expected completed at 0, got %+v", s)
	}
	for _, typ := range []EventType{EventCodingPanelOpened, EventCodingPanelClosed, EventResultComputed, EventCompleted} {
		if !hasEvent(events, typ) {
			t.Errorf("missing %s", typ)
		}
	}
	if s.CodingPanelOpen {
		t.Fatal("coding panel left open")
	}
	if sc.calls != 1 {
		t.Fatalf("scorer calls = %d want 1", sc.calls)
	}
}

func TestTickStopsAtZero(t *testing.T) {
	sc := &countingScorer{score: 90}
	s := startedAt(1)
	s.Result = &Result{Score: 70}

	s, _ = mustReduce(t, s, Tick{Seconds: 1}, sc.fn)
	s, events := mustReduce(t, s, Tick{Seconds: 1}, sc.fn)
	if s.Remaining != 0 || len(events) != 0 {
		t.Fatalf("tick past zero: %+v %v", s, events)
	}
}

func TestStartStopResume(t *testing.T) {
	sc := &countingScorer{score: 90}
	s, events := mustReduce(t, NewState(), Start{}, sc.fn)
	if !s.Started || !hasEvent(events, EventStarted) {
		t.Fatal("start did not start")
	}
	s, _ = mustReduce(t, s, Tick{Seconds: 10}, sc.fn)

	s, events = mustReduce(t, s, Stop{}, sc.fn)
	if s.Started || !hasEvent(events, EventStopped) {
		t.Fatal("stop did not stop")
	}
	s, _ = mustReduce(t, s, Tick{Seconds: 10}, sc.fn)
	if s.Remaining != 590 {
		t.Fatalf("stopped session ticked: %d", s.Remaining)
	}

	s, _ = mustReduce(t, s, Start{}, sc.fn)
	if s.Remaining != 590 {
		t.Fatalf("restart reset the countdown: %d", s.Remaining)
	}
	if _, events = mustReduce(t, s, Start{}, sc.fn); len(events) != 0 {
		t.Fatal("second start emitted events")
	}
}

func TestFullRunPhaseSequence(t *testing.T) {
	sc := &countingScorer{score: 88}
	s, _ := mustReduce(t, NewState(), Start{}, sc.fn)

	var phases []Phase
	for s.Remaining > 0 {
		var events []Event
		s, events = mustReduce(t, s, Tick{Seconds: 1}, sc.fn)
		for _, e := range events {
			if e.Type == EventPhaseChanged {
				phases = append(phases, e.Phase)
			}
		}
	}

	want := []Phase{PhaseDSA, PhaseCoding, PhaseSystemDesign, PhaseFeedback, PhaseCompleted}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phases = %v want %v", phases, want)
		}
	}
}

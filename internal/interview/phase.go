package interview

// TotalSeconds is the full interview budget (10 minutes).
const TotalSeconds = 10 * 60

// Phase enumerates the named segments of the interview timeline.
type Phase string

const (
	PhaseIntroduction Phase = "introduction"
	PhaseDSA          Phase = "dsa"
	PhaseCoding       Phase = "coding"
	PhaseSystemDesign Phase = "systemDesign"
	PhaseFeedback     Phase = "feedback"
	PhaseCompleted    Phase = "completed"
)

// Lower bounds (exclusive) of each phase, in remaining seconds.
const (
	introductionAbove = 9 * 60
	dsaAbove          = 6 * 60
	codingAbove       = 2 * 60
	systemDesignAbove = 1 * 60
	feedbackAbove     = 0
)

// PhaseAt derives the phase from the remaining seconds.
func PhaseAt(remaining int) Phase {
	switch {
	case remaining > introductionAbove:
		return PhaseIntroduction
	case remaining > dsaAbove:
		return PhaseDSA
	case remaining > codingAbove:
		return PhaseCoding
	case remaining > systemDesignAbove:
		return PhaseSystemDesign
	case remaining > feedbackAbove:
		return PhaseFeedback
	default:
		return PhaseCompleted
	}
}

// PhaseInfo is the display metadata for a phase.
type PhaseInfo struct {
	ID              Phase  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
}

var phaseInfos = map[Phase]PhaseInfo{
	PhaseIntroduction: {ID: PhaseIntroduction, Name: "Introduction", Description: "Behavioral & Background", DurationMinutes: 1},
	PhaseDSA:          {ID: PhaseDSA, Name: "DSA Concepts", Description: "Data Structures & Algorithms", DurationMinutes: 3},
	PhaseCoding:       {ID: PhaseCoding, Name: "Live Coding", Description: "Practical Coding Challenge", DurationMinutes: 4},
	PhaseSystemDesign: {ID: PhaseSystemDesign, Name: "System Design", Description: "High-Level Architecture", DurationMinutes: 1},
	PhaseFeedback:     {ID: PhaseFeedback, Name: "Feedback & Score", Description: "Final Results & Feedback", DurationMinutes: 1},
	PhaseCompleted:    {ID: PhaseCompleted, Name: "Completed", Description: "Interview Finished", DurationMinutes: 0},
}

// Info returns the display metadata for p. Unknown phases fall back to the introduction.
func (p Phase) Info() PhaseInfo {
	if info, ok := phaseInfos[p]; ok {
		return info
	}
	return phaseInfos[PhaseIntroduction]
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	_, ok := phaseInfos[p]
	return ok
}

// showsResults reports whether the results panel may be visible during p.
func (p Phase) showsResults() bool {
	return p == PhaseFeedback || p == PhaseCompleted
}

package interview

import (
	"math/rand"
	"strings"
	"sync"
)

// MaxScore is the highest score a result can carry.
const MaxScore = 100

const (
	baseScoreMin  = 60
	baseScoreSpan = 30
	codingBonus   = 10
)

var cannedFeedback = [...]string{
	"Excellent problem-solving skills and clean code. Strong grasp of fundamental data structures.",
	"Good approach to the problem. Consider optimizing your solution and discussing time/space complexity.",
	"Solid coding foundation. Focus on handling edge cases and writing more descriptive variable names.",
	"A good starting point. Recommend practicing more DSA problems to improve speed and efficiency.",
}

// Result is the outcome shown in the results panel.
type Result struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// ScoreFunc produces a Result for the candidate's coding answer.
type ScoreFunc func(answer string) Result

// ComputeResult scores an answer with a random base in [60,90) plus a keyword
// bonus, capped at 100, and picks one of the canned feedback lines.
func ComputeResult(answer string, rng *rand.Rand) Result {
	score := baseScoreMin + rng.Intn(baseScoreSpan)
	if earnsBonus(answer) {
		score += codingBonus
	}
	if score > MaxScore {
		score = MaxScore
	}

	return Result{
		Score:    score,
		Feedback: cannedFeedback[rng.Intn(len(cannedFeedback))],
	}
}

// earnsBonus is true when the answer mentions a loop or map and returns something.
func earnsBonus(answer string) bool {
	a := strings.ToLower(answer)
	return (strings.Contains(a, "map") || strings.Contains(a, "for")) && strings.Contains(a, "return")
}

// NewScorer returns a goroutine-safe ScoreFunc backed by src.
func NewScorer(src rand.Source) ScoreFunc {
	var mu sync.Mutex
	rng := rand.New(src)
	return func(answer string) Result {
		mu.Lock()
		defer mu.Unlock()
		return ComputeResult(answer, rng)
	}
}

package interview

import (
	"math/rand"
	"testing"
)

func TestComputeResultWithBonus(t *testing.T) {
	answer := "function twoSum(nums,target){ for (...) { return [i,j]; } }"
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		res := ComputeResult(answer, r)
		if res.Score < 70 || res.Score > 100 {
			t.Fatalf("score %d out of [70,100]", res.Score)
		}
		if res.Feedback == "" {
			t.Fatal("empty feedback")
		}
	}
}

func TestComputeResultWithoutBonus(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		res := ComputeResult("no keywords here", r)
		if res.Score < 60 || res.Score > 90 {
			t.Fatalf("score %d out of [60,90]", res.Score)
		}
	}
}

func TestEarnsBonus(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		expected bool
	}{
		{name: "for and return", answer: "for i in x: return i", expected: true},
		{name: "map and return", answer: "const m = new Map(); RETURN m", expected: true},
		{name: "return only", answer: "return 1", expected: false},
		{name: "loop only", answer: "for (;;) {}", expected: false},
		{name: "empty", answer: "", expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := earnsBonus(tt.answer); got != tt.expected {
				t.Fatalf("earnsBonus(%q) = %v want %v", tt.answer, got, tt.expected)
			}
		})
	}
}

func TestNewScorerDeterministic(t *testing.T) {
	a := NewScorer(rand.NewSource(42))
	b := NewScorer(rand.NewSource(42))

	for i := 0; i < 10; i++ {
		if ra, rb := a("x"), b("x"); ra != rb {
			t.Fatalf("run %d: %+v != %+v", i, ra, rb)
		}
	}
}

func TestFeedbackCoversCatalog(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		seen[ComputeResult("", r).Feedback] = true
	}
	if len(seen) != len(cannedFeedback) {
		t.Fatalf("saw %d distinct feedback lines want %d", len(seen), len(cannedFeedback))
	}
}

package interview

import "testing"

func TestRenderNothingBeforeStart(t *testing.T) {
	s := NewState()
	s.CodingPanelOpen = true
	s.Result = &Result{Score: 80}

	v := Render(s)
	if v.Badge != nil || v.CodingPanel != nil || v.ResultsPanel != nil {
		t.Fatalf("rendered regions while not started: %+v", v)
	}
}

func TestRenderBadgeImmediatelyOnStart(t *testing.T) {
	s, _, _ := Reduce(NewState(), Start{}, nil)

	v := Render(s)
	if v.Badge == nil {
		t.Fatal("badge hidden after start")
	}
	if v.Badge.Time != "10:00" || v.Badge.PhaseName != "Introduction" || v.Badge.ProgressPercent != 0 {
		t.Fatalf("unexpected badge %+v", v.Badge)
	}
	if v.CodingPanel != nil || v.ResultsPanel != nil {
		t.Fatal("panels visible during introduction")
	}
}

func TestRenderCodingPanel(t *testing.T) {
	s := startedAt(300)
	s.CodingPanelOpen = true
	s.Answer = "return"

	v := Render(s)
	if v.CodingPanel == nil || v.CodingPanel.Answer != "return" {
		t.Fatalf("coding panel = %+v", v.CodingPanel)
	}
	if v.CodingPanel.Challenge.Problem != "Two Sum" {
		t.Fatalf("challenge = %q", v.CodingPanel.Challenge.Problem)
	}
}

func TestRenderResultsPanelNeedsResult(t *testing.T) {
	s := startedAt(30)
	if Render(s).ResultsPanel != nil {
		t.Fatal("results panel visible without a result")
	}

	s.Result = &Result{Score: 91, Feedback: "nice"}
	v := Render(s)
	if v.ResultsPanel == nil || v.ResultsPanel.Score != 91 || v.ResultsPanel.MaxScore != 100 {
		t.Fatalf("results panel = %+v", v.ResultsPanel)
	}

	s = startedAt(200)
	s.Result = &Result{Score: 91}
	if Render(s).ResultsPanel != nil {
		t.Fatal("results panel visible during coding")
	}
}

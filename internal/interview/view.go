package interview

// Badge is the compact time/phase indicator.
type Badge struct {
	Time            string  `json:"time"`
	Phase           Phase   `json:"phase"`
	PhaseName       string  `json:"phase_name"`
	Description     string  `json:"description"`
	ProgressPercent float64 `json:"progress_percent"`
}

// CodingPanel is the full-screen coding challenge overlay.
type CodingPanel struct {
	Challenge Challenge `json:"challenge"`
	Answer    string    `json:"answer"`
}

// ResultsPanel is the full-screen results overlay.
type ResultsPanel struct {
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Feedback string `json:"feedback"`
}

// View holds the visible regions. A nil region is hidden.
type View struct {
	Badge        *Badge        `json:"badge"`
	CodingPanel  *CodingPanel  `json:"coding_panel"`
	ResultsPanel *ResultsPanel `json:"results_panel"`
}

// Render derives the visible regions from s. Nothing renders before the session starts.
func Render(s State) View {
	if !s.Started {
		return View{}
	}

	info := s.Phase.Info()
	v := View{
		Badge: &Badge{
			Time:            FormatTime(s.Remaining),
			Phase:           s.Phase,
			PhaseName:       info.Name,
			Description:     info.Description,
			ProgressPercent: ProgressPercentage(s.Remaining),
		},
	}

	if s.CodingPanelOpen {
		v.CodingPanel = &CodingPanel{Challenge: TwoSum(), Answer: s.Answer}
	}
	if s.Phase.showsResults() && s.Result != nil {
		v.ResultsPanel = &ResultsPanel{
			Score:    s.Result.Score,
			MaxScore: MaxScore,
			Feedback: s.Result.Feedback,
		}
	}

	return v
}

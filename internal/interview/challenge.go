package interview

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed challenge.yaml
var challengeYAML []byte

// Example is a worked input/output pair.
type Example struct {
	Input       string `yaml:"input" json:"input"`
	Output      string `yaml:"output" json:"output"`
	Explanation string `yaml:"explanation" json:"explanation"`
}

// Challenge is the problem shown in the coding panel.
type Challenge struct {
	Title       string   `yaml:"title" json:"title"`
	Problem     string   `yaml:"problem" json:"problem"`
	Statement   string   `yaml:"statement" json:"statement"`
	Constraints []string `yaml:"constraints" json:"constraints"`
	Example     Example  `yaml:"example" json:"example"`
	AnswerLabel string   `yaml:"answer_label" json:"answer_label"`
	Placeholder string   `yaml:"placeholder" json:"placeholder"`
}

var twoSum = mustParseChallenge(challengeYAML)

// TwoSum returns the fixed coding challenge.
func TwoSum() Challenge {
	c := twoSum
	c.Constraints = append([]string(nil), twoSum.Constraints...)
	return c
}

func parseChallenge(raw []byte) (Challenge, error) {
	var c Challenge
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Challenge{}, fmt.Errorf("parse challenge yaml: %w", err)
	}
	if c.Problem == "" || c.Statement == "" {
		return Challenge{}, fmt.Errorf("challenge is missing problem or statement")
	}
	return c, nil
}

func mustParseChallenge(raw []byte) Challenge {
	c, err := parseChallenge(raw)
	if err != nil {
		panic(err)
	}
	return c
}

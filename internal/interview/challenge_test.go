package interview

import (
	"strings"
	"testing"
)

func TestTwoSumChallenge(t *testing.T) {
	c := TwoSum()
	if c.Problem != "Two Sum" {
		t.Fatalf("problem = %q", c.Problem)
	}
	if !strings.Contains(c.Statement, "return indices of the two numbers") {
		t.Fatalf("statement = %q", c.Statement)
	}
	if c.Example.Input != "nums = [2, 7, 11, 15], target = 9" || c.Example.Output != "[0, 1]" {
		t.Fatalf("example = %+v", c.Example)
	}
	if !strings.HasPrefix(c.Placeholder, "function twoSum(nums, target) {") {
		t.Fatalf("placeholder = %q", c.Placeholder)
	}
}

func TestTwoSumReturnsCopy(t *testing.T) {
	c := TwoSum()
	c.Constraints[0] = "changed"
	if TwoSum().Constraints[0] == "changed" {
		t.Fatal("TwoSum leaked shared constraints slice")
	}
}

func TestParseChallengeRejectsIncomplete(t *testing.T) {
	if _, err := parseChallenge([]byte("title: x\n")); err == nil {
		t.Fatal("expected error for missing problem")
	}
	if _, err := parseChallenge([]byte("title: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

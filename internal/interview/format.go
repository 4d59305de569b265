package interview

import "fmt"

// FormatTime renders seconds as zero-padded MM:SS.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ProgressPercentage returns how much of the budget has elapsed, in [0,100].
func ProgressPercentage(remaining int) float64 {
	return float64(TotalSeconds-remaining) / float64(TotalSeconds) * 100
}

package course

import "math"

// ModuleProgressPct returns the percentage of a module's lessons that are
// completed, rounded half-up. A module with no lessons reports 0.
func ModuleProgressPct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return RoundPct(100 * float64(completed) / float64(total))
}

// CourseProgressPct returns the arithmetic mean of the module percentages,
// rounded half-up. A course with no modules reports 0.
func CourseProgressPct(modulePcts []int) int {
	if len(modulePcts) == 0 {
		return 0
	}
	sum := 0
	for _, p := range modulePcts {
		sum += p
	}
	return RoundPct(float64(sum) / float64(len(modulePcts)))
}

// RoundPct rounds a percentage half-up to the nearest integer
func RoundPct(pct float64) int {
	return int(math.Floor(pct + 0.5))
}

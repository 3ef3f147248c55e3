package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleProgressPct(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		expected  int
	}{
		{"no lessons", 0, 0, 0},
		{"nothing completed", 0, 4, 0},
		{"three of four", 3, 4, 75},
		{"all completed", 4, 4, 100},
		{"one of three rounds half-up", 1, 3, 33},
		{"two of three rounds half-up", 2, 3, 67},
		{"half rounds up", 1, 2, 50},
		{"one of eight", 1, 8, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ModuleProgressPct(tt.completed, tt.total))
		})
	}
}

func TestCourseProgressPct(t *testing.T) {
	tests := []struct {
		name     string
		modules  []int
		expected int
	}{
		{"no modules", nil, 0},
		{"single module", []int{75}, 75},
		{"mean rounds half-up", []int{75, 50}, 63},
		{"exact mean", []int{100, 50}, 75},
		{"all complete", []int{100, 100, 100}, 100},
		{"thirds round half-up", []int{100, 0, 0}, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CourseProgressPct(tt.modules))
		})
	}
}

func TestRoundPct(t *testing.T) {
	assert.Equal(t, 63, RoundPct(62.5))
	assert.Equal(t, 62, RoundPct(62.49))
	assert.Equal(t, 0, RoundPct(0))
	assert.Equal(t, 100, RoundPct(100))
}

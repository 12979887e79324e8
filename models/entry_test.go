package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformanceTypeForCount(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{-1, ""},
		{0, ""},
		{1, PerformanceSolo},
		{2, PerformanceDuet},
		{3, PerformanceTrio},
		{4, PerformanceGroup},
		{9, PerformanceGroup},
		{10, PerformanceGroup},
		{40, PerformanceGroup},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceTypeForCount(tt.count), "count=%d", tt.count)
	}
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedalForTotalBoundaries(t *testing.T) {
	tests := []struct {
		total float64
		want  MedalTier
	}{
		{0, MedalBronze},
		{42.5, MedalBronze},
		{69.99, MedalBronze},
		{70.00, MedalSilver},
		{74.99, MedalSilver},
		{75.00, MedalSilverPlus},
		{79.99, MedalSilverPlus},
		{80.00, MedalGold},
		{84.99, MedalGold},
		{85.00, MedalLegend},
		{89.99, MedalLegend},
		{90.00, MedalOpus},
		{94.99, MedalOpus},
		{95.00, MedalElite},
		{100.00, MedalElite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MedalForTotal(tt.total), "total=%.2f", tt.total)
	}
}

func TestAverageTotal(t *testing.T) {
	assert.Zero(t, AverageTotal(nil))
	assert.Zero(t, AverageTotal([]float64{}))
	assert.Equal(t, 80.0, AverageTotal([]float64{80}))
	assert.Equal(t, 85.0, AverageTotal([]float64{80, 90}))
	// 83.333... rounds to 2 decimal places
	assert.Equal(t, 83.33, AverageTotal([]float64{80, 80, 90}))
	// 86.666... rounds up
	assert.Equal(t, 86.67, AverageTotal([]float64{80, 90, 90}))
}

func TestAverageClassifiesSameAsSingleTotal(t *testing.T) {
	// A borderline average lands in the same band a raw total would
	avg := AverageTotal([]float64{69.99, 70.01})
	assert.Equal(t, 70.0, avg)
	assert.Equal(t, MedalSilver, MedalForTotal(avg))

	avg = AverageTotal([]float64{94.99, 94.98})
	assert.Equal(t, 94.99, avg)
	assert.Equal(t, MedalOpus, MedalForTotal(avg))
}

package services

import (
	"testing"

	"competition-entry-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardSchedule() models.FeeSchedule {
	return models.FeeSchedule{
		RegistrationFeePerDancer: 300,
		Solo1Fee:                 400,
		Solo2Fee:                 750,
		Solo3Fee:                 1050,
		SoloAdditionalFee:        100,
		DuoTrioFeePerDancer:      280,
		GroupFeePerDancer:        200,
		LargeGroupFeePerDancer:   180,
		Currency:                 "ZAR",
	}
}

func TestSoloPackagePrice(t *testing.T) {
	fs := standardSchedule()

	tests := []struct {
		n    int
		want float64
	}{
		{0, 0},
		{-1, 0},
		{1, 400},
		{2, 750},
		{3, 1050},
		{4, 1150},
		{5, 1250},
		{10, 1750},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SoloPackagePrice(fs, tt.n), "package price for n=%d", tt.n)
	}
}

func TestSoloIncrementalFeeSequence(t *testing.T) {
	fs := standardSchedule()

	// Nth consecutive solo charges [solo1, solo2-solo1, solo3-solo2, additional, additional, ...]
	want := []float64{400, 350, 300, 100, 100, 100}
	for i, w := range want {
		assert.Equal(t, w, SoloIncrementalFee(fs, i+1), "incremental fee for solo #%d", i+1)
	}
}

func TestResolvePerformanceFee(t *testing.T) {
	fs := standardSchedule()

	tests := []struct {
		name     string
		count    int
		soloTier int
		want     float64
	}{
		{"first solo", 1, 1, 400},
		{"second solo", 1, 2, 350},
		{"duet", 2, 0, 560},
		{"trio", 3, 0, 840},
		{"small group of 4", 4, 0, 800},
		{"group of 9", 9, 0, 1800},
		{"large group of 10", 10, 0, 1800},
		{"large group of 25", 25, 0, 4500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, warnings, err := ResolvePerformanceFee(fs, tt.count, tt.soloTier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fee)
			assert.Empty(t, warnings)
		})
	}
}

func TestResolvePerformanceFeeInvalidCount(t *testing.T) {
	fs := standardSchedule()

	for _, count := range []int{0, -1, -5} {
		_, _, err := ResolvePerformanceFee(fs, count, 0)
		assert.ErrorIs(t, err, ErrInvalidParticipantCount, "count=%d", count)
	}
}

func TestResolvePerformanceFeeUnconfiguredScheduleWarns(t *testing.T) {
	empty := models.FeeSchedule{Currency: "ZAR"}

	tests := []struct {
		name     string
		count    int
		soloTier int
	}{
		{"solo on empty schedule", 1, 1},
		{"duet on empty schedule", 2, 0},
		{"group on empty schedule", 5, 0},
		{"large group on empty schedule", 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, warnings, err := ResolvePerformanceFee(empty, tt.count, tt.soloTier)
			require.NoError(t, err, "an incomplete schedule must never block registration")
			assert.Zero(t, fee)
			assert.NotEmpty(t, warnings, "a zero fee from an unconfigured tier must be flagged")
		})
	}
}

func TestResolvePerformanceFeePartialScheduleWarnsOnlyForMissingTier(t *testing.T) {
	fs := standardSchedule()
	fs.SoloAdditionalFee = 0 // only tiers beyond 3 are unconfigured

	_, warnings, err := ResolvePerformanceFee(fs, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, warnings, "configured tier must not warn")

	fee, warnings, err := ResolvePerformanceFee(fs, 1, 4)
	require.NoError(t, err)
	assert.Zero(t, fee)
	assert.NotEmpty(t, warnings)
}

func TestResolvePerformanceFeePartialScheduleNeverCredits(t *testing.T) {
	// Only the first tier is priced: the tier-2 package delta would be
	// 0 - 400. The resolver must charge zero, never a negative amount.
	fs := models.FeeSchedule{Currency: "ZAR", Solo1Fee: 400}

	fee, warnings, err := ResolvePerformanceFee(fs, 1, 2)
	require.NoError(t, err)
	assert.Zero(t, fee, "an unconfigured tier must not produce a credit")
	assert.NotEmpty(t, warnings)

	fee, warnings, err = ResolvePerformanceFee(fs, 1, 3)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fee, 0.0)
	assert.NotEmpty(t, warnings)
}

func TestSoloFieldsUnsetChecksBothEndsOfTheDelta(t *testing.T) {
	// The lower package price is missing, so the tier-2 delta of 750 is
	// an over-charge worth flagging even though the fee itself is set.
	fs := models.FeeSchedule{Currency: "ZAR", Solo2Fee: 750}

	fee, warnings, err := ResolvePerformanceFee(fs, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 750.0, fee)
	assert.NotEmpty(t, warnings, "a delta built on an unset lower tier must warn")
}

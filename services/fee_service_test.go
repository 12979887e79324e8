package services

import (
	"testing"

	"competition-entry-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFeeBreakdownFourSoloScenario(t *testing.T) {
	fs := standardSchedule()

	// Dancer submits 4 solos sequentially: performance fees 400, 350, 300,
	// 100; registration fee 300 charged once on the first entry.
	wantPerf := []float64{400, 350, 300, 100}
	total := 0.0
	for i, want := range wantPerf {
		chargeRegistration := i == 0
		bd, err := ComputeFeeBreakdown(fs, 1, i+1, chargeRegistration)
		require.NoError(t, err)

		assert.Equal(t, want, bd.PerformanceFee, "solo #%d", i+1)
		assert.Equal(t, i+1, bd.SoloCount)
		if i == 0 {
			assert.Equal(t, 300.0, bd.RegistrationFee)
		} else {
			assert.Zero(t, bd.RegistrationFee)
		}
		assert.Equal(t, bd.PerformanceFee+bd.RegistrationFee, bd.TotalFee)
		total += bd.TotalFee
	}
	assert.Equal(t, 1750.0, total, "total across all four entries")
}

func TestComputeFeeBreakdownDeterministicText(t *testing.T) {
	fs := standardSchedule()

	first, err := ComputeFeeBreakdown(fs, 1, 2, false)
	require.NoError(t, err)
	second, err := ComputeFeeBreakdown(fs, 1, 2, false)
	require.NoError(t, err)

	assert.Equal(t, first.Breakdown, second.Breakdown, "same inputs must yield the same text")
	assert.Equal(t, first.RegistrationBreakdown, second.RegistrationBreakdown)
	assert.Contains(t, first.Breakdown, "tier 2")
	assert.Contains(t, first.Breakdown, "ZAR 350.00")
}

func TestComputeFeeBreakdownGroupText(t *testing.T) {
	fs := standardSchedule()

	bd, err := ComputeFeeBreakdown(fs, 5, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, bd.PerformanceFee)
	assert.Zero(t, bd.SoloCount, "non-solos claim no tier")
	assert.Contains(t, bd.Breakdown, "5 dancers x ZAR 200.00")
	assert.Contains(t, bd.RegistrationBreakdown, "ZAR 300.00")

	large, err := ComputeFeeBreakdown(fs, 12, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2160.0, large.PerformanceFee)
	assert.Contains(t, large.Breakdown, "Large group")
}

func TestComputeFeeBreakdownInvalidCount(t *testing.T) {
	_, err := ComputeFeeBreakdown(standardSchedule(), 0, 0, true)
	assert.ErrorIs(t, err, ErrInvalidParticipantCount)
}

func TestRegistrationFeeDueFromStoredStateOnly(t *testing.T) {
	assert.True(t, registrationFeeDue(nil), "no registration row means never charged")

	assert.True(t, registrationFeeDue(&models.DancerRegistration{}), "row exists but nothing charged yet")

	assert.False(t, registrationFeeDue(&models.DancerRegistration{RegistrationFeeCharged: 300}),
		"already charged, even if not yet paid")

	assert.False(t, registrationFeeDue(&models.DancerRegistration{RegistrationFeePaid: true}),
		"already settled")
}

func TestComputeFeeBreakdownSnapshotSurvivesScheduleEdit(t *testing.T) {
	fs := standardSchedule()

	snapshot, err := ComputeFeeBreakdown(fs, 1, 1, true)
	require.NoError(t, err)
	require.Equal(t, 400.0, snapshot.PerformanceFee)

	// Repricing the schedule after the fact must not touch values already
	// captured; only new quotes see the new prices.
	fs.Solo1Fee = 999
	fs.RegistrationFeePerDancer = 0

	assert.Equal(t, 400.0, snapshot.PerformanceFee)
	assert.Equal(t, 300.0, snapshot.RegistrationFee)
	assert.Equal(t, 700.0, snapshot.TotalFee)

	requote, err := ComputeFeeBreakdown(fs, 1, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 999.0, requote.PerformanceFee)
	assert.Zero(t, requote.RegistrationFee)
}

package services

import (
	"testing"

	"competition-entry-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeLedgerEmpty(t *testing.T) {
	summary := SummarizeLedger(0, false, nil)
	assert.Zero(t, summary.RegistrationFeeAmount)
	assert.Zero(t, summary.RegistrationFeeOutstanding)
	assert.Zero(t, summary.TotalEntryOutstanding)
	assert.Zero(t, summary.TotalOutstanding)
	assert.Zero(t, summary.TotalPaid)
}

func TestSummarizeLedgerMixed(t *testing.T) {
	obligations := []EntryObligation{
		{EntryID: "e1", Amount: 400, Paid: false}, // solo, unpaid
		{EntryID: "e2", Amount: 350, Paid: true},  // solo, paid
		{EntryID: "e3", Amount: 73.67, Paid: false}, // group share, unpaid
	}

	summary := SummarizeLedger(300, false, obligations)
	assert.Equal(t, 300.0, summary.RegistrationFeeAmount)
	assert.Equal(t, 300.0, summary.RegistrationFeeOutstanding)
	assert.Equal(t, 473.67, summary.TotalEntryOutstanding)
	assert.Equal(t, 773.67, summary.TotalOutstanding)
	assert.Equal(t, 350.0, summary.TotalPaid)
}

func TestSummarizeLedgerPaidRegistration(t *testing.T) {
	summary := SummarizeLedger(300, true, []EntryObligation{{EntryID: "e1", Amount: 400, Paid: true}})
	assert.Zero(t, summary.RegistrationFeeOutstanding)
	assert.Zero(t, summary.TotalOutstanding)
	assert.Equal(t, 700.0, summary.TotalPaid, "totalPaid mirrors outstanding for settled items")
}

func TestBuildObligationsSoloUsesFullFee(t *testing.T) {
	entries := []models.Entry{{
		ID:              "e1",
		PerformanceType: models.PerformanceSolo,
		CalculatedFee:   400,
		PaymentStatus:   models.PaymentUnpaid,
	}}

	obligations := BuildObligations(entries, "d1")
	require.Len(t, obligations, 1)
	assert.Equal(t, 400.0, obligations[0].Amount)
	assert.False(t, obligations[0].Paid)
}

func TestBuildObligationsGroupUsesShare(t *testing.T) {
	entries := []models.Entry{{
		ID:              "e1",
		PerformanceType: models.PerformanceGroup,
		CalculatedFee:   221,
		PaymentStatus:   models.PaymentPaid,
		Participants: []models.EntryParticipant{
			{DancerID: "d1", Position: 0},
			{DancerID: "d2", Position: 1},
			{DancerID: "d3", Position: 2},
		},
	}}

	obligations := BuildObligations(entries, "d3")
	require.Len(t, obligations, 1)
	assert.Equal(t, 73.66, obligations[0].Amount, "third participant carries no extra cent")
	assert.True(t, obligations[0].Paid)
}

func TestBuildObligationsFallsBackToSnapshot(t *testing.T) {
	// Participant list failed to load: fall back to the stored fee snapshot
	// instead of aborting the aggregation.
	entries := []models.Entry{{
		ID:              "e1",
		PerformanceType: models.PerformanceGroup,
		CalculatedFee:   221,
		PaymentStatus:   models.PaymentUnpaid,
	}}

	obligations := BuildObligations(entries, "d1")
	require.Len(t, obligations, 1)
	assert.Equal(t, 221.0, obligations[0].Amount)
}

func TestSummarizeLedgerPendingCountsAsOutstanding(t *testing.T) {
	obligations := []EntryObligation{{EntryID: "e1", Amount: 560, Paid: false}}
	summary := SummarizeLedger(0, false, obligations)
	assert.Equal(t, 560.0, summary.TotalOutstanding, "anything not paid is outstanding")
}

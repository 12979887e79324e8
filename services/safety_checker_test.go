package services

import (
	"testing"

	"competition-entry-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() models.Event {
	return models.Event{
		ID:                "ev1",
		JudgeCount:        3,
		ParticipationMode: models.ModeHybrid,
		FeeSchedule:       standardSchedule(),
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestJudgeCountChangeBlockedOnceScored(t *testing.T) {
	event := testEvent()
	change := EventChangeSet{JudgeCount: intPtr(5)}

	result := EvaluateEventChangeSet(event, change, SafetyStats{ScoreCount: 1, JudgeCount: 3})
	assert.Equal(t, VerdictBlocked, result.Verdict)
	require.Len(t, result.Blocks, 1)
	assert.Contains(t, result.Blocks[0], "score")

	result = EvaluateEventChangeSet(event, change, SafetyStats{ScoreCount: 0, JudgeCount: 3})
	assert.Equal(t, VerdictAllowed, result.Verdict)
	assert.Empty(t, result.Blocks)
	assert.Empty(t, result.Warnings)
}

func TestJudgeCountNoopIsNotAChange(t *testing.T) {
	event := testEvent()
	result := EvaluateEventChangeSet(event, EventChangeSet{JudgeCount: intPtr(3)}, SafetyStats{ScoreCount: 10})
	assert.Equal(t, VerdictAllowed, result.Verdict)
	assert.Empty(t, result.Checks)
}

func TestParticipationModeNarrowingIsRisky(t *testing.T) {
	event := testEvent()

	tests := []struct {
		name     string
		newMode  string
		stats    SafetyStats
		verdict  Verdict
		contains string
	}{
		{"live-only with virtual entries", models.ModeLiveOnly, SafetyStats{VirtualEntryCount: 4}, VerdictRisky, "4 virtual entries"},
		{"live-only with one virtual entry", models.ModeLiveOnly, SafetyStats{VirtualEntryCount: 1}, VerdictRisky, "1 virtual entry"},
		{"virtual-only with live entries", models.ModeVirtualOnly, SafetyStats{LiveEntryCount: 7}, VerdictRisky, "7 live entries"},
		{"live-only with no virtual entries", models.ModeLiveOnly, SafetyStats{LiveEntryCount: 9}, VerdictAllowed, ""},
		{"back to hybrid", models.ModeHybrid, SafetyStats{LiveEntryCount: 3, VirtualEntryCount: 3}, VerdictAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateEventChangeSet(event, EventChangeSet{ParticipationMode: strPtr(tt.newMode)}, tt.stats)
			assert.Equal(t, tt.verdict, result.Verdict)
			if tt.verdict == VerdictRisky {
				require.Len(t, result.Warnings, 1)
				assert.Contains(t, result.Warnings[0], tt.contains)
			}
		})
	}
}

func TestFeeScheduleLockedOncePaid(t *testing.T) {
	event := testEvent()
	newSchedule := event.FeeSchedule
	newSchedule.Solo1Fee = 450

	result := EvaluateEventChangeSet(event, EventChangeSet{FeeSchedule: &newSchedule}, SafetyStats{PaymentCount: 2})
	assert.Equal(t, VerdictBlocked, result.Verdict)
	require.Len(t, result.Blocks, 1)
	assert.Contains(t, result.Blocks[0], "payment")

	result = EvaluateEventChangeSet(event, EventChangeSet{FeeSchedule: &newSchedule}, SafetyStats{PaymentCount: 0})
	assert.Equal(t, VerdictAllowed, result.Verdict)
}

func TestFeeScheduleIdenticalIsNotAChange(t *testing.T) {
	event := testEvent()
	same := event.FeeSchedule
	result := EvaluateEventChangeSet(event, EventChangeSet{FeeSchedule: &same}, SafetyStats{PaymentCount: 5})
	assert.Equal(t, VerdictAllowed, result.Verdict)
	assert.Empty(t, result.Checks)
}

func TestBlockedDominatesRiskyDominatesAllowed(t *testing.T) {
	event := testEvent()
	newSchedule := event.FeeSchedule
	newSchedule.GroupFeePerDancer = 250

	change := EventChangeSet{
		JudgeCount:        intPtr(5),
		ParticipationMode: strPtr(models.ModeLiveOnly),
		FeeSchedule:       &newSchedule,
	}
	stats := SafetyStats{ScoreCount: 3, VirtualEntryCount: 2, PaymentCount: 1, JudgeCount: 3}

	result := EvaluateEventChangeSet(event, change, stats)
	assert.Equal(t, VerdictBlocked, result.Verdict)
	assert.Len(t, result.Blocks, 2, "every blocking reason is reported, not just the first")
	assert.Len(t, result.Warnings, 1, "risky reasons are still listed alongside blocks")
}

func TestEmptyChangeSetIsAllowed(t *testing.T) {
	result := EvaluateEventChangeSet(testEvent(), EventChangeSet{}, SafetyStats{ScoreCount: 9, PaymentCount: 9})
	assert.Equal(t, VerdictAllowed, result.Verdict)
	assert.Empty(t, result.Checks)
}

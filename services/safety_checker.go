package services

import (
	"fmt"

	"competition-entry-system/models"

	"gorm.io/gorm"
)

// SafetyStats is the derived per-event state the mutation checker reasons
// about. It is a snapshot: the update transaction must re-load and re-check
// it, a prior check result is only advisory.
type SafetyStats struct {
	EntryCount        int64 `json:"entry_count"`
	LiveEntryCount    int64 `json:"live_entry_count"`
	VirtualEntryCount int64 `json:"virtual_entry_count"`
	PaymentCount      int64 `json:"payment_count"`
	ScoreCount        int64 `json:"score_count"`
	JudgeCount        int   `json:"judge_count"`
}

// Verdict classifies one proposed change dimension.
type Verdict string

const (
	VerdictAllowed Verdict = "allowed"
	VerdictRisky   Verdict = "risky"   // needs explicit confirmation
	VerdictBlocked Verdict = "blocked" // must not be applied
)

// rank orders verdicts for the reducer: blocked > risky > allowed
func (v Verdict) rank() int {
	switch v {
	case VerdictBlocked:
		return 2
	case VerdictRisky:
		return 1
	default:
		return 0
	}
}

// ChangeCheck is the tagged result for one change dimension.
type ChangeCheck struct {
	Change  string  `json:"change"`
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason,omitempty"`
}

// EventChangeSet is a proposed partial update to an event's configuration.
// Nil fields are "no change requested".
type EventChangeSet struct {
	JudgeCount        *int                `json:"judge_count,omitempty"`
	ParticipationMode *string             `json:"participation_mode,omitempty"`
	FeeSchedule       *models.FeeSchedule `json:"fee_schedule,omitempty"`
}

// SafetyCheckResult combines the per-dimension checks with the reduced
// overall verdict. Warnings carry every risky reason, Blocks every blocking
// reason — all of them, not just the first.
type SafetyCheckResult struct {
	Stats    SafetyStats   `json:"stats"`
	Verdict  Verdict       `json:"verdict"`
	Checks   []ChangeCheck `json:"checks"`
	Warnings []string      `json:"warnings"`
	Blocks   []string      `json:"blocks"`
}

// EvaluateEventChangeSet classifies a proposed change set against the
// event's current configuration and financial/scoring state. Pure: no DB,
// no confirmation plumbing, just policy.
//
// Rules:
//   - judge-count change with scores on file → blocked (scores were judged
//     under the current panel size)
//   - participation-mode narrowing that strands existing entries → risky,
//     stating how many entries would be invalidated
//   - any fee-schedule change once a payment exists → blocked
func EvaluateEventChangeSet(current models.Event, change EventChangeSet, stats SafetyStats) SafetyCheckResult {
	var checks []ChangeCheck

	if change.JudgeCount != nil && *change.JudgeCount != current.JudgeCount {
		if stats.ScoreCount > 0 {
			checks = append(checks, ChangeCheck{
				Change:  "judge_count",
				Verdict: VerdictBlocked,
				Reason:  fmt.Sprintf("cannot change judge count from %d to %d: %d score(s) already submitted", current.JudgeCount, *change.JudgeCount, stats.ScoreCount),
			})
		} else {
			checks = append(checks, ChangeCheck{Change: "judge_count", Verdict: VerdictAllowed})
		}
	}

	if change.ParticipationMode != nil && *change.ParticipationMode != current.ParticipationMode {
		checks = append(checks, checkParticipationMode(*change.ParticipationMode, stats))
	}

	if change.FeeSchedule != nil && *change.FeeSchedule != current.FeeSchedule {
		if stats.PaymentCount > 0 {
			checks = append(checks, ChangeCheck{
				Change:  "fee_schedule",
				Verdict: VerdictBlocked,
				Reason:  fmt.Sprintf("fee schedule is locked: %d payment(s) already recorded for this event", stats.PaymentCount),
			})
		} else {
			checks = append(checks, ChangeCheck{Change: "fee_schedule", Verdict: VerdictAllowed})
		}
	}

	return reduceChecks(stats, checks)
}

func checkParticipationMode(newMode string, stats SafetyStats) ChangeCheck {
	switch newMode {
	case models.ModeLiveOnly:
		if stats.VirtualEntryCount > 0 {
			return ChangeCheck{
				Change:  "participation_mode",
				Verdict: VerdictRisky,
				Reason:  fmt.Sprintf("switching to live-only would invalidate %d virtual entr%s", stats.VirtualEntryCount, plural(stats.VirtualEntryCount, "y", "ies")),
			}
		}
	case models.ModeVirtualOnly:
		if stats.LiveEntryCount > 0 {
			return ChangeCheck{
				Change:  "participation_mode",
				Verdict: VerdictRisky,
				Reason:  fmt.Sprintf("switching to virtual-only would invalidate %d live entr%s", stats.LiveEntryCount, plural(stats.LiveEntryCount, "y", "ies")),
			}
		}
	}
	// widening to hybrid never strands anyone
	return ChangeCheck{Change: "participation_mode", Verdict: VerdictAllowed}
}

// reduceChecks folds the per-dimension verdicts into the overall result:
// blocked dominates risky dominates allowed.
func reduceChecks(stats SafetyStats, checks []ChangeCheck) SafetyCheckResult {
	result := SafetyCheckResult{Stats: stats, Verdict: VerdictAllowed, Checks: checks}
	for _, ch := range checks {
		if ch.Verdict.rank() > result.Verdict.rank() {
			result.Verdict = ch.Verdict
		}
		switch ch.Verdict {
		case VerdictRisky:
			result.Warnings = append(result.Warnings, ch.Reason)
		case VerdictBlocked:
			result.Blocks = append(result.Blocks, ch.Reason)
		}
	}
	return result
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// LoadSafetyStats derives the checker's inputs for an event from the DB.
func LoadSafetyStats(db *gorm.DB, eventID string, judgeCount int) (SafetyStats, error) {
	stats := SafetyStats{JudgeCount: judgeCount}

	if err := db.Model(&models.Entry{}).Where("event_id = ?", eventID).Count(&stats.EntryCount).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Entry{}).Where("event_id = ? AND entry_type = ?", eventID, models.EntryLive).Count(&stats.LiveEntryCount).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Entry{}).Where("event_id = ? AND entry_type = ?", eventID, models.EntryVirtual).Count(&stats.VirtualEntryCount).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Payment{}).Where("event_id = ?", eventID).Count(&stats.PaymentCount).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Score{}).Where("event_id = ?", eventID).Count(&stats.ScoreCount).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

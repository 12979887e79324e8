package services

import (
	"errors"
	"fmt"

	"competition-entry-system/models"
)

// ErrInvalidParticipantCount rejects entries with no participants before any
// fee is computed.
var ErrInvalidParticipantCount = errors.New("participant count must be at least 1")

// Group size boundary: 4–9 dancers price as a group, 10+ as a large group
const largeGroupMinSize = 10

// SoloPackagePrice returns the cumulative package price for n solos under
// the given schedule:
//
//	n=1 → Solo1Fee, n=2 → Solo2Fee, n=3 → Solo3Fee,
//	n>3 → Solo3Fee + (n−3) × SoloAdditionalFee
//
// n<=0 prices at 0, which makes the incremental delta below work for the
// first solo without a special case.
func SoloPackagePrice(fs models.FeeSchedule, n int) float64 {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return fs.Solo1Fee
	case n == 2:
		return fs.Solo2Fee
	case n == 3:
		return fs.Solo3Fee
	default:
		return fs.Solo3Fee + float64(n-3)*fs.SoloAdditionalFee
	}
}

// SoloIncrementalFee returns the fee actually charged for a dancer's Nth
// solo: the delta between the N and N−1 cumulative package prices.
func SoloIncrementalFee(fs models.FeeSchedule, n int) float64 {
	return SoloPackagePrice(fs, n) - SoloPackagePrice(fs, n-1)
}

// ResolvePerformanceFee maps the schedule plus participant count to the base
// performance fee. For solos, soloTier is the tier being claimed (prior solo
// count + 1) and the returned fee is the incremental package delta.
//
// Unconfigured (zero) schedule fields resolve to a zero fee with a warning
// instead of an error: an incomplete schedule must never block registration,
// but the caller has to surface the warning so the under-charge is visible.
func ResolvePerformanceFee(fs models.FeeSchedule, count int, soloTier int) (float64, []string, error) {
	if count < 1 {
		return 0, nil, ErrInvalidParticipantCount
	}

	var warnings []string
	switch models.PerformanceTypeForCount(count) {
	case models.PerformanceSolo:
		fee := SoloIncrementalFee(fs, soloTier)
		if soloFieldsUnset(fs, soloTier) {
			warnings = append(warnings, fmt.Sprintf("solo tier %d is missing a configured package price on the fee schedule", soloTier))
		}
		// A partially configured schedule can make the package delta
		// negative (the upper tier unset while the lower one is priced).
		// A tier never resolves to a credit.
		if fee < 0 {
			fee = 0
			warnings = append(warnings, fmt.Sprintf("solo tier %d package delta is negative; a zero fee was used", soloTier))
		}
		return fee, warnings, nil

	case models.PerformanceDuet, models.PerformanceTrio:
		if fs.DuoTrioFeePerDancer == 0 {
			warnings = append(warnings, "duo/trio fee per dancer is not configured on the fee schedule; a zero fee was used")
		}
		return fs.DuoTrioFeePerDancer * float64(count), warnings, nil

	default: // group
		if count >= largeGroupMinSize {
			if fs.LargeGroupFeePerDancer == 0 {
				warnings = append(warnings, "large group fee per dancer is not configured on the fee schedule; a zero fee was used")
			}
			return fs.LargeGroupFeePerDancer * float64(count), warnings, nil
		}
		if fs.GroupFeePerDancer == 0 {
			warnings = append(warnings, "group fee per dancer is not configured on the fee schedule; a zero fee was used")
		}
		return fs.GroupFeePerDancer * float64(count), warnings, nil
	}
}

// soloFieldsUnset reports whether the schedule fields backing the given solo
// tier are missing. Tier 2/3 deltas also depend on the preceding package
// price, so those check both ends.
func soloFieldsUnset(fs models.FeeSchedule, tier int) bool {
	switch {
	case tier <= 1:
		return fs.Solo1Fee == 0
	case tier == 2:
		return fs.Solo2Fee == 0 || fs.Solo1Fee == 0
	case tier == 3:
		return fs.Solo3Fee == 0 || fs.Solo2Fee == 0
	default:
		return fs.SoloAdditionalFee == 0
	}
}

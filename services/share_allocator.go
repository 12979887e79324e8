package services

import "math"

// ParticipantShare is one dancer's informational slice of a shared entry's
// fee. Payment is still collected against the entry as a whole; shares only
// tell each family what their portion works out to.
type ParticipantShare struct {
	DancerID         string  `json:"dancer_id"`
	Position         int     `json:"position"`
	Share            float64 `json:"share"`
	IsMainContestant bool    `json:"is_main_contestant"`
	// Obligation is what reporting shows this dancer: the registrant/owner
	// carries the full entry fee, everyone else their computed share.
	Obligation float64 `json:"obligation"`
}

// AllocateShares splits calculatedFee equally across the participants using
// the largest-remainder method in currency minor units: floor shares for
// everyone, then the leftover cents handed out one each to the earliest
// positions in list order. The shares always sum to calculatedFee exactly,
// for any count and any amount.
func AllocateShares(calculatedFee float64, participantIDs []string, ownerID string) ([]ParticipantShare, error) {
	n := len(participantIDs)
	if n < 1 {
		return nil, ErrInvalidParticipantCount
	}

	totalCents := int64(math.Round(calculatedFee * 100))
	base := totalCents / int64(n)
	remainder := totalCents % int64(n)

	shares := make([]ParticipantShare, n)
	for i, dancerID := range participantIDs {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		share := float64(cents) / 100

		isOwner := dancerID == ownerID
		obligation := share
		if isOwner {
			obligation = float64(totalCents) / 100
		}

		shares[i] = ParticipantShare{
			DancerID:         dancerID,
			Position:         i,
			Share:            share,
			IsMainContestant: isOwner,
			Obligation:       obligation,
		}
	}
	return shares, nil
}

// ShareForDancer returns the given dancer's share of calculatedFee under the
// same allocation, or 0 if the dancer is not a participant. Used by the
// financial aggregator for group outstanding totals.
func ShareForDancer(calculatedFee float64, participantIDs []string, dancerID string) float64 {
	shares, err := AllocateShares(calculatedFee, participantIDs, "")
	if err != nil {
		return 0
	}
	for _, s := range shares {
		if s.DancerID == dancerID {
			return s.Share
		}
	}
	return 0
}

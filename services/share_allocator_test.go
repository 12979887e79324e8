package services

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateSharesNonDivisibleCents(t *testing.T) {
	// 221.00 across 3 dancers: first two carry the extra cent
	shares, err := AllocateShares(221.00, []string{"a", "b", "c"}, "a")
	require.NoError(t, err)
	require.Len(t, shares, 3)

	assert.Equal(t, 73.67, shares[0].Share)
	assert.Equal(t, 73.67, shares[1].Share)
	assert.Equal(t, 73.66, shares[2].Share)

	sum := shares[0].Share + shares[1].Share + shares[2].Share
	assert.Equal(t, 221.00, math.Round(sum*100)/100)
}

func TestAllocateSharesSumsExactly(t *testing.T) {
	amounts := []float64{0, 0.01, 0.02, 1, 10.01, 99.99, 100, 221, 1234.56, 10000.03}
	counts := []int{1, 2, 3, 4, 5, 7, 9, 10, 13, 31}

	for _, amount := range amounts {
		for _, n := range counts {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("d%d", i)
			}
			shares, err := AllocateShares(amount, ids, ids[0])
			require.NoError(t, err)

			var sumCents int64
			for _, s := range shares {
				sumCents += int64(math.Round(s.Share * 100))
			}
			assert.Equal(t, int64(math.Round(amount*100)), sumCents,
				"amount=%v count=%d must sum exactly with no rounding drift", amount, n)
		}
	}
}

func TestAllocateSharesRemainderGoesToEarliestPositions(t *testing.T) {
	// 100.03 / 4 = 25.00 base with 3 leftover cents
	shares, err := AllocateShares(100.03, []string{"a", "b", "c", "d"}, "b")
	require.NoError(t, err)

	assert.Equal(t, []float64{25.01, 25.01, 25.01, 25.00},
		[]float64{shares[0].Share, shares[1].Share, shares[2].Share, shares[3].Share})
	for i, s := range shares {
		assert.Equal(t, i, s.Position)
	}
}

func TestAllocateSharesOwnerObligation(t *testing.T) {
	shares, err := AllocateShares(600, []string{"a", "b", "c"}, "b")
	require.NoError(t, err)

	for _, s := range shares {
		if s.DancerID == "b" {
			assert.True(t, s.IsMainContestant)
			assert.Equal(t, 600.0, s.Obligation, "owner is shown the full fee")
		} else {
			assert.False(t, s.IsMainContestant)
			assert.Equal(t, 200.0, s.Obligation, "non-owners are shown their share only")
		}
	}
}

func TestAllocateSharesEmptyList(t *testing.T) {
	_, err := AllocateShares(100, nil, "a")
	assert.ErrorIs(t, err, ErrInvalidParticipantCount)
}

func TestShareForDancer(t *testing.T) {
	assert.Equal(t, 73.67, ShareForDancer(221, []string{"a", "b", "c"}, "a"))
	assert.Equal(t, 73.66, ShareForDancer(221, []string{"a", "b", "c"}, "c"))
	assert.Zero(t, ShareForDancer(221, []string{"a", "b", "c"}, "x"))
}

// Package money provides integer minor-unit arithmetic for ledger amounts.
// All internal math is done in cents; floating point only appears at the
// JSON boundary, rounded to two decimals.
package money

import "math"

// ToMinor converts a two-decimal amount (e.g. 30.00) to minor units (3000).
// Rounds half away from zero so 0.005 becomes 1 cent.
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinor converts minor units back to a two-decimal amount.
func FromMinor(cents int64) float64 {
	return float64(cents) / 100
}

// SplitEven divides total minor units across n participants. The remainder
// cents go to the earliest participants in order, so the shares always sum
// exactly to total: SplitEven(1000, 3) = [334, 333, 333].
func SplitEven(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	base := total / int64(n)
	rem := total - base*int64(n)

	shares := make([]int64, n)
	for i := range shares {
		shares[i] = base
		if rem > 0 {
			shares[i]++
			rem--
		} else if rem < 0 {
			shares[i]--
			rem++
		}
	}
	return shares
}

// Reallocate scales weighted shares so they sum exactly to total. Weights
// keep their relative proportions; any residual from integer rounding is
// assigned to the first share. Used when a split template must be
// re-spread over a subset of its original participants.
func Reallocate(total int64, weights []int64) []int64 {
	if len(weights) == 0 {
		return nil
	}

	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum == 0 {
		return SplitEven(total, len(weights))
	}

	shares := make([]int64, len(weights))
	var allocated int64
	for i, w := range weights {
		shares[i] = total * w / weightSum
		allocated += shares[i]
	}
	shares[0] += total - allocated
	return shares
}

// Sum returns the total of the given minor-unit amounts.
func Sum(amounts []int64) int64 {
	var total int64
	for _, a := range amounts {
		total += a
	}
	return total
}

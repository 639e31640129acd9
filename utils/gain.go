// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"cmp"
	"math"
)

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDB converts a linear amplitude factor to decibels.
// Non-positive gains map to negative infinity.
func GainToDB(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(gain)
}

// Clamp limits v to [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(hi, v))
}

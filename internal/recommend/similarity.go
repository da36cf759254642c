// MuseHub - Creative Content Sharing and Recommendation Platform
// Copyright 2026 MuseHub Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/musehub-io/musehub

package recommend

import (
	"math"
	"sort"
)

// PearsonSimilarity computes the Pearson correlation between two users'
// ratings over the given common item set. Ratings outside the common set
// do not influence the result.
//
// Returns 0 when either user's ratings have zero variance over the
// common set; a flat rating vector carries no directional signal even
// when the vectors are identical. Callers must skip pairs whose common
// set is smaller than MinCommonRatings.
//
// The function is symmetric: PearsonSimilarity(a, b, c) ==
// PearsonSimilarity(b, a, c).
func PearsonSimilarity(a, b map[int64]int, common []int64) float64 {
	n := float64(len(common))
	if n == 0 {
		return 0
	}

	var sumA, sumB float64
	for _, id := range common {
		sumA += float64(a[id])
		sumB += float64(b[id])
	}
	meanA := sumA / n
	meanB := sumB / n

	var cov, varA, varB float64
	for _, id := range common {
		da := float64(a[id]) - meanA
		db := float64(b[id]) - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 || varB == 0 {
		return 0
	}

	return cov / math.Sqrt(varA*varB)
}

// commonKeys returns the item IDs rated by both users, in ascending
// order for determinism.
func commonKeys(a, b map[int64]int) []int64 {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}

	common := make([]int64, 0, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			common = append(common, id)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
	return common
}

// pairKey returns an order-independent key for a user pair, used by the
// per-request similarity memo. Similarities are never cached across
// requests; ratings change between them.
type pairKey struct {
	lo, hi int64
}

func newPairKey(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

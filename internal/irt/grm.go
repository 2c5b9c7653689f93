// Package irt implements the Graded Response Model probability kernel:
// category probabilities and Fisher information for polytomous items on a
// 7-point scale. The kernel is pure and reversal-unaware; reverse scoring is
// applied by the dose trait estimator before the posterior engine calls in
// here.
package irt

import (
	"math"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
)

// Categories is the number of response categories on the Likert scale.
const Categories = 7

// probFloor keeps category probabilities strictly positive so downstream
// log-likelihoods never see zero.
const probFloor = 1e-12

// #region cumulative

// Cumulative computes P*(theta, k) = 1/(1+exp(-alpha*(theta-betaK))), the
// probability of responding at or above threshold k.
func Cumulative(theta, alpha, betaK float64) float64 {
	return 1.0 / (1.0 + math.Exp(-alpha*(theta-betaK)))
}

// cumulatives fills p[k] = P*(theta, k) for k in 0..7 with the boundary
// conventions P*(theta,0)=1 and P*(theta,7)=0.
func cumulatives(it bank.Item, theta float64) [Categories + 1]float64 {
	var p [Categories + 1]float64
	p[0] = 1.0
	for k := 1; k <= 6; k++ {
		p[k] = Cumulative(theta, it.Alpha, it.Beta[k-1])
	}
	p[Categories] = 0.0
	return p
}

// #endregion cumulative

// #region category-probs

// CategoryProbs returns the probability of each response category 1..7 at
// theta. Entries are floored at 1e-12 and renormalized, so every entry is
// strictly positive and the vector sums to 1 within 1e-9.
// The item must already have passed bank validation.
func CategoryProbs(it bank.Item, theta float64) [Categories]float64 {
	cum := cumulatives(it, theta)

	var probs [Categories]float64
	sum := 0.0
	for k := 1; k <= Categories; k++ {
		p := cum[k-1] - cum[k]
		if p < probFloor {
			p = probFloor
		}
		probs[k-1] = p
		sum += p
	}
	for k := range probs {
		probs[k] /= sum
	}
	return probs
}

// #endregion category-probs

// #region fisher

// FisherInformation computes the GRM item information at theta:
//
//	I(theta) = alpha^2 * sum_k (w_{k-1} - w_k)^2 / P_k
//
// with w_j = P*_j (1 - P*_j) and zero boundary derivatives.
// Returns *bank.InvalidItemError if the item's alpha is not positive.
func FisherInformation(it bank.Item, theta float64) (float64, error) {
	if it.Alpha <= 0 {
		return 0, &bank.InvalidItemError{Number: it.Number, Reason: "alpha must be positive"}
	}

	cum := cumulatives(it, theta)
	probs := CategoryProbs(it, theta)

	var w [Categories + 1]float64
	for k := 1; k <= 6; k++ {
		w[k] = cum[k] * (1.0 - cum[k])
	}
	// w[0] and w[7] stay zero: the boundary cumulatives are constant.

	info := 0.0
	for k := 1; k <= Categories; k++ {
		d := w[k-1] - w[k]
		info += d * d / probs[k-1]
	}
	return it.Alpha * it.Alpha * info, nil
}

// #endregion fisher

// #region expected-score

// ExpectedScore computes E[X|theta] on the 1..7 scale.
func ExpectedScore(it bank.Item, theta float64) float64 {
	probs := CategoryProbs(it, theta)
	e := 0.0
	for k, p := range probs {
		e += float64(k+1) * p
	}
	return e
}

// #endregion expected-score

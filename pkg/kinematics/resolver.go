package kinematics

import (
	"math"

	"github.com/teslashibe/go-armpick/pkg/spatial"
)

// Resolver search and cost parameters.
const (
	// DefaultContinuityWeight penalizes distance from the current
	// configuration; DefaultNeutralityWeight pulls toward the neutral pose.
	// Continuity dominates so the arm does not flip branches mid-motion.
	DefaultContinuityWeight = 1.0
	DefaultNeutralityWeight = 0.25

	// Local redundancy scan: a fine window around the current q7.
	DefaultLocalWindow = 0.2
	DefaultLocalStep   = 0.02

	// Full-range fallback scan step when the local window finds nothing.
	DefaultFullStep = 0.1
)

// Neutral is the reference configuration the resolver biases toward.
func Neutral() JointVector {
	return JointVector{0, -math.Pi / 4, 0, -3 * math.Pi / 4, 0, math.Pi / 2, math.Pi / 4}
}

// Resolver picks one configuration out of the solver's candidates by
// scanning the redundancy angle q7 and minimizing a continuity-plus-
// neutrality cost. It holds only immutable configuration and is safe to
// share.
type Resolver struct {
	neutral     JointVector
	alpha, beta float64
	localWindow float64
	localStep   float64
	fullStep    float64
}

// NewResolver returns a resolver with the default neutral pose, weights and
// scan ranges.
func NewResolver() *Resolver {
	return &Resolver{
		neutral:     Neutral(),
		alpha:       DefaultContinuityWeight,
		beta:        DefaultNeutralityWeight,
		localWindow: DefaultLocalWindow,
		localStep:   DefaultLocalStep,
		fullStep:    DefaultFullStep,
	}
}

// cost scores a candidate against the current configuration.
func (r *Resolver) cost(candidate, current JointVector) float64 {
	return r.alpha*candidate.Sub(current).NormSq() +
		r.beta*candidate.Sub(r.neutral).NormSq()
}

// Solve returns the minimum-cost configuration reaching target, or false if
// no redundancy angle in the full joint-7 range yields any solution.
//
// The scan is deterministic: the current q7 first, then a fine window around
// it, then (only if nothing was found) a coarse full-range sweep. The global
// minimum over every candidate seen is kept; a strictly-smaller comparison
// means the first candidate at a given cost wins ties, preserving the
// solver's branch enumeration order.
func (r *Resolver) Solve(target spatial.Pose, current JointVector) (JointVector, bool) {
	var (
		best     JointVector
		bestCost float64
		found    bool
	)
	consider := func(q7 float64) {
		for _, c := range Solve(target, q7) {
			cc := r.cost(c, current)
			if !found || cc < bestCost {
				best, bestCost, found = c, cc, true
			}
		}
	}

	consider(current[6])
	for q7 := current[6] - r.localWindow; q7 <= current[6]+r.localWindow+1e-9; q7 += r.localStep {
		consider(q7)
	}
	if !found {
		for q7 := JointMin[6] + r.fullStep/2; q7 < JointMax[6]; q7 += r.fullStep {
			consider(q7)
		}
	}
	return best, found
}

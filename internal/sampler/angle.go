// Package sampler draws the random start configuration of a trial.
package sampler

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNonPositiveConcentration is returned by DrawBiasedAngle for k <= 0, NaN or +Inf.
var ErrNonPositiveConcentration = errors.New("concentration must be positive")

// DrawBiasedAngle returns an angle in (-pi, pi) whose density is proportional to
// exp(k*(cos(theta)-1)), a von Mises shape centred on zero. Larger k narrows it.
// Draws are made by rejection against a uniform proposal.
func DrawBiasedAngle(src rand.Source, k float64) (float64, error) {
	if !(k > 0) || math.IsInf(k, 1) {
		return 0, ErrNonPositiveConcentration
	}

	proposal := distuv.Uniform{Min: -math.Pi, Max: math.Pi, Src: src}
	threshold := distuv.Uniform{Min: 0, Max: 1, Src: src}
	for {
		theta := proposal.Rand()
		if theta == -math.Pi {
			continue
		}
		if math.Exp(k*(math.Cos(theta)-1)) > threshold.Rand() {
			return theta, nil
		}
	}
}

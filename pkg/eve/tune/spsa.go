// Copyright © 2024 Martin Novak
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tune tunes engine options with simultaneous perturbation
// stochastic approximation, scoring every perturbation with a duel.
package tune

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"
	"lukechampine.com/frand"
)

// ErrDimension is returned when a vector does not have one entry per
// tuned parameter.
var ErrDimension = errors.New("tune: dimension mismatch")

// Objective plays plus against minus and returns the wins minus the
// losses of plus.
type Objective func(ctx context.Context, plus, minus []float64) (int, error)

const (
	alphaExponent = 0.601 // decay of the step gain
	gammaExponent = 0.102 // decay of the perturbation size

	beta1   = 0.9
	beta2   = 0.999
	epsilon = 1e-8
)

// Tuner runs SPSA over Parameters, starting from their values.
type Tuner struct {
	Parameters []Parameter
	Objective  Objective

	// Rounds is the number of game pairs in every scoring duel.
	Rounds int

	Logger logrus.FieldLogger

	// Sign returns the random direction, +1 or -1, of a perturbation.
	Sign func() float64
}

func (tuner *Tuner) logger() logrus.FieldLogger {
	if tuner.Logger == nil {
		return logrus.StandardLogger()
	}

	return tuner.Logger
}

func (tuner *Tuner) sign() float64 {
	if tuner.Sign != nil {
		return tuner.Sign()
	}

	return float64(frand.Intn(2)*2 - 1)
}

func (tuner *Tuner) rounds() int {
	if tuner.Rounds < 1 {
		return 1
	}

	return tuner.Rounds
}

func (tuner *Tuner) start() []float64 {
	theta := make([]float64, len(tuner.Parameters))
	for i, param := range tuner.Parameters {
		theta[i] = param.Value
	}

	return theta
}

// Gradient estimates the gradient at theta from a single duel between
// theta+delta and theta-delta.
func (tuner *Tuner) Gradient(ctx context.Context, theta, delta []float64) ([]float64, error) {
	if len(theta) != len(tuner.Parameters) || len(delta) != len(theta) {
		return nil, ErrDimension
	}

	plus := make([]float64, len(theta))
	minus := make([]float64, len(theta))
	for i := range theta {
		plus[i] = theta[i] + delta[i]
		minus[i] = theta[i] - delta[i]
	}

	tuner.logger().Infof("Testing %v vs %v", plus, minus)
	result, err := tuner.Objective(ctx, plus, minus)
	if err != nil {
		return nil, err
	}

	score := -float64(result)
	gradient := make([]float64, len(theta))
	for i := range delta {
		gradient[i] = score / (2 * delta[i])
	}

	return gradient, nil
}

// gains returns the step gain and the perturbation size of every
// parameter at iteration k, counted from 1. spread is the number of
// games that an iteration counts for in the decay.
func (tuner *Tuner) gains(k, iterations, spread int) (a, c []float64) {
	stability := float64(iterations) / 10
	t := float64((k - 1) * spread * tuner.rounds())

	a = make([]float64, len(tuner.Parameters))
	c = make([]float64, len(tuner.Parameters))
	for i, param := range tuner.Parameters {
		a[i] = param.Step / math.Pow(t+stability, alphaExponent)
		c[i] = param.Step / math.Pow(t+1, gammaExponent)
	}

	return a, c
}

func (tuner *Tuner) perturbation(c []float64) []float64 {
	delta := make([]float64, len(c))
	for i := range c {
		delta[i] = c[i] * tuner.sign()
	}

	return delta
}

// SGD runs iterations of plain gradient descent and returns the tuned
// values. If ctx is cancelled, it returns the values reached so far.
func (tuner *Tuner) SGD(ctx context.Context, iterations int) ([]float64, error) {
	theta := tuner.start()
	for k := 1; k <= iterations; k++ {
		if ctx.Err() != nil {
			return theta, context.Cause(ctx)
		}

		a, c := tuner.gains(k, iterations, 4)
		gradient, err := tuner.Gradient(ctx, theta, tuner.perturbation(c))
		if err != nil {
			return theta, err
		}

		for i := range theta {
			theta[i] -= a[i] * gradient[i]
		}

		tuner.logger().Infof("Iteration %d: %v", k, theta)
	}

	return theta, nil
}

// Adam runs iterations of Adam and returns the tuned values. If ctx is
// cancelled, it returns the values reached so far.
func (tuner *Tuner) Adam(ctx context.Context, iterations int) ([]float64, error) {
	theta := tuner.start()
	m := make([]float64, len(theta))
	v := make([]float64, len(theta))

	for k := 1; k <= iterations; k++ {
		if ctx.Err() != nil {
			return theta, context.Cause(ctx)
		}

		a, c := tuner.gains(k, iterations, 1)
		gradient, err := tuner.Gradient(ctx, theta, tuner.perturbation(c))
		if err != nil {
			return theta, err
		}

		for i := range theta {
			m[i] = beta1*m[i] + (1-beta1)*gradient[i]
			v[i] = beta2*v[i] + (1-beta2)*gradient[i]*gradient[i]

			mHat := m[i] / (1 - math.Pow(beta1, float64(k)))
			vHat := v[i] / (1 - math.Pow(beta2, float64(k)))

			theta[i] -= a[i] * mHat / (math.Sqrt(vHat) + epsilon)
		}

		tuner.logger().Infof("Iteration %d: %v", k, theta)
	}

	return theta, nil
}

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

package tune

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"

	"github.com/martinnovaak/engineduel/pkg/eve/duel"
	"github.com/martinnovaak/engineduel/pkg/eve/match"
)

// Bounds of the duel which scores a perturbation.
const (
	ScoreAlpha = 0.01
	ScoreBeta  = 0.01
	ScoreElo0  = -5
	ScoreElo1  = 5
)

// DuelObjective scores a perturbation by a duel of base between the
// engines set to plus and to minus. Values are sent rounded to integers.
func DuelObjective(base duel.Config, params []Parameter) Objective {
	iteration := 0

	return func(ctx context.Context, plus, minus []float64) (int, error) {
		if len(plus) != len(params) || len(minus) != len(params) {
			return 0, ErrDimension
		}

		iteration++

		config := base
		config.Name = fmt.Sprintf("%s-%d", base.Name, iteration)
		config.Alpha, config.Beta = ScoreAlpha, ScoreBeta
		config.Elo0, config.Elo1 = ScoreElo0, ScoreElo1
		config.Detailed = false
		config.StatePath = ""
		config.State = duel.Score{}

		config.Engines[0].Options = withValues(base.Engines[0].Options, params, plus)
		config.Engines[1].Options = withValues(base.Engines[1].Options, params, minus)

		coordinator, err := duel.New(ctx, config)
		if err != nil {
			return 0, err
		}
		defer coordinator.Close()

		report := coordinator.Run(ctx)
		if ctx.Err() != nil {
			return 0, context.Cause(ctx)
		}

		return report.Score.Wins - report.Score.Losses, nil
	}
}

func withValues(options []match.Option, params []Parameter, values []float64) []match.Option {
	tuned := lo.Map(params, func(param Parameter, i int) match.Option {
		return match.Option{
			Name:  param.Name,
			Value: strconv.Itoa(int(math.Round(values[i]))),
		}
	})

	return append(append([]match.Option(nil), options...), tuned...)
}

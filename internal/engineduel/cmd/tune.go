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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/martinnovaak/engineduel/pkg/eve/duel"
	"github.com/martinnovaak/engineduel/pkg/eve/match"
	"github.com/martinnovaak/engineduel/pkg/eve/openings"
	"github.com/martinnovaak/engineduel/pkg/eve/tune"
)

type tuneFlags struct {
	engine  string
	options []string
	params  []string
	file    string

	method     string
	iterations int

	threads int
	rounds  int
	tc      string

	openings string
	book     string
}

func (flags *tuneFlags) parameters() ([]tune.Parameter, error) {
	var params []tune.Parameter
	if flags.file != "" {
		file, err := os.Open(flags.file)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if params, err = tune.LoadParameters(file, logrus.StandardLogger()); err != nil {
			return nil, err
		}
	}

	for _, str := range flags.params {
		param, err := tune.ParseParameter(str)
		if err != nil {
			return nil, err
		}

		params = append(params, param)
	}

	if len(params) == 0 {
		return nil, errors.New("tune: no parameters, use --param or --tuning-file")
	}

	return params, nil
}

func (flags *tuneFlags) base() (duel.Config, error) {
	var options []match.Option
	for _, str := range flags.options {
		option, err := match.ParseOption(str)
		if err != nil {
			return duel.Config{}, err
		}

		options = append(options, option)
	}

	config := duel.Config{
		Name: "tune-" + uuid.NewString(),
		Engines: [2]match.EngineConfig{
			{Name: "plus", Cmd: flags.engine, Options: options},
			{Name: "minus", Cmd: flags.engine, Options: options},
		},
		TimeControl: flags.tc,
		Concurrency: min(flags.threads, runtime.NumCPU()),
		Rounds:      flags.rounds,
		Openings:    flags.openings,
		Alpha:       tune.ScoreAlpha,
		Beta:        tune.ScoreBeta,
	}

	if flags.book != "" {
		config.Book = &openings.BookConfig{File: flags.book, Order: "random"}
	}

	return config, nil
}

func Tune() *cobra.Command {
	var flags tuneFlags

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Tune engine options with SPSA",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`tune searches for better values of the given engine options
			with simultaneous perturbation stochastic approximation. Every
			iteration plays a duel between the engine with every value moved
			up or down by a random sign and the engine with the opposite
			moves, and steps along the estimated gradient.

			Parameters are given as name=value=step, or in a csv file with a
			header line and name,default,step records.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.parameters()
			if err != nil {
				return err
			}

			base, err := flags.base()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			tuner := tune.Tuner{
				Parameters: params,
				Objective:  tune.DuelObjective(base, params),
				Rounds:     base.Rounds,
				Logger:     logrus.StandardLogger(),
			}

			var theta []float64
			switch flags.method {
			case "sgd":
				theta, err = tuner.SGD(ctx, flags.iterations)
			case "adam":
				theta, err = tuner.Adam(ctx, flags.iterations)
			default:
				return fmt.Errorf("tune: unknown method %q", flags.method)
			}

			for i, param := range params {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %.4f\n", param.Name, theta[i])
			}

			if errors.Is(err, context.Canceled) {
				logrus.Info("Tuning interrupted")
				return nil
			}

			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.engine, "engine", "", "Command of the engine to tune")
	f.StringArrayVar(&flags.options, "option", nil, "Fixed option name=value of the engine")
	f.StringArrayVar(&flags.params, "param", nil, "Parameter to tune as name=value=step")
	f.StringVar(&flags.file, "tuning-file", "", "Csv file with the parameters to tune")
	f.StringVar(&flags.method, "method", "sgd", "Descent method, sgd or adam")
	f.IntVar(&flags.iterations, "iterations", 100, "Number of iterations")
	f.IntVar(&flags.threads, "threads", 1, "Number of games played concurrently")
	f.IntVar(&flags.rounds, "rounds", 1000, "Number of game pairs of every duel")
	f.StringVar(&flags.tc, "tc", duel.DefaultTimeControl, "Time control as time+increment in seconds")
	f.StringVar(&flags.openings, "openings", "", "Opening database")
	f.StringVar(&flags.book, "book", "", "Opening book file with one opening per line")

	_ = cmd.MarkFlagRequired("engine")
	return cmd
}

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
	"errors"
	"fmt"
	"runtime"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/martinnovaak/engineduel/pkg/eve/duel"
	"github.com/martinnovaak/engineduel/pkg/eve/match"
	"github.com/martinnovaak/engineduel/pkg/eve/openings"
)

type duelFlags struct {
	engines [2]string
	options [2][]string

	alpha, beta float64
	elo0, elo1  float64

	threads  int
	rounds   int
	maxMoves int

	tc       string
	openings string
	book     string
	pgn      string
	name     string
	config   string

	metricsAddr string
}

func (flags *duelFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringVar(&flags.engines[0], "engine1", "", "Command of the engine under test")
	f.StringVar(&flags.engines[1], "engine2", "", "Command of the baseline engine")
	f.StringArrayVar(&flags.options[0], "option1", nil, "Option name=value of the first engine")
	f.StringArrayVar(&flags.options[1], "option2", nil, "Option name=value of the second engine")

	f.Float64Var(&flags.alpha, "alpha", 0.05, "Type I error bound of the test")
	f.Float64Var(&flags.beta, "beta", 0.05, "Type II error bound of the test")
	f.Float64Var(&flags.elo0, "elo0", 0, "Elo difference of the null hypothesis")
	f.Float64Var(&flags.elo1, "elo1", 5, "Elo difference of the alternate hypothesis")

	f.IntVar(&flags.threads, "threads", 1, "Number of games played concurrently")
	f.IntVar(&flags.rounds, "rounds", 1000, "Number of game pairs")
	f.IntVar(&flags.maxMoves, "max-moves", match.DefaultMaxMoves, "Full moves after which a game is drawn")

	f.StringVar(&flags.tc, "tc", duel.DefaultTimeControl, "Time control as time+increment in seconds")
	f.StringVar(&flags.openings, "openings", "", "Opening database")
	f.StringVar(&flags.book, "book", "", "Opening book file with one opening per line")
	f.StringVar(&flags.pgn, "pgn", "", "File to append the games to")
	f.StringVar(&flags.name, "name", "", "Name of the duel for restarting it")
	f.StringVar(&flags.config, "config", "", "Duel configuration file")

	f.StringVar(&flags.metricsAddr, "metrics-addr", "", "Address to serve prometheus metrics at")
}

// duelConfig builds the duel described by the flags, on top of the
// configuration file if one was given.
func (flags *duelFlags) duelConfig(cmd *cobra.Command) (duel.Config, error) {
	var config duel.Config
	if flags.config != "" {
		var err error
		if config, err = duel.LoadConfig(flags.config); err != nil {
			return duel.Config{}, err
		}
	}

	set := func(name string) bool {
		return flags.config == "" || cmd.Flags().Changed(name)
	}

	for i, engine := range flags.engines {
		flag := fmt.Sprintf("engine%d", i+1)
		if set(flag) {
			config.Engines[i].Cmd = engine
		}

		for _, str := range flags.options[i] {
			option, err := match.ParseOption(str)
			if err != nil {
				return duel.Config{}, err
			}

			config.Engines[i].Options = append(config.Engines[i].Options, option)
		}
	}

	if config.Engines[0].Cmd == "" || config.Engines[1].Cmd == "" {
		return duel.Config{}, errors.New("duel: --engine1 and --engine2 are required")
	}

	if set("alpha") {
		config.Alpha = flags.alpha
	}
	if set("beta") {
		config.Beta = flags.beta
	}
	if set("elo0") {
		config.Elo0 = flags.elo0
	}
	if set("elo1") {
		config.Elo1 = flags.elo1
	}
	if set("threads") {
		config.Concurrency = flags.threads
	}
	if set("rounds") {
		config.Rounds = flags.rounds
	}
	if set("max-moves") {
		config.MaxMoves = flags.maxMoves
	}
	if set("tc") {
		config.TimeControl = flags.tc
	}
	if set("pgn") {
		config.PGN = flags.pgn
	}
	if set("name") {
		config.Name = flags.name
	}

	if flags.openings != "" {
		config.Openings = flags.openings
	}
	if flags.book != "" {
		config.Book = &openings.BookConfig{File: flags.book, Order: "random"}
	}

	if config.Name == "" {
		config.Name = uuid.NewString()
	}

	if cpus := runtime.NumCPU(); config.Concurrency > cpus {
		logrus.Warnf("Only %d cpus available, playing %d games concurrently", cpus, cpus)
		config.Concurrency = cpus
	}

	config.Detailed = true
	return config, nil
}

func Duel() *cobra.Command {
	var flags duelFlags

	cmd := &cobra.Command{
		Use:   "duel",
		Short: "Run a sequential probability ratio test between two engines",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`duel plays game pairs between two uci engines, each pair
			from one opening with the colors swapped, until the sequential
			probability ratio test accepts a hypothesis or every round has
			been played.

			The state of the duel is saved under its --name, so that it can
			be continued with the restart command after being interrupted
			with Ctrl-C.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flags.duelConfig(cmd)
			if err != nil {
				return err
			}

			return runDuel(cmd, config, flags.metricsAddr)
		},
	}

	flags.register(cmd)
	return cmd
}

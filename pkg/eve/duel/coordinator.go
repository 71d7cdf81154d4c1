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

// Package duel plays two engines against each other until a sequential
// probability ratio test decides which of two elo hypotheses holds.
package duel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/martinnovaak/engineduel/pkg/eve/match"
	"github.com/martinnovaak/engineduel/pkg/eve/openings"
	"github.com/martinnovaak/engineduel/pkg/eve/stats"
)

// ErrConcluded is the cancellation cause of a run stopped by its test.
var ErrConcluded = errors.New("duel: sequential test concluded")

// Coordinator schedules the games of a duel and decides when it ends.
type Coordinator struct {
	config Config
	clock  match.TimeControl
	test   stats.SPRT

	tally    *Tally
	supplier *openings.Supplier
	book     *openings.Book
	pgn      *match.PGNWriter
	logger   logrus.FieldLogger

	closers []func() error

	// mu serializes the recording of results with the decision they lead to
	mu        sync.Mutex
	decisions int
	decision  stats.Decision
	pending   map[int]pendingGame // first game of each open pair
}

// New creates a Coordinator for the given duel, opening its opening
// source. The tally starts from config.State.
func New(ctx context.Context, config Config) (*Coordinator, error) {
	if err := config.setDefaults(); err != nil {
		return nil, err
	}

	clock, err := match.ParseTime(config.TimeControl)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		config: config,
		clock:  clock,
		test:   stats.NewSPRT(config.Alpha, config.Beta, config.Elo0, config.Elo1),

		tally:  NewTally(config.State),
		pgn:    match.NewPGNWriter(config.PGN),
		logger: config.Logger,

		pending: make(map[int]pendingGame),
	}

	c.supplier = config.Supplier
	if c.supplier == nil {
		source, err := c.openSource()
		if err != nil {
			return nil, err
		}

		c.supplier = openings.NewSupplier(ctx, source, c.logger)
	}

	return c, nil
}

func (c *Coordinator) openSource() (openings.Source, error) {
	switch {
	case c.config.Openings != "":
		source, err := openings.OpenSQLite(c.config.Openings)
		if err != nil {
			return nil, err
		}

		c.closers = append(c.closers, source.Close)
		return source, nil

	case c.config.Book != nil:
		book, err := openings.NewBook(*c.config.Book)
		if err != nil {
			return nil, err
		}

		c.book = book
		return book, nil

	default:
		return nil, nil
	}
}

// Close releases the opening source.
func (c *Coordinator) Close() error {
	var errs []error
	for _, closer := range c.closers {
		errs = append(errs, closer())
	}

	return errors.Join(errs...)
}

// Tally returns the results counted so far.
func (c *Coordinator) Tally() *Tally {
	return c.tally
}

// Run plays the remaining rounds of the duel, each a pair of games from
// the same opening with colors swapped, at most Concurrency games at a
// time. It returns once every admitted game has finished: after the last
// round, after the test concluded, or after ctx was cancelled.
func (c *Coordinator) Run(parent context.Context) Report {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	slots := semaphore.NewWeighted(int64(c.config.Concurrency))
	var finished sync.WaitGroup

	first := c.tally.Score().Rounds() + 1
	c.logger.Infof("Duel %s: %s vs %s, rounds %d-%d, %s, %d concurrent games",
		c.config.Name, displayName(c.config.Engines[0]), displayName(c.config.Engines[1]),
		first, c.config.Rounds, c.config.TimeControl, c.config.Concurrency)

admission:
	for round := first; round <= c.config.Rounds; round++ {
		if ctx.Err() != nil {
			break
		}

		opening := c.supplier.Pop(ctx)
		for game := 0; game < 2; game++ {
			if err := slots.Acquire(ctx, 1); err != nil {
				break admission
			}

			if ctx.Err() != nil {
				slots.Release(1)
				break admission
			}

			finished.Add(1)
			go func() {
				defer finished.Done()
				defer slots.Release(1)

				c.play(ctx, cancel, round, match.Color(game), opening)
			}()
		}
	}

	finished.Wait()

	cause := context.Cause(ctx)
	if cause != nil && errors.Is(cause, ErrConcluded) {
		cause = ErrConcluded
	}

	report := c.report(cause)
	c.mu.Lock()
	c.save()
	c.mu.Unlock()
	c.summarize(report)

	return report
}

// play plays a single game with engine A as colorA.
func (c *Coordinator) play(ctx context.Context, cancel context.CancelCauseFunc, round int, colorA match.Color, opening []string) {
	var configs [2]match.EngineConfig
	configs[colorA] = c.config.Engines[0]
	configs[colorA.Other()] = c.config.Engines[1]

	c.config.Metrics.GameStarted()
	c.logger.Debugf("Starting round %d: %s vs %s (%s)",
		round, displayName(configs[match.White]), displayName(configs[match.Black]), strings.Join(opening, " "))

	notation := match.NewNotation()
	names := [2]string{displayName(configs[match.White]), displayName(configs[match.Black])}

	var engines [2]*match.Engine
	defer func() {
		for _, engine := range engines {
			if engine != nil {
				engine.Quit(c.config.QuitGrace)
			}
		}
	}()

	var outcome match.Outcome
	started := true
	for color, config := range configs {
		engine, err := c.launch(config)
		if err != nil {
			c.logger.Errorf("round %d: starting %s: %v", round, names[color], err)

			for _, move := range opening {
				notation.Play(move)
			}

			notation.Comment("Engine failed to start")
			result, _ := match.Score(match.IllegalMove, match.Color(color))
			outcome = match.Outcome{
				Termination: match.IllegalMove,
				Mover:       match.Color(color),
				Result:      result,
				Reason:      err.Error(),
				Moves:       opening,
			}

			started = false
			break
		}

		engines[color] = engine
		names[color] = engine.Name()
	}

	if started {
		for color, config := range configs {
			for _, option := range config.Options {
				if err := engines[color].SetOption(option.Name, option.Value); err != nil {
					c.logger.Warnf("round %d: %s: %v", round, names[color], err)
				}
			}
		}

		game := match.Game{
			Opening:  opening,
			Engines:  engines,
			Oracle:   c.config.Oracle,
			MaxMoves: c.config.MaxMoves,
			Notation: notation,
			OnMove: func(_ match.Color, _ string, spent time.Duration) {
				c.config.Metrics.ObserveMove(spent)
			},
		}

		outcome = game.Play(ctx)
	}

	tag := outcome.Tag()
	c.transcript(notation, names, tag)

	if outcome.Termination == match.Aborted {
		c.config.Metrics.GameFinished(outcome.Termination.String(), "")
		return
	}

	c.config.Metrics.GameFinished(outcome.Termination.String(), outcome.Result.For(colorA).String())
	if c.config.Detailed {
		c.logger.Infof("Finished round %d: %s vs %s: %s (%s)", round, names[match.White], names[match.Black], tag, outcome.Reason)
	}

	c.record(ctx, cancel, round, colorA, outcome.Result.For(colorA))
}

func (c *Coordinator) launch(config match.EngineConfig) (*match.Engine, error) {
	conn, err := c.config.Launcher(config)
	if err != nil {
		return nil, err
	}

	engine := match.NewEngine(conn, config, c.clock)
	engine.Initialize()
	return engine, nil
}

func (c *Coordinator) transcript(notation *match.Notation, names [2]string, tag string) {
	record := notation.Render(match.Header{
		Event:  c.config.Event,
		Site:   c.config.Site,
		Date:   time.Now(),
		Round:  c.pgn.NextRound(),
		White:  names[match.White],
		Black:  names[match.Black],
		Result: tag,
	})

	if err := c.pgn.Write(record); err != nil {
		c.logger.Errorf("writing pgn: %v", err)
	}
}

// record counts a result of engine A and evaluates the test on the new
// tally. A concluding decision cancels the run; results arriving after
// the run was cancelled are not counted.
func (c *Coordinator) record(ctx context.Context, cancel context.CancelCauseFunc, round int, colorA match.Color, result match.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	c.tally.Record(colorA, result)
	if first, ok := c.pending[round]; ok {
		delete(c.pending, round)
		c.tally.RecordPair(match.GetPairResult(first.result, result))
	} else {
		c.pending[round] = pendingGame{color: colorA, result: result}
	}

	c.decisions++

	score := c.tally.Score()
	llr := c.test.LLR(score.Wins, score.Draws, score.Losses)
	c.decision = c.test.Test(score.Wins, score.Draws, score.Losses)
	c.config.Metrics.SetLLR(llr)

	if c.config.Detailed {
		c.logger.Infof("Wins: %d, Draws: %d, Losses: %d, LLR: %.2f (%.2f, %.2f), %s",
			score.Wins, score.Draws, score.Losses, llr, c.test.Lower, c.test.Upper, c.decision)
	}

	if c.decisions%10 == 0 {
		lower, elo, upper := stats.Elo(score.Wins, score.Draws, score.Losses)
		c.logger.Infof("ELO: %.2f +- %.2f [%.2f, %.2f] after %d games", elo, (upper-lower)/2, lower, upper, score.Games())
		c.save()
	}

	if c.decision.Stop() {
		cancel(fmt.Errorf("%w: %s", ErrConcluded, c.decision))
	}
}

// save writes the duel's state to its state file, if it has one. Only
// completed pairs are saved, since a resumed duel replays open pairs.
// c.mu must be held.
func (c *Coordinator) save() {
	if c.config.StatePath == "" {
		return
	}

	state := c.tally.Score()
	for _, game := range c.pending {
		state = state.without(game.color, game.result)
	}

	config := c.config
	config.State = state
	if c.book != nil {
		book := c.book.Wrap()
		config.Book = &book
	}

	if err := SaveConfig(c.config.StatePath, config); err != nil {
		c.logger.Errorf("saving state: %v", err)
	}
}

// pendingGame is the result of engine A, playing color, in the first
// finished game of a pair.
type pendingGame struct {
	color  match.Color
	result match.Result
}

func displayName(config match.EngineConfig) string {
	if config.Name != "" {
		return config.Name
	}

	return config.Cmd
}

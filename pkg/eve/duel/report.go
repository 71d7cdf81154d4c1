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

package duel

import (
	"fmt"
	"io"
	"math"

	"github.com/martinnovaak/engineduel/pkg/eve/match"
	"github.com/martinnovaak/engineduel/pkg/eve/stats"
)

// Report summarizes a duel from engine A's point of view.
type Report struct {
	Score Score

	Lower, Elo, Upper float64 // elo with its 95% confidence interval

	// PentaLower, PentaElo and PentaUpper estimate the elo from the game
	// pair results instead.
	PentaLower, PentaElo, PentaUpper float64

	LLR      float64
	Test     stats.SPRT
	Decision stats.Decision

	// Cause is why the duel stopped before its last round: ErrConcluded,
	// or the cancellation cause of the caller's context. It is nil when
	// every round was played.
	Cause error
}

func (c *Coordinator) report(cause error) Report {
	c.mu.Lock()
	decision := c.decision
	c.mu.Unlock()

	score := c.tally.Score()
	report := Report{
		Score:    score,
		LLR:      c.test.LLR(score.Wins, score.Draws, score.Losses),
		Test:     c.test,
		Decision: decision,
		Cause:    cause,
	}

	report.Lower, report.Elo, report.Upper = stats.Elo(score.Wins, score.Draws, score.Losses)
	report.PentaLower, report.PentaElo, report.PentaUpper = stats.PentaElo(
		score.Penta[match.LossLoss], score.Penta[match.LossDraw],
		score.Penta[match.DrawDraw],
		score.Penta[match.WinDraw], score.Penta[match.WinWin],
	)

	return report
}

func (c *Coordinator) summarize(report Report) {
	score := report.Score

	c.logger.Infof("Wins: %d, Draws: %d, Losses: %d", score.Wins, score.Draws, score.Losses)
	c.logger.Infof("As white: Wins: %d, Draws: %d, Losses: %d", score.White.Wins, score.White.Draws, score.White.Losses)
	c.logger.Infof("As black: Wins: %d, Draws: %d, Losses: %d", score.Black.Wins, score.Black.Draws, score.Black.Losses)
	c.logger.Infof("ELO: %.2f +- %.2f [%.2f, %.2f]", report.Elo, report.Margin(), report.Lower, report.Upper)
	c.logger.Infof("LLR: %.2f (%.2f, %.2f), %s", report.LLR, report.Test.Lower, report.Test.Upper, report.Decision)

	if c.config.Report != nil {
		report.Print(c.config.Report)
	}
}

// Margin returns the larger distance from the elo to its bounds.
func (report Report) Margin() float64 {
	return math.Abs(math.Max(report.Upper-report.Elo, report.Elo-report.Lower))
}

// Print writes the report as a box to w.
func (report Report) Print(w io.Writer) {
	score := report.Score

	lines := []string{
		fmt.Sprintf("║ ELO   | %.2f +- %.2f (95%%)", report.Elo, report.Margin()),
		fmt.Sprintf("║ LLR   | %.2f (%.2f, %.2f) [%.2f, %.2f]",
			report.LLR, report.Test.Lower, report.Test.Upper, report.Test.Elo0, report.Test.Elo1),
		fmt.Sprintf("║ GAMES | N: %d W: %d L: %d D: %d", score.Games(), score.Wins, score.Losses, score.Draws),
		fmt.Sprintf("║ WHITE | W: %d L: %d D: %d", score.White.Wins, score.White.Losses, score.White.Draws),
		fmt.Sprintf("║ BLACK | W: %d L: %d D: %d", score.Black.Wins, score.Black.Losses, score.Black.Draws),
		fmt.Sprintf("║ PENTA | [%d, %d, %d, %d, %d]",
			score.Penta[match.LossLoss], score.Penta[match.LossDraw],
			score.Penta[match.DrawDraw],
			score.Penta[match.WinDraw], score.Penta[match.WinWin]),
		fmt.Sprintf("║ TEST  | %s", report.Decision),
	}

	fmt.Fprintln(w, "╔═════════════════════════════════════════════════╗")
	for _, line := range lines {
		fmt.Fprintf(w, "%-50s║\n", line)
	}
	fmt.Fprintln(w, "╚═════════════════════════════════════════════════╝")
}

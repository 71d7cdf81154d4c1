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
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/martinnovaak/engineduel/pkg/eve/match"
	"github.com/martinnovaak/engineduel/pkg/eve/match/games"
	"github.com/martinnovaak/engineduel/pkg/eve/metrics"
	"github.com/martinnovaak/engineduel/pkg/eve/openings"
)

// Launcher connects to a new instance of the engine described by config.
type Launcher func(config match.EngineConfig) (match.Conn, error)

// StartProcess is the default Launcher, running engines as processes.
func StartProcess(config match.EngineConfig) (match.Conn, error) {
	process, err := match.StartProcess(config)
	if err != nil {
		return nil, err
	}

	return process, nil
}

// Config is the configuration of a duel between engine A, Engines[0],
// and engine B, Engines[1]. The results are always from A's side.
type Config struct {
	Name string `yaml:"name"`

	// The engines participating in the duel.
	Engines [2]match.EngineConfig `yaml:"engines"`

	// Time control of both sides, as time+increment in seconds.
	TimeControl string `yaml:"tc"`

	// Number of games played concurrently.
	Concurrency int `yaml:"concurrency"`

	// Number of game pairs, each played from one opening.
	Rounds int `yaml:"rounds"`

	// Full moves after which a game is drawn.
	MaxMoves int `yaml:"max-moves"`

	Elo0, Elo1  float64 // The null and the alternate elo hypotheses.
	Alpha, Beta float64 // Confidence bounds for Error types I and II.

	// Opening database, or an opening book file.
	Openings string               `yaml:"openings,omitempty"`
	Book     *openings.BookConfig `yaml:"book,omitempty"`

	// File to append the game PGNs to.
	PGN         string `yaml:"pgn,omitempty"`
	Event, Site string

	QuitGrace time.Duration `yaml:"quit-grace"`

	// Detailed logs every result as it comes in.
	Detailed bool `yaml:"detailed"`

	State Score `yaml:"state"`

	Launcher Launcher           `yaml:"-"`
	Oracle   games.Oracle       `yaml:"-"`
	Supplier *openings.Supplier `yaml:"-"`
	Metrics  *metrics.Metrics   `yaml:"-"`
	Logger   logrus.FieldLogger `yaml:"-"`

	// Report receives the final report box when set.
	Report io.Writer `yaml:"-"`

	// StatePath is where the state is saved, if anywhere.
	StatePath string `yaml:"-"`
}

const (
	DefaultTimeControl = "8+0.08"
	DefaultQuitGrace   = 2 * time.Second
)

// setDefaults fills the unset fields of config with their defaults, and
// checks the ones which have none.
func (config *Config) setDefaults() error {
	for i, engine := range config.Engines {
		if engine.Cmd == "" {
			return fmt.Errorf("duel: engine %d: no command", i+1)
		}
	}

	if config.Rounds <= 0 {
		return fmt.Errorf("duel: %d rounds", config.Rounds)
	}

	if !(config.Alpha > 0 && config.Alpha < 1 && config.Beta > 0 && config.Beta < 1) {
		return fmt.Errorf("duel: error bounds alpha=%v beta=%v outside (0, 1)", config.Alpha, config.Beta)
	}

	if config.TimeControl == "" {
		config.TimeControl = DefaultTimeControl
	}

	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}

	if config.MaxMoves <= 0 {
		config.MaxMoves = match.DefaultMaxMoves
	}

	if config.QuitGrace <= 0 {
		config.QuitGrace = DefaultQuitGrace
	}

	if config.Launcher == nil {
		config.Launcher = StartProcess
	}

	if config.Oracle == nil {
		config.Oracle = games.Chess{}
	}

	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	return nil
}

// LoadConfig reads a yaml duel configuration or saved state.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("duel: %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig writes config, including its state, as yaml to path.
func SaveConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

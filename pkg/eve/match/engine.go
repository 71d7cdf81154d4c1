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

package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// EngineConfig describes how to launch and set up an engine.
type EngineConfig struct {
	Name string `yaml:"name"`
	Cmd  string `yaml:"cmd"`
	Dir  string `yaml:"dir"`
	Arg  string `yaml:"arg"`

	// InitStr is written to the engine before the handshake.
	InitStr string `yaml:"init-string"`

	Options []Option `yaml:"options,omitempty"`
}

// Option is a uci option applied after the handshake.
type Option struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ParseOption parses an option given as name=value.
func ParseOption(str string) (Option, error) {
	name, value, found := strings.Cut(str, "=")
	if !found || strings.TrimSpace(name) == "" {
		return Option{}, fmt.Errorf("parse option %q: expected name=value", str)
	}

	return Option{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}, nil
}

var (
	ErrReadTimeout  = errors.New("engine: read i/o timeout")
	ErrEngineExited = errors.New("engine: output stream ended")
	ErrNotReady     = errors.New("engine: not ready")
	ErrKilled       = errors.New("engine: killed after quit grace period")
)

// EngineState is the lifecycle state of an Engine.
type EngineState int

const (
	Created EngineState = iota
	Handshaking
	Ready
	SettingPosition
	ComputingMove
	Quitting
	Terminated
)

var engineStates = [...]string{
	Created:         "created",
	Handshaking:     "handshaking",
	Ready:           "ready",
	SettingPosition: "setting position",
	ComputingMove:   "computing move",
	Quitting:        "quitting",
	Terminated:      "terminated",
}

func (state EngineState) String() string {
	if state < 0 || int(state) >= len(engineStates) {
		return "unknown"
	}

	return engineStates[state]
}

// DefaultHandshakeTimeout is how long an engine may take to acknowledge
// the uci command.
const DefaultHandshakeTimeout = 5 * time.Second

// Engine drives a single uci engine through one game. An Engine is not
// safe for concurrent use.
type Engine struct {
	config EngineConfig
	conn   Conn

	name  string
	state EngineState

	// Degraded is set when the handshake was never acknowledged.
	Degraded bool

	HandshakeTimeout time.Duration

	clock TimeControl
	spent time.Duration // time taken by the last move
}

// StartEngine spawns the engine described by config and initializes it.
// A failure to spawn the process is returned as is and never retried.
func StartEngine(config EngineConfig, clock TimeControl) (*Engine, error) {
	process, err := StartProcess(config)
	if err != nil {
		return nil, err
	}

	engine := NewEngine(process, config, clock)
	engine.Initialize()
	return engine, nil
}

// NewEngine creates an Engine communicating over conn, with the given
// time budget. The engine is not initialized.
func NewEngine(conn Conn, config EngineConfig, clock TimeControl) *Engine {
	return &Engine{
		config: config,
		conn:   conn,

		name:  "unknown",
		state: Created,

		HandshakeTimeout: DefaultHandshakeTimeout,

		clock: clock,
	}
}

// Name returns the configured name of the engine, or the one it reported
// during the handshake when none was configured.
func (engine *Engine) Name() string {
	if engine.config.Name != "" {
		return engine.config.Name
	}

	return engine.name
}

// State returns the current lifecycle state of the engine.
func (engine *Engine) State() EngineState {
	return engine.state
}

// Clock returns the engine's remaining time budget.
func (engine *Engine) Clock() TimeControl {
	return engine.clock
}

// Spent returns the wall time taken by the engine's last move.
func (engine *Engine) Spent() time.Duration {
	return engine.spent
}

// HasTimeLeft reports whether the engine's remaining time is positive.
func (engine *Engine) HasTimeLeft() bool {
	return engine.clock.HasTimeLeft()
}

// Initialize performs the uci handshake, learning the engine's name on
// the way. An engine which does not acknowledge in time is logged and
// left in a degraded ready state; it forfeits once it fails to move.
func (engine *Engine) Initialize() {
	engine.state = Handshaking

	if engine.config.InitStr != "" {
		_ = engine.Write("%s", engine.config.InitStr)
	}

	err := engine.Write("uci")
	if err == nil {
		_, err = engine.Await(context.Background(), engine.HandshakeTimeout, func(line string) bool {
			if fields := strings.Fields(line); len(fields) >= 3 && fields[0] == "id" && fields[1] == "name" {
				engine.name = fields[2]
			}

			return strings.Contains(line, "uciok")
		})
	}

	if err != nil {
		engine.Degraded = true
		logrus.Warnf("engine %s: handshake: %v", engine.Name(), err)
	}

	engine.state = Ready
}

// SetOption sets an uci option. It is only valid on a ready engine.
func (engine *Engine) SetOption(name, value string) error {
	if engine.state != Ready {
		return fmt.Errorf("setoption %s: %w (%s)", name, ErrNotReady, engine.state)
	}

	return engine.Write("setoption name %s value %s", name, value)
}

// SetPosition sends the game so far, as a list of moves played from the
// starting position.
func (engine *Engine) SetPosition(moves []string) error {
	engine.state = SettingPosition

	if len(moves) == 0 {
		return engine.Write("position startpos")
	}

	return engine.Write("position startpos moves %s", strings.Join(moves, " "))
}

// Go asks the engine for its best move given both clocks and waits for
// it. The time taken is charged to the engine's clock. If the engine's
// output ends first an empty move and ErrEngineExited are returned. When
// ctx is cancelled the search is stopped and ctx's error returned.
func (engine *Engine) Go(ctx context.Context, white, black TimeControl) (string, error) {
	engine.state = ComputingMove
	defer func() {
		if engine.state == ComputingMove {
			engine.state = Ready
		}
	}()

	if err := engine.Write(
		"go wtime %d btime %d winc %d binc %d",
		white.Remaining.Milliseconds(), black.Remaining.Milliseconds(),
		white.Increment.Milliseconds(), black.Increment.Milliseconds(),
	); err != nil {
		return "", err
	}

	start := time.Now()
	line, err := engine.Await(ctx, 0, func(line string) bool {
		return strings.HasPrefix(line, "bestmove")
	})

	engine.spent = time.Since(start)
	engine.clock.Charge(engine.spent)

	if err != nil {
		if ctx.Err() != nil {
			_ = engine.Write("stop")
		}

		return "", err
	}

	if fields := strings.Fields(line); len(fields) >= 2 {
		return fields[1], nil
	}

	return "", nil
}

// Quit asks the engine to stop and exit, waiting at most grace before
// the process is killed. It always succeeds and is safe to call twice.
func (engine *Engine) Quit(grace time.Duration) {
	if engine.state == Quitting || engine.state == Terminated {
		return
	}

	engine.state = Quitting

	if err := engine.Write("stop"); err != nil {
		logrus.Debugf("engine %s: stop: %v", engine.Name(), err)
	}

	if err := engine.Write("quit"); err != nil {
		logrus.Debugf("engine %s: quit: %v", engine.Name(), err)
	}

	if err := engine.conn.Close(grace); err != nil {
		logrus.Debugf("engine %s: close: %v", engine.Name(), err)
	}

	engine.state = Terminated
}

// Await waits until the engine outputs a line accepted by match, which is
// returned. A zero timeout waits indefinitely.
func (engine *Engine) Await(ctx context.Context, timeout time.Duration, match func(string) bool) (string, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	lines := engine.conn.Lines()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-expired:
			return "", ErrReadTimeout

		case line, ok := <-lines:
			if !ok {
				return "", ErrEngineExited
			}

			logrus.Debugf("(%s)> %s", engine.Name(), line)
			if match(line) {
				return line, nil
			}
		}
	}
}

// Write sends a formatted command line to the engine.
func (engine *Engine) Write(format string, a ...any) error {
	line := fmt.Sprintf(format, a...)
	logrus.Debugf("(%s)< %s", engine.Name(), line)

	return engine.conn.WriteLine(line)
}

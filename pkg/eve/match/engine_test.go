package match_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinnovaak/engineduel/pkg/eve/match"
	"github.com/martinnovaak/engineduel/pkg/eve/match/matchtest"
)

// stubEnv makes the test binary act as the named matchtest script.
const stubEnv = "ENGINEDUEL_STUB_ENGINE"

func TestMain(m *testing.M) {
	if name, ok := os.LookupEnv(stubEnv); ok {
		if err := matchtest.Serve(os.Stdin, os.Stdout, matchtest.Scripts[name]); err != nil {
			os.Exit(1)
		}

		os.Exit(0)
	}

	os.Exit(m.Run())
}

var clock = match.TimeControl{Remaining: 8 * time.Second, Increment: 80 * time.Millisecond}

func newEngine(t *testing.T, script matchtest.Script, config match.EngineConfig) (*match.Engine, *matchtest.Recorder) {
	t.Helper()

	recorder := &matchtest.Recorder{}
	script.Received = recorder

	engine := match.NewEngine(matchtest.Start(script), config, clock)
	t.Cleanup(func() { engine.Quit(time.Second) })
	return engine, recorder
}

func TestEngineHandshake(t *testing.T) {
	engine, _ := newEngine(t, matchtest.Strong, match.EngineConfig{})
	assert.Equal(t, match.Created, engine.State())

	engine.Initialize()

	assert.Equal(t, "Strong", engine.Name())
	assert.Equal(t, match.Ready, engine.State())
	assert.False(t, engine.Degraded)
}

func TestEngineHandshakeNames(t *testing.T) {
	engine, _ := newEngine(t, matchtest.Script{Name: "Stockfish 16.1"}, match.EngineConfig{})
	engine.Initialize()
	assert.Equal(t, "Stockfish", engine.Name())

	engine, _ = newEngine(t, matchtest.Script{}, match.EngineConfig{})
	engine.Initialize()
	assert.Equal(t, "unknown", engine.Name())

	engine, _ = newEngine(t, matchtest.Strong, match.EngineConfig{Name: "dev"})
	engine.Initialize()
	assert.Equal(t, "dev", engine.Name())
}

func TestEngineHandshakeAcknowledgement(t *testing.T) {
	engine, _ := newEngine(t, matchtest.Script{Name: "Old", OK: "uciok protocol 2"}, match.EngineConfig{})
	engine.Initialize()

	assert.False(t, engine.Degraded)
	assert.Equal(t, "Old", engine.Name())
	assert.Equal(t, match.Ready, engine.State())
}

func TestEngineHandshakeTimeout(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	engine, _ := newEngine(t, matchtest.Script{Name: "Mute", Silent: true}, match.EngineConfig{})
	engine.HandshakeTimeout = 50 * time.Millisecond

	start := time.Now()
	engine.Initialize()

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, engine.Degraded)
	assert.Equal(t, match.Ready, engine.State())

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestEngineCommands(t *testing.T) {
	engine, recorder := newEngine(t, matchtest.Strong, match.EngineConfig{})
	engine.Initialize()

	require.NoError(t, engine.SetPosition(nil))
	move, err := engine.Go(context.Background(), clock, clock)
	require.NoError(t, err)
	assert.Equal(t, "e2e4", move)

	require.NoError(t, engine.SetPosition([]string{"e2e4", "e7e5"}))
	move, err = engine.Go(context.Background(), clock, match.TimeControl{Remaining: 7500 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "d1h5", move)

	assert.Equal(t, []string{
		"uci",
		"position startpos",
		"go wtime 8000 btime 8000 winc 80 binc 80",
		"position startpos moves e2e4 e7e5",
		"go wtime 8000 btime 7500 winc 80 binc 0",
	}, recorder.Lines())
}

func TestEngineSetOption(t *testing.T) {
	engine, recorder := newEngine(t, matchtest.Strong, match.EngineConfig{})

	assert.ErrorIs(t, engine.SetOption("Hash", "16"), match.ErrNotReady)

	engine.Initialize()
	require.NoError(t, engine.SetOption("Hash", "16"))
	assert.Eventually(t, func() bool {
		lines := recorder.Lines()
		return len(lines) > 0 && lines[len(lines)-1] == "setoption name Hash value 16"
	}, time.Second, 5*time.Millisecond)

	engine.Quit(time.Second)
	assert.ErrorIs(t, engine.SetOption("Hash", "16"), match.ErrNotReady)
}

func TestEngineClock(t *testing.T) {
	script := matchtest.Strong
	script.Delay = 30 * time.Millisecond

	engine, _ := newEngine(t, script, match.EngineConfig{})
	engine.Initialize()

	require.NoError(t, engine.SetPosition(nil))
	_, err := engine.Go(context.Background(), clock, clock)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, engine.Spent(), 30*time.Millisecond)
	assert.Equal(t, clock.Remaining+clock.Increment-engine.Spent(), engine.Clock().Remaining)
	assert.True(t, engine.HasTimeLeft())
}

func TestEngineRunsOutOfTime(t *testing.T) {
	script := matchtest.Strong
	script.Delay = 50 * time.Millisecond

	recorder := &matchtest.Recorder{}
	script.Received = recorder

	engine := match.NewEngine(matchtest.Start(script), match.EngineConfig{}, match.TimeControl{Remaining: 10 * time.Millisecond})
	defer engine.Quit(time.Second)
	engine.Initialize()

	require.NoError(t, engine.SetPosition(nil))
	move, err := engine.Go(context.Background(), engine.Clock(), engine.Clock())
	require.NoError(t, err)

	assert.Equal(t, "e2e4", move)
	assert.False(t, engine.HasTimeLeft())
}

func TestEngineStreamEnds(t *testing.T) {
	engine, _ := newEngine(t, matchtest.Script{Name: "Crash", Exit: true}, match.EngineConfig{})
	engine.Initialize()

	require.NoError(t, engine.SetPosition(nil))
	move, err := engine.Go(context.Background(), clock, clock)

	assert.ErrorIs(t, err, match.ErrEngineExited)
	assert.Empty(t, move)
}

func TestEngineGoCancelled(t *testing.T) {
	engine, recorder := newEngine(t, matchtest.Script{Name: "Hang", Hang: true}, match.EngineConfig{})
	engine.Initialize()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, engine.SetPosition(nil))
	move, err := engine.Go(ctx, clock, clock)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, move)
	assert.Eventually(t, func() bool {
		lines := recorder.Lines()
		return lines[len(lines)-1] == "stop"
	}, time.Second, 5*time.Millisecond)
}

func TestEngineQuit(t *testing.T) {
	engine, recorder := newEngine(t, matchtest.Strong, match.EngineConfig{})
	engine.Initialize()

	engine.Quit(time.Second)
	engine.Quit(time.Second)

	assert.Equal(t, match.Terminated, engine.State())
	assert.Eventually(t, func() bool {
		lines := recorder.Lines()
		return lines[len(lines)-1] == "quit"
	}, time.Second, 5*time.Millisecond)
}

func TestStartEngineProcess(t *testing.T) {
	t.Setenv(stubEnv, "strong")

	engine, err := match.StartEngine(match.EngineConfig{
		Cmd: os.Args[0],
		Arg: "-test.run=^$",
	}, clock)
	require.NoError(t, err)
	defer engine.Quit(5 * time.Second)

	assert.Equal(t, "Strong", engine.Name())
	assert.False(t, engine.Degraded)

	require.NoError(t, engine.SetPosition(nil))
	move, err := engine.Go(context.Background(), clock, clock)
	require.NoError(t, err)
	assert.Equal(t, "e2e4", move)

	engine.Quit(5 * time.Second)
	assert.Equal(t, match.Terminated, engine.State())
}

func TestProcessClose(t *testing.T) {
	t.Setenv(stubEnv, "strong")

	process, err := match.StartProcess(match.EngineConfig{Cmd: os.Args[0], Arg: "-test.run=^$"})
	require.NoError(t, err)
	require.NoError(t, process.WriteLine("uci"))
	assert.Equal(t, "id name Strong", <-process.Lines())

	require.NoError(t, process.Close(5*time.Second))
	for range process.Lines() {
	}

	// closing again reports the same outcome
	assert.NoError(t, process.Close(5*time.Second))
}

func TestProcessCloseKills(t *testing.T) {
	process, err := match.StartProcess(match.EngineConfig{Cmd: "sleep", Arg: "10"})
	require.NoError(t, err)

	start := time.Now()
	assert.ErrorIs(t, process.Close(50*time.Millisecond), match.ErrKilled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestStartEngineMissingBinary(t *testing.T) {
	_, err := match.StartEngine(match.EngineConfig{Cmd: "./no-such-engine"}, clock)
	assert.Error(t, err)
}

func TestParseOption(t *testing.T) {
	option, err := match.ParseOption("Hash = 64")
	require.NoError(t, err)
	assert.Equal(t, match.Option{Name: "Hash", Value: "64"}, option)

	_, err = match.ParseOption("Hash")
	assert.Error(t, err)
}

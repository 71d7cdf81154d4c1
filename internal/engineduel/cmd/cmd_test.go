package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinnovaak/engineduel/pkg/eve/duel"
	"github.com/martinnovaak/engineduel/pkg/eve/match"
)

func parseDuel(t *testing.T, args ...string) (duel.Config, error) {
	t.Helper()

	var flags duelFlags
	command := &cobra.Command{Use: "duel"}
	flags.register(command)
	require.NoError(t, command.ParseFlags(args))

	return flags.duelConfig(command)
}

func TestDuelFlags(t *testing.T) {
	config, err := parseDuel(t,
		"--engine1", "./new", "--engine2", "./old",
		"--option1", "Hash=16", "--option2", "Hash=32",
		"--elo0", "-2", "--elo1", "3", "--rounds", "50",
		"--tc", "10+0.1", "--book", "book.epd", "--name", "lmr",
	)
	require.NoError(t, err)

	assert.Equal(t, "lmr", config.Name)
	assert.Equal(t, "./new", config.Engines[0].Cmd)
	assert.Equal(t, "./old", config.Engines[1].Cmd)
	assert.Equal(t, []match.Option{{Name: "Hash", Value: "16"}}, config.Engines[0].Options)
	assert.Equal(t, []match.Option{{Name: "Hash", Value: "32"}}, config.Engines[1].Options)
	assert.Equal(t, -2.0, config.Elo0)
	assert.Equal(t, 3.0, config.Elo1)
	assert.Equal(t, 0.05, config.Alpha)
	assert.Equal(t, 50, config.Rounds)
	assert.Equal(t, "10+0.1", config.TimeControl)
	assert.Equal(t, "book.epd", config.Book.File)
	assert.Equal(t, 1, config.Concurrency)
}

func TestDuelFlagsDefaults(t *testing.T) {
	config, err := parseDuel(t, "--engine1", "./new", "--engine2", "./old", "--threads", "100000")
	require.NoError(t, err)

	assert.NotEmpty(t, config.Name)
	assert.Equal(t, runtime.NumCPU(), config.Concurrency)
	assert.Equal(t, duel.DefaultTimeControl, config.TimeControl)

	_, err = parseDuel(t, "--engine1", "./new")
	assert.Error(t, err)

	_, err = parseDuel(t, "--engine1", "./new", "--engine2", "./old", "--option1", "Hash")
	assert.Error(t, err)
}

func TestDuelFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\nengines:\n  - cmd: ./a\n  - cmd: ./b\nrounds: 7\nelo1: 10\n"), 0644))

	config, err := parseDuel(t, "--config", path, "--rounds", "9")
	require.NoError(t, err)

	assert.Equal(t, "from-file", config.Name)
	assert.Equal(t, "./a", config.Engines[0].Cmd)
	assert.Equal(t, 9, config.Rounds)
	assert.Equal(t, 10.0, config.Elo1)
}

func TestTuneParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,default,step\nRFP,75,5\n"), 0644))

	flags := tuneFlags{file: path, params: []string{"LMR=100=10"}}
	params, err := flags.parameters()
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "RFP", params[0].Name)
	assert.Equal(t, "LMR", params[1].Name)

	_, err = (&tuneFlags{}).parameters()
	assert.Error(t, err)
}

func TestRootCommands(t *testing.T) {
	root := Root()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())

	for _, name := range []string{"duel", "restart", "tune", "openings"} {
		assert.Contains(t, out.String(), name)
	}
}

package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Seednode/storyteller/catalog"
	"github.com/Seednode/storyteller/dixit"
	"github.com/Seednode/storyteller/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateIsReproducible(t *testing.T) {
	run := func() string {
		var out bytes.Buffer
		require.NoError(t, simulate(context.Background(), testConfig(), &out))
		return out.String()
	}

	first := run()
	assert.Contains(t, first, "Seating ada, bob, cy, dee with seed 7")
	assert.Contains(t, first, "Turn 1 (round 1): ada tells")
	assert.Contains(t, first, "Final standings:")
	assert.Contains(t, first, "Won by ")

	assert.Equal(t, first, run())
}

func TestSimulateVerbose(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg := testConfig()
	cfg.threshold = 3
	require.NoError(t, simulate(context.Background(), cfg, &bytes.Buffer{}))
	assert.Empty(t, logs.String())

	cfg.verbose = true
	require.NoError(t, simulate(context.Background(), cfg, &bytes.Buffer{}))
	assert.Contains(t, logs.String(), "GAMES: simulation turn 1 entered")
	assert.Contains(t, logs.String(), "GAMES: simulation is over:")
}

const lowestCardScript = `
function describe(key)
  return player_name .. " remembers card " .. key
end

function choose(clue, keys)
  local best = keys[1]
  for _, k in ipairs(keys) do
    if k < best then best = k end
  end
  return best
end
`

func TestSimulateLuaAgents(t *testing.T) {
	script := filepath.Join(t.TempDir(), "lowest.lua")
	require.NoError(t, os.WriteFile(script, []byte(lowestCardScript), 0o644))

	cfg := testConfig()
	cfg.agent = "lua"
	cfg.script = script
	require.NoError(t, cfg.validate())

	var out bytes.Buffer
	require.NoError(t, simulate(context.Background(), cfg, &out))

	assert.Contains(t, out.String(), `ada tells "ada remembers card`)
	assert.NotContains(t, out.String(), "instead")
}

func TestSimulateBrokenScriptFallsBack(t *testing.T) {
	script := filepath.Join(t.TempDir(), "broken.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
function describe(key) error("lost for words") end
function choose(clue, keys) return -1 end
`), 0o644))

	cfg := testConfig()
	cfg.agent = "lua"
	cfg.script = script
	cfg.threshold = 5

	var out bytes.Buffer
	require.NoError(t, simulate(context.Background(), cfg, &out))

	assert.Contains(t, out.String(), "something indescribable")
	assert.Contains(t, out.String(), "instead")
	assert.Contains(t, out.String(), "Final standings:")
}

func TestSimulateRecordsHistory(t *testing.T) {
	cfg := testConfig()
	cfg.history = filepath.Join(t.TempDir(), "history.db")

	var out bytes.Buffer
	require.NoError(t, simulate(context.Background(), cfg, &out))

	idx := strings.Index(out.String(), "Recorded as ")
	require.NotEqual(t, -1, idx)
	id := strings.TrimSpace(out.String()[idx+len("Recorded as "):])

	store, err := history.Open(cfg.history)
	require.NoError(t, err)
	defer store.Close()

	games, err := store.Games(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, id, games[0].ID)
	assert.False(t, games[0].FinishedAt.IsZero())

	rounds, err := store.Rounds(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, strings.Count(out.String(), "\nTurn "), len(rounds))
}

func TestFailedDealRecordsNothing(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	_, rec, _, err := newGame(context.Background(), testConfig(), catalog.Synthetic(10), store, "tiny", 7)
	require.ErrorIs(t, err, dixit.ErrInsufficientCards)
	assert.Nil(t, rec)

	games, err := store.Games(context.Background())
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestSimulateMissingScript(t *testing.T) {
	cfg := testConfig()
	cfg.agent = "lua"
	cfg.script = filepath.Join(t.TempDir(), "absent.lua")

	var out bytes.Buffer
	assert.ErrorContains(t, simulate(context.Background(), cfg, &out), "read script")
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(images, 0o755))
	for _, name := range []string{"1.png", "2.png", "3.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(images, name), []byte(name), 0o644))
	}
	manifest := filepath.Join(dir, "cards.yaml")

	cmd := newCmd(&Config{})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"import", images, manifest})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "Imported 3 cards into "+manifest+"\n", out.String())
	assert.FileExists(t, manifest)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/hextactics/internal/gamemap"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  host: 0.0.0.0\n  port: 8080\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Server.TickRate)
	assert.Equal(t, 24, cfg.Movement.TurnSpeed)
	assert.Equal(t, gamemap.TravelRules{FlatCost: 5, SlopeCost: 10, RoadCost: 1}, cfg.TravelRules())
	assert.Equal(t, 3, cfg.Vision.DefaultRange)
	assert.Equal(t, -1, cfg.TacticalRules().TerrainCosts[gamemap.TerrainWater])
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
session:
  map_width: 12
  map_height: 9
  wrap: true
movement:
  turn_speed: 30
tactical:
  action_points: 8
  climb_cost: 2
  terrain_costs:
    plains: 1
    lava: -1
vision:
  default_range: 4
  max_range: 6
`))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Session.MapWidth)
	assert.True(t, cfg.Session.Wrap)
	assert.Equal(t, 30, cfg.Movement.TurnSpeed)
	assert.Equal(t, 8, cfg.Tactical.ActionPoints)

	rules := cfg.TacticalRules()
	assert.Equal(t, 2, rules.ClimbCost)
	assert.Equal(t, map[gamemap.Terrain]int{"plains": 1, "lava": -1}, rules.TerrainCosts)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("server: [1, 2"))
	assert.Error(t, err)

	_, err = Parse([]byte("vision:\n  default_range: 20\n  max_range: 5\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "server.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Session.Wrap)
	assert.Equal(t, 6, cfg.Tactical.ActionPoints)
	assert.Equal(t, "blacklist:user:", cfg.Redis.BlacklistPrefix)
}

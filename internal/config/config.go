package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/hextactics/internal/gamemap"
)

// Config holds all server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Movement MovementConfig `yaml:"movement"`
	Tactical TacticalConfig `yaml:"tactical"`
	Vision   VisionConfig   `yaml:"vision"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TickRate int    `yaml:"tick_rate"` // Hz
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
}

// SessionConfig holds game session settings
type SessionConfig struct {
	MaxPlayers  int  `yaml:"max_players"`
	MapWidth    int  `yaml:"map_width"`
	MapHeight   int  `yaml:"map_height"`
	Wrap        bool `yaml:"wrap"`
	CloseBorder bool `yaml:"close_border"` // outer ring of hexes is never explorable
}

// MovementConfig holds open-world (turn-quantized) movement costs
type MovementConfig struct {
	TurnSpeed int `yaml:"turn_speed"` // movement points per turn
	FlatCost  int `yaml:"flat_cost"`
	SlopeCost int `yaml:"slope_cost"`
	RoadCost  int `yaml:"road_cost"`
}

// TacticalConfig holds battle (resource-ceiling) movement costs
type TacticalConfig struct {
	ActionPoints int            `yaml:"action_points"`
	ClimbLimit   int            `yaml:"climb_limit"`
	ClimbCost    int            `yaml:"climb_cost"`
	DefaultCost  int            `yaml:"default_cost"`
	TerrainCosts map[string]int `yaml:"terrain_costs"` // negative = impassable
}

// VisionConfig holds fog of war settings
type VisionConfig struct {
	DefaultRange int `yaml:"default_range"`
	MaxRange     int `yaml:"max_range"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.TickRate == 0 {
		cfg.Server.TickRate = 20
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Session.MaxPlayers == 0 {
		cfg.Session.MaxPlayers = 100
	}
	if cfg.Session.MapWidth == 0 {
		cfg.Session.MapWidth = 40
	}
	if cfg.Session.MapHeight == 0 {
		cfg.Session.MapHeight = 30
	}
	if cfg.Movement.TurnSpeed == 0 {
		cfg.Movement.TurnSpeed = 24
	}
	if cfg.Movement.FlatCost == 0 {
		cfg.Movement.FlatCost = 5
	}
	if cfg.Movement.SlopeCost == 0 {
		cfg.Movement.SlopeCost = 10
	}
	if cfg.Movement.RoadCost == 0 {
		cfg.Movement.RoadCost = 1
	}
	if cfg.Tactical.ActionPoints == 0 {
		cfg.Tactical.ActionPoints = 6
	}
	if cfg.Tactical.ClimbLimit == 0 {
		cfg.Tactical.ClimbLimit = 1
	}
	if cfg.Tactical.DefaultCost == 0 {
		cfg.Tactical.DefaultCost = 1
	}
	if cfg.Tactical.TerrainCosts == nil {
		cfg.Tactical.TerrainCosts = map[string]int{
			string(gamemap.TerrainPlains): 1,
			string(gamemap.TerrainForest): 2,
			string(gamemap.TerrainHills):  2,
			string(gamemap.TerrainSwamp):  3,
			string(gamemap.TerrainWater):  -1,
		}
	}
	if cfg.Vision.DefaultRange == 0 {
		cfg.Vision.DefaultRange = 3
	}
	if cfg.Vision.MaxRange == 0 {
		cfg.Vision.MaxRange = 12
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Session.MapWidth < 0 || c.Session.MapHeight < 0 {
		return fmt.Errorf("invalid map size %dx%d", c.Session.MapWidth, c.Session.MapHeight)
	}
	if c.Movement.TurnSpeed < 0 {
		return fmt.Errorf("turn_speed must be positive, got %d", c.Movement.TurnSpeed)
	}
	if c.Vision.DefaultRange < 0 || c.Vision.DefaultRange > c.Vision.MaxRange {
		return fmt.Errorf("vision default_range %d outside [0,%d]", c.Vision.DefaultRange, c.Vision.MaxRange)
	}
	return nil
}

// TravelRules converts movement settings for the map's cost functions
func (c *Config) TravelRules() gamemap.TravelRules {
	return gamemap.TravelRules{
		FlatCost:  c.Movement.FlatCost,
		SlopeCost: c.Movement.SlopeCost,
		RoadCost:  c.Movement.RoadCost,
	}
}

// TacticalRules converts tactical settings for the map's cost functions
func (c *Config) TacticalRules() gamemap.TacticalRules {
	costs := make(map[gamemap.Terrain]int, len(c.Tactical.TerrainCosts))
	for name, cost := range c.Tactical.TerrainCosts {
		costs[gamemap.Terrain(name)] = cost
	}
	return gamemap.TacticalRules{
		TerrainCosts: costs,
		DefaultCost:  c.Tactical.DefaultCost,
		ClimbLimit:   c.Tactical.ClimbLimit,
		ClimbCost:    c.Tactical.ClimbCost,
	}
}

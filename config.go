package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ricochet/server/catalog"
)

// Config carries the host settings loaded at startup. Zero values fall back
// to the defaults applied by normalized.
type Config struct {
	Addr             string        `yaml:"addr" json:"addr"`
	TickRate         int           `yaml:"tickRate" json:"tickRate"`
	HeartbeatSeconds float64       `yaml:"heartbeatSeconds" json:"heartbeatSeconds"`
	Arena            ArenaConfig   `yaml:"arena" json:"arena"`
	Loadout          LoadoutConfig `yaml:"loadout" json:"loadout"`
	CatalogPaths     []string      `yaml:"catalogPaths" json:"catalogPaths"`
}

// ArenaConfig shapes the generated arena.
type ArenaConfig struct {
	Seed     string  `yaml:"seed" json:"seed"`
	Width    float64 `yaml:"width" json:"width"`
	Depth    float64 `yaml:"depth" json:"depth"`
	Height   float64 `yaml:"height" json:"height"`
	BoxCount int     `yaml:"boxCount" json:"boxCount"`
}

// LoadoutConfig names the catalog entries equipped when an actor joins.
type LoadoutConfig struct {
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		Addr:             defaultAddr,
		TickRate:         defaultTickRate,
		HeartbeatSeconds: heartbeatInterval.Seconds(),
		Arena: ArenaConfig{
			Seed:     defaultArenaSeed,
			Width:    defaultArenaWidth,
			Depth:    defaultArenaDepth,
			Height:   defaultArenaHeight,
			BoxCount: defaultBoxCount,
		},
		Loadout: LoadoutConfig{
			Primary:   defaultPrimaryID,
			Secondary: defaultSecondaryID,
		},
		CatalogPaths: catalog.DefaultPaths(),
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error; the defaults apply unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg.normalized(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: invalid YAML: %w", path, err)
	}
	return cfg.normalized(), nil
}

// normalized returns a config with defaults applied to every field an
// operator left empty or out of range.
func (cfg Config) normalized() Config {
	normalized := cfg
	if strings.TrimSpace(normalized.Addr) == "" {
		normalized.Addr = defaultAddr
	}
	if normalized.TickRate <= 0 {
		normalized.TickRate = defaultTickRate
	}
	if normalized.HeartbeatSeconds <= 0 {
		normalized.HeartbeatSeconds = heartbeatInterval.Seconds()
	}
	normalized.Arena = normalized.Arena.normalized()
	if normalized.Loadout.Primary == "" {
		normalized.Loadout.Primary = defaultPrimaryID
	}
	if normalized.Loadout.Secondary == "" {
		normalized.Loadout.Secondary = defaultSecondaryID
	}
	if len(normalized.CatalogPaths) == 0 {
		normalized.CatalogPaths = catalog.DefaultPaths()
	}
	return normalized
}

// normalized applies arena defaults. A zero box count is kept: an empty
// range is a valid arena.
func (cfg ArenaConfig) normalized() ArenaConfig {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = defaultArenaSeed
	}
	if normalized.Width <= 2*boxSpawnMargin {
		normalized.Width = defaultArenaWidth
	}
	if normalized.Depth <= 2*boxSpawnMargin {
		normalized.Depth = defaultArenaDepth
	}
	if normalized.Height <= 0 {
		normalized.Height = defaultArenaHeight
	}
	if normalized.BoxCount < 0 {
		normalized.BoxCount = 0
	}
	return normalized
}

func (cfg Config) heartbeat() time.Duration {
	return time.Duration(cfg.HeartbeatSeconds * float64(time.Second))
}

func (cfg Config) disconnectAfter() time.Duration {
	return heartbeatTimeoutFactor * cfg.heartbeat()
}

func (cfg Config) tickInterval() time.Duration {
	return time.Second / time.Duration(cfg.TickRate)
}

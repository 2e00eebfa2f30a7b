package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/park285/chessbro/internal/obslog"
)

const (
	AdvisorRandom = "random"
	AdvisorBook   = "book"
	AdvisorRemote = "remote"
)

type EngineConfig struct {
	Name   string `yaml:"name"`
	Author string `yaml:"author"`
}

type ProtocolConfig struct {
	Dialect string `yaml:"dialect"`
}

type RemoteConfig struct {
	Path           string   `yaml:"path"`
	Args           []string `yaml:"args"`
	Preset         string   `yaml:"preset"`
	Depth          int      `yaml:"depth"`
	MoveTimeMillis int      `yaml:"move_time_ms"`
	Nodes          int      `yaml:"nodes"`
	PoolSize       int      `yaml:"pool_size"`
}

// AdvisorConfig selects the move chain. Kinds are comma separated and tried
// in the fixed order book, remote, random; random is always the last resort.
type AdvisorConfig struct {
	Kinds         []string     `yaml:"kinds"`
	Seed          int64        `yaml:"seed"`
	BookPath      string       `yaml:"book_path"`
	BookMinWeight int          `yaml:"book_min_weight"`
	Remote        RemoteConfig `yaml:"remote"`
}

type CacheConfig struct {
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

type TransportConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	ToConsole bool   `yaml:"to_console"`
	ToFile    bool   `yaml:"to_file"`
	File      string `yaml:"file"`
	Caller    bool   `yaml:"caller"`
}

type AppConfig struct {
	Engine    EngineConfig    `yaml:"engine"`
	Protocol  ProtocolConfig  `yaml:"protocol"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Cache     CacheConfig     `yaml:"cache"`
	Transport TransportConfig `yaml:"transport"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

func Default() *AppConfig {
	return &AppConfig{
		Engine:   EngineConfig{Name: "ChessBro", Author: "ChessBro Team"},
		Protocol: ProtocolConfig{Dialect: "default"},
		Advisor: AdvisorConfig{
			Kinds:         []string{AdvisorRandom},
			BookMinWeight: 1,
			Remote:        RemoteConfig{Preset: "level3", PoolSize: 1},
		},
		Cache:     CacheConfig{TTL: 24 * time.Hour, Prefix: "chessbro:move:"},
		Transport: TransportConfig{Path: "/"},
		Log:       LogConfig{Level: "info", Format: "legacy", ToConsole: true},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and the environment, in that order. Callers apply their own overrides and
// then call Validate.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if p := strings.TrimSpace(path); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", p, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("CHESSBRO_ENGINE_NAME")); v != "" {
		cfg.Engine.Name = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSBRO_ENGINE_AUTHOR")); v != "" {
		cfg.Engine.Author = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSBRO_DIALECT")); v != "" {
		cfg.Protocol.Dialect = v
	}

	if v := strings.TrimSpace(os.Getenv("CHESSBRO_ADVISORS")); v != "" {
		cfg.Advisor.Kinds = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("CHESSBRO_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Advisor.Seed = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_POLYGLOT_BOOK_PATH")); v != "" {
		cfg.Advisor.BookPath = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_OPENING_MIN_WEIGHT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Advisor.BookMinWeight = n
		}
	}

	remote := &cfg.Advisor.Remote
	if v := strings.TrimSpace(os.Getenv("STOCKFISH_PATH")); v != "" {
		remote.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_DEFAULT_PRESET")); v != "" {
		remote.Preset = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ENGINE_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			remote.Depth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ENGINE_MOVETIME_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			remote.MoveTimeMillis = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ENGINE_NODES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			remote.Nodes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_ENGINE_POOL_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			remote.PoolSize = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_CACHE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Cache.TTL = d
		} else if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Cache.TTL = time.Duration(n) * time.Second
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHESSBRO_LISTEN")); v != "" {
		cfg.Transport.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSBRO_WS_PATH")); v != "" {
		cfg.Transport.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSBRO_METRICS_ADDR")); v != "" {
		cfg.Metrics.Addr = v
	}

	logCfg := obslog.ConfigFromEnv(cfg.Log.ToObslog())
	cfg.Log = LogConfig{
		Level:     logCfg.Level,
		Format:    logCfg.Format,
		ToConsole: logCfg.ToConsole,
		ToFile:    logCfg.ToFile,
		File:      logCfg.File,
		Caller:    logCfg.Caller,
	}
}

// Validate normalizes advisor kinds and checks cross-field requirements.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Engine.Name) == "" {
		return errors.New("engine name is required")
	}
	kinds := make([]string, 0, len(c.Advisor.Kinds))
	seen := make(map[string]bool)
	for _, k := range c.Advisor.Kinds {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		switch k {
		case AdvisorRandom, AdvisorBook, AdvisorRemote:
		default:
			return fmt.Errorf("unknown advisor kind: %s", k)
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	c.Advisor.Kinds = kinds

	if c.Uses(AdvisorRemote) && strings.TrimSpace(c.Advisor.Remote.Path) == "" {
		return errors.New("STOCKFISH_PATH (advisor.remote.path) is required for the remote advisor")
	}
	if c.Advisor.BookMinWeight < 0 || c.Advisor.BookMinWeight > 0xffff {
		return fmt.Errorf("book_min_weight out of range: %d", c.Advisor.BookMinWeight)
	}
	if c.Advisor.Remote.PoolSize <= 0 {
		c.Advisor.Remote.PoolSize = 1
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive: %s", c.Cache.TTL)
	}
	return nil
}

// Uses reports whether kind is part of the advisor chain.
func (c *AppConfig) Uses(kind string) bool {
	for _, k := range c.Advisor.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (l LogConfig) ToObslog() obslog.Config {
	return obslog.Config{
		Level:     l.Level,
		Format:    l.Format,
		ToConsole: l.ToConsole,
		ToFile:    l.ToFile,
		File:      l.File,
		Caller:    l.Caller,
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Package config loads the settings shared by the movegen binaries from
// flags, MOVEGEN_* environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hailam/movegen/internal/board"
	"github.com/hailam/movegen/internal/movegen"
)

const envPrefix = "MOVEGEN"

// ErrInvalidConfig is returned by Load when a setting is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings of the perft and protocol binaries.
type Config struct {
	FEN        string
	Depth      int
	Divide     bool
	Workers    int
	Promotions movegen.PromotionMode
	Cache      bool
	HashMB     int
	DataDir    string
	Debug      bool
	CPUProfile string
}

// Load parses args. Flags set on the command line win over the
// environment, which wins over the config file named by --config.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("movegen", pflag.ContinueOnError)
	fs.String("config", "", "optional config file (yaml, toml or json)")
	fs.String("fen", board.StartFEN, "position to count")
	fs.Int("depth", 5, "perft depth")
	fs.Bool("divide", false, "print the node count below each root move")
	fs.Int("workers", runtime.NumCPU(), "number of perft worker goroutines")
	fs.String("promotions", movegen.PromoteAll.String(), "promotions to generate: all, queen or queen-knight")
	fs.Bool("cache", false, "cache perft results on disk")
	fs.Int("hash", 0, "perft hash table size in MB, 0 disables it")
	fs.String("data-dir", "", "directory of the perft cache; defaults to the platform data directory")
	fs.Bool("debug", false, "debug logging")
	fs.String("cpu-profile", "", "write a CPU profile to this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	mode, err := movegen.ParsePromotionMode(v.GetString("promotions"))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c.FEN = v.GetString("fen")
	c.Depth = v.GetInt("depth")
	c.Divide = v.GetBool("divide")
	c.Workers = v.GetInt("workers")
	c.Promotions = mode
	c.Cache = v.GetBool("cache")
	c.HashMB = v.GetInt("hash")
	c.DataDir = v.GetString("data-dir")
	c.Debug = v.GetBool("debug")
	c.CPUProfile = v.GetString("cpu-profile")

	if c.Depth < 1 {
		return fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidConfig, c.Depth)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.HashMB < 0 {
		return fmt.Errorf("%w: hash must not be negative, got %d", ErrInvalidConfig, c.HashMB)
	}
	return nil
}

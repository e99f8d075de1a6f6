package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/hailam/movegen/internal/board"
	"github.com/hailam/movegen/internal/config"
	"github.com/hailam/movegen/internal/movegen"
	"github.com/hailam/movegen/internal/storage"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain returns the exit code once every deferred cleanup has run.
func realMain(args []string) int {
	cfg := &config.Config{}
	if err := cfg.Load(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")

	if cfg.CPUProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.CPUProfile), profile.Quiet).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(logger.WithContext(ctx), cfg); err != nil {
		log.Error().Err(err).Msg("perft failed")
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config) error {
	pos, err := board.ParseFEN(cfg.FEN)
	if err != nil {
		return err
	}

	var store *storage.Store
	if cfg.Cache {
		store, err = storage.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var tt *movegen.PerftTable
	if cfg.HashMB > 0 {
		tt = movegen.NewPerftTable(cfg.HashMB)
	}

	log.Info().Str("fen", pos.FEN()).Int("depth", cfg.Depth).Int("workers", cfg.Workers).
		Str("promotions", cfg.Promotions.String()).Msg("perft")

	fmt.Printf("%-6s %14s %14s %14s\n", "depth", "nodes", "time", "nps")
	for depth := 1; depth <= cfg.Depth; depth++ {
		divide := cfg.Divide && depth == cfg.Depth
		rec, cached, err := count(ctx, store, tt, pos, depth, cfg, divide)
		if err != nil {
			return err
		}
		suffix := ""
		if cached {
			suffix = " (cached)"
		}
		fmt.Printf("%-6d %14d %14s %14.0f%s\n", depth, rec.Nodes, rec.Elapsed.Round(time.Microsecond), rec.NPS(), suffix)
	}

	if store != nil {
		stats, err := store.LoadStats()
		if err != nil {
			return err
		}
		log.Info().Int("runs", stats.Runs).Uint64("nodes", stats.TotalNodes).
			Float64("avg-nps", stats.AverageNPS()).Float64("fastest-nps", stats.FastestNPS).Msg("cache-stats")
	}
	return nil
}

// count runs one perft depth, consulting the cache unless a divide is
// wanted. Only the promotion mode that matches standard perft is cached.
func count(ctx context.Context, store *storage.Store, tt *movegen.PerftTable, pos *board.Position, depth int, cfg *config.Config, divide bool) (storage.PerftRecord, bool, error) {
	cacheable := store != nil && cfg.Promotions == movegen.PromoteAll
	if cacheable && !divide {
		rec, err := store.LookupPerft(pos.FEN(), depth)
		if err == nil {
			return rec, true, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return storage.PerftRecord{}, false, err
		}
	}

	start := time.Now()
	entries, err := movegen.HashParallelDivide(ctx, pos, depth, cfg.Workers, cfg.Promotions, tt)
	if err != nil {
		return storage.PerftRecord{}, false, err
	}
	rec := storage.PerftRecord{
		FEN:     pos.FEN(),
		Depth:   depth,
		Nodes:   movegen.TotalNodes(entries),
		Elapsed: time.Since(start),
	}

	if divide {
		for _, e := range entries {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
		}
		fmt.Println()
	}

	if cacheable {
		if err := store.SavePerft(rec); err != nil {
			return rec, false, err
		}
	}
	return rec, false, nil
}

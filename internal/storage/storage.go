package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// Storage keys
const (
	keyStats        = "stats"
	perftKeyPrefix  = "perft/"
	fenFieldsHashed = 4 // placement, side, castling, en passant
)

// ErrNotFound is returned when no perft result is cached for a position.
var ErrNotFound = errors.New("perft record not found")

// PerftRecord is a cached perft result.
type PerftRecord struct {
	FEN        string        `json:"fen"`
	Depth      int           `json:"depth"`
	Nodes      uint64        `json:"nodes"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// NPS returns the nodes per second of the recorded run.
func (r PerftRecord) NPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Nodes) / r.Elapsed.Seconds()
}

// RunStats accumulates every perft run saved to the store.
type RunStats struct {
	Runs         int            `json:"runs"`
	TotalNodes   uint64         `json:"total_nodes"`
	TotalTime    time.Duration  `json:"total_time"`
	RunsByDepth  map[string]int `json:"runs_by_depth"`
	FastestNPS   float64        `json:"fastest_nps"`
	LastRecorded time.Time      `json:"last_recorded"`
	Deepest      map[string]int `json:"deepest_by_fen"`
}

// NewRunStats returns empty statistics.
func NewRunStats() *RunStats {
	return &RunStats{
		RunsByDepth: make(map[string]int),
		Deepest:     make(map[string]int),
	}
}

// AverageNPS returns the overall nodes per second.
func (s *RunStats) AverageNPS() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return float64(s.TotalNodes) / s.TotalTime.Seconds()
}

// Store wraps BadgerDB as a perft result cache.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store in dir. An empty dir resolves to
// DatabaseDir().
func Open(dir string) (*Store, error) {
	if dir == "" {
		var err error
		dir, err = DatabaseDir()
		if err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open perft cache in %s: %w", dir, err)
	}
	log.Debug().Str("dir", dir).Msg("perft-cache-opened")
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory perft cache: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// normalizeFEN drops the move counters, which do not change perft results.
func normalizeFEN(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > fenFieldsHashed {
		fields = fields[:fenFieldsHashed]
	}
	return strings.Join(fields, " ")
}

func perftKey(fen string, depth int) []byte {
	return fmt.Appendf(nil, "%s%016x/%d", perftKeyPrefix, xxhash.Sum64String(normalizeFEN(fen)), depth)
}

// LookupPerft returns the cached result for fen at depth, or ErrNotFound.
func (s *Store) LookupPerft(fen string, depth int) (PerftRecord, error) {
	var rec PerftRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(perftKey(fen, depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return PerftRecord{}, err
	}

	// A hash collision between two positions is a miss, not a wrong answer.
	if normalizeFEN(rec.FEN) != normalizeFEN(fen) || rec.Depth != depth {
		log.Warn().Str("fen", fen).Str("stored", rec.FEN).Msg("perft-cache-collision")
		return PerftRecord{}, ErrNotFound
	}
	log.Debug().Str("fen", fen).Int("depth", depth).Uint64("nodes", rec.Nodes).Msg("perft-cache-hit")
	return rec, nil
}

// SavePerft stores a perft result and updates the run statistics.
func (s *Store) SavePerft(rec PerftRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(perftKey(rec.FEN, rec.Depth), data); err != nil {
			return err
		}

		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.record(rec)

		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
}

// LoadStats loads the run statistics, returns empty stats if not found
func (s *Store) LoadStats() (*RunStats, error) {
	var stats *RunStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

func loadStats(txn *badger.Txn) (*RunStats, error) {
	stats := NewRunStats()

	item, err := txn.Get([]byte(keyStats))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return stats, nil // Use empty stats
	}
	if err != nil {
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	return stats, err
}

func (s *RunStats) record(rec PerftRecord) {
	s.Runs++
	s.TotalNodes += rec.Nodes
	s.TotalTime += rec.Elapsed
	s.RunsByDepth[fmt.Sprint(rec.Depth)]++
	s.LastRecorded = rec.RecordedAt

	if nps := rec.NPS(); nps > s.FastestNPS {
		s.FastestNPS = nps
	}
	fen := normalizeFEN(rec.FEN)
	if rec.Depth > s.Deepest[fen] {
		s.Deepest[fen] = rec.Depth
	}
}

// badgerLogger routes badger's log output through zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Error().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warn().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Debug().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	log.Trace().Str("component", "badger").Msgf(strings.TrimSpace(format), args...)
}

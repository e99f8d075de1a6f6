package storage

import (
	"errors"
	"math"
	"os"
	"testing"
	"time"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestStorage(t *testing.T) {
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	t.Run("Miss", func(t *testing.T) {
		_, err := store.LookupPerft(startFEN, 3)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SaveAndLookup", func(t *testing.T) {
		rec := PerftRecord{FEN: startFEN, Depth: 3, Nodes: 8902, Elapsed: 2 * time.Millisecond}
		if err := store.SavePerft(rec); err != nil {
			t.Fatalf("SavePerft failed: %v", err)
		}

		got, err := store.LookupPerft(startFEN, 3)
		if err != nil {
			t.Fatalf("LookupPerft failed: %v", err)
		}
		if got.Nodes != 8902 || got.Depth != 3 || got.Elapsed != 2*time.Millisecond {
			t.Errorf("Unexpected record %+v", got)
		}
		if got.RecordedAt.IsZero() {
			t.Error("Expected RecordedAt to be filled in")
		}

		if _, err := store.LookupPerft(startFEN, 4); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected a miss at another depth, got %v", err)
		}
	})

	t.Run("MoveCountersIgnored", func(t *testing.T) {
		got, err := store.LookupPerft("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 12 40", 3)
		if err != nil {
			t.Fatalf("LookupPerft failed: %v", err)
		}
		if got.Nodes != 8902 {
			t.Errorf("Expected 8902 nodes, got %d", got.Nodes)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		if err := store.SavePerft(PerftRecord{FEN: startFEN, Depth: 4, Nodes: 197281, Elapsed: time.Second}); err != nil {
			t.Fatalf("SavePerft failed: %v", err)
		}

		stats, err := store.LoadStats()
		if err != nil {
			t.Fatalf("LoadStats failed: %v", err)
		}
		if stats.Runs != 2 {
			t.Errorf("Expected 2 runs, got %d", stats.Runs)
		}
		if stats.TotalNodes != 8902+197281 {
			t.Errorf("Expected %d total nodes, got %d", 8902+197281, stats.TotalNodes)
		}
		if stats.RunsByDepth["3"] != 1 || stats.RunsByDepth["4"] != 1 {
			t.Errorf("Unexpected runs by depth %v", stats.RunsByDepth)
		}
		if stats.Deepest[normalizeFEN(startFEN)] != 4 {
			t.Errorf("Expected deepest 4, got %v", stats.Deepest)
		}
		if math.Abs(stats.FastestNPS-4451000) > 1 {
			t.Errorf("Expected fastest nps 4451000, got %f", stats.FastestNPS)
		}
	})
}

func TestEmptyStats(t *testing.T) {
	stats := NewRunStats()
	if stats.Runs != 0 {
		t.Errorf("Expected 0 runs")
	}
	if stats.AverageNPS() != 0 {
		t.Errorf("Expected 0 nps")
	}
	if (PerftRecord{Nodes: 10}).NPS() != 0 {
		t.Errorf("Expected 0 nps without elapsed time")
	}
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.SavePerft(PerftRecord{FEN: startFEN, Depth: 2, Nodes: 400}); err != nil {
		t.Fatalf("SavePerft failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	store, err = Open(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer store.Close()

	got, err := store.LookupPerft(startFEN, 2)
	if err != nil {
		t.Fatalf("LookupPerft after reopen failed: %v", err)
	}
	if got.Nodes != 400 {
		t.Errorf("Expected 400 nodes, got %d", got.Nodes)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	// Test that DataDir returns a valid path
	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("DataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	dbDir, err := DatabaseDir()
	if err != nil {
		t.Fatalf("DatabaseDir failed: %v", err)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("Database directory was not created: %s", dbDir)
	}
}

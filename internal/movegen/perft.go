package movegen

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/movegen/internal/board"
)

// Perft counts the leaf nodes of the legal move tree of the given depth.
// Leaves at depth 1 are counted from the move list without making them.
func Perft(pos *board.Position, gen *Generator, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := gen.GenerateMoves(pos, true)
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		undo := pos.MakeMove(m)
		nodes += Perft(pos, gen, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// DivideEntry is the node count below one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// Divide returns the perft count below each root move, sorted by the
// moves' UCI strings.
func Divide(pos *board.Position, gen *Generator, depth int) []DivideEntry {
	if depth < 1 {
		return nil
	}

	moves := gen.GenerateMoves(pos, true)
	entries := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		undo := pos.MakeMove(m)
		entries = append(entries, DivideEntry{Move: m, Nodes: Perft(pos, gen, depth-1)})
		pos.UnmakeMove(m, undo)
	}
	sortEntries(entries)
	return entries
}

// ParallelDivide is Divide with the root moves spread over workers
// goroutines. Each worker searches its own copy of pos, which is left
// untouched. Cancelling ctx stops the search between root moves.
func ParallelDivide(ctx context.Context, pos *board.Position, depth, workers int, mode PromotionMode) ([]DivideEntry, error) {
	return HashParallelDivide(ctx, pos, depth, workers, mode, nil)
}

// HashParallelDivide is ParallelDivide with the workers sharing tt. A nil
// table disables memoisation.
func HashParallelDivide(ctx context.Context, pos *board.Position, depth, workers int, mode PromotionMode, tt *PerftTable) ([]DivideEntry, error) {
	if depth < 1 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}
	logger := zerolog.Ctx(ctx)

	tables := DefaultTables()
	moves := New(WithTables(tables), WithPromotionMode(mode)).GenerateMoves(pos, true)
	entries := make([]DivideEntry, len(moves))

	var next atomic.Int64
	var nodes atomic.Uint64
	tstart := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < min(workers, len(moves)); w++ {
		w := w
		g.Go(func() error {
			local := pos.Copy()
			gen := New(WithTables(tables), WithPromotionMode(mode))
			logger.Debug().Int("worker", w).Msg("perft-worker-start")

			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				i := int(next.Add(1) - 1)
				if i >= len(moves) {
					return nil
				}
				m := moves[i]
				undo := local.MakeMove(m)
				n := HashPerft(local, gen, depth-1, tt)
				local.UnmakeMove(m, undo)

				entries[i] = DivideEntry{Move: m, Nodes: n}
				nodes.Add(n)
				logger.Debug().Int("worker", w).Str("move", m.String()).Uint64("nodes", n).Msg("perft-root-move")
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(tstart)
	ev := logger.Debug().Uint64("nodes", nodes.Load()).Dur("elapsed", elapsed)
	if tt != nil {
		ev = ev.Float64("tt-hit-rate", tt.HitRate()).Int("tt-full", tt.HashFull())
	}
	ev.Msg("parallel-divide-done")

	sortEntries(entries)
	return entries, nil
}

// TotalNodes sums the node counts of a divide.
func TotalNodes(entries []DivideEntry) uint64 {
	return lo.SumBy(entries, func(e DivideEntry) uint64 {
		return e.Nodes
	})
}

func sortEntries(entries []DivideEntry) {
	slices.SortFunc(entries, func(a, b DivideEntry) int {
		return strings.Compare(a.Move.String(), b.Move.String())
	})
}

// Package uci implements a UCI-style text shell around the move generator:
// positions are set up with the usual "position" command and explored with
// "go perft", "moves" and "d".
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/movegen/internal/board"
	"github.com/hailam/movegen/internal/movegen"
)

// UCI implements the Universal Chess Interface protocol subset that makes
// sense without a search: position setup and perft.
type UCI struct {
	in  io.Reader
	out io.Writer

	position *board.Position

	// Position history, one hash per applied move
	positionHashes []uint64

	promotions movegen.PromotionMode
	workers    int
	table      *movegen.PerftTable
}

// Option configures a UCI handler.
type Option func(*UCI)

// WithPromotionMode sets the promotion mode used for perft and move lists.
func WithPromotionMode(mode movegen.PromotionMode) Option {
	return func(u *UCI) {
		u.promotions = mode
	}
}

// WithWorkers sets the number of perft worker goroutines.
func WithWorkers(n int) Option {
	return func(u *UCI) {
		if n > 0 {
			u.workers = n
		}
	}
}

// WithHashSize gives perft a hash table of sizeMB megabytes. Zero disables it.
func WithHashSize(sizeMB int) Option {
	return func(u *UCI) {
		u.setHash(sizeMB)
	}
}

// New creates a new UCI protocol handler.
func New(in io.Reader, out io.Writer, opts ...Option) *UCI {
	u := &UCI{
		in:       in,
		out:      out,
		position: board.NewPosition(),
		workers:  runtime.NumCPU(),
	}
	u.positionHashes = []uint64{u.position.Hash()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run reads commands until "quit", end of input or cancellation of ctx.
func (u *UCI) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		log.Debug().Str("line", line).Msg("uci-command")

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(ctx, args)
		case "setoption":
			u.handleSetOption(args)
		case "stop":
			// Perft runs synchronously, nothing to stop.
		case "quit":
			return nil
		// Debug commands
		case "d":
			u.handleDisplay()
		case "moves":
			u.handleMoves()
		case "perft":
			u.handlePerft(ctx, args)
		default:
			u.printf("info string Unknown command: %s\n", cmd)
		}
	}

	return scanner.Err()
}

func (u *UCI) println(s string) {
	fmt.Fprintln(u.out, s)
}

func (u *UCI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name movegen")
	u.println("id author hailam")
	u.println("")
	u.printf("option name Threads type spin default %d min 1 max 512\n", u.workers)
	u.println("option name Hash type spin default 0 min 0 max 4096")
	u.println("option name Promotions type combo default all var all var queen var queen-knight")
	u.println("uciok")
}

// handleNewGame resets the position.
func (u *UCI) handleNewGame() {
	u.position = board.NewPosition()
	u.positionHashes = []uint64{u.position.Hash()}
	if u.table != nil {
		u.table.Clear()
	}
}

func (u *UCI) setHash(sizeMB int) {
	u.table = nil
	if sizeMB > 0 {
		u.table = movegen.NewPerftTable(sizeMB)
	}
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// The current position is left untouched when any part is invalid.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		u.println("info string Missing position arguments")
		return
	}

	movesAt := lo.IndexOf(args, "moves")
	setup := args
	var moves []string
	if movesAt >= 0 {
		setup = args[:movesAt]
		moves = args[movesAt+1:]
	}
	if len(setup) == 0 {
		u.println("info string Missing position arguments")
		return
	}

	var pos *board.Position
	switch setup[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(setup[1:], " "))
		if err != nil {
			u.printf("info string Invalid FEN: %v\n", err)
			return
		}
	default:
		u.printf("info string Unknown position type: %s\n", setup[0])
		return
	}

	hashes := []uint64{pos.Hash()}
	for _, moveStr := range moves {
		move, err := movegen.ParseMove(pos, moveStr)
		if err != nil {
			u.printf("info string Invalid move: %s\n", moveStr)
			return
		}
		pos.MakeMove(move)
		hashes = append(hashes, pos.Hash())
	}

	u.position = pos
	u.positionHashes = hashes
}

// handleGo supports "go perft <depth>". Other go commands need a search and
// are answered with an info string.
func (u *UCI) handleGo(ctx context.Context, args []string) {
	if len(args) > 0 && args[0] == "perft" {
		u.handlePerft(ctx, args[1:])
		return
	}
	u.println("info string Only 'go perft <depth>' is supported")
}

// handlePerft runs a divide and prints one line per root move.
func (u *UCI) handlePerft(ctx context.Context, args []string) {
	depth := 1
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			u.printf("info string Invalid perft depth: %s\n", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	entries, err := movegen.HashParallelDivide(ctx, u.position, depth, u.workers, u.promotions, u.table)
	if err != nil {
		u.printf("info string Perft aborted: %v\n", err)
		return
	}
	elapsed := time.Since(start)

	for _, e := range entries {
		u.printf("%s: %d\n", e.Move, e.Nodes)
	}
	nodes := movegen.TotalNodes(entries)
	u.println("")
	u.printf("Nodes searched: %d\n", nodes)
	log.Info().Int("depth", depth).Uint64("nodes", nodes).Dur("elapsed", elapsed).Msg("perft")
}

// handleMoves lists the legal moves of the current position.
func (u *UCI) handleMoves() {
	moves := movegen.Generate(u.position, movegen.Config{Promotions: u.promotions}).Moves
	u.println(strings.Join(lo.Map(moves, func(m board.Move, _ int) string {
		return m.String()
	}), " "))
}

// handleDisplay prints the board, its FEN and the check state.
func (u *UCI) handleDisplay() {
	res := movegen.Generate(u.position, movegen.Config{Promotions: u.promotions})

	u.printf("%s", u.position)
	u.printf("Fen: %s\n", u.position.FEN())

	var checkers []string
	them := u.position.Opponent()
	for _, sq := range res.Attacks.CheckRay.Squares() {
		if u.position.PieceAt(sq).IsColor(them) {
			checkers = append(checkers, sq.String())
		}
	}
	u.printf("Checkers: %s\n", strings.Join(checkers, " "))
	u.printf("Legal moves: %d\n", len(res.Moves))
	u.printf("Status: %s\n", movegen.Status(u.position))
	u.printf("Repetitions: %d\n", u.repetitions())
}

// repetitions counts earlier occurrences of the current position.
func (u *UCI) repetitions() int {
	current := u.position.Hash()
	return lo.Count(u.positionHashes[:len(u.positionHashes)-1], current)
}

// handleSetOption parses "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	nameAt := lo.IndexOf(args, "name")
	valueAt := lo.IndexOf(args, "value")
	if nameAt < 0 || valueAt < nameAt {
		u.println("info string Usage: setoption name <name> value <value>")
		return
	}

	name := strings.ToLower(strings.Join(args[nameAt+1:valueAt], " "))
	value := strings.Join(args[valueAt+1:], " ")

	switch name {
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			u.printf("info string Invalid thread count: %s\n", value)
			return
		}
		u.workers = n
	case "hash":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			u.printf("info string Invalid hash size: %s\n", value)
			return
		}
		u.setHash(n)
	case "promotions":
		mode, err := movegen.ParsePromotionMode(value)
		if err != nil {
			u.printf("info string %v\n", err)
			return
		}
		if mode != u.promotions && u.table != nil {
			u.table.Clear()
		}
		u.promotions = mode
	default:
		u.printf("info string Unknown option: %s\n", name)
	}
}

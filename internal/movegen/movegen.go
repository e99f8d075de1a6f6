package movegen

import (
	"errors"
	"fmt"

	"github.com/hailam/movegen/internal/board"
)

// Generator wraps Generate with a fixed configuration and remembers the
// check state of its last call. A Generator must not be shared between
// goroutines.
type Generator struct {
	cfg     Config
	inCheck bool
	attacks AttackData
}

// New creates a Generator. Without options it generates every promotion
// using DefaultTables().
func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(&g.cfg)
	}
	if g.cfg.Tables == nil {
		g.cfg.Tables = DefaultTables()
	}
	return g
}

// GenerateMoves returns the legal moves of pos. With includeQuiet false
// only captures and promotions are returned.
func (g *Generator) GenerateMoves(pos Position, includeQuiet bool) []board.Move {
	cfg := g.cfg
	cfg.ExcludeQuiet = !includeQuiet
	res := Generate(pos, cfg)
	g.inCheck = res.InCheck
	g.attacks = res.Attacks
	return res.Moves
}

// InCheck reports whether the side to move was in check in the position
// passed to the last GenerateMoves call.
func (g *Generator) InCheck() bool {
	return g.inCheck
}

// Attacks returns the attack data of the last GenerateMoves call.
func (g *Generator) Attacks() AttackData {
	return g.attacks
}

// PromotionMode returns the configured promotion mode.
func (g *Generator) PromotionMode() PromotionMode {
	return g.cfg.Promotions
}

// Tables returns the tables the Generator uses.
func (g *Generator) Tables() *Tables {
	return g.cfg.Tables
}

// ErrIllegalMove is returned by ParseMove for a move that is not legal in
// the position.
var ErrIllegalMove = errors.New("illegal move")

// ParseMove resolves a UCI move string ("e2e4", "e7e8q") against the legal
// moves of pos. A promotion without a piece letter resolves to a queen.
func ParseMove(pos Position, s string) (board.Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return board.NoMove, fmt.Errorf("parse move %q: %w", s, ErrIllegalMove)
	}
	from, err := board.ParseSquare(s[0:2])
	if err != nil {
		return board.NoMove, fmt.Errorf("parse move %q: %w: %v", s, ErrIllegalMove, err)
	}
	to, err := board.ParseSquare(s[2:4])
	if err != nil {
		return board.NoMove, fmt.Errorf("parse move %q: %w: %v", s, ErrIllegalMove, err)
	}
	promo := board.NoPieceType
	if len(s) == 5 {
		promo = board.PieceFromChar(s[4]).Type()
		if promo == board.NoPieceType || promo == board.King || promo == board.Pawn {
			return board.NoMove, fmt.Errorf("parse move %q: bad promotion piece: %w", s, ErrIllegalMove)
		}
	}

	for _, m := range Generate(pos, Config{}).Moves {
		if m.From() != from || m.To() != to {
			continue
		}
		if !m.IsPromotion() {
			if promo == board.NoPieceType {
				return m, nil
			}
			continue
		}
		if m.PromotionPieceType() == promo || promo == board.NoPieceType && m.Flag() == board.FlagPromoteToQueen {
			return m, nil
		}
	}
	return board.NoMove, fmt.Errorf("parse move %q: %w", s, ErrIllegalMove)
}

// GameStatus is the outcome of a position by the rules of move generation.
type GameStatus uint8

const (
	Ongoing GameStatus = iota
	Checkmate
	Stalemate
)

func (s GameStatus) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Status reports whether the side to move is checkmated or stalemated.
func Status(pos Position) GameStatus {
	res := Generate(pos, Config{Promotions: PromoteQueenOnly})
	if len(res.Moves) > 0 {
		return Ongoing
	}
	if res.InCheck {
		return Checkmate
	}
	return Stalemate
}

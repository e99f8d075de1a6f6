// Package movegen generates legal chess moves.
//
// Generation runs in a single pass: the opponent's attacks, the checks and
// the pins on the side to move are computed first, and every move is then
// emitted only if it is legal. No move is ever made on the board to test it.
package movegen

import "github.com/hailam/movegen/internal/board"

// Position is the read-only view of a board the generator needs.
// *board.Position implements it.
type Position interface {
	PieceAt(sq board.Square) board.Piece
	SideToMove() board.Color
	KingSquare(c board.Color) board.Square
	State() board.GameState
	Pieces(pt board.PieceType, c board.Color) board.PieceView
}

// MaxMoves is the largest number of legal moves in any reachable position.
const MaxMoves = 218

// Result is the output of one generation call.
type Result struct {
	Moves         []board.Move
	InCheck       bool
	InDoubleCheck bool
	Attacks       AttackData
}

// genContext is the state of one Generate call.
type genContext struct {
	pos   Position
	t     *Tables
	mode  PromotionMode
	quiet bool
	moves []board.Move

	us, them board.Color
	kingSq   board.Square

	inCheck       bool
	inDoubleCheck bool
	attacks       AttackData
}

// Generate returns the legal moves of pos. Moves are emitted king first,
// then rooks, bishops, queens, knights and pawns; within a piece type the
// order follows the position's piece lists.
func Generate(pos Position, cfg Config) Result {
	us := pos.SideToMove()
	g := genContext{
		pos:    pos,
		t:      cfg.tables(),
		mode:   cfg.Promotions,
		quiet:  !cfg.ExcludeQuiet,
		moves:  make([]board.Move, 0, MaxMoves),
		us:     us,
		them:   us.Other(),
		kingSq: pos.KingSquare(us),
	}

	g.calculateAttackData()
	g.generateKingMoves()

	// Only the king can answer a double check.
	if !g.inDoubleCheck {
		g.generateSlidingMoves()
		g.generateKnightMoves()
		g.generatePawnMoves()
	}

	return Result{
		Moves:         g.moves,
		InCheck:       g.inCheck,
		InDoubleCheck: g.inDoubleCheck,
		Attacks:       g.attacks,
	}
}

func (g *genContext) add(m board.Move) {
	g.moves = append(g.moves, m)
}

func (g *genContext) generateKingMoves() {
	for _, to := range g.t.KingMoves(g.kingSq) {
		piece := g.pos.PieceAt(to)
		if piece.IsColor(g.us) {
			continue
		}

		isCapture := piece.IsColor(g.them)
		if !isCapture {
			// Stepping along the check ray cannot escape a slider.
			if !g.quiet || g.inCheckRay(to) {
				continue
			}
		}

		if g.isAttacked(to) {
			continue
		}
		g.add(board.NewMove(g.kingSq, to))

		if !g.inCheck && !isCapture {
			g.generateCastling(to)
		}
	}
}

// generateCastling is called after a legal quiet king step to to. Castling
// through to is legal when the king may also land one square further and,
// on the queen side, the square next to the rook is empty.
func (g *genContext) generateCastling(to board.Square) {
	rights := g.pos.State().CastlingRights()

	kingSide, queenSide := board.F1, board.D1
	if g.us == board.Black {
		kingSide, queenSide = board.F8, board.D8
	}

	switch {
	case to == kingSide && g.kingSq == kingSide-1 && rights.CanCastle(g.us, true):
		castleSq := to + 1
		if g.pos.PieceAt(castleSq) == board.NoPiece && !g.isAttacked(castleSq) {
			g.add(board.NewMoveWithFlag(g.kingSq, castleSq, board.FlagCastling))
		}
	case to == queenSide && g.kingSq == queenSide+1 && rights.CanCastle(g.us, false):
		castleSq := to - 1
		if g.pos.PieceAt(castleSq) == board.NoPiece && g.pos.PieceAt(castleSq-1) == board.NoPiece && !g.isAttacked(castleSq) {
			g.add(board.NewMoveWithFlag(g.kingSq, castleSq, board.FlagCastling))
		}
	}
}

func (g *genContext) generateSlidingMoves() {
	g.generateSlidingPieces(board.Rook, North, NorthWest)
	g.generateSlidingPieces(board.Bishop, NorthWest, SouthWest+1)
	g.generateSlidingPieces(board.Queen, North, SouthWest+1)
}

func (g *genContext) generateSlidingPieces(pt board.PieceType, startDir, endDir int) {
	pieces := g.pos.Pieces(pt, g.us)
	for i := 0; i < pieces.Len(); i++ {
		g.generateSlidingPieceMoves(pieces.At(i), startDir, endDir)
	}
}

func (g *genContext) generateSlidingPieceMoves(from board.Square, startDir, endDir int) {
	pinned := g.isPinned(from)

	// A pinned piece can neither block nor capture a checker.
	if g.inCheck && pinned {
		return
	}

	for dir := startDir; dir < endDir; dir++ {
		offset := DirectionOffsets[dir]

		if pinned && !g.t.IsMovingAlongRay(offset, g.kingSq, from) {
			continue
		}

		for n := 1; n <= g.t.NumSquaresToEdge(from, dir); n++ {
			to := board.Square(int(from) + offset*n)
			piece := g.pos.PieceAt(to)
			if piece.IsColor(g.us) {
				break
			}

			isCapture := piece != board.NoPiece
			preventsCheck := g.inCheckRay(to)
			if (preventsCheck || !g.inCheck) && (g.quiet || isCapture) {
				g.add(board.NewMove(from, to))
			}

			if isCapture || preventsCheck {
				break
			}
		}
	}
}

func (g *genContext) generateKnightMoves() {
	knights := g.pos.Pieces(board.Knight, g.us)
	for i := 0; i < knights.Len(); i++ {
		from := knights.At(i)

		// A pinned knight always leaves the pin line.
		if g.isPinned(from) {
			continue
		}

		for _, to := range g.t.KnightMoves(from) {
			piece := g.pos.PieceAt(to)
			isCapture := piece.IsColor(g.them)
			if !g.quiet && !isCapture {
				continue
			}
			if piece.IsColor(g.us) || (g.inCheck && !g.inCheckRay(to)) {
				continue
			}
			g.add(board.NewMove(from, to))
		}
	}
}

package movegen

import "github.com/hailam/movegen/internal/board"

func (g *genContext) generatePawnMoves() {
	pawns := g.pos.Pieces(board.Pawn, g.us)

	pawnOffset := 8
	startRank, finalRankBeforePromotion := 1, 6
	if g.us == board.Black {
		pawnOffset = -8
		startRank, finalRankBeforePromotion = 6, 1
	}

	epSquare := board.NoSquare
	if file := g.pos.State().EnPassantFile(); file >= 0 {
		rank := 5
		if g.us == board.Black {
			rank = 2
		}
		epSquare = board.NewSquare(file, rank)
	}

	for i := 0; i < pawns.Len(); i++ {
		from := pawns.At(i)
		rank := from.Rank()
		oneStepFromPromotion := rank == finalRankBeforePromotion
		pinned := g.isPinned(from)

		// Quiet pushes, plus promotions which are never quiet.
		if g.quiet || oneStepFromPromotion {
			oneForward := board.Square(int(from) + pawnOffset)

			if g.pos.PieceAt(oneForward) == board.NoPiece &&
				(!pinned || g.t.IsMovingAlongRay(pawnOffset, from, g.kingSq)) {
				if !g.inCheck || g.inCheckRay(oneForward) {
					if oneStepFromPromotion {
						g.addPromotions(from, oneForward)
					} else {
						g.add(board.NewMove(from, oneForward))
					}
				}

				if rank == startRank {
					twoForward := board.Square(int(oneForward) + pawnOffset)
					if g.pos.PieceAt(twoForward) == board.NoPiece && (!g.inCheck || g.inCheckRay(twoForward)) {
						g.add(board.NewMoveWithFlag(from, twoForward, board.FlagPawnTwoForward))
					}
				}
			}
		}

		for _, dir := range pawnAttackDirections[g.us.Index()] {
			if g.t.NumSquaresToEdge(from, dir) == 0 {
				continue
			}
			captureDir := DirectionOffsets[dir]
			to := board.Square(int(from) + captureDir)

			if pinned && !g.t.IsMovingAlongRay(captureDir, g.kingSq, from) {
				continue
			}

			if g.pos.PieceAt(to).IsColor(g.them) {
				if g.inCheck && !g.inCheckRay(to) {
					continue
				}
				if oneStepFromPromotion {
					g.addPromotions(from, to)
				} else {
					g.add(board.NewMove(from, to))
				}
			}

			if to == epSquare {
				captured := board.Square(int(to) - pawnOffset)
				if !g.inCheckAfterEnPassant(from, to, captured) {
					g.add(board.NewMoveWithFlag(from, to, board.FlagEnPassantCapture))
				}
			}
		}
	}
}

func (g *genContext) addPromotions(from, to board.Square) {
	g.add(board.NewMoveWithFlag(from, to, board.FlagPromoteToQueen))
	switch g.mode {
	case PromoteAll:
		g.add(board.NewMoveWithFlag(from, to, board.FlagPromoteToKnight))
		g.add(board.NewMoveWithFlag(from, to, board.FlagPromoteToRook))
		g.add(board.NewMoveWithFlag(from, to, board.FlagPromoteToBishop))
	case PromoteQueenAndKnight:
		g.add(board.NewMoveWithFlag(from, to, board.FlagPromoteToKnight))
	}
}

// epView is the board as it would look after an en passant capture, without
// touching the position.
type epView struct {
	pos                Position
	from, to, captured board.Square
	pawn               board.Piece
}

func (v epView) pieceAt(sq board.Square) board.Piece {
	switch sq {
	case v.from, v.captured:
		return board.NoPiece
	case v.to:
		return v.pawn
	}
	return v.pos.PieceAt(sq)
}

// inCheckAfterEnPassant reports whether capturing en passant from from to
// to, removing the pawn on captured, leaves the friendly king attacked.
// The capture vacates two squares at once, so a rook on the king's rank can
// be uncovered even when neither pawn is pinned on its own.
func (g *genContext) inCheckAfterEnPassant(from, to, captured board.Square) bool {
	// Knights are unaffected by the capture.
	if g.attacks.Knights.IsSet(g.kingSq) {
		return true
	}

	view := epView{
		pos:      g.pos,
		from:     from,
		to:       to,
		captured: captured,
		pawn:     board.NewPiece(board.Pawn, g.us),
	}

	enemyPawn := board.NewPiece(board.Pawn, g.them)
	pawnCheckers := g.t.PawnAttacks(g.kingSq, g.us)
	for pawnCheckers != 0 {
		if view.pieceAt(pawnCheckers.PopLSB()) == enemyPawn {
			return true
		}
	}

	for dir := North; dir <= SouthWest; dir++ {
		isDiagonal := dir >= NorthWest
		offset := DirectionOffsets[dir]
		for n := 1; n <= g.t.NumSquaresToEdge(g.kingSq, dir); n++ {
			piece := view.pieceAt(board.Square(int(g.kingSq) + offset*n))
			if piece == board.NoPiece {
				continue
			}
			if piece.IsColor(g.them) && (isDiagonal && piece.IsBishopOrQueen() || !isDiagonal && piece.IsRookOrQueen()) {
				return true
			}
			break
		}
	}

	return false
}

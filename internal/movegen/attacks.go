package movegen

import "github.com/hailam/movegen/internal/board"

// AttackData describes the opponent's attacks on the side to move, as
// computed at the start of a generation call.
type AttackData struct {
	// All is every square the opponent attacks.
	All board.Bitboard
	// NoPawns is All without the pawn attacks.
	NoPawns board.Bitboard
	// Pawns is the squares attacked by opponent pawns.
	Pawns board.Bitboard
	// Sliding is the squares attacked by opponent sliders, which see
	// through the friendly king.
	Sliding board.Bitboard
	// Knights is the squares attacked by opponent knights.
	Knights board.Bitboard
	// CheckRay holds the squares that block or capture a single checker.
	CheckRay board.Bitboard
	// PinRay is the union of every pin line, king side exclusive and
	// pinner inclusive.
	PinRay board.Bitboard
}

func (g *genContext) calculateAttackData() {
	g.genSlidingAttackMap()

	// Only the ray types the opponent can actually use need scanning.
	startDir, endDir := North, SouthWest+1
	if g.pos.Pieces(board.Queen, g.them).Len() == 0 {
		if g.pos.Pieces(board.Rook, g.them).Len() == 0 {
			startDir = NorthWest
		}
		if g.pos.Pieces(board.Bishop, g.them).Len() == 0 {
			endDir = NorthWest
		}
	}

	for dir := startDir; dir < endDir; dir++ {
		isDiagonal := dir >= NorthWest
		offset := DirectionOffsets[dir]
		friendlyAlongRay := false
		var rayMask board.Bitboard

		for n := 1; n <= g.t.NumSquaresToEdge(g.kingSq, dir); n++ {
			sq := board.Square(int(g.kingSq) + offset*n)
			rayMask = rayMask.Set(sq)
			piece := g.pos.PieceAt(sq)
			if piece == board.NoPiece {
				continue
			}

			if piece.IsColor(g.us) {
				if friendlyAlongRay {
					// Two friendly pieces: neither is pinned.
					break
				}
				friendlyAlongRay = true
				continue
			}

			if isDiagonal && piece.IsBishopOrQueen() || !isDiagonal && piece.IsRookOrQueen() {
				if friendlyAlongRay {
					g.attacks.PinRay |= rayMask
				} else {
					g.addCheck(rayMask)
				}
			}
			break
		}

		if g.inDoubleCheck {
			break
		}
	}

	knights := g.pos.Pieces(board.Knight, g.them)
	knightCheck := false
	for i := 0; i < knights.Len(); i++ {
		sq := knights.At(i)
		g.attacks.Knights |= g.t.KnightAttacks(sq)
		if !knightCheck && g.attacks.Knights.IsSet(g.kingSq) {
			knightCheck = true
			g.addCheck(board.SquareBB(sq))
		}
	}

	pawns := g.pos.Pieces(board.Pawn, g.them)
	pawnCheck := false
	for i := 0; i < pawns.Len(); i++ {
		sq := pawns.At(i)
		attacks := g.t.PawnAttacks(sq, g.them)
		g.attacks.Pawns |= attacks
		if !pawnCheck && attacks.IsSet(g.kingSq) {
			pawnCheck = true
			g.addCheck(board.SquareBB(sq))
		}
	}

	enemyKing := g.pos.KingSquare(g.them)
	g.attacks.NoPawns = g.attacks.Sliding | g.attacks.Knights | g.t.KingAttacks(enemyKing)
	g.attacks.All = g.attacks.NoPawns | g.attacks.Pawns
}

func (g *genContext) addCheck(ray board.Bitboard) {
	g.attacks.CheckRay |= ray
	g.inDoubleCheck = g.inCheck
	g.inCheck = true
}

func (g *genContext) genSlidingAttackMap() {
	g.updateSlidingAttacks(g.pos.Pieces(board.Rook, g.them), North, NorthWest)
	g.updateSlidingAttacks(g.pos.Pieces(board.Bishop, g.them), NorthWest, SouthWest+1)
	g.updateSlidingAttacks(g.pos.Pieces(board.Queen, g.them), North, SouthWest+1)
}

// updateSlidingAttacks casts rays from every piece in the view. The
// friendly king does not stop a ray, so squares behind it count as
// attacked.
func (g *genContext) updateSlidingAttacks(pieces board.PieceView, startDir, endDir int) {
	for i := 0; i < pieces.Len(); i++ {
		from := pieces.At(i)
		for dir := startDir; dir < endDir; dir++ {
			offset := DirectionOffsets[dir]
			for n := 1; n <= g.t.NumSquaresToEdge(from, dir); n++ {
				sq := board.Square(int(from) + offset*n)
				g.attacks.Sliding = g.attacks.Sliding.Set(sq)
				if sq != g.kingSq && g.pos.PieceAt(sq) != board.NoPiece {
					break
				}
			}
		}
	}
}

func (g *genContext) isPinned(sq board.Square) bool {
	return g.attacks.PinRay.IsSet(sq)
}

func (g *genContext) inCheckRay(sq board.Square) bool {
	return g.inCheck && g.attacks.CheckRay.IsSet(sq)
}

func (g *genContext) isAttacked(sq board.Square) bool {
	return g.attacks.All.IsSet(sq)
}

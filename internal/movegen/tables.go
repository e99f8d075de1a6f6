package movegen

import (
	"sync"

	"github.com/hailam/movegen/internal/board"
)

// Ray directions, in the order used by every per-direction table.
// Orthogonal directions come first so rook rays are indices 0-3 and bishop
// rays 4-7.
const (
	North = iota
	South
	West
	East
	NorthWest
	SouthEast
	NorthEast
	SouthWest
)

// DirectionOffsets is the square index delta of one step in each direction.
var DirectionOffsets = [8]int{8, -8, -1, 1, 7, -7, 9, -9}

var (
	knightJumps = [8]int{15, 17, -17, -15, 10, -6, 6, -10}

	// Capture directions of a pawn: white NW/NE, black SW/SE.
	pawnAttackDirections = [2][2]int{
		board.WhiteIndex: {NorthWest, NorthEast},
		board.BlackIndex: {SouthWest, SouthEast},
	}
)

// Tables holds the precomputed board geometry. A Tables value is built once
// and never modified; slices it returns are shared and must not be written.
type Tables struct {
	numSquaresToEdge [64][8]int

	knightMoves [64][]board.Square
	kingMoves   [64][]board.Square

	knightAttacks [64]board.Bitboard
	kingAttacks   [64]board.Bitboard
	pawnAttacks   [64][2]board.Bitboard

	rookRays   [64]board.Bitboard
	bishopRays [64]board.Bitboard
	queenRays  [64]board.Bitboard

	// directionLookup[target-start+63] is the signed step that leads from
	// start towards target, when they share a line.
	directionLookup [127]int

	orthogonalDistance      [64][64]int
	kingDistance            [64][64]int
	centreManhattanDistance [64]int
}

// DefaultTables returns the process-wide tables, building them on first use.
var DefaultTables = sync.OnceValue(NewTables)

// NewTables computes a fresh set of tables.
func NewTables() *Tables {
	t := &Tables{}

	for sq := board.A1; sq <= board.H8; sq++ {
		file, rank := sq.File(), sq.Rank()
		north := 7 - rank
		south := rank
		west := file
		east := 7 - file
		t.numSquaresToEdge[sq] = [8]int{
			north,
			south,
			west,
			east,
			min(north, west),
			min(south, east),
			min(north, east),
			min(south, west),
		}

		// Knight jumps wrap around the board unless the destination is
		// exactly two files or ranks away in its larger coordinate.
		for _, jump := range knightJumps {
			to := int(sq) + jump
			if to < 0 || to >= 64 {
				continue
			}
			target := board.Square(to)
			if max(abs(file-target.File()), abs(rank-target.Rank())) == 2 {
				t.knightMoves[sq] = append(t.knightMoves[sq], target)
				t.knightAttacks[sq] = t.knightAttacks[sq].Set(target)
			}
		}

		for _, offset := range DirectionOffsets {
			to := int(sq) + offset
			if to < 0 || to >= 64 {
				continue
			}
			target := board.Square(to)
			if max(abs(file-target.File()), abs(rank-target.Rank())) == 1 {
				t.kingMoves[sq] = append(t.kingMoves[sq], target)
				t.kingAttacks[sq] = t.kingAttacks[sq].Set(target)
			}
		}

		for ci, dirs := range pawnAttackDirections {
			for _, dir := range dirs {
				if t.numSquaresToEdge[sq][dir] > 0 {
					t.pawnAttacks[sq][ci] = t.pawnAttacks[sq][ci].Set(board.Square(int(sq) + DirectionOffsets[dir]))
				}
			}
		}

		for dir := North; dir <= SouthWest; dir++ {
			var ray board.Bitboard
			for n := 1; n <= t.numSquaresToEdge[sq][dir]; n++ {
				ray = ray.Set(board.Square(int(sq) + DirectionOffsets[dir]*n))
			}
			if dir < NorthWest {
				t.rookRays[sq] |= ray
			} else {
				t.bishopRays[sq] |= ray
			}
		}
		t.queenRays[sq] = t.rookRays[sq] | t.bishopRays[sq]
	}

	for i := range t.directionLookup {
		offset := i - 63
		absOffset := abs(offset)
		var step int
		switch {
		case absOffset%9 == 0:
			step = 9
		case absOffset%8 == 0:
			step = 8
		case absOffset%7 == 0:
			step = 7
		default:
			step = 1
		}
		if offset < 0 {
			step = -step
		}
		t.directionLookup[i] = step
	}

	for a := board.A1; a <= board.H8; a++ {
		for b := board.A1; b <= board.H8; b++ {
			fileDist := abs(a.File() - b.File())
			rankDist := abs(a.Rank() - b.Rank())
			t.orthogonalDistance[a][b] = fileDist + rankDist
			t.kingDistance[a][b] = max(fileDist, rankDist)
		}
		fileDstFromCentre := max(3-a.File(), a.File()-4)
		rankDstFromCentre := max(3-a.Rank(), a.Rank()-4)
		t.centreManhattanDistance[a] = fileDstFromCentre + rankDstFromCentre
	}

	return t
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// NumSquaresToEdge returns how many steps fit from sq to the edge in dir.
func (t *Tables) NumSquaresToEdge(sq board.Square, dir int) int {
	return t.numSquaresToEdge[sq][dir]
}

// KnightMoves returns the knight destinations from sq.
func (t *Tables) KnightMoves(sq board.Square) []board.Square {
	return t.knightMoves[sq]
}

// KingMoves returns the king destinations from sq.
func (t *Tables) KingMoves(sq board.Square) []board.Square {
	return t.kingMoves[sq]
}

// KnightAttacks returns the knight destinations from sq as a bitboard.
func (t *Tables) KnightAttacks(sq board.Square) board.Bitboard {
	return t.knightAttacks[sq]
}

// KingAttacks returns the king destinations from sq as a bitboard.
func (t *Tables) KingAttacks(sq board.Square) board.Bitboard {
	return t.kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq captures on.
func (t *Tables) PawnAttacks(sq board.Square, c board.Color) board.Bitboard {
	return t.pawnAttacks[sq][c.Index()]
}

// RookRays returns the orthogonal lines through sq on an empty board.
func (t *Tables) RookRays(sq board.Square) board.Bitboard {
	return t.rookRays[sq]
}

// BishopRays returns the diagonal lines through sq on an empty board.
func (t *Tables) BishopRays(sq board.Square) board.Bitboard {
	return t.bishopRays[sq]
}

// QueenRays returns RookRays | BishopRays.
func (t *Tables) QueenRays(sq board.Square) board.Bitboard {
	return t.queenRays[sq]
}

// Direction returns the signed step (±1, ±7, ±8, ±9) from start towards
// target. The answer is only meaningful when the squares share a rank,
// file or diagonal.
func (t *Tables) Direction(start, target board.Square) int {
	return t.directionLookup[int(target)-int(start)+63]
}

// IsMovingAlongRay reports whether a step of rayDir from start heads
// towards target, in either sense.
func (t *Tables) IsMovingAlongRay(rayDir int, start, target board.Square) bool {
	moveDir := t.Direction(start, target)
	return rayDir == moveDir || -rayDir == moveDir
}

// OrthogonalDistance returns the rook (Manhattan) distance between a and b.
func (t *Tables) OrthogonalDistance(a, b board.Square) int {
	return t.orthogonalDistance[a][b]
}

// KingDistance returns the Chebyshev distance between a and b.
func (t *Tables) KingDistance(a, b board.Square) int {
	return t.kingDistance[a][b]
}

// CentreManhattanDistance returns the Manhattan distance from sq to the
// nearest of the four centre squares.
func (t *Tables) CentreManhattanDistance(sq board.Square) int {
	return t.centreManhattanDistance[sq]
}

package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][8][64]uint64 // [colorIndex][PieceType][Square]
	zobristEnPassant  [8]uint64        // One per file
	zobristCastling   [16]uint64       // All 16 castling combinations
	zobristSideToMove uint64           // XOR when black to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

var hashedPieceTypes = [...]PieceType{King, Pawn, Knight, Bishop, Rook, Queen}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	// Piece keys
	for ci := WhiteIndex; ci <= BlackIndex; ci++ {
		for _, pt := range hashedPieceTypes {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[ci][pt][sq] = rng.next()
			}
		}
	}

	// En passant keys (one per file)
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}

	// Castling keys (all 16 combinations)
	for i := 0; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}

	// Side to move key
	zobristSideToMove = rng.next()
}

// ComputeHash computes the Zobrist hash for the position from scratch.
// MakeMove and UnmakeMove keep the incremental hash equal to this value.
func (p *Position) ComputeHash() uint64 {
	var hash uint64

	for sq := A1; sq <= H8; sq++ {
		piece := p.squares[sq]
		if piece != NoPiece {
			hash ^= zobristPiece[piece.Color().Index()][piece.Type()][sq]
		}
	}

	if p.sideToMove == Black {
		hash ^= zobristSideToMove
	}

	hash ^= zobristCastling[p.state.CastlingRights()]

	if file := p.state.EnPassantFile(); file >= 0 {
		hash ^= zobristEnPassant[file]
	}

	return hash
}

package board

// Move encodes a chess move in 16 bits:
// bits 0-5:   start square (0-63)
// bits 6-11:  target square (0-63)
// bits 12-15: flag
type Move uint16

// MoveFlag marks the special kinds of moves.
type MoveFlag uint8

const (
	FlagNone MoveFlag = iota
	FlagEnPassantCapture
	FlagCastling
	FlagPromoteToQueen
	FlagPromoteToKnight
	FlagPromoteToRook
	FlagPromoteToBishop
	FlagPawnTwoForward
)

const (
	startSquareMask  = 0b0000000000111111
	targetSquareMask = 0b0000111111000000
)

// NoMove represents an invalid or null move. It is also the bit pattern of
// a1-a1, which never occurs as a real move.
const NoMove Move = 0

// NewMove creates a move without a flag.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewMoveWithFlag creates a move carrying a flag.
func NewMoveWithFlag(from, to Square, flag MoveFlag) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & startSquareMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m & targetSquareMask) >> 6)
}

// Flag returns the move flag.
func (m Move) Flag() MoveFlag {
	return MoveFlag(m >> 12)
}

// IsInvalid reports whether m is the NoMove sentinel.
func (m Move) IsInvalid() bool {
	return m == NoMove
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	switch m.Flag() {
	case FlagPromoteToQueen, FlagPromoteToKnight, FlagPromoteToRook, FlagPromoteToBishop:
		return true
	}
	return false
}

// PromotionPieceType returns the piece a pawn promotes to, or NoPieceType.
func (m Move) PromotionPieceType() PieceType {
	switch m.Flag() {
	case FlagPromoteToQueen:
		return Queen
	case FlagPromoteToKnight:
		return Knight
	case FlagPromoteToRook:
		return Rook
	case FlagPromoteToBishop:
		return Bishop
	default:
		return NoPieceType
	}
}

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool {
	return m.Flag() == FlagCastling
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassantCapture
}

// Name returns the move as "<start>-<target>", e.g. "e2-e4".
func (m Move) Name() string {
	return m.From().String() + "-" + m.To().String()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.PromotionPieceType().Char())
	}
	return s
}

// String returns the flag name.
func (f MoveFlag) String() string {
	switch f {
	case FlagNone:
		return "None"
	case FlagEnPassantCapture:
		return "EnPassantCapture"
	case FlagCastling:
		return "Castling"
	case FlagPromoteToQueen:
		return "PromoteToQueen"
	case FlagPromoteToKnight:
		return "PromoteToKnight"
	case FlagPromoteToRook:
		return "PromoteToRook"
	case FlagPromoteToBishop:
		return "PromoteToBishop"
	case FlagPawnTwoForward:
		return "PawnTwoForward"
	default:
		return "Unknown"
	}
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	State    GameState
	Captured Piece
	Hash     uint64
}

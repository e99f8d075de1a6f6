package board

// Color represents the color of a piece or player. The values are the
// color bits of a Piece, so a Piece can be tested against a Color with a
// single mask.
type Color uint8

const (
	NoColor Color = 0
	White   Color = 8
	Black   Color = 16
)

// Color indices used for per-color arrays.
const (
	WhiteIndex = 0
	BlackIndex = 1
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ (White | Black)
}

// Index returns 0 for White and 1 for Black.
func (c Color) Index() int {
	return int(c>>4) & 1
}

// ColorFromIndex is the inverse of Color.Index.
func ColorFromIndex(i int) Color {
	if i == WhiteIndex {
		return White
	}
	return Black
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the type of a chess piece.
//
// Sliding pieces have bit 2 set; rook and queen share 0b110 and bishop and
// queen share 0b101.
type PieceType uint8

const (
	NoPieceType PieceType = 0
	King        PieceType = 1
	Pawn        PieceType = 2
	Knight      PieceType = 3
	Bishop      PieceType = 5
	Rook        PieceType = 6
	Queen       PieceType = 7
)

const (
	typeMask  = 0b00111
	colorMask = 0b11000
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the FEN character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	switch pt {
	case Pawn:
		return 'p'
	case Knight:
		return 'n'
	case Bishop:
		return 'b'
	case Rook:
		return 'r'
	case Queen:
		return 'q'
	case King:
		return 'k'
	default:
		return ' '
	}
}

// Piece combines PieceType and Color into a single value.
// Encoded as: pieceType | color. The zero value is an empty square.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhiteKing   Piece = Piece(King) | Piece(White)
	WhitePawn   Piece = Piece(Pawn) | Piece(White)
	WhiteKnight Piece = Piece(Knight) | Piece(White)
	WhiteBishop Piece = Piece(Bishop) | Piece(White)
	WhiteRook   Piece = Piece(Rook) | Piece(White)
	WhiteQueen  Piece = Piece(Queen) | Piece(White)
	BlackKing   Piece = Piece(King) | Piece(Black)
	BlackPawn   Piece = Piece(Pawn) | Piece(Black)
	BlackKnight Piece = Piece(Knight) | Piece(Black)
	BlackBishop Piece = Piece(Bishop) | Piece(Black)
	BlackRook   Piece = Piece(Rook) | Piece(Black)
	BlackQueen  Piece = Piece(Queen) | Piece(Black)
)

// NewPiece creates a Piece from PieceType and Color.
func NewPiece(pt PieceType, c Color) Piece {
	return Piece(pt) | Piece(c)
}

// Type returns the PieceType of the piece.
func (p Piece) Type() PieceType {
	return PieceType(p & typeMask)
}

// Color returns the Color of the piece, NoColor for an empty square.
func (p Piece) Color() Color {
	return Color(p & colorMask)
}

// IsColor reports whether the piece belongs to c. An empty square matches
// no color.
func (p Piece) IsColor(c Color) bool {
	return Color(p&colorMask) == c && c != NoColor
}

// IsRookOrQueen reports whether the piece moves orthogonally.
func (p Piece) IsRookOrQueen() bool {
	return p&0b110 == 0b110
}

// IsBishopOrQueen reports whether the piece moves diagonally.
func (p Piece) IsBishopOrQueen() bool {
	return p&0b101 == 0b101
}

// IsSliding reports whether the piece is a bishop, rook or queen.
func (p Piece) IsSliding() bool {
	return p&0b100 != 0
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	if p == NoPiece {
		return " "
	}
	c := p.Type().Char()
	if p.Color() == White {
		c -= 'a' - 'A'
	}
	return string(c)
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

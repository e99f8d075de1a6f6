package board

import (
	"errors"
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	if c == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

// GameState packs the irreversible part of a position:
// bits 0-3:  castling rights
// bits 4-7:  en passant file + 1 (0 = none)
// bits 8-11: type of the piece captured by the last move
// bits 12+:  fifty move counter (half moves)
type GameState uint32

// NewGameState builds a state word. epFile is -1 when there is no en
// passant square.
func NewGameState(rights CastlingRights, epFile int, captured PieceType, fiftyMoveCounter int) GameState {
	return GameState(rights&AllCastling) |
		GameState(epFile+1)<<4 |
		GameState(captured)<<8 |
		GameState(fiftyMoveCounter)<<12
}

// CastlingRights returns the low nibble.
func (s GameState) CastlingRights() CastlingRights {
	return CastlingRights(s & 0xF)
}

// EnPassantFile returns the en passant file or -1.
func (s GameState) EnPassantFile() int {
	return int(s>>4&0xF) - 1
}

// CapturedPieceType returns the type captured by the move that led here.
func (s GameState) CapturedPieceType() PieceType {
	return PieceType(s >> 8 & 0xF)
}

// FiftyMoveCounter returns the number of half moves since the last capture
// or pawn move.
func (s GameState) FiftyMoveCounter() int {
	return int(s >> 12)
}

// PieceView is a read-only view of a PieceList.
type PieceView interface {
	Len() int
	At(i int) Square
}

// ErrInvalidPosition is returned by Validate.
var ErrInvalidPosition = errors.New("invalid position")

// Position represents a complete chess position: a square-indexed piece
// array, one PieceList per piece type and color, the king squares and the
// game state word.
type Position struct {
	squares [64]Piece

	// lists[pieceType][colorIndex]; the King entries stay empty, kings are
	// tracked in kingSquare.
	lists      [8][2]PieceList
	kingSquare [2]Square

	sideToMove     Color
	state          GameState
	fullMoveNumber int

	// Zobrist hash for transposition and cache keys
	hash uint64
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.squares[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.squares[sq] == NoPiece
}

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color {
	return p.sideToMove
}

// Opponent returns the color not to move.
func (p *Position) Opponent() Color {
	return p.sideToMove.Other()
}

// WhiteToMove reports whether White is to move.
func (p *Position) WhiteToMove() bool {
	return p.sideToMove == White
}

// KingSquare returns the king square of color c.
func (p *Position) KingSquare(c Color) Square {
	return p.kingSquare[c.Index()]
}

// State returns the game state word.
func (p *Position) State() GameState {
	return p.state
}

// CastlingRights returns the current castling rights.
func (p *Position) CastlingRights() CastlingRights {
	return p.state.CastlingRights()
}

// EnPassant returns the en passant target square or NoSquare.
func (p *Position) EnPassant() Square {
	file := p.state.EnPassantFile()
	if file < 0 {
		return NoSquare
	}
	if p.sideToMove == White {
		return NewSquare(file, 5)
	}
	return NewSquare(file, 2)
}

// FullMoveNumber returns the full move counter.
func (p *Position) FullMoveNumber() int {
	return p.fullMoveNumber
}

// Hash returns the Zobrist hash of the position.
func (p *Position) Hash() uint64 {
	return p.hash
}

// Pieces returns the squares of the given piece type and color. The view
// must not be retained across MakeMove/UnmakeMove.
func (p *Position) Pieces(pt PieceType, c Color) PieceView {
	return &p.lists[pt][c.Index()]
}

// placePiece puts piece on an empty square.
func (p *Position) placePiece(piece Piece, sq Square) {
	ci := piece.Color().Index()
	pt := piece.Type()

	p.squares[sq] = piece
	if pt == King {
		p.kingSquare[ci] = sq
	} else {
		p.lists[pt][ci].Add(sq)
	}
	p.hash ^= zobristPiece[ci][pt][sq]
}

// removePiece clears an occupied square and returns what was there.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.squares[sq]
	ci := piece.Color().Index()
	pt := piece.Type()

	p.squares[sq] = NoPiece
	if pt != King {
		p.lists[pt][ci].Remove(sq)
	}
	p.hash ^= zobristPiece[ci][pt][sq]
	return piece
}

// movePiece moves a piece to an empty square.
func (p *Position) movePiece(from, to Square) {
	piece := p.squares[from]
	ci := piece.Color().Index()
	pt := piece.Type()

	p.squares[to] = piece
	p.squares[from] = NoPiece
	if pt == King {
		p.kingSquare[ci] = to
	} else {
		p.lists[pt][ci].Move(from, to)
	}
	p.hash ^= zobristPiece[ci][pt][from] ^ zobristPiece[ci][pt][to]
}

// castlingMask lists the rights lost when a piece leaves or lands on a square.
var castlingMask = func() (m [64]CastlingRights) {
	m[A1] = WhiteQueenSideCastle
	m[H1] = WhiteKingSideCastle
	m[E1] = WhiteKingSideCastle | WhiteQueenSideCastle
	m[A8] = BlackQueenSideCastle
	m[H8] = BlackKingSideCastle
	m[E8] = BlackKingSideCastle | BlackQueenSideCastle
	return m
}()

// enPassantVictim returns the square of the pawn captured en passant by a
// pawn of color us landing on to.
func enPassantVictim(to Square, us Color) Square {
	if us == White {
		return to - 8
	}
	return to + 8
}

// castlingRookSquares returns the rook's origin and destination for a
// castling king landing on kingTo.
func castlingRookSquares(kingTo Square) (Square, Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}

// MakeMove applies a legal move and returns the information needed to undo
// it.
func (p *Position) MakeMove(m Move) UndoInfo {
	us := p.sideToMove
	from, to, flag := m.From(), m.To(), m.Flag()
	moving := p.squares[from]

	undo := UndoInfo{
		State:    p.state,
		Captured: p.squares[to],
		Hash:     p.hash,
	}

	rights := p.state.CastlingRights()
	p.hash ^= zobristCastling[rights]
	if file := p.state.EnPassantFile(); file >= 0 {
		p.hash ^= zobristEnPassant[file]
	}

	// Handle captures
	if flag == FlagEnPassantCapture {
		undo.Captured = p.removePiece(enPassantVictim(to, us))
	} else if undo.Captured != NoPiece {
		p.removePiece(to)
	}

	p.movePiece(from, to)

	if m.IsPromotion() {
		p.removePiece(to)
		p.placePiece(NewPiece(m.PromotionPieceType(), us), to)
	}

	if flag == FlagCastling {
		rookFrom, rookTo := castlingRookSquares(to)
		p.movePiece(rookFrom, rookTo)
	}

	rights &^= castlingMask[from] | castlingMask[to]

	epFile := -1
	if flag == FlagPawnTwoForward {
		epFile = from.File()
		p.hash ^= zobristEnPassant[epFile]
	}
	p.hash ^= zobristCastling[rights]

	fifty := p.state.FiftyMoveCounter() + 1
	if moving.Type() == Pawn || undo.Captured != NoPiece {
		fifty = 0
	}
	p.state = NewGameState(rights, epFile, undo.Captured.Type(), fifty)

	if us == Black {
		p.fullMoveNumber++
	}
	p.sideToMove = us.Other()
	p.hash ^= zobristSideToMove

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	us := p.sideToMove.Other()
	from, to, flag := m.From(), m.To(), m.Flag()

	if flag == FlagCastling {
		rookFrom, rookTo := castlingRookSquares(to)
		p.movePiece(rookTo, rookFrom)
	}

	if m.IsPromotion() {
		p.removePiece(to)
		p.placePiece(NewPiece(Pawn, us), to)
	}

	p.movePiece(to, from)

	if flag == FlagEnPassantCapture {
		p.placePiece(undo.Captured, enPassantVictim(to, us))
	} else if undo.Captured != NoPiece {
		p.placePiece(undo.Captured, to)
	}

	if us == Black {
		p.fullMoveNumber--
	}
	p.sideToMove = us
	p.state = undo.State
	p.hash = undo.Hash
}

var (
	orthogonalSteps = [4][2]int{{0, 1}, {0, -1}, {-1, 0}, {1, 0}}
	diagonalSteps   = [4][2]int{{-1, 1}, {1, -1}, {1, 1}, {-1, -1}}
	knightJumps     = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// IsSquareAttacked returns true if the square is attacked by the given color.
// It walks the board directly and does not depend on any precomputed table,
// so tests can use it to cross-check the generator.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	file, rank := sq.File(), sq.Rank()

	// Pawns attack towards the opponent, so look one rank back from sq.
	pawnRank := rank - 1
	if by == Black {
		pawnRank = rank + 1
	}
	for _, df := range [2]int{-1, 1} {
		if onBoard(file+df, pawnRank) && p.squares[NewSquare(file+df, pawnRank)] == NewPiece(Pawn, by) {
			return true
		}
	}

	for _, j := range knightJumps {
		if onBoard(file+j[0], rank+j[1]) && p.squares[NewSquare(file+j[0], rank+j[1])] == NewPiece(Knight, by) {
			return true
		}
	}

	if p.slidingAttack(file, rank, by, orthogonalSteps, Piece.IsRookOrQueen) ||
		p.slidingAttack(file, rank, by, diagonalSteps, Piece.IsBishopOrQueen) {
		return true
	}

	enemyKing := p.kingSquare[by.Index()]
	if enemyKing == NoSquare {
		return false
	}
	df, dr := enemyKing.File()-file, enemyKing.Rank()-rank
	return df >= -1 && df <= 1 && dr >= -1 && dr <= 1 && (df != 0 || dr != 0)
}

func (p *Position) slidingAttack(file, rank int, by Color, steps [4][2]int, canAttack func(Piece) bool) bool {
	for _, s := range steps {
		f, r := file+s[0], rank+s[1]
		for onBoard(f, r) {
			piece := p.squares[NewSquare(f, r)]
			if piece != NoPiece {
				if piece.IsColor(by) && canAttack(piece) {
					return true
				}
				break
			}
			f += s[0]
			r += s[1]
		}
	}
	return false
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsSquareAttacked(p.KingSquare(p.sideToMove), p.sideToMove.Other())
}

// Validate checks that the position is one the move generator accepts.
func (p *Position) Validate() error {
	var kings [2]int
	for sq := A1; sq <= H8; sq++ {
		piece := p.squares[sq]
		if piece.Type() == King {
			kings[piece.Color().Index()]++
		}
		if piece.Type() == Pawn && (sq.Rank() == 0 || sq.Rank() == 7) {
			return fmt.Errorf("%w: pawn on %s", ErrInvalidPosition, sq)
		}
	}
	if kings[WhiteIndex] != 1 {
		return fmt.Errorf("%w: white must have exactly one king", ErrInvalidPosition)
	}
	if kings[BlackIndex] != 1 {
		return fmt.Errorf("%w: black must have exactly one king", ErrInvalidPosition)
	}

	them := p.sideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare(them), p.sideToMove) {
		return fmt.Errorf("%w: side not to move is in check", ErrInvalidPosition)
	}
	return nil
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.sideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights())
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant())
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.state.FiftyMoveCounter())
	fmt.Fprintf(&sb, "Full move: %d\n", p.fullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.hash)
	return sb.String()
}

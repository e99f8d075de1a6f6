package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every ParseFEN error.
var ErrInvalidFEN = errors.New("invalid FEN")

// ParseFEN parses a FEN string and returns a Position.
//
// Castling rights whose king or rook is not on its home square are dropped,
// as is an en passant square with no pawn behind it that could have made the
// double push. The resulting position must pass Validate.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	pos := &Position{fullMoveNumber: 1}
	pos.kingSquare[WhiteIndex] = NoSquare
	pos.kingSquare[BlackIndex] = NoSquare

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.sideToMove = White
	case "b":
		pos.sideToMove = Black
	default:
		return nil, fmt.Errorf("%w: invalid side to move: %s", ErrInvalidFEN, parts[1])
	}

	// Parse castling rights (field 2)
	rights, err := parseCastlingRights(parts[2])
	if err != nil {
		return nil, err
	}
	rights = pos.sanitizeCastlingRights(rights)

	// Parse en passant square (field 3)
	epFile := -1
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid en passant square: %s", ErrInvalidFEN, parts[3])
		}
		wantRank := 5
		if pos.sideToMove == Black {
			wantRank = 2
		}
		if sq.Rank() != wantRank {
			return nil, fmt.Errorf("%w: en passant square %s on wrong rank", ErrInvalidFEN, sq)
		}
		them := pos.sideToMove.Other()
		if pos.squares[enPassantVictim(sq, pos.sideToMove)] == NewPiece(Pawn, them) && pos.squares[sq] == NoPiece {
			epFile = sq.File()
		}
	}

	// Parse half-move clock (field 4, optional)
	halfMoves := 0
	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, fmt.Errorf("%w: invalid half-move clock: %s", ErrInvalidFEN, parts[4])
		}
		halfMoves = hmc
	}

	// Parse full-move number (field 5, optional)
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, fmt.Errorf("%w: invalid full-move number: %s", ErrInvalidFEN, parts[5])
		}
		pos.fullMoveNumber = fmn
	}

	pos.state = NewGameState(rights, epFile, NoPieceType, halfMoves)

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFEN, err)
	}

	pos.hash = pos.ComputeHash()
	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				// Skip empty squares
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("%w: invalid piece character: %c", ErrInvalidFEN, c)
			}
			if piece.Type() == King && pos.kingSquare[piece.Color().Index()] != NoSquare {
				return fmt.Errorf("%w: more than one %s king", ErrInvalidFEN, piece.Color())
			}
			if piece.Type() != King && pos.lists[piece.Type()][piece.Color().Index()].Len() == maxPieceCount {
				return fmt.Errorf("%w: too many %s pieces", ErrInvalidFEN, piece)
			}
			pos.placePiece(piece, NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: invalid number of squares in rank %d: got %d", ErrInvalidFEN, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return NoCastling, nil
	}

	var rights CastlingRights
	for _, c := range castling {
		switch c {
		case 'K':
			rights |= WhiteKingSideCastle
		case 'Q':
			rights |= WhiteQueenSideCastle
		case 'k':
			rights |= BlackKingSideCastle
		case 'q':
			rights |= BlackQueenSideCastle
		default:
			return NoCastling, fmt.Errorf("%w: invalid castling character: %c", ErrInvalidFEN, c)
		}
	}

	return rights, nil
}

// sanitizeCastlingRights keeps only the rights whose king and rook stand on
// their original squares.
func (p *Position) sanitizeCastlingRights(rights CastlingRights) CastlingRights {
	if p.squares[E1] != WhiteKing {
		rights &^= WhiteKingSideCastle | WhiteQueenSideCastle
	}
	if p.squares[H1] != WhiteRook {
		rights &^= WhiteKingSideCastle
	}
	if p.squares[A1] != WhiteRook {
		rights &^= WhiteQueenSideCastle
	}
	if p.squares[E8] != BlackKing {
		rights &^= BlackKingSideCastle | BlackQueenSideCastle
	}
	if p.squares[H8] != BlackRook {
		rights &^= BlackKingSideCastle
	}
	if p.squares[A8] != BlackRook {
		rights &^= BlackQueenSideCastle
	}
	return rights
}

// FEN returns the FEN representation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights().String())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant().String())

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.state.FiftyMoveCounter()))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullMoveNumber))

	return sb.String()
}

// Package board implements the chess board representation shared by the
// move generator: squares, bit-packed pieces, piece lists, the 16-bit move
// encoding and a reference Position that applies and undoes moves.
package board

import "fmt"

// Square represents a square on the chess board (0-63).
// Uses Little-Endian Rank-File Mapping: A1=0, H1=7, A8=56, H8=63.
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

const (
	fileNames = "abcdefgh"
	rankNames = "12345678"
)

// Coord is a (file, rank) pair, both 0-7.
type Coord struct {
	File int
	Rank int
}

// Square converts the coordinate back to its linear index.
func (c Coord) Square() Square {
	return NewSquare(c.File, c.Rank)
}

// IsLightSquare reports whether the coordinate is a light square.
func (c Coord) IsLightSquare() bool {
	return IsLightSquare(c.File, c.Rank)
}

// String returns the square name for the coordinate.
func (c Coord) String() string {
	return SquareName(c.File, c.Rank)
}

// File returns the file (column) of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank (row) of the square (0-7, where 0=1, 7=8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// Coord returns the file and rank of the square.
func (sq Square) Coord() Coord {
	return Coord{File: sq.File(), Rank: sq.Rank()}
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return SquareName(sq.File(), sq.Rank())
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// SquareName returns the name of the square at file, rank (e.g. "a1").
func SquareName(file, rank int) string {
	return string([]byte{fileNames[file], rankNames[rank]})
}

// IsLightSquare reports whether file, rank is a light square.
// a1 is dark, so a square is light when file+rank is odd.
func IsLightSquare(file, rank int) bool {
	return (file+rank)%2 != 0
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}

	return NewSquare(file, rank), nil
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// RelativeRank returns the rank from a given color's perspective.
// For White, rank 0 is the 1st rank; for Black, rank 0 is the 8th rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

package board

// maxPieceCount bounds a single list. Ten rooks (two plus eight promoted
// pawns) is the most any legal position can hold.
const maxPieceCount = 16

// PieceList tracks the squares occupied by one piece type of one color.
//
// Squares are kept densely in occupied[:count]; index maps a square back to
// its slot. index is only meaningful for squares currently in the list.
type PieceList struct {
	occupied [maxPieceCount]Square
	index    [64]uint8
	count    int
}

// Len returns the number of pieces in the list.
func (pl *PieceList) Len() int {
	return pl.count
}

// At returns the i-th occupied square. The order is insertion order as
// disturbed by removals and is not stable.
func (pl *PieceList) At(i int) Square {
	return pl.occupied[i]
}

// Add appends sq to the list.
func (pl *PieceList) Add(sq Square) {
	pl.occupied[pl.count] = sq
	pl.index[sq] = uint8(pl.count)
	pl.count++
}

// Remove deletes sq by moving the last entry into its slot.
// sq must be present.
func (pl *PieceList) Remove(sq Square) {
	i := pl.index[sq]
	last := pl.occupied[pl.count-1]
	pl.occupied[i] = last
	pl.index[last] = i
	pl.count--
}

// Move relocates the piece on from to to, keeping its slot.
// from must be present.
func (pl *PieceList) Move(from, to Square) {
	i := pl.index[from]
	pl.occupied[i] = to
	pl.index[to] = i
}

// Contains reports whether sq is in the list.
func (pl *PieceList) Contains(sq Square) bool {
	i := int(pl.index[sq])
	return i < pl.count && pl.occupied[i] == sq
}

// Squares returns a copy of the occupied squares.
func (pl *PieceList) Squares() []Square {
	squares := make([]Square, pl.count)
	copy(squares, pl.occupied[:pl.count])
	return squares
}

// Clear empties the list.
func (pl *PieceList) Clear() {
	pl.count = 0
}

package movegen

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/movegen/internal/board"
)

const (
	kiwipeteFEN   = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	epDiscoverFEN = "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1"
)

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	require.NoError(t, err, fen)
	return pos
}

func moveStrings(moves []board.Move) []string {
	return lo.Map(moves, func(m board.Move, _ int) string {
		return m.String()
	})
}

func TestStartingPositionMoves(t *testing.T) {
	pos := mustParse(t, board.StartFEN)
	res := Generate(pos, Config{})

	require.Len(t, res.Moves, 20)
	assert.Equal(t, MaxMoves, cap(res.Moves))
	assert.False(t, res.InCheck)
	assert.Equal(t, []string{"b1a3", "b1c3", "g1f3", "g1h3"}, moveStrings(res.Moves[:4]))

	var rank6 board.Bitboard
	for file := 0; file < 8; file++ {
		rank6 = rank6.Set(board.NewSquare(file, 5))
	}
	assert.Equal(t, rank6, res.Attacks.Pawns)
	assert.True(t, res.Attacks.NoPawns.IsSet(board.A6))
	assert.Equal(t, board.Empty, res.Attacks.CheckRay)
	assert.Equal(t, board.Empty, res.Attacks.PinRay)
}

func TestKingMovesFirst(t *testing.T) {
	pos := mustParse(t, kiwipeteFEN)
	moves := Generate(pos, Config{}).Moves

	require.NotEmpty(t, moves)
	assert.Equal(t, board.E1, moves[0].From())

	var castles []string
	for _, m := range moves {
		if m.IsCastling() {
			castles = append(castles, m.String())
		}
	}
	assert.ElementsMatch(t, []string{"e1g1", "e1c1"}, castles)
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	pos := mustParse(t, "4r2k/8/8/8/8/3n4/R7/4K3 w - - 0 1")
	res := Generate(pos, Config{})

	assert.True(t, res.InCheck)
	assert.True(t, res.InDoubleCheck)
	for _, m := range res.Moves {
		assert.Equal(t, board.E1, m.From(), m.String())
	}
	assert.ElementsMatch(t, []string{"e1d1", "e1d2", "e1f1"}, moveStrings(res.Moves))
}

func TestSingleCheckResponses(t *testing.T) {
	// Rook check on the e-file: block with the bishop, capture with the
	// knight or step aside.
	pos := mustParse(t, "4r2k/8/8/8/8/5N2/2B5/4K3 w - - 0 1")
	res := Generate(pos, Config{})

	require.True(t, res.InCheck)
	assert.False(t, res.InDoubleCheck)
	for _, m := range res.Moves {
		if m.From() == board.E1 {
			continue
		}
		assert.True(t, res.Attacks.CheckRay.IsSet(m.To()), "%s does not answer the check", m)
	}
	assert.Contains(t, moveStrings(res.Moves), "c2e4")
	assert.Contains(t, moveStrings(res.Moves), "f3e5")
	assert.NotContains(t, moveStrings(res.Moves), "f3g5")
}

func TestPinRestriction(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		piece   board.Square
		targets []string
	}{
		{"rook on file", "4k3/4r3/8/8/8/8/4R3/4K3 w - - 0 1", board.E2, []string{"e2e3", "e2e4", "e2e5", "e2e6", "e2e7"}},
		{"bishop on diagonal", "4k3/8/8/b7/8/2B5/8/4K3 w - - 0 1", board.C3, []string{"c3d2", "c3b4", "c3a5"}},
		{"rook on diagonal", "4k3/8/8/b7/8/2R5/8/4K3 w - - 0 1", board.C3, nil},
		{"knight", "4k3/8/8/b7/8/2N5/8/4K3 w - - 0 1", board.C3, nil},
		{"queen on rank", "7k/8/8/8/8/8/8/r2QK3 w - - 0 1", board.D1, []string{"d1c1", "d1b1", "d1a1"}},
		{"pawn push on file", "4k3/4r3/8/8/8/8/4P3/4K3 w - - 0 1", board.E2, []string{"e2e3", "e2e4"}},
		{"pawn capture on diagonal", "4k3/8/8/8/b7/1P6/8/3K4 w - - 0 1", board.B3, []string{"b3a4"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			res := Generate(pos, Config{})

			assert.True(t, res.Attacks.PinRay.IsSet(tc.piece))
			got := moveStrings(lo.Filter(res.Moves, func(m board.Move, _ int) bool {
				return m.From() == tc.piece
			}))
			assert.ElementsMatch(t, tc.targets, got)
		})
	}
}

func TestEnPassantDiscoveredCheck(t *testing.T) {
	pos := mustParse(t, epDiscoverFEN)
	before := *pos

	res := Generate(pos, Config{})
	assert.NotContains(t, moveStrings(res.Moves), "e4d3")
	assert.Len(t, res.Moves, 6)
	assert.Equal(t, before, *pos)
	assert.Equal(t, epDiscoverFEN, pos.FEN())
}

func TestEnPassant(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want bool
	}{
		{"plain capture", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5d6", true},
		{"captures the checking pawn", "8/8/8/2k5/3Pp3/8/8/4K3 b - d3 0 1", "e4d3", true},
		{"pinned on diagonal", "7k/8/8/8/3pP3/8/8/B3K3 b - e3 0 1", "d4e3", false},
		{"capturing pawn pinned on file", "4r1k1/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5d6", false},
		{"uncovers queen on rank", "8/8/8/K2pP2q/8/8/8/7k w - d6 0 1", "e5d6", false},
		{"does not answer rook check", "4k3/8/8/3pP3/8/8/8/r3K3 w - d6 0 1", "e5d6", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			res := Generate(pos, Config{})
			m, ok := lo.Find(res.Moves, func(m board.Move) bool {
				return m.String() == tc.move
			})
			require.Equal(t, tc.want, ok)
			if ok {
				assert.Equal(t, board.FlagEnPassantCapture, m.Flag())
			}
			assert.Equal(t, tc.fen, pos.FEN())
		})
	}
}

func TestPromotionModes(t *testing.T) {
	tests := []struct {
		fen     string
		mode    PromotionMode
		targets int
		want    int
	}{
		{"8/P6k/8/8/8/8/8/K7 w - - 0 1", PromoteAll, 1, 4},
		{"8/P6k/8/8/8/8/8/K7 w - - 0 1", PromoteQueenOnly, 1, 1},
		{"8/P6k/8/8/8/8/8/K7 w - - 0 1", PromoteQueenAndKnight, 1, 2},
		{"1n5k/P7/8/8/8/8/8/7K w - - 0 1", PromoteAll, 2, 8},
		{"1n5k/P7/8/8/8/8/8/7K w - - 0 1", PromoteQueenOnly, 2, 2},
		{"1n5k/P7/8/8/8/8/8/7K w - - 0 1", PromoteQueenAndKnight, 2, 4},
		{"k7/8/8/8/8/8/p7/7K b - - 0 1", PromoteAll, 1, 4},
	}

	for _, tc := range tests {
		t.Run(tc.fen+"/"+tc.mode.String(), func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			moves := Generate(pos, Config{Promotions: tc.mode}).Moves

			promos := lo.Filter(moves, func(m board.Move, _ int) bool {
				return m.IsPromotion()
			})
			assert.Len(t, promos, tc.want)

			byTarget := lo.GroupBy(promos, func(m board.Move) board.Square {
				return m.To()
			})
			assert.Len(t, byTarget, tc.targets)
			for _, group := range byTarget {
				assert.Equal(t, tc.want/tc.targets, len(group))
				assert.Equal(t, board.FlagPromoteToQueen, group[0].Flag())
			}
		})
	}
}

func TestExcludeQuiet(t *testing.T) {
	fens := []string{
		board.StartFEN,
		kiwipeteFEN,
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
		"8/P6k/8/8/8/8/8/K7 w - - 0 1",
	}

	for _, fen := range fens {
		pos := mustParse(t, fen)
		all := moveStrings(Generate(pos, Config{}).Moves)
		loud := Generate(pos, Config{ExcludeQuiet: true}).Moves

		for _, m := range loud {
			isCapture := pos.PieceAt(m.To()).IsColor(pos.Opponent()) || m.IsEnPassant()
			assert.True(t, isCapture || m.IsPromotion(), "%s: quiet move %s", fen, m)
			assert.Contains(t, all, m.String())
		}
	}

	pos := mustParse(t, board.StartFEN)
	assert.Empty(t, Generate(pos, Config{ExcludeQuiet: true}).Moves)
}

func TestCastling(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want []string
	}{
		{"both sides", "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", []string{"e1g1", "e1c1"}},
		{"transit square attacked", "4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1", []string{"e1c1"}},
		{"landing square attacked", "4k1r1/8/8/8/8/8/8/R3K2R w KQ - 0 1", []string{"e1c1"}},
		{"rook path attacked only", "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", []string{"e1g1", "e1c1"}},
		{"queen side blocked", "4k3/8/8/8/8/8/8/RN2K2R w KQ - 0 1", []string{"e1g1"}},
		{"in check", "4k3/8/8/8/8/8/4r3/R3K2R w KQ - 0 1", nil},
		{"no rights", "4k3/8/8/8/8/8/8/R3K2R w - - 0 1", nil},
		{"black", "r3k2r/8/8/8/8/8/8/4K3 b kq - 0 1", []string{"e8g8", "e8c8"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			castles := lo.Filter(Generate(pos, Config{}).Moves, func(m board.Move, _ int) bool {
				return m.IsCastling()
			})
			assert.ElementsMatch(t, tc.want, moveStrings(castles))
		})
	}
}

func TestGeneratedMovesAreSafe(t *testing.T) {
	fens := []string{
		board.StartFEN,
		kiwipeteFEN,
		epDiscoverFEN,
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	gen := New()
	for _, fen := range fens {
		pos := mustParse(t, fen)
		for _, m := range gen.GenerateMoves(pos, true) {
			us := pos.SideToMove()
			undo := pos.MakeMove(m)
			assert.False(t, pos.IsSquareAttacked(pos.KingSquare(us), pos.SideToMove()), "%s: %s leaves king attacked", fen, m)

			for _, reply := range gen.GenerateMoves(pos, true) {
				them := pos.SideToMove()
				replyUndo := pos.MakeMove(reply)
				assert.False(t, pos.IsSquareAttacked(pos.KingSquare(them), pos.SideToMove()), "%s: %s %s leaves king attacked", fen, m, reply)
				pos.UnmakeMove(reply, replyUndo)
			}
			pos.UnmakeMove(m, undo)
		}
		assert.Equal(t, fen, pos.FEN())
	}
}

func TestGeneratorInCheck(t *testing.T) {
	gen := New(WithPromotionMode(PromoteQueenOnly))
	assert.Equal(t, PromoteQueenOnly, gen.PromotionMode())
	assert.Same(t, DefaultTables(), gen.Tables())

	gen.GenerateMoves(mustParse(t, "4r2k/8/8/8/8/8/8/4K3 w - - 0 1"), true)
	assert.True(t, gen.InCheck())
	assert.True(t, gen.Attacks().CheckRay.IsSet(board.E8))

	gen.GenerateMoves(mustParse(t, board.StartFEN), false)
	assert.False(t, gen.InCheck())
}

func TestGenerateWithCustomTables(t *testing.T) {
	tables := NewTables()
	gen := New(WithTables(tables))
	assert.Same(t, tables, gen.Tables())
	assert.Len(t, gen.GenerateMoves(mustParse(t, kiwipeteFEN), true), 48)
}

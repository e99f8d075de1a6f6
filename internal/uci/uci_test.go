package uci

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, script string, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	u := New(strings.NewReader(script), &out, opts...)
	require.NoError(t, u.Run(context.Background()))
	return out.String()
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestHandshake(t *testing.T) {
	out := run(t, "uci\nisready\nquit\nisready\n")

	assert.Contains(t, out, "id name movegen\n")
	assert.Contains(t, out, "uciok\n")
	assert.Equal(t, 1, strings.Count(out, "readyok"), "commands after quit must be ignored")
}

func TestPositionAndMoves(t *testing.T) {
	out := run(t, "position startpos\nmoves\nposition startpos moves e2e4 e7e5 g1f3\nmoves\n")

	got := lines(out)
	require.Len(t, got, 2)
	assert.Len(t, strings.Fields(got[0]), 20)
	assert.Contains(t, strings.Fields(got[0]), "g1f3")
	assert.Contains(t, strings.Fields(got[1]), "b8c6")
}

func TestPositionFEN(t *testing.T) {
	out := run(t, "position fen 4k3/P7/8/8/8/8/8/4K3 w - - 0 1\nmoves\nd\n")

	assert.Len(t, strings.Fields(lines(out)[0]), 9)
	assert.Contains(t, out, "Fen: 4k3/P7/8/8/8/8/8/4K3 w - - 0 1\n")
}

func TestInvalidPositionKeepsCurrent(t *testing.T) {
	out := run(t, strings.Join([]string{
		"position startpos moves e2e4",
		"position fen not/a/fen w - - 0 1",
		"position startpos moves e2e4 e2e4",
		"position nowhere",
		"position",
		"d",
	}, "\n"))

	assert.Contains(t, out, "info string Invalid FEN")
	assert.Contains(t, out, "info string Invalid move: e2e4\n")
	assert.Contains(t, out, "info string Unknown position type: nowhere\n")
	assert.Contains(t, out, "info string Missing position arguments\n")
	assert.Contains(t, out, "Fen: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1\n")
}

func TestPositionMovesOnly(t *testing.T) {
	out := run(t, "position startpos moves e2e4\nposition moves d2d4\nisready\nd\n")

	assert.Contains(t, out, "info string Missing position arguments\n")
	assert.Contains(t, out, "readyok\n")
	assert.Contains(t, out, "Fen: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1\n")
}

func TestGoPerft(t *testing.T) {
	out := run(t, "position startpos\ngo perft 2\n", WithWorkers(3))

	got := lines(out)
	require.Len(t, got, 22)
	assert.Equal(t, "a2a3: 20", got[0])
	assert.Contains(t, got, "e2e4: 20")
	assert.Equal(t, "", got[20])
	assert.Equal(t, "Nodes searched: 400", got[21])
}

func TestGoPerftWithHash(t *testing.T) {
	script := "setoption name Hash value 1\nposition fen r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1\ngo perft 3\ngo perft 3\n"
	out := run(t, script, WithWorkers(2))

	assert.Equal(t, 2, strings.Count(out, "Nodes searched: 97862\n"))
}

func TestPerftErrors(t *testing.T) {
	out := run(t, "go perft x\nperft 0\ngo depth 5\n")

	assert.Contains(t, out, "info string Invalid perft depth: x\n")
	assert.Contains(t, out, "info string Invalid perft depth: 0\n")
	assert.Contains(t, out, "info string Only 'go perft <depth>' is supported\n")
}

func TestDisplayCheckmate(t *testing.T) {
	out := run(t, "position startpos moves f2f3 e7e5 g2g4 d8h4\nd\n")

	assert.Contains(t, out, "Checkers: h4\n")
	assert.Contains(t, out, "Legal moves: 0\n")
	assert.Contains(t, out, "Status: checkmate\n")
}

func TestDisplayRepetitions(t *testing.T) {
	out := run(t, "position startpos moves g1f3 g8f6 f3g1 f6g8\nd\nucinewgame\nd\n")

	assert.Contains(t, out, "Repetitions: 1\n")
	assert.Contains(t, out, "Repetitions: 0\n")
	assert.Contains(t, out, "Status: ongoing\n")
}

func TestSetOption(t *testing.T) {
	out := run(t, strings.Join([]string{
		"setoption name Promotions value queen",
		"position fen 4k3/P7/8/8/8/8/8/4K3 w - - 0 1",
		"moves",
		"setoption name Promotions value rook",
		"setoption name Threads value -2",
		"setoption name Ponder value true",
		"setoption name Hash value big",
		"setoption Threads",
	}, "\n"))

	got := lines(out)
	assert.Len(t, strings.Fields(got[0]), 6)
	assert.Contains(t, out, "info string Invalid thread count: -2\n")
	assert.Contains(t, out, "info string Unknown option: ponder\n")
	assert.Contains(t, out, "info string Invalid hash size: big\n")
	assert.Contains(t, out, "info string Usage: setoption name <name> value <value>\n")
	assert.Len(t, got, 6)
}

func TestUnknownCommand(t *testing.T) {
	out := run(t, "\n  \nfoo bar\nstop\n")
	assert.Equal(t, "info string Unknown command: foo\n", out)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(strings.NewReader("isready\n"), &out).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

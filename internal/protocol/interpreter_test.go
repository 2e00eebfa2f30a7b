package protocol

import (
	"context"
	"errors"
	"strings"
	"testing"

	chess "github.com/corentings/chess/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	corechess "github.com/park285/chessbro/internal/chess"
	"github.com/park285/chessbro/internal/metrics"
)

var testIdentity = Identity{Name: "ChessBro", Author: "ChessBro Team"}

func newTestInterpreter(t *testing.T, dialect string) *Interpreter {
	t.Helper()
	vocab, err := LookupDialect(dialect)
	if err != nil {
		t.Fatalf("LookupDialect: %v", err)
	}
	return NewInterpreter(NewSession(), vocab, testIdentity, nil)
}

func legalSet(pos *chess.Position) map[string]bool {
	set := make(map[string]bool)
	for _, mv := range pos.ValidMoves() {
		set[mv.String()] = true
	}
	return set
}

func expectLines(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %q", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestHandshake(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	ctx := context.Background()
	adv := corechess.NewRandomAdvisor(1)

	expectLines(t, in.Handle(ctx, "handshake", adv), "id name ChessBro", "id author ChessBro Team", "handshakeok")

	in.Handle(ctx, "position startpos moves e2e4", adv)
	in.Handle(ctx, "position garbage", adv)
	expectLines(t, in.Handle(ctx, "handshake", adv), "id name ChessBro", "id author ChessBro Team", "handshakeok")
}

func TestUCIDialect(t *testing.T) {
	in := newTestInterpreter(t, DialectUCI)
	ctx := context.Background()
	adv := corechess.NewRandomAdvisor(1)

	expectLines(t, in.Handle(ctx, "uci", adv), "id name ChessBro", "id author ChessBro Team", "uciok")
	expectLines(t, in.Handle(ctx, "isready", adv), "readyok")

	in.Handle(ctx, "position startpos moves e2e4", adv)
	expectLines(t, in.Handle(ctx, "ucinewgame", adv))
	if in.Session().Position().String() != StartingPosition().String() {
		t.Fatalf("ucinewgame did not reset the position")
	}
	expectLines(t, in.Handle(ctx, "handshake", adv))
}

func TestReadyAfterFailedPosition(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	ctx := context.Background()
	adv := corechess.NewRandomAdvisor(1)

	expectLines(t, in.Handle(ctx, "position startpos moves e2e5", adv))
	expectLines(t, in.Handle(ctx, "readinesscheck", adv), "readyok")
}

func TestRejectedPositionLeavesSessionUnchanged(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	ctx := context.Background()
	adv := corechess.NewRandomAdvisor(7)

	in.Handle(ctx, "position startpos moves e2e4 c7c5", adv)
	before := in.Session().Position().String()

	rejected := []string{
		"position startpos moves d2d4 d7d5 e1e5",
		"position startpos moves d2d4 xx",
		"position fen",
		"position fen moves e2e4",
		"position fen 8/8/8 w",
		"position",
		"position nowhere",
	}
	for _, line := range rejected {
		if out := in.Handle(ctx, line, adv); len(out) != 0 {
			t.Fatalf("%q produced protocol output %q", line, out)
		}
		if got := in.Session().Position().String(); got != before {
			t.Fatalf("%q changed the session: %s", line, got)
		}
	}

	out := in.Handle(ctx, "go", adv)
	if len(out) != 1 {
		t.Fatalf("go: got %q", out)
	}
	mv := strings.TrimPrefix(out[0], "bestmove ")
	if !legalSet(libraryPosition(t, "", []string{"e2e4", "c7c5"}))[mv] {
		t.Fatalf("bestmove %q is not legal after 1.e4 c5", mv)
	}
}

func TestRejectedPositionIsCounted(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	ctx := context.Background()

	counter := metrics.PositionRejections.WithLabelValues("invalid_move")
	before := testutil.ToFloat64(counter)
	in.Handle(ctx, "position startpos moves e2e5", corechess.NewRandomAdvisor(1))
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected one invalid_move rejection, got %v", got)
	}
}

func TestGoAfterOpeningMoves(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	ctx := context.Background()
	want := libraryPosition(t, "", []string{"e2e4", "e7e5"})
	legal := legalSet(want)

	for seed := int64(1); seed <= 20; seed++ {
		adv := corechess.NewRandomAdvisor(seed)
		in.Handle(ctx, "position startpos moves e2e4 e7e5", adv)
		if in.Session().Position().String() != want.String() {
			t.Fatalf("session does not reflect 1.e4 e5: %s", in.Session().Position())
		}
		out := in.Handle(ctx, "go", adv)
		if len(out) != 1 || !strings.HasPrefix(out[0], "bestmove ") {
			t.Fatalf("go: got %q", out)
		}
		if mv := strings.TrimPrefix(out[0], "bestmove "); !legal[mv] {
			t.Fatalf("seed %d: %q not in legal set", seed, mv)
		}
	}
}

func TestGoIgnoresSearchArguments(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	out := in.Handle(context.Background(), "go wtime 1000 btime 1000 depth 3", corechess.NewRandomAdvisor(3))
	if len(out) != 1 {
		t.Fatalf("go with arguments: got %q", out)
	}
}

func TestGoWithoutLegalMoves(t *testing.T) {
	cases := map[string]string{
		"checkmate": "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
		"stalemate": "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	}
	for name, fen := range cases {
		t.Run(name, func(t *testing.T) {
			in := newTestInterpreter(t, DialectDefault)
			ctx := context.Background()
			adv := corechess.NewRandomAdvisor(1)
			in.Handle(ctx, "position fen "+fen, adv)
			if in.Session().Position().String() == StartingPosition().String() {
				t.Fatalf("fen was not accepted")
			}
			expectLines(t, in.Handle(ctx, "go", adv))
		})
	}
}

func TestNewGameIsIdempotent(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	ctx := context.Background()
	adv := corechess.NewRandomAdvisor(1)
	start := StartingPosition().String()

	in.Handle(ctx, "position startpos moves g1f3 g8f6", adv)
	expectLines(t, in.Handle(ctx, "newgame", adv))
	once := in.Session().Position().String()
	expectLines(t, in.Handle(ctx, "newgame", adv))
	twice := in.Session().Position().String()
	if once != start || twice != start {
		t.Fatalf("newgame: once=%s twice=%s", once, twice)
	}
}

func TestIgnoredLines(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	ctx := context.Background()
	adv := corechess.NewRandomAdvisor(1)

	for _, line := range []string{"", "   ", "\t", "debug on", "HANDSHAKE", "setoption name Hash value 1", "stop"} {
		expectLines(t, in.Handle(ctx, line, adv))
	}
	if in.Done() {
		t.Fatalf("interpreter finished before quit")
	}
	expectLines(t, in.Handle(ctx, "quit", adv))
	if !in.Done() {
		t.Fatalf("quit did not finish the interpreter")
	}
}

func TestGoWithFailingAdvisor(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	failing := corechess.AdvisorFunc(func(context.Context, *chess.Position) (*chess.Move, error) {
		return nil, errors.New("engine crashed")
	})
	expectLines(t, in.Handle(context.Background(), "go", failing))
	expectLines(t, in.Handle(context.Background(), "go", nil))
}

func TestAdvisorDoesNotMutateSession(t *testing.T) {
	in := newTestInterpreter(t, DialectDefault)
	ctx := context.Background()
	adv := corechess.NewRandomAdvisor(11)

	in.Handle(ctx, "position startpos moves d2d4", adv)
	before := in.Session().Position().String()
	for i := 0; i < 5; i++ {
		in.Handle(ctx, "go", adv)
	}
	if in.Session().Position().String() != before {
		t.Fatalf("go changed the session position")
	}
}

func TestLookupDialect(t *testing.T) {
	if _, err := LookupDialect(""); err != nil {
		t.Fatalf("empty dialect: %v", err)
	}
	if v, err := LookupDialect(" UCI "); err != nil || v.Handshake != "uci" {
		t.Fatalf("uci dialect: %+v %v", v, err)
	}
	if _, err := LookupDialect("xboard"); err == nil {
		t.Fatalf("expected unknown dialect error")
	}
}

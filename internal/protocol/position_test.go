package protocol

import (
	"errors"
	"strings"
	"testing"

	chess "github.com/corentings/chess/v2"

	corechess "github.com/park285/chessbro/internal/chess"
)

// libraryPosition replays moves through the rules library's own game API.
func libraryPosition(t *testing.T, fen string, moves []string) *chess.Position {
	t.Helper()
	var game *chess.Game
	if fen == "" {
		game = chess.NewGame()
	} else {
		opt, err := chess.FEN(fen)
		if err != nil {
			t.Fatalf("library FEN(%q): %v", fen, err)
		}
		game = chess.NewGame(opt)
	}
	for _, mv := range moves {
		if err := game.PushNotationMove(mv, chess.UCINotation{}, nil); err != nil {
			t.Fatalf("library push %q: %v", mv, err)
		}
	}
	return game.Position()
}

func TestParsePositionMatchesLibrary(t *testing.T) {
	cases := [][]string{
		nil,
		{"e2e4"},
		{"e2e4", "e7e5"},
		{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1"},
		{"d2d4", "d7d5", "c2c4", "d5c4", "e2e3", "b7b5", "a2a4", "c7c6"},
		{"e2e4", "d7d5", "e4e5", "f7f5", "e5f6"},
	}
	for _, moves := range cases {
		args := []string{"startpos"}
		if len(moves) > 0 {
			args = append(args, "moves")
			args = append(args, moves...)
		}
		got, err := ParsePosition(args)
		if err != nil {
			t.Fatalf("ParsePosition(%v): %v", args, err)
		}
		want := libraryPosition(t, "", moves)
		if got.String() != want.String() {
			t.Fatalf("moves %v: got %s want %s", moves, got, want)
		}
	}
}

func TestParsePositionFEN(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	got, err := ParsePosition(append([]string{"fen"}, strings.Fields(fen)...))
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if got.String() != libraryPosition(t, fen, nil).String() {
		t.Fatalf("fen round trip mismatch: %s", got)
	}

	args := append([]string{"fen"}, strings.Fields(fen)...)
	args = append(args, "moves", "f1b5", "a7a6")
	got, err = ParsePosition(args)
	if err != nil {
		t.Fatalf("ParsePosition with moves: %v", err)
	}
	want := libraryPosition(t, fen, []string{"f1b5", "a7a6"})
	if got.String() != want.String() {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestParsePositionPromotion(t *testing.T) {
	base := []string{"fen", "8/P7/8/8/8/8/8/k6K", "w", "-", "-", "0", "1", "moves"}

	pos, err := ParsePosition(append(append([]string(nil), base...), "a7a8q"))
	if err != nil {
		t.Fatalf("a7a8q: %v", err)
	}
	if p := pos.Board().Piece(chess.A8); p != chess.WhiteQueen {
		t.Fatalf("expected white queen on a8, got %v", p)
	}

	pos, err = ParsePosition(append(append([]string(nil), base...), "a7a8n"))
	if err != nil {
		t.Fatalf("a7a8n: %v", err)
	}
	if p := pos.Board().Piece(chess.A8); p != chess.WhiteKnight {
		t.Fatalf("expected white knight on a8, got %v", p)
	}

	for _, token := range []string{"a7a8", "a7a8Q", "a7a8x", "a7a8k"} {
		_, err := ParsePosition(append(append([]string(nil), base...), token))
		var moveErr *corechess.InvalidMoveError
		if !errors.As(err, &moveErr) {
			t.Fatalf("%s: expected InvalidMoveError, got %v", token, err)
		}
		if moveErr.Token != token {
			t.Fatalf("%s: error carries token %q", token, moveErr.Token)
		}
	}
}

func TestParsePositionErrors(t *testing.T) {
	cases := []struct {
		name   string
		args   []string
		reason string
	}{
		{"no arguments", nil, "unknown_source"},
		{"unknown source", []string{"banana", "moves", "e2e4"}, "unknown_source"},
		{"source is case sensitive", []string{"StartPos"}, "unknown_source"},
		{"fen without fields", []string{"fen"}, "empty_fen"},
		{"fen followed by moves", []string{"fen", "moves", "e2e4"}, "empty_fen"},
		{"garbage fen", []string{"fen", "xyz"}, "invalid_fen"},
		{"no kings", strings.Fields("fen 8/8/8/8/8/8/8/8 w - - 0 1"), "invalid_fen"},
		{"missing black king", strings.Fields("fen 8/8/8/8/8/8/8/4K3 w - - 0 1"), "invalid_fen"},
		{"two white kings", strings.Fields("fen 4k3/8/8/8/8/8/8/3KK3 w - - 0 1"), "invalid_fen"},
		{"castling without rook", strings.Fields("fen 4k3/8/8/8/8/8/8/4K3 w K - 0 1"), "invalid_fen"},
		{"queenside right without rook", strings.Fields("fen 4k3/8/8/8/8/8/8/4K2R w KQkq - 0 1 moves e1c1"), "invalid_fen"},
		{"castling with moved king", strings.Fields("fen r3k2r/8/8/8/8/8/8/R4K1R w Q - 0 1"), "invalid_fen"},
		{"black castling without rook", strings.Fields("fen 4k3/8/8/8/8/8/8/4K3 b q - 0 1"), "invalid_fen"},
		{"pawn on last rank", strings.Fields("fen P3k3/8/8/8/8/8/8/4K3 w - - 0 1"), "invalid_fen"},
		{"pawn on first rank", strings.Fields("fen 4k3/8/8/8/8/8/8/p3K3 w - - 0 1"), "invalid_fen"},
		{"side not to move in check by rook", strings.Fields("fen 4k3/8/8/8/8/8/8/4RK2 w - - 0 1"), "invalid_fen"},
		{"side not to move in check by pawn", strings.Fields("fen 4k3/3P4/8/8/8/8/8/4K3 w - - 0 1"), "invalid_fen"},
		{"side not to move in check by knight", strings.Fields("fen 4k3/8/8/8/8/8/6n1/4K3 b - - 0 1"), "invalid_fen"},
		{"adjacent kings", strings.Fields("fen 8/8/8/8/8/8/3k4/4K3 w - - 0 1"), "invalid_fen"},
		{"short move", []string{"startpos", "moves", "e2"}, "invalid_move"},
		{"bad file", []string{"startpos", "moves", "z2e4"}, "invalid_move"},
		{"bad rank", []string{"startpos", "moves", "e2e9"}, "invalid_move"},
		{"uppercase square", []string{"startpos", "moves", "E2E4"}, "invalid_move"},
		{"illegal move", []string{"startpos", "moves", "e2e5"}, "invalid_move"},
		{"illegal later move", []string{"startpos", "moves", "e2e4", "e2e4"}, "invalid_move"},
		{"wrong side to move", []string{"startpos", "moves", "e7e5"}, "invalid_move"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParsePosition(tc.args)
			if err == nil {
				t.Fatalf("expected error, got position %s", pos)
			}
			if pos != nil {
				t.Fatalf("expected nil position on error")
			}
			if got := RejectReason(err); got != tc.reason {
				t.Fatalf("reason: got %q want %q (err=%v)", got, tc.reason, err)
			}
		})
	}
}

func TestParsePositionAcceptsLegalFENs(t *testing.T) {
	cases := []struct {
		fen   string
		moves []string
	}{
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"e1g1", "e8c8"}},
		{"4k3/8/8/8/8/8/8/4K2R w K - 0 1", []string{"e1g1"}},
		{"4k3/8/8/8/8/8/8/4R1K1 b - - 0 1", nil},
		{"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", nil},
	}
	for _, tc := range cases {
		args := append([]string{"fen"}, strings.Fields(tc.fen)...)
		if len(tc.moves) > 0 {
			args = append(append(args, "moves"), tc.moves...)
		}
		got, err := ParsePosition(args)
		if err != nil {
			t.Fatalf("%s: %v", tc.fen, err)
		}
		if want := libraryPosition(t, tc.fen, tc.moves); got.String() != want.String() {
			t.Fatalf("%s: got %s want %s", tc.fen, got, want)
		}
	}
}

func TestParsePositionInvalidFENCarriesText(t *testing.T) {
	_, err := ParsePosition([]string{"fen", "not", "a", "fen", "moves", "e2e4"})
	var fenErr *InvalidFENError
	if !errors.As(err, &fenErr) {
		t.Fatalf("expected InvalidFENError, got %v", err)
	}
	if fenErr.FEN != "not a fen" {
		t.Fatalf("fen text: got %q", fenErr.FEN)
	}
}

func TestParsePositionIgnoresTrailingMoveCharacters(t *testing.T) {
	got, err := ParsePosition([]string{"startpos", "moves", "e2e4zz"})
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if got.String() != libraryPosition(t, "", []string{"e2e4"}).String() {
		t.Fatalf("expected e2e4 to be applied, got %s", got)
	}
}

func TestSessionSetPositionIsAllOrNothing(t *testing.T) {
	s := NewSession()
	if err := s.SetPosition([]string{"startpos", "moves", "e2e4"}); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	before := s.Position().String()

	if err := s.SetPosition([]string{"startpos", "moves", "d2d4", "d7d5", "e1e5"}); err == nil {
		t.Fatalf("expected illegal sequence to be rejected")
	}
	if s.Position().String() != before {
		t.Fatalf("session changed after rejected command: %s", s.Position())
	}

	s.Reset()
	if s.Position().String() != StartingPosition().String() {
		t.Fatalf("reset did not restore the initial position")
	}
	if s.ID() == "" || s.ID() == NewSession().ID() {
		t.Fatalf("expected distinct session ids")
	}
}

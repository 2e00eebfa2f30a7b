package chess

import (
	"fmt"

	chesslib "github.com/corentings/chess/v2"
)

// InvalidMoveError reports a move token that was malformed or not legal in
// the position it was resolved against.
type InvalidMoveError struct {
	Token  string
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move %q: %s", e.Token, e.Reason)
}

// ParseMove resolves long algebraic notation (e2e4, e7e8q) against the legal
// moves of pos. Characters after the promotion letter are ignored.
func ParseMove(pos *chesslib.Position, token string) (*chesslib.Move, error) {
	if pos == nil {
		return nil, &InvalidMoveError{Token: token, Reason: "no position"}
	}
	if len(token) < 4 {
		return nil, &InvalidMoveError{Token: token, Reason: "too short"}
	}
	from, ok := parseSquare(token[0:2])
	if !ok {
		return nil, &InvalidMoveError{Token: token, Reason: "bad source square"}
	}
	to, ok := parseSquare(token[2:4])
	if !ok {
		return nil, &InvalidMoveError{Token: token, Reason: "bad destination square"}
	}
	promo := chesslib.NoPieceType
	if len(token) >= 5 {
		promo = parsePromotion(token[4])
	}

	legal := pos.ValidMoves()
	for i := range legal {
		mv := legal[i]
		if mv.S1() == from && mv.S2() == to && mv.Promo() == promo {
			return &mv, nil
		}
	}
	return nil, &InvalidMoveError{Token: token, Reason: "not legal in position"}
}

// FormatMove renders a move in long algebraic notation.
func FormatMove(mv *chesslib.Move) string {
	if mv == nil {
		return ""
	}
	return mv.String()
}

func parseSquare(s string) (chesslib.Square, bool) {
	if len(s) != 2 {
		return 0, false
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, false
	}
	return chesslib.Square(int(file-'a') + 8*int(rank-'1')), true
}

// lowercase only; any other byte means no promotion
func parsePromotion(c byte) chesslib.PieceType {
	switch c {
	case 'q':
		return chesslib.Queen
	case 'r':
		return chesslib.Rook
	case 'b':
		return chesslib.Bishop
	case 'n':
		return chesslib.Knight
	default:
		return chesslib.NoPieceType
	}
}

package protocol

import (
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"

	corechess "github.com/park285/chessbro/internal/chess"
)

const (
	sourceStartpos = "startpos"
	sourceFEN      = "fen"
	movesKeyword   = "moves"
)

// StartingPosition returns the standard initial position.
func StartingPosition() *chess.Position {
	return chess.NewGame().Position()
}

// ParsePosition builds a position from the arguments of a position command,
// e.g. ["startpos", "moves", "e2e4"] or ["fen", <fields...>, "moves", ...].
// The returned position is fully built; nothing is returned on error.
func ParsePosition(args []string) (*chess.Position, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: missing", ErrUnknownPositionSource)
	}

	movesIdx := indexOf(args, movesKeyword)
	baseEnd := len(args)
	if movesIdx >= 0 {
		baseEnd = movesIdx
	}

	var (
		pos *chess.Position
		err error
	)
	switch args[0] {
	case sourceStartpos:
		pos = StartingPosition()
	case sourceFEN:
		if baseEnd <= 1 {
			return nil, ErrEmptyFEN
		}
		pos, err = decodeFEN(strings.Join(args[1:baseEnd], " "))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPositionSource, args[0])
	}

	if movesIdx < 0 {
		return pos, nil
	}
	for _, token := range args[movesIdx+1:] {
		mv, err := corechess.ParseMove(pos, token)
		if err != nil {
			return nil, err
		}
		pos = pos.Update(mv)
	}
	return pos, nil
}

func decodeFEN(fen string) (*chess.Position, error) {
	option, err := chess.FEN(fen)
	if err != nil {
		return nil, &InvalidFENError{FEN: fen, Err: err}
	}
	pos := chess.NewGame(option).Position()
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		fields = strings.Fields(pos.String())
	}
	if err := checkSanity(pos, fields); err != nil {
		return nil, &InvalidFENError{FEN: fen, Err: err}
	}
	return pos, nil
}

func indexOf(tokens []string, want string) int {
	for i, t := range tokens {
		if t == want {
			return i
		}
	}
	return -1
}

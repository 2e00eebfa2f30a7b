package protocol

import (
	"errors"
	"fmt"

	corechess "github.com/park285/chessbro/internal/chess"
)

var (
	ErrUnknownPositionSource = errors.New("unknown position source")
	ErrEmptyFEN              = errors.New("empty fen")
)

// InvalidFENError reports a FEN string the rules library refused.
type InvalidFENError struct {
	FEN string
	Err error
}

func (e *InvalidFENError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid fen %q", e.FEN)
	}
	return fmt.Sprintf("invalid fen %q: %v", e.FEN, e.Err)
}

func (e *InvalidFENError) Unwrap() error { return e.Err }

// RejectReason maps a position error onto a short label for logs and metrics.
func RejectReason(err error) string {
	var (
		fenErr  *InvalidFENError
		moveErr *corechess.InvalidMoveError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownPositionSource):
		return "unknown_source"
	case errors.Is(err, ErrEmptyFEN):
		return "empty_fen"
	case errors.As(err, &fenErr):
		return "invalid_fen"
	case errors.As(err, &moveErr):
		return "invalid_move"
	default:
		return "other"
	}
}

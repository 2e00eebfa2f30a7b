package protocol

import (
	chess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
)

// Session holds the single authoritative position of one controller
// connection. It is not safe for concurrent use.
type Session struct {
	id  string
	pos *chess.Position
}

func NewSession() *Session {
	return &Session{
		id:  uuid.NewString(),
		pos: StartingPosition(),
	}
}

func (s *Session) ID() string { return s.id }

// Position returns the current position. Callers must treat it as read-only.
func (s *Session) Position() *chess.Position { return s.pos }

// Reset puts the session back at the standard initial position.
func (s *Session) Reset() {
	s.pos = StartingPosition()
}

// SetPosition replaces the current position with the one described by args.
// On error the current position is left untouched.
func (s *Session) SetPosition(args []string) error {
	next, err := ParsePosition(args)
	if err != nil {
		return err
	}
	s.pos = next
	return nil
}

package protocol

import (
	"context"
	"errors"

	"go.uber.org/zap"

	corechess "github.com/park285/chessbro/internal/chess"
	"github.com/park285/chessbro/internal/metrics"
)

// Identity is what the engine reports about itself during the handshake.
type Identity struct {
	Name   string
	Author string
}

// Interpreter turns protocol lines into Session transitions and reply lines.
// Replies are returned to the caller; diagnostics go to the logger only.
type Interpreter struct {
	session *Session
	vocab   Vocabulary
	id      Identity
	logger  *zap.Logger
	done    bool
}

func NewInterpreter(session *Session, vocab Vocabulary, id Identity, logger *zap.Logger) *Interpreter {
	if session == nil {
		session = NewSession()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		session: session,
		vocab:   vocab,
		id:      id,
		logger:  logger.With(zap.String("session_id", session.ID())),
	}
}

func (in *Interpreter) Session() *Session { return in.session }

// Done reports whether a terminate command has been handled.
func (in *Interpreter) Done() bool { return in.done }

// Handle processes one line and returns the reply lines, possibly none.
func (in *Interpreter) Handle(ctx context.Context, line string, advisor corechess.Advisor) []string {
	cmd, ok := in.vocab.Parse(line)
	if !ok {
		return nil
	}
	metrics.ObserveCommand(cmd.Kind.String())

	switch cmd.Kind {
	case CmdHandshake:
		return []string{
			"id name " + in.id.Name,
			"id author " + in.id.Author,
			in.vocab.HandshakeOK,
		}
	case CmdReadinessCheck:
		return []string{in.vocab.ReadyOK}
	case CmdNewGame:
		in.session.Reset()
		return nil
	case CmdSetPosition:
		in.setPosition(line, cmd.Args)
		return nil
	case CmdRequestMove:
		return in.requestMove(ctx, advisor)
	case CmdTerminate:
		in.done = true
		return nil
	default:
		in.logger.Debug("command_ignored", zap.String("line", line))
		return nil
	}
}

func (in *Interpreter) setPosition(line string, args []string) {
	if err := in.session.SetPosition(args); err != nil {
		reason := RejectReason(err)
		metrics.ObservePositionRejected(reason)
		in.logger.Warn("position_rejected",
			zap.String("line", line),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}

func (in *Interpreter) requestMove(ctx context.Context, advisor corechess.Advisor) []string {
	if advisor == nil {
		in.logger.Error("go_without_advisor")
		return nil
	}
	pos := in.session.Position()
	mv, err := advisor.Propose(ctx, pos)
	switch {
	case err == nil && mv != nil:
		return []string{"bestmove " + corechess.FormatMove(mv)}
	case errors.Is(err, corechess.ErrNoMove):
		in.logger.Info("no_legal_move", zap.String("fen", pos.String()))
	case err == nil:
		in.logger.Warn("advisor_returned_nothing", zap.String("fen", pos.String()))
	default:
		in.logger.Warn("advisor_failed", zap.String("fen", pos.String()), zap.Error(err))
	}
	return nil
}

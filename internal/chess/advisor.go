package chess

import (
	"context"
	"errors"
	"time"

	chesslib "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/chessbro/internal/metrics"
	"github.com/park285/chessbro/internal/obslog"
)

var (
	// ErrNoMove means the position has no legal move (checkmate or stalemate).
	ErrNoMove = errors.New("no legal move available")
	// ErrNoSuggestion means an advisor has nothing to offer for this position
	// and the next one in a Chain should be asked.
	ErrNoSuggestion = errors.New("advisor has no suggestion")
)

// Advisor proposes a move for a position. Implementations must not mutate pos.
type Advisor interface {
	Propose(ctx context.Context, pos *chesslib.Position) (*chesslib.Move, error)
}

// AdvisorFunc adapts a function to Advisor.
type AdvisorFunc func(ctx context.Context, pos *chesslib.Position) (*chesslib.Move, error)

func (f AdvisorFunc) Propose(ctx context.Context, pos *chesslib.Position) (*chesslib.Move, error) {
	return f(ctx, pos)
}

// Stage is one named link of a Chain.
type Stage struct {
	Name    string
	Advisor Advisor
}

// Chain asks each stage in order and returns the first proposal. ErrNoMove
// ends the walk immediately; any other error falls through to the next stage.
type Chain struct {
	stages []Stage
}

func NewChain(stages ...Stage) *Chain {
	out := make([]Stage, 0, len(stages))
	for _, st := range stages {
		if st.Advisor != nil {
			out = append(out, st)
		}
	}
	return &Chain{stages: out}
}

func (c *Chain) Propose(ctx context.Context, pos *chesslib.Position) (*chesslib.Move, error) {
	if len(pos.ValidMoves()) == 0 {
		return nil, ErrNoMove
	}

	lastErr := ErrNoSuggestion
	for _, st := range c.stages {
		start := time.Now()
		mv, err := st.Advisor.Propose(ctx, pos)
		metrics.ObserveAdvisor(st.Name, outcomeOf(mv, err), time.Since(start))
		switch {
		case err == nil && mv != nil:
			return mv, nil
		case errors.Is(err, ErrNoMove):
			return nil, err
		case err == nil, errors.Is(err, ErrNoSuggestion):
			obslog.L().Debug("advisor_pass", zap.String("advisor", st.Name))
		default:
			obslog.L().Warn("advisor_failed", zap.String("advisor", st.Name), zap.Error(err))
			lastErr = err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func outcomeOf(mv *chesslib.Move, err error) string {
	switch {
	case err == nil && mv != nil:
		return "move"
	case err == nil:
		return "pass"
	case errors.Is(err, ErrNoMove):
		return "no_move"
	case errors.Is(err, ErrNoSuggestion):
		return "pass"
	default:
		return "error"
	}
}

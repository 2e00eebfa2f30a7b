package chess

import (
	"context"
	"errors"
	"fmt"

	chesslib "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/chessbro/internal/chess/uci"
	"github.com/park285/chessbro/internal/obslog"
)

type EngineConfig struct {
	BinaryPath string
	Args       []string
	Preset     StrengthPreset
	PoolSize   int
}

// Engine asks an external UCI engine for its best move in the position.
type Engine struct {
	pool   *uci.Pool
	preset StrengthPreset
	limits uci.Limits
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	limits, err := limitsFromPreset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	pool, err := uci.NewPool(uci.PoolConfig{
		BinaryPath: cfg.BinaryPath,
		Args:       cfg.Args,
		Options:    optionsFromPreset(cfg.Preset),
		Capacity:   cfg.PoolSize,
	})
	if err != nil {
		return nil, err
	}
	return &Engine{pool: pool, preset: cfg.Preset, limits: limits}, nil
}

func (e *Engine) Propose(ctx context.Context, pos *chesslib.Position) (*chesslib.Move, error) {
	session, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire engine: %w", err)
	}
	var releaseErr error
	defer func() {
		e.pool.Release(session, releaseErr)
	}()

	resp, err := session.Search(ctx, uci.SearchRequest{
		FEN:    pos.String(),
		Limits: e.limits,
	})
	if err != nil {
		releaseErr = err
		return nil, err
	}

	if resp.BestMove == uci.NoMove || resp.BestMove == "0000" {
		return nil, ErrNoMove
	}
	mv, err := ParseMove(pos, resp.BestMove)
	if err != nil {
		var moveErr *InvalidMoveError
		if errors.As(err, &moveErr) {
			obslog.L().Warn("engine_illegal_bestmove",
				zap.String("preset", e.preset.Name),
				zap.String("fen", pos.String()),
				zap.String("bestmove", resp.BestMove),
			)
		}
		releaseErr = err
		return nil, err
	}
	return mv, nil
}

func (e *Engine) Close() error {
	if e == nil || e.pool == nil {
		return nil
	}
	return e.pool.Close()
}

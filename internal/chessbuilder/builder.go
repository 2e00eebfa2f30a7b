package chessbuilder

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chessbro/internal/cache"
	corechess "github.com/park285/chessbro/internal/chess"
	"github.com/park285/chessbro/internal/chess/openingbook"
	"github.com/park285/chessbro/internal/config"
	"github.com/park285/chessbro/internal/protocol"
)

type Deps struct {
	Advisor    *corechess.Chain
	Engine     *corechess.Engine
	Redis      *redis.Client
	Vocabulary protocol.Vocabulary
	Identity   protocol.Identity
}

// New wires the advisor chain book → remote (optionally cached) → random.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	vocab, err := protocol.LookupDialect(cfg.Protocol.Dialect)
	if err != nil {
		return nil, err
	}
	deps := &Deps{
		Vocabulary: vocab,
		Identity:   protocol.Identity{Name: cfg.Engine.Name, Author: cfg.Engine.Author},
	}

	var stages []corechess.Stage

	if cfg.Uses(config.AdvisorBook) {
		path, err := openingbook.ResolveBookPath(cfg.Advisor.BookPath)
		if err != nil {
			return nil, fmt.Errorf("resolve opening book: %w", err)
		}
		if path == "" {
			return nil, fmt.Errorf("book advisor enabled but no opening book found")
		}
		book, err := openingbook.LoadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("load opening book: %w", err)
		}
		logger.Info("opening_book_loaded", zap.String("path", path))
		stages = append(stages, corechess.Stage{
			Name:    config.AdvisorBook,
			Advisor: corechess.NewBookAdvisor(book, cfg.Advisor.BookMinWeight, cfg.Advisor.Seed),
		})
	}

	if cfg.Uses(config.AdvisorRemote) {
		remote := cfg.Advisor.Remote
		preset, err := corechess.GetPreset(remote.Preset)
		if err != nil {
			return nil, err
		}
		preset = preset.WithLimits(remote.Depth, remote.MoveTimeMillis, remote.Nodes)
		engine, err := corechess.NewEngine(corechess.EngineConfig{
			BinaryPath: remote.Path,
			Args:       remote.Args,
			Preset:     preset,
			PoolSize:   remote.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("init engine: %w", err)
		}
		deps.Engine = engine
		logger.Info("remote_engine_ready", zap.String("path", remote.Path), zap.String("preset", preset.Name))

		var advisor corechess.Advisor = engine
		name := config.AdvisorRemote
		if cfg.Cache.RedisURL != "" {
			rdb, err := cache.Connect(ctx, cfg.Cache.RedisURL)
			if err != nil {
				_ = deps.Close()
				return nil, fmt.Errorf("init cache: %w", err)
			}
			deps.Redis = rdb
			advisor = cache.NewMoveCache(rdb, engine, cfg.Cache.TTL, cfg.Cache.Prefix)
			name = "cached_remote"
		}
		stages = append(stages, corechess.Stage{Name: name, Advisor: advisor})
	}

	stages = append(stages, corechess.Stage{
		Name:    config.AdvisorRandom,
		Advisor: corechess.NewRandomAdvisor(cfg.Advisor.Seed),
	})
	deps.Advisor = corechess.NewChain(stages...)
	return deps, nil
}

// NewInterpreter returns a fresh session-backed interpreter for one controller.
func (d *Deps) NewInterpreter(logger *zap.Logger) *protocol.Interpreter {
	return protocol.NewInterpreter(protocol.NewSession(), d.Vocabulary, d.Identity, logger)
}

func (d *Deps) Close() error {
	var errs []error
	if d.Engine != nil {
		errs = append(errs, d.Engine.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	return errors.Join(errs...)
}

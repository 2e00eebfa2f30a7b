package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	chesslib "github.com/corentings/chess/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	corechess "github.com/park285/chessbro/internal/chess"
	"github.com/park285/chessbro/internal/obslog"
)

const (
	DefaultTTL    = 24 * time.Hour
	DefaultPrefix = "chessbro:move:"
)

// MoveCache is a read-through Redis cache in front of a slower advisor.
// Entries are keyed by the placement, side, castling and en passant fields of
// the FEN, so transpositions with different move counters share one entry.
// Every hit is re-checked against the legal move set.
type MoveCache struct {
	rdb    redis.UniversalClient
	next   corechess.Advisor
	ttl    time.Duration
	prefix string
}

func NewMoveCache(rdb redis.UniversalClient, next corechess.Advisor, ttl time.Duration, prefix string) *MoveCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &MoveCache{rdb: rdb, next: next, ttl: ttl, prefix: prefix}
}

func (c *MoveCache) key(pos *chesslib.Position) string {
	fields := strings.Fields(pos.String())
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return c.prefix + strings.Join(fields, " ")
}

func (c *MoveCache) Propose(ctx context.Context, pos *chesslib.Position) (*chesslib.Move, error) {
	key := c.key(pos)

	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if mv, perr := corechess.ParseMove(pos, raw); perr == nil {
			return mv, nil
		}
		obslog.L().Warn("move_cache_stale", zap.String("key", key), zap.String("move", raw))
		_ = c.rdb.Del(ctx, key).Err()
	case errors.Is(err, redis.Nil):
	default:
		obslog.L().Warn("move_cache_get_failed", zap.String("key", key), zap.Error(err))
	}

	mv, err := c.next.Propose(ctx, pos)
	if err != nil || mv == nil {
		return mv, err
	}
	if err := c.rdb.Set(ctx, key, corechess.FormatMove(mv), c.ttl).Err(); err != nil {
		obslog.L().Warn("move_cache_set_failed", zap.String("key", key), zap.Error(err))
	}
	return mv, nil
}

// ParseRedisURL accepts redis:// and rediss:// URLs with an optional /db
// path. rediss enables TLS.
func ParseRedisURL(raw string) (*redis.Options, error) {
	return redis.ParseURL(strings.TrimSpace(raw))
}

// Connect opens a client for raw and verifies it with PING.
func Connect(ctx context.Context, raw string) (*redis.Client, error) {
	opts, err := ParseRedisURL(raw)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

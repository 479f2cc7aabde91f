package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/praxislabs/execemy-backend/internal/logger"
)

// PopularityStore keeps view/completion counters for content in Redis sorted
// sets, one set per content kind.
type PopularityStore interface {
	Bump(ctx context.Context, kind, id string) error
	Top(ctx context.Context, kind string, n int) ([]string, error)
	Close() error
}

type popularityStore struct {
	log       *logger.Logger
	rdb       *goredis.Client
	keyPrefix string
}

func NewPopularityStore(log *logger.Logger) (PopularityStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_POPULARITY_PREFIX"))
	if prefix == "" {
		prefix = "popularity"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &popularityStore{
		log:       log.With("service", "RedisPopularityStore"),
		rdb:       rdb,
		keyPrefix: prefix,
	}, nil
}

func (p *popularityStore) key(kind string) string {
	return p.keyPrefix + ":" + kind
}

func (p *popularityStore) Bump(ctx context.Context, kind, id string) error {
	if kind == "" || id == "" {
		return fmt.Errorf("kind and id required")
	}
	if err := p.rdb.ZIncrBy(ctx, p.key(kind), 1, id).Err(); err != nil {
		return fmt.Errorf("zincrby %s: %w", kind, err)
	}
	return nil
}

func (p *popularityStore) Top(ctx context.Context, kind string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := p.rdb.ZRevRange(ctx, p.key(kind), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", kind, err)
	}
	return ids, nil
}

func (p *popularityStore) Close() error {
	return p.rdb.Close()
}

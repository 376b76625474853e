package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard admits the first completion signal of an assessment and rejects the
// following ones.
type Guard interface {
	// Claim reports whether the caller is the first to claim assessmentID.
	Claim(ctx context.Context, assessmentID int64) (bool, error)
	// Release forgets a claim so the assessment can be processed again.
	Release(ctx context.Context, assessmentID int64) error
}

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu      sync.Mutex
	claimed map[int64]struct{}
}

// NewMemoryGuard creates an empty MemoryGuard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{claimed: make(map[int64]struct{})}
}

func (g *MemoryGuard) Claim(_ context.Context, assessmentID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.claimed[assessmentID]; ok {
		return false, nil
	}
	g.claimed[assessmentID] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, assessmentID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, assessmentID)
	return nil
}

// DefaultClaimTTL bounds how long a Redis claim outlives its processing.
const DefaultClaimTTL = 24 * time.Hour

// RedisGuard shares claims between processes through Redis SETNX keys.
type RedisGuard struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisGuard creates a RedisGuard. A zero ttl selects DefaultClaimTTL.
func NewRedisGuard(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisGuard {
	if prefix == "" {
		prefix = "certify:scoring:"
	}
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &RedisGuard{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (g *RedisGuard) key(assessmentID int64) string {
	return fmt.Sprintf("%s%d", g.prefix, assessmentID)
}

func (g *RedisGuard) Claim(ctx context.Context, assessmentID int64) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, g.key(assessmentID), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim %d: %w", assessmentID, err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, assessmentID int64) error {
	if err := g.rdb.Del(ctx, g.key(assessmentID)).Err(); err != nil {
		return fmt.Errorf("redis release %d: %w", assessmentID, err)
	}
	return nil
}

// Package session tracks which login sessions are still live so that a
// signed session token can be revoked before it expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/blog-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// Registry records live sessions by ID.
type Registry interface {
	// Register marks sessionID as live for userID until ttl elapses.
	Register(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error

	// Exists reports whether sessionID is live.
	Exists(ctx context.Context, sessionID string) (bool, error)

	// Revoke ends one session.
	Revoke(ctx context.Context, sessionID string) error

	// RevokeUser ends every session of userID.
	RevokeUser(ctx context.Context, userID int64) error
}

func sessionKey(id string) string {
	return "session:" + id
}

func userKey(userID int64) string {
	return "user_sessions:" + strconv.FormatInt(userID, 10)
}

// RedisRegistry stores sessions as expiring keys, indexed per user in a set.
type RedisRegistry struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Registry = (*RedisRegistry)(nil)

// NewRedisClient builds a client from cfg and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisRegistry wraps an existing client.
func NewRedisRegistry(client *redis.Client, logger *slog.Logger) *RedisRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRegistry{
		client: client,
		logger: logger.With(slog.String("component", "session_registry")),
	}
}

// Register implements Registry.
func (r *RedisRegistry) Register(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID), userID, ttl)
	pipe.SAdd(ctx, userKey(userID), sessionID)
	pipe.Expire(ctx, userKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}
	return nil
}

// Exists implements Registry.
func (r *RedisRegistry) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}

// Revoke implements Registry.
func (r *RedisRegistry) Revoke(ctx context.Context, sessionID string) error {
	userID, err := r.client.Get(ctx, sessionKey(sessionID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	if err == nil {
		pipe.SRem(ctx, userKey(userID), sessionID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeUser implements Registry.
func (r *RedisRegistry) RevokeUser(ctx context.Context, userID int64) error {
	ids, err := r.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey(userID))
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	r.logger.Debug("revoked user sessions", slog.Int64("user_id", userID), slog.Int("count", len(ids)))
	return nil
}

// MemoryRegistry is a Registry for single-process deployments and tests.
type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	userID  int64
	expires time.Time
}

var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

// Register implements Registry.
func (m *MemoryRegistry) Register(_ context.Context, sessionID string, userID int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = memorySession{userID: userID, expires: m.now().Add(ttl)}
	return nil
}

// Exists implements Registry.
func (m *MemoryRegistry) Exists(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(s.expires) {
		delete(m.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

// Revoke implements Registry.
func (m *MemoryRegistry) Revoke(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// RevokeUser implements Registry.
func (m *MemoryRegistry) RevokeUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.userID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

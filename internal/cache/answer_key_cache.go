// Package cache keeps quiz answer keys in Redis in front of the MySQL catalog.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/courseplatform/backend/internal/scoring"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyLoader loads an answer key from the backing store
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID int) (*scoring.AnswerKey, error)
}

// AnswerKeyCache caches answer keys as JSON strings under quiz:{quizID}:answer-key
// and falls back to the loader on a miss or when Redis is unavailable.
type AnswerKeyCache struct {
	client *redis.Client
	loader AnswerKeyLoader
	ttl    time.Duration
	logger *zap.Logger
	sf     singleflight.Group
}

// NewAnswerKeyCache creates a new answer key cache.
// A nil client or a non-positive ttl turns the cache into a pass-through to the loader.
func NewAnswerKeyCache(client *redis.Client, loader AnswerKeyLoader, ttl time.Duration, logger *zap.Logger) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *AnswerKeyCache) enabled() bool {
	return c.client != nil && c.ttl > 0
}

// LoadAnswerKey returns the answer key of a quiz, served from Redis when possible
func (c *AnswerKeyCache) LoadAnswerKey(ctx context.Context, quizID int) (*scoring.AnswerKey, error) {
	if !c.enabled() {
		return c.loader.LoadAnswerKey(ctx, quizID)
	}

	if key, ok := c.get(ctx, quizID); ok {
		return key, nil
	}

	// The shared load outlives any single caller; each caller still stops waiting on its own context.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(strconv.Itoa(quizID), func() (any, error) {
		// Another caller may have filled the entry while we waited.
		if key, ok := c.get(loadCtx, quizID); ok {
			return key, nil
		}

		key, err := c.loader.LoadAnswerKey(loadCtx, quizID)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("failed to encode answer key: %w", err)
		}
		if err := c.client.Set(loadCtx, entryKey(quizID), payload, c.ttlWithJitter()).Err(); err != nil {
			c.logger.Warn("failed to cache answer key", zap.Int("quiz_id", quizID), zap.Error(err))
		}
		return key, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*scoring.AnswerKey), nil
	}
}

// Invalidate drops the cached answer key of a quiz
func (c *AnswerKeyCache) Invalidate(ctx context.Context, quizID int) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Del(ctx, entryKey(quizID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate answer key: %w", err)
	}
	return nil
}

func (c *AnswerKeyCache) get(ctx context.Context, quizID int) (*scoring.AnswerKey, bool) {
	payload, err := c.client.Get(ctx, entryKey(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("answer key cache unavailable", zap.Int("quiz_id", quizID), zap.Error(err))
		}
		return nil, false
	}

	var key scoring.AnswerKey
	if err := json.Unmarshal(payload, &key); err != nil {
		c.logger.Warn("discarding corrupt answer key entry", zap.Int("quiz_id", quizID), zap.Error(err))
		return nil, false
	}
	return &key, true
}

func entryKey(quizID int) string {
	return "quiz:" + strconv.Itoa(quizID) + ":answer-key"
}

// ttlWithJitter spreads expirations by up to 10% so entries loaded together do not expire together
func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int64N(jitterMax+1))
}

package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RecentFeedKey is the sorted set holding the most recent post ids.
	RecentFeedKey = "feed:recent"

	// RecentFeedCap is the maximum number of post ids kept in the cache.
	// The feed itself shows at most 50; the cap leaves headroom so that
	// deletes do not immediately force a warm.
	RecentFeedCap = 200

	// RecentFeedTTL expires an untouched cache so a cold client re-warms
	// from the row store instead of trusting stale ids.
	RecentFeedTTL = 24 * time.Hour
)

// PostScore pairs a post id with its creation timestamp used as the
// sorted-set score.
type PostScore struct {
	PostID    string
	Timestamp int64 // Unix timestamp
}

// RecentFeed caches the id list behind the feed's bounded newest-first
// fetch. An interface so the feed service can be tested with a fake.
type RecentFeed interface {
	// Add inserts a freshly created post.
	// Pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL).
	Add(ctx context.Context, post PostScore) error

	// Remove drops a deleted post from the cache.
	Remove(ctx context.Context, postID string) error

	// Recent returns up to limit post ids, newest first.
	Recent(ctx context.Context, limit int) ([]string, error)

	// Warm bulk-loads post ids after a cache miss.
	Warm(ctx context.Context, posts []PostScore) error

	// Exists reports whether the cache key is present. False means the
	// caller should warm from the row store.
	Exists(ctx context.Context) (bool, error)
}

// RedisRecentFeed implements RecentFeed using a Redis sorted set.
type RedisRecentFeed struct {
	client *redis.Client
}

// NewRecentFeed creates a RecentFeed backed by Redis.
func NewRecentFeed(client *redis.Client) RecentFeed {
	return &RedisRecentFeed{client: client}
}

func (c *RedisRecentFeed) Add(ctx context.Context, post PostScore) error {
	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, RecentFeedKey, redis.Z{
		Score:  float64(post.Timestamp),
		Member: post.PostID,
	})
	// Keep the highest RecentFeedCap scores (newest), remove the rest.
	pipe.ZRemRangeByRank(ctx, RecentFeedKey, 0, int64(-RecentFeedCap-1))
	pipe.Expire(ctx, RecentFeedKey, RecentFeedTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[RecentFeed] Add FAILED: post=%s err=%v", post.PostID, err)
		return fmt.Errorf("add post to recent feed: %w", err)
	}
	return nil
}

func (c *RedisRecentFeed) Remove(ctx context.Context, postID string) error {
	if err := c.client.ZRem(ctx, RecentFeedKey, postID).Err(); err != nil {
		log.Printf("[RecentFeed] Remove FAILED: post=%s err=%v", postID, err)
		return fmt.Errorf("remove post from recent feed: %w", err)
	}
	return nil
}

func (c *RedisRecentFeed) Recent(ctx context.Context, limit int) ([]string, error) {
	ids, err := c.client.ZRevRange(ctx, RecentFeedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent feed: %w", err)
	}
	return ids, nil
}

func (c *RedisRecentFeed) Warm(ctx context.Context, posts []PostScore) error {
	if len(posts) == 0 {
		return nil
	}
	startTime := time.Now()

	pipe := c.client.Pipeline()
	for _, p := range posts {
		pipe.ZAdd(ctx, RecentFeedKey, redis.Z{
			Score:  float64(p.Timestamp),
			Member: p.PostID,
		})
	}
	pipe.ZRemRangeByRank(ctx, RecentFeedKey, 0, int64(-RecentFeedCap-1))
	pipe.Expire(ctx, RecentFeedKey, RecentFeedTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[RecentFeed] Warm FAILED: posts=%d err=%v", len(posts), err)
		return fmt.Errorf("warm recent feed: %w", err)
	}

	log.Printf("[RecentFeed] Warm OK: posts=%d duration=%v", len(posts), time.Since(startTime))
	return nil
}

func (c *RedisRecentFeed) Exists(ctx context.Context) (bool, error) {
	n, err := c.client.Exists(ctx, RecentFeedKey).Result()
	if err != nil {
		return false, fmt.Errorf("check recent feed exists: %w", err)
	}
	return n > 0, nil
}

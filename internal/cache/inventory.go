package cache

import (
	"context"
	"fmt"
	"time"

	"gazette/internal/observability"
)

const (
	PostKeyPrefix     = "post:%d"
	PostsListKey      = "posts:list"
	CategoryKeyPrefix = "category:%d"
)

const (
	PostTTL     = 30 * time.Minute
	ListTTL     = 2 * time.Minute
	CategoryTTL = 10 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CategoryKey(categoryID uint) string {
	return fmt.Sprintf(CategoryKeyPrefix, categoryID)
}

// Invalidate removes a key. Best-effort: a failure is recorded by the metrics
// hook and otherwise ignored, the cache is an optimization and never
// authoritative.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost removes the cache entry for a single post and the list key.
// Must run only after the corresponding store write was acknowledged, never
// before.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, PostsListKey)
	observability.CacheInvalidations.WithLabelValues("post").Inc()
}

func InvalidateCategory(ctx context.Context, categoryID uint) {
	Invalidate(ctx, CategoryKey(categoryID))
	observability.CacheInvalidations.WithLabelValues("category").Inc()
}

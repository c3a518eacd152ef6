// Package events provides Redis pub/sub publication of post lifecycle events.
//
// Every successful post persist publishes the post ID on PostSavedChannel.
// Each running instance subscribes and drops its cache entry for that post,
// which keeps caches coherent when several instances share one Redis.
package events

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
)

// PostSavedChannel carries PostSavedEvent payloads.
const PostSavedChannel = "events:post:saved"

// PostSavedEvent is published after a post create, update or vote commits.
type PostSavedEvent struct {
	PostID  uint      `json:"post_id"`
	SavedAt time.Time `json:"saved_at"`
}

// Publisher publishes lifecycle events into Redis channels.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a new Publisher using the provided Redis client.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// PublishPostSaved announces that the post with the given ID was persisted.
// With a nil client it is a no-op, the process simply runs without
// cross-instance cache coherence.
func (p *Publisher) PublishPostSaved(ctx context.Context, postID uint) error {
	if p.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(PostSavedEvent{PostID: postID, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, PostSavedChannel, payload).Err()
}

// StartPostSavedSubscriber subscribes to PostSavedChannel and calls onEvent
// for each incoming event until ctx is cancelled.
func (p *Publisher) StartPostSavedSubscriber(
	ctx context.Context, onEvent func(ev PostSavedEvent),
) error {
	if p.rdb == nil {
		return nil
	}
	sub := p.rdb.Subscribe(ctx, PostSavedChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev PostSavedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("events: dropping malformed post-saved payload: %v", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in post-saved subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}

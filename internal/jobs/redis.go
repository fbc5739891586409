package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// enrichmentJob is the payload pushed onto the queue for each batch of new
// creatives
type enrichmentJob struct {
	Source      string    `json:"source"`
	CreativeIDs []int64   `json:"creative_ids"`
	QueuedAt    time.Time `json:"queued_at"`
}

// RedisDispatcher implements Dispatcher over a redis list. Workers pop jobs
// with BRPOP from the other end.
type RedisDispatcher struct {
	client *redis.Client
	queue  string
}

// NewRedisDispatcher creates a redis-backed enrichment dispatcher pushing
// onto the named queue
func NewRedisDispatcher(redisURL, queue string) (*RedisDispatcher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisDispatcher{client: client, queue: queue}, nil
}

// NewRedisDispatcherWithClient creates a dispatcher over an existing client
func NewRedisDispatcherWithClient(client *redis.Client, queue string) *RedisDispatcher {
	return &RedisDispatcher{client: client, queue: queue}
}

// DispatchEnrichment pushes one job covering the batch of new creative ids
func (d *RedisDispatcher) DispatchEnrichment(ctx context.Context, source string, creativeIDs []int64) error {
	if len(creativeIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(enrichmentJob{
		Source:      source,
		CreativeIDs: creativeIDs,
		QueuedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal enrichment job: %w", err)
	}

	if err := d.client.LPush(ctx, d.queue, payload).Err(); err != nil {
		return fmt.Errorf("failed to queue enrichment job: %w", err)
	}
	return nil
}

// Close closes the underlying redis client
func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}

// NopDispatcher discards all jobs. Used when no queue is configured and in
// dry runs.
type NopDispatcher struct{}

func (NopDispatcher) DispatchEnrichment(ctx context.Context, source string, creativeIDs []int64) error {
	return nil
}

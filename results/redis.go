package results

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"solveragent/types"
)

// RedisStore keeps result logs and checkpoints in Redis, for batch runs
// where many agent processes report to one place.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

var (
	_ Store           = (*RedisStore)(nil)
	_ CheckpointStore = (*RedisStore)(nil)
)

func resultsKey(runID string) string {
	return "results:" + runID
}

func (r *RedisStore) Append(ctx context.Context, runID string, rec Record) error {
	bs, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if err := r.client.RPush(ctx, resultsKey(runID), bs).Err(); err != nil {
		return fmt.Errorf("pushing record: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, runID string) ([]Record, error) {
	raw, err := r.client.LRange(ctx, resultsKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading result log: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("parsing record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *RedisStore) Save(ctx context.Context, runID string, n int, q types.TrainableQFunction) error {
	var buf bytes.Buffer
	if err := q.Checkpoint(&buf); err != nil {
		return fmt.Errorf("serializing checkpoint: %w", err)
	}
	key := fmt.Sprintf("checkpoint:%s:%d", runID, n)
	if err := r.client.Set(ctx, key, buf.Bytes(), 0).Err(); err != nil {
		return fmt.Errorf("storing checkpoint: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

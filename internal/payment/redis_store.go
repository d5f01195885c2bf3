package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// statusKeyPrefix namespaces payment status records in Redis.
const statusKeyPrefix = "payment:status:"

// RedisStatusStore implements StatusStore backed by Redis, for deployments
// running more than one gateway process. Merge is read-modify-write with
// last-writer-wins semantics per reference, which is sufficient because
// repeated deliveries of the same terminal payload converge to the same
// state.
type RedisStatusStore struct {
	client *redis.Client
}

// NewRedisStatusStore creates a Redis-backed status store.
func NewRedisStatusStore(client *redis.Client) *RedisStatusStore {
	return &RedisStatusStore{client: client}
}

// Get fetches and decodes the record for the reference.
func (s *RedisStatusStore) Get(ctx context.Context, reference string) (Record, bool, error) {
	data, err := s.client.Get(ctx, statusKeyPrefix+reference).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get status record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, fmt.Errorf("failed to decode status record: %w", err)
	}
	return record, true, nil
}

// Put encodes and stores the record. Records have no TTL; references are
// never reused, so entries stay queryable for the store's lifetime.
func (s *RedisStatusStore) Put(ctx context.Context, reference string, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode status record: %w", err)
	}
	if err := s.client.Set(ctx, statusKeyPrefix+reference, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to put status record: %w", err)
	}
	return nil
}

// Merge overlays the payload onto the stored record and writes it back.
func (s *RedisStatusStore) Merge(ctx context.Context, reference string, payload map[string]any) (Record, error) {
	record, ok, err := s.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !ok {
		record = make(Record, len(payload)+1)
	}
	record.Overlay(payload)

	if err := s.Put(ctx, reference, record); err != nil {
		return nil, err
	}
	return record, nil
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const snapshotKey = "catalog:snapshot"

// SnapshotLoader produces a fresh snapshot from the store.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
}

// Snapshots caches the known-entity snapshot in Redis with a short TTL.
// Concurrent cache misses are collapsed into a single store round trip.
// A nil Redis client degrades to loading straight from the store.
type Snapshots struct {
	loader SnapshotLoader
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewSnapshots instantiates the snapshot cache.
func NewSnapshots(loader SnapshotLoader, client *redis.Client, ttl time.Duration) *Snapshots {
	return &Snapshots{loader: loader, client: client, ttl: ttl}
}

// Load returns the cached snapshot, refreshing it on miss.
func (s *Snapshots) Load(ctx context.Context) (Snapshot, error) {
	if s.loader == nil {
		return Snapshot{}, errors.New("catalog: snapshot loader required")
	}
	if s.client != nil {
		payload, err := s.client.Get(ctx, snapshotKey).Bytes()
		if err == nil {
			var snap Snapshot
			if err := json.Unmarshal(payload, &snap); err == nil {
				return snap, nil
			}
			// fall through and rebuild on a corrupt payload
		} else if err != redis.Nil {
			return Snapshot{}, err
		}
	}
	value, err, _ := s.group.Do(snapshotKey, func() (any, error) {
		snap, err := s.loader.LoadSnapshot(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		if s.client != nil {
			raw, err := json.Marshal(snap)
			if err != nil {
				return Snapshot{}, err
			}
			if err := s.client.Set(ctx, snapshotKey, raw, s.ttl).Err(); err != nil {
				return Snapshot{}, err
			}
		}
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return value.(Snapshot), nil
}

// Invalidate drops the cached snapshot so the next load rebuilds it.
func (s *Snapshots) Invalidate(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, snapshotKey).Err()
}

package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls int
	snap  Snapshot
}

func (l *countingLoader) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	l.calls++
	return l.snap, nil
}

func testSnapshot() Snapshot {
	return Snapshot{
		Products: []KnownProduct{{
			Name: "Kripik Singkong", Variant: "Original", BaseUnit: "bungkus",
			ConversionRules: map[string]float64{"dus": 40},
		}},
		Suppliers: []KnownSupplier{{Name: "Toko Berkah", Phone: "0812345678"}},
	}
}

func TestSnapshotsCachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	loader := &countingLoader{snap: testSnapshot()}
	snapshots := NewSnapshots(loader, client, time.Minute)

	first, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Products, 1)
	require.Equal(t, "Toko Berkah", first.Suppliers[0].Name)

	second, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, loader.calls)
	require.InDelta(t, 40, second.Products[0].ConversionRules["dus"], 0.001)
}

func TestSnapshotsReloadsAfterInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	loader := &countingLoader{snap: testSnapshot()}
	snapshots := NewSnapshots(loader, client, time.Minute)

	_, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, snapshots.Invalidate(context.Background()))
	_, err = snapshots.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
}

func TestSnapshotsExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	loader := &countingLoader{snap: testSnapshot()}
	snapshots := NewSnapshots(loader, client, time.Second)

	_, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	_, err = snapshots.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
}

func TestSnapshotsWithoutRedis(t *testing.T) {
	loader := &countingLoader{snap: testSnapshot()}
	snapshots := NewSnapshots(loader, nil, time.Minute)

	snap, err := snapshots.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	require.NoError(t, snapshots.Invalidate(context.Background()))
}

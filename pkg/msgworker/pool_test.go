package msgworker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_DispatchNonBlocking(t *testing.T) {
	pool := New(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	ok := pool.TryDispatch(IngestionJob{
		GroupID: "group-1",
		Handler: func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	})
	elapsed := time.Since(start)

	require.True(t, ok)
	assert.Less(t, elapsed, 10*time.Millisecond, "TryDispatch must not block on job execution")
}

func TestPool_SameGroupSequentialProcessing(t *testing.T) {
	pool := New(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	var results []int
	var mu sync.Mutex

	for i := 1; i <= 5; i++ {
		val := i
		pool.TryDispatch(IngestionJob{
			GroupID: "group-1",
			Handler: func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		})
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results, "events for the same group must be processed in arrival order")
}

func TestPool_DifferentGroupsParallelProcessing(t *testing.T) {
	pool := New(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	var activeCount int32
	for i := 0; i < 4; i++ {
		groupID := string(rune('A' + i))
		pool.TryDispatch(IngestionJob{
			GroupID: groupID,
			Handler: func(ctx context.Context) error {
				atomic.AddInt32(&activeCount, 1)
				time.Sleep(50 * time.Millisecond)
				atomic.AddInt32(&activeCount, -1)
				return nil
			},
		})
	}

	time.Sleep(10 * time.Millisecond)
	active := atomic.LoadInt32(&activeCount)
	assert.GreaterOrEqual(t, active, int32(2), "different groups should be processed in parallel")
}

func TestPool_GracefulShutdownCompletesInFlightJobs(t *testing.T) {
	pool := New(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	var completed int32
	for i := 0; i < 2; i++ {
		pool.TryDispatch(IngestionJob{
			GroupID: string(rune('A' + i)),
			Handler: func(ctx context.Context) error {
				time.Sleep(50 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
				return nil
			},
		})
	}

	time.Sleep(10 * time.Millisecond)
	cancel()
	pool.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&completed), "in-flight jobs must complete on shutdown")
}

func TestPool_ConsistentHashing(t *testing.T) {
	pool := New(4, 100)

	shard1 := pool.shardForGroup("group-123")
	shard2 := pool.shardForGroup("group-123")
	shard3 := pool.shardForGroup("group-123")

	assert.Equal(t, shard1, shard2)
	assert.Equal(t, shard2, shard3)
	assert.GreaterOrEqual(t, shard1, 0)
	assert.Less(t, shard1, 4)
}

func TestPool_FairDistribution(t *testing.T) {
	numWorkers := 4
	pool := New(numWorkers, 100)

	shardCounts := make(map[int]int)
	for i := 0; i < 100; i++ {
		groupID := string(rune(i))
		shard := pool.shardForGroup(groupID)
		shardCounts[shard]++
	}

	for shard, count := range shardCounts {
		assert.Greater(t, count, 15, "worker %d should receive >15 groups", shard)
		assert.Less(t, count, 35, "worker %d should receive <35 groups", shard)
	}
}

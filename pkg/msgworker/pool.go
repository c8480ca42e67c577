// Package msgworker provides a per-group serialised worker pool: two
// events for the same group_id must never run concurrently and must be
// processed in arrival order, while different groups run in parallel up
// to the worker count. Adapted from the teacher's
// MessageWorkerPool (sharded by instanceID|chatJID); here the shard key is
// simply group_id, and consistent hashing onto a fixed set of single-
// consumer channels gives the ordering guarantee for free: every event for
// a given group always lands on the same worker's queue, which is drained
// by exactly one goroutine.
package msgworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// IngestionJob is one unit of work: process a single inbound event for GroupID.
type IngestionJob struct {
	GroupID string
	Handler func(ctx context.Context) error
}

// PoolStats reports runtime metrics, as returned by Pool.Stats; no HTTP route
// serves it.
type PoolStats struct {
	NumWorkers int `json:"num_workers"`
	QueueSize int `json:"queue_size"`
	ActiveWorkers int `json:"active_workers"`
	TotalDispatched int64 `json:"total_dispatched"`
	TotalProcessed int64 `json:"total_processed"`
	TotalDropped int64 `json:"total_dropped"`
	TotalErrors int64 `json:"total_errors"`
	WorkerStats []WorkerStats `json:"worker_stats"`
}

// WorkerStats reports per-worker metrics.
type WorkerStats struct {
	WorkerID int `json:"worker_id"`
	QueueDepth int `json:"queue_depth"`
	IsProcessing bool `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

// Pool is a fixed set of single-consumer workers, sharded by group id.
type Pool struct {
	numWorkers int
	queueSize int
	workers []*worker
	wg sync.WaitGroup
	stopOnce sync.Once
	stopped int32

	totalDispatched int64
	totalProcessed int64
	totalDropped int64
	totalErrors int64
}

type worker struct {
	id int
	jobQueue chan IngestionJob
	ctx context.Context
	cancel context.CancelFunc
	isProcessing int32
	jobsProcessed int64
	pool *Pool
}

// New creates a worker pool. numWorkers/queueSize fall back to sane
// defaults when non-positive (mirrors MESSAGE_WORKER_POOL_SIZE/
// MESSAGE_WORKER_QUEUE_SIZE defaults).
func New(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 8
	}
	if queueSize <= 0 {
		queueSize = 250
	}
	return &Pool{
		numWorkers: numWorkers,
		queueSize: queueSize,
		workers: make([]*worker, numWorkers),
	}
}

// Start launches all workers, each consuming its own queue sequentially.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id: i,
			jobQueue: make(chan IngestionJob, p.queueSize),
			ctx: workerCtx,
			cancel: cancel,
			pool: p,
		}
		p.workers[i] = w
		p.wg.Add(1)
		go w.run(&p.wg)
	}
	logrus.Infof("[INGESTION_POOL] started with %d workers, queue size %d", p.numWorkers, p.queueSize)
}

// TryDispatch enqueues a job without blocking; returns false when the
// target worker's queue is full or the pool has been stopped, so callers
// can apply their own back-pressure.
func (p *Pool) TryDispatch(job IngestionJob) bool {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardForGroup(job.GroupID)
	atomic.AddInt64(&p.totalDispatched, 1)

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if !sent {
		atomic.AddInt64(&p.totalDropped, 1)
		logrus.Warnf("[INGESTION_POOL] worker %d queue full, dropping job for group %s", shard, job.GroupID)
	}
	return sent
}

// Stop drains and stops every worker, waiting for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		logrus.Info("[INGESTION_POOL] stopping workers...")
		for _, w := range p.workers {
			w.cancel()
			close(w.jobQueue)
		}
		p.wg.Wait()
		logrus.Info("[INGESTION_POOL] all workers stopped")
	})
}

func (p *Pool) shardForGroup(groupID string) int {
	h := fnv.New32a()
	h.Write([]byte(groupID))
	return int(h.Sum32() % uint32(p.numWorkers))
}

// Stats returns a point-in-time snapshot of pool metrics.
func (p *Pool) Stats() PoolStats {
	workerStats := make([]WorkerStats, len(p.workers))
	activeWorkers := 0
	for i, w := range p.workers {
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}
		workerStats[i] = WorkerStats{
			WorkerID: w.id,
			QueueDepth: len(w.jobQueue),
			IsProcessing: isProcessing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		}
	}
	return PoolStats{
		NumWorkers: p.numWorkers,
		QueueSize: p.queueSize,
		ActiveWorkers: activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed: atomic.LoadInt64(&p.totalProcessed),
		TotalDropped: atomic.LoadInt64(&p.totalDropped),
		TotalErrors: atomic.LoadInt64(&p.totalErrors),
		WorkerStats: workerStats,
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	logrus.Debugf("[INGESTION_POOL] worker %d started", w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				logrus.Debugf("[INGESTION_POOL] worker %d shutting down", w.id)
				return
			}
			w.process(job)
		case <-w.ctx.Done():
			logrus.Debugf("[INGESTION_POOL] worker %d context cancelled, draining queue", w.id)
			w.drainQueue()
			return
		}
	}
}

func (w *worker) process(job IngestionJob) {
	atomic.StoreInt32(&w.isProcessing, 1)
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[INGESTION_POOL] worker %d panic for group %s: %v", w.id, job.GroupID, r)
		}
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&w.pool.totalProcessed, 1)
	}()

	if err := job.Handler(w.ctx); err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[INGESTION_POOL] worker %d job failed for group %s", w.id, job.GroupID)
	}
}

func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						atomic.AddInt64(&w.pool.totalErrors, 1)
						logrus.Errorf("[INGESTION_POOL] worker %d drain panic: %v", w.id, r)
					}
				}()
				if err := job.Handler(w.ctx); err != nil {
					logrus.WithError(err).Errorf("[INGESTION_POOL] worker %d drain job failed", w.id)
				}
			}()
		default:
			return
		}
	}
}

package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Pool runs report jobs on a fixed number of workers.
type Pool struct {
	runner     *Runner
	queue      chan Job
	workers    int
	jobTimeout time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	inFlight   atomic.Int64
	processed  atomic.Int64
}

type PoolStats struct {
	Queued    int   `json:"queued"`
	InFlight  int64 `json:"inFlight"`
	Processed int64 `json:"processed"`
}

func NewPool(runner *Runner, workers, queueSize int, jobTimeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 128
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		runner:     runner,
		queue:      make(chan Job, queueSize),
		workers:    workers,
		jobTimeout: jobTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Enqueue reports false when the queue is full or the pool is stopped.
func (p *Pool) Enqueue(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.queue <- job:
		return true
	default:
		return false
	}
}

// Stop cancels running jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) Stats() PoolStats {
	return PoolStats{Queued: len(p.queue), InFlight: p.inFlight.Load(), Processed: p.processed.Load()}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.queue:
			p.execute(job)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) execute(job Job) {
	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	defer p.processed.Add(1)

	ctx := p.ctx
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.jobTimeout)
		defer cancel()
	}
	_, run, err := p.runner.Run(ctx, job)
	if err != nil {
		p.runner.logger().Error("report job failed",
			slog.String("report_id", run.ID),
			slog.String("machine_id", job.MachineID),
			slog.String("error", err.Error()),
		)
		return
	}
	p.runner.logger().Info("report job completed",
		slog.String("report_id", run.ID),
		slog.String("machine_id", job.MachineID),
		slog.Int("entries", run.Entries),
		slog.Int("failed_entries", run.FailedEntries),
	)
}

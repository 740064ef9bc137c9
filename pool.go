package fdup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spf13/afero"
)

// hashJob asks a worker to digest the file described by record. seq is the
// record's discovery sequence number and travels through to the result so
// grouping can restore traversal order.
type hashJob struct {
	record FileRecord
	seq    uint64
}

// hashResult holds the outcome of a single hashing job.
type hashResult struct {
	record FileRecord
	seq    uint64
	digest string
	err    error
}

// hasherPool is a fixed set of worker goroutines that digest files from a
// bounded jobs channel and emit hashResults on a results channel. The small
// channel buffers provide backpressure: the scanner blocks on submit instead
// of enumerating unboundedly far ahead of hashing throughput.
type hasherPool struct {
	fs      afero.Fs
	newHash HashFunc
	workers int
	jobs    chan hashJob
	results chan hashResult
	wg      sync.WaitGroup
	logger  *slog.Logger
}

func newHasherPool(fsys afero.Fs, newHash HashFunc, workers int, logger *slog.Logger) *hasherPool {
	return &hasherPool{
		fs:      fsys,
		newHash: newHash,
		workers: workers,
		jobs:    make(chan hashJob, workers*2),
		results: make(chan hashResult, workers*2),
		logger:  logger,
	}
}

// start launches the worker goroutines. Each reads from the jobs channel
// until it is closed or ctx is cancelled.
func (p *hasherPool) start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// submit enqueues a job, blocking while the buffer is full. It returns false
// if ctx was cancelled before the job could be accepted.
func (p *hasherPool) submit(ctx context.Context, job hashJob) bool {
	select {
	case p.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// shutdown closes the jobs channel, waits for the workers to drain it, then
// closes the results channel so the consumer terminates. Safe to call once.
func (p *hasherPool) shutdown() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

func (p *hasherPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			digest, err := digestFile(p.fs, job.record.Path, p.newHash)
			if err != nil {
				// A file deleted mid-read or a revoked permission only
				// fails this job, never its siblings.
				p.logger.Warn("hashing failed",
					slog.Int("worker_id", id),
					slog.String("path", job.record.Path),
					slog.String("error", err.Error()),
				)
			}
			select {
			case p.results <- hashResult{record: job.record, seq: job.seq, digest: digest, err: err}:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

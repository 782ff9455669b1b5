package workerpool

import (
	"context"
	"fmt"
	"sync"
)

// Job is one unit of work submitted to a Pool: an index (copied onto its
// Result and into error messages) and an opaque payload.
type Job[T any] struct {
	Index   int
	Payload T
}

// Result is the outcome of running one Job.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Work is the function a Pool applies to each job.
type Work[T, R any] func(ctx context.Context, payload T) (R, error)

// Pool runs a fixed number of goroutine workers pulling jobs from a
// shared channel, grounded on the fixed-size, channel-backed worker pool
// used elsewhere in this codebase's lineage for pooling reusable workers
// behind a buffered channel: here the pooled resource is a goroutine
// slot rather than a VM isolate, but the shape — a fixed number of
// workers fed from one job channel, with bookkeeping behind a mutex — is
// the same.
type Pool[T, R any] struct {
	size int
	mu   sync.Mutex
}

// New returns a Pool with the given number of concurrent workers. A size
// less than 1 is treated as 1.
func New[T, R any](size int) *Pool[T, R] {
	if size < 1 {
		size = 1
	}
	return &Pool[T, R]{size: size}
}

// Run executes work over every job, using up to p.size goroutines. It
// blocks until every job has completed, been skipped by a context
// cancellation, or one job's error tears down the remaining in-flight
// work. Results are returned in the order of jobs regardless of
// completion order. The first error encountered is returned after every launched
// worker has exited, so the pool never leaves goroutines running past
// Run's return (no orphaned workers, matching the cancellation
// guarantee the harness promises).
func (p *Pool[T, R]) Run(ctx context.Context, jobs []Job[T], work Work[T, R]) ([]Result[R], error) {
	p.mu.Lock()
	size := p.size
	p.mu.Unlock()
	if size > len(jobs) {
		size = len(jobs)
	}
	if size < 1 {
		size = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobCh := make(chan Job[T])
	resultCh := make(chan Result[R], len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < size; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				select {
				case <-ctx.Done():
					resultCh <- Result[R]{Index: job.Index, Err: ctx.Err()}
					continue
				default:
				}
				v, err := work(ctx, job.Payload)
				resultCh <- Result[R]{Index: job.Index, Value: v, Err: err}
				if err != nil {
					cancel()
				}
			}
		}()
	}

	go func() {
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-ctx.Done():
			}
		}
		close(jobCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	pos := make(map[int]int, len(jobs))
	for i, j := range jobs {
		pos[j.Index] = i
	}

	results := make([]Result[R], len(jobs))
	var firstErr error
	for r := range resultCh {
		results[pos[r.Index]] = r
		if r.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("worker job %d: %w", r.Index, r.Err)
		}
	}

	return results, firstErr
}

// Package batch is the bounded-concurrency batch-decode driver adapted
// from stash's pkg/job.TaskQueue: a channel of pending work drained by a
// fixed-size worker pool built on github.com/remeh/sizedwaitgroup,
// generalized here from arbitrary background jobs to one thing —
// calling dispatch.Decode on every file in a batch.
package batch

import (
	"context"
	"sync/atomic"

	"github.com/remeh/sizedwaitgroup"

	"github.com/hardenmedia/mediaharden/pkg/dispatch"
	telemetrylog "github.com/hardenmedia/mediaharden/internal/telemetry/log"
)

// Result is one file's outcome in a batch run.
type Result struct {
	Path string
	Err  error
}

type taskExec struct {
	path string
	data []byte
}

// Queue runs decode calls for a batch of files with bounded
// concurrency, mirroring TaskQueue's channel-plus-executor shape.
type Queue struct {
	wg      sizedwaitgroup.SizedWaitGroup
	tasks   chan taskExec
	results chan Result
	done    chan struct{}

	succeeded int64
	failed    int64
}

// NewQueue starts the executor goroutine immediately; callers Add work
// and then Close to drain it.
func NewQueue(ctx context.Context, queueSize, concurrency int) *Queue {
	q := &Queue{
		wg:      sizedwaitgroup.New(concurrency),
		tasks:   make(chan taskExec, queueSize),
		results: make(chan Result, queueSize),
		done:    make(chan struct{}),
	}
	go q.executer(ctx)
	return q
}

// Add enqueues one file for decode. It blocks if the queue is full,
// which is the back-pressure signal callers should respect rather than
// spawn unbounded goroutines of their own.
func (q *Queue) Add(path string, data []byte) {
	q.tasks <- taskExec{path: path, data: data}
}

// Results returns the channel Add's outcomes are published on. Callers
// should range over it after calling Close.
func (q *Queue) Results() <-chan Result {
	return q.results
}

// Close stops accepting new work and waits for everything already
// queued to finish. Once the queue's context is cancelled, tasks still
// waiting in the queue are dropped without a Result; tasks already
// started run to completion.
func (q *Queue) Close() {
	close(q.tasks)
	<-q.done
}

// Counts returns the number of files decoded successfully and
// unsuccessfully so far.
func (q *Queue) Counts() (succeeded, failed int64) {
	return atomic.LoadInt64(&q.succeeded), atomic.LoadInt64(&q.failed)
}

func (q *Queue) executer(ctx context.Context) {
	defer close(q.done)
	defer close(q.results)
	defer q.wg.Wait()

	for t := range q.tasks {
		if ctx.Err() != nil {
			return
		}
		tt := t
		q.wg.Add()
		go func() {
			defer q.wg.Done()
			_, err := dispatch.Decode(ctx, tt.data)
			if err != nil {
				atomic.AddInt64(&q.failed, 1)
				telemetrylog.Warnf("[batch] %s: %v", tt.path, err)
			} else {
				atomic.AddInt64(&q.succeeded, 1)
			}
			q.results <- Result{Path: tt.path, Err: err}
		}()
	}
}

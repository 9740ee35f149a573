package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kemograb/pkg/kemono"
	"kemograb/pkg/logger"
)

// Status describes the outcome of a post job
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job is a unit of work for the pool: one post to download
type Job struct {
	Post kemono.PostSummary
}

// Result reports what happened to a job
type Result struct {
	Job             Job
	Status          Status
	Err             error
	FilesDownloaded int
	FilesFailed     int
	Duration        time.Duration
}

// PostDownloader processes a single post end to end
type PostDownloader interface {
	DownloadPost(ctx context.Context, post kemono.PostSummary) Result
}

// WorkerPool fans post jobs out over a fixed number of workers. Each
// worker owns its post from fetch through file writes.
type WorkerPool struct {
	numWorkers  int
	engine      PostDownloader
	logger      logger.Logger
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewWorkerPool creates a pool with the given concurrency
func NewWorkerPool(ctx context.Context, numWorkers int, engine PostDownloader, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		numWorkers:  numWorkers,
		engine:      engine,
		logger:      log,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers*2),
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.logger.WithField("workers", wp.numWorkers).Debug("Starting worker pool")
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the job queue, waits for in-flight jobs to finish and
// closes the result channel.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit queues a job. It returns an error if the pool's context is done.
func (wp *WorkerPool) Submit(job Job) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel jobs are reported on
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		result := wp.engine.DownloadPost(wp.ctx, job.Post)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

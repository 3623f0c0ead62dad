// File: internal/service/jobs.go
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/downloader"
)

// ErrQueueFull signals that the bounded job queue cannot accept more work.
var ErrQueueFull = errors.New("download queue is full")

// JobStatus tracks a queued download through its lifecycle.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// PostRunner executes one post download end to end.
type PostRunner interface {
	Run(ctx context.Context, postURL string) ([]downloader.Result, error)
}

// Job is one accepted download request.
type Job struct {
	ID      string    `json:"id"`
	PostURL string    `json:"post_url"`
	Status  JobStatus `json:"status"`
	Error   string    `json:"error,omitempty"`
	Files   []string  `json:"files,omitempty"`
}

// JobQueue serializes downloads through a single worker. Browser-driven
// extraction is heavyweight; running posts one at a time keeps Chrome
// resource usage predictable.
type JobQueue struct {
	runner PostRunner
	jobs   chan string
	log    *zap.Logger

	mu      sync.RWMutex
	records map[string]*Job

	wg sync.WaitGroup
}

// NewJobQueue builds a queue with the given capacity.
func NewJobQueue(runner PostRunner, capacity int, logger *zap.Logger) *JobQueue {
	return &JobQueue{
		runner:  runner,
		jobs:    make(chan string, capacity),
		records: make(map[string]*Job),
		log:     logger.Named("jobs"),
	}
}

// Start launches the worker goroutine. It drains until ctx is cancelled.
func (q *JobQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case id := <-q.jobs:
				q.process(ctx, id)
			}
		}
	}()
}

// Wait blocks until the worker has exited.
func (q *JobQueue) Wait() {
	q.wg.Wait()
}

// Enqueue accepts a post URL for download and returns the job ID. A full
// queue rejects with ErrQueueFull.
func (q *JobQueue) Enqueue(postURL string) (string, error) {
	job := &Job{
		ID:      uuid.NewString(),
		PostURL: postURL,
		Status:  JobQueued,
	}

	q.mu.Lock()
	q.records[job.ID] = job
	q.mu.Unlock()

	select {
	case q.jobs <- job.ID:
		q.log.Info("Download job accepted.", zap.String("job_id", job.ID), zap.String("url", postURL))
		return job.ID, nil
	default:
		q.mu.Lock()
		delete(q.records, job.ID)
		q.mu.Unlock()
		return "", ErrQueueFull
	}
}

// Lookup returns a snapshot of the job with the given ID.
func (q *JobQueue) Lookup(id string) (Job, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.records[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (q *JobQueue) process(ctx context.Context, id string) {
	q.setStatus(id, JobRunning, "", nil)

	q.mu.RLock()
	job, ok := q.records[id]
	q.mu.RUnlock()
	if !ok {
		return
	}

	results, err := q.runner.Run(ctx, job.PostURL)
	if err != nil {
		q.log.Error("Download job failed.", zap.String("job_id", id), zap.Error(err))
		q.setStatus(id, JobFailed, err.Error(), nil)
		return
	}

	var files []string
	for _, res := range results {
		if res.Err == nil && res.Path != "" {
			files = append(files, res.Path)
		}
	}
	q.log.Info("Download job completed.", zap.String("job_id", id), zap.Int("files", len(files)))
	q.setStatus(id, JobCompleted, "", files)
}

func (q *JobQueue) setStatus(id string, status JobStatus, errMsg string, files []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.records[id]; ok {
		job.Status = status
		job.Error = errMsg
		job.Files = files
	}
}

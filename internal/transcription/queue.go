package transcription

import (
	"context"
	"log"
	"sync"
)

// Processor handles one job end to end.
type Processor interface {
	ProcessJob(ctx context.Context, jobID string)
}

// Queue upserts job rows and hands them to an in-process worker pool without
// waiting for the result. There is no durable broker behind this: a crash
// while a job is PROCESSING leaves it stuck until someone re-enqueues the
// lesson. That is the accepted scope of this service.
type Queue struct {
	repo      *Repo
	processor Processor

	jobs      chan string
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewQueue(repo *Repo, processor Processor, concurrency int) *Queue {
	if concurrency <= 0 {
		concurrency = 2
	}
	q := &Queue{
		repo:      repo,
		processor: processor,
		jobs:      make(chan string, concurrency*4),
	}

	q.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer q.wg.Done()
			for jobID := range q.jobs {
				q.processor.ProcessJob(context.Background(), jobID)
			}
		}()
	}
	return q
}

// Enqueue upserts the lesson's job to PENDING and dispatches it without
// waiting. It returns the job id, or "" when the upsert fails; failures are
// logged rather than surfaced because enqueueing is an auxiliary step of the
// content-update flows that call it.
func (q *Queue) Enqueue(ctx context.Context, lessonID string) string {
	log.Printf("[Queue] enqueuing transcription for lesson %s", lessonID)

	job, err := q.repo.UpsertPending(ctx, lessonID)
	if err != nil {
		log.Printf("[Queue] failed to enqueue job for lesson %s: %v", lessonID, err)
		return ""
	}

	select {
	case q.jobs <- job.ID:
	default:
		// Pool backlog is full; fire-and-forget must still not block the
		// caller, so this job runs on its own goroutine.
		log.Printf("[Queue] worker pool saturated, running job %s detached", job.ID)
		go q.processor.ProcessJob(context.Background(), job.ID)
	}

	log.Printf("[Queue] job %s created and processing triggered", job.ID)
	return job.ID
}

// Close stops accepting pooled work and waits for in-flight jobs.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.jobs)
	})
	q.wg.Wait()
}

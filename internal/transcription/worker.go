package transcription

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/learnassure/course-assistant/internal/course"
	"github.com/learnassure/course-assistant/internal/metrics"
)

// BlobStore fetches a video object to a local temp file.
type BlobStore interface {
	DownloadToTemp(ctx context.Context, objectName string) (string, error)
}

// Indexer rebuilds a lecture's search chunks from its transcript.
type Indexer interface {
	ReindexTranscript(ctx context.Context, courseID, lectureTitle, text string) error
}

// ContextCache invalidates cached lesson context after a transcript lands.
type ContextCache interface {
	InvalidateLessonContext(ctx context.Context, lessonID string)
}

type Worker struct {
	repo    *Repo
	courses *course.Repo
	engine  Engine

	// optional collaborators; nil disables the concern
	blob    BlobStore
	indexer Indexer
	cache   ContextCache

	mediaRoot string
}

func NewWorker(repo *Repo, courses *course.Repo, engine Engine, mediaRoot string) *Worker {
	return &Worker{
		repo:      repo,
		courses:   courses,
		engine:    engine,
		mediaRoot: mediaRoot,
	}
}

func (w *Worker) WithBlobStore(b BlobStore) *Worker      { w.blob = b; return w }
func (w *Worker) WithIndexer(ix Indexer) *Worker         { w.indexer = ix; return w }
func (w *Worker) WithContextCache(c ContextCache) *Worker { w.cache = c; return w }

// ProcessJob runs one transcription job to a terminal state. It never
// returns an error and never panics out: every failure path, including a
// panic below, lands the job in FAILED with a message. A temp file created
// for a blob download is removed on every path.
func (w *Worker) ProcessJob(ctx context.Context, jobID string) {
	log.Printf("[Worker] starting processing for job %s", jobID)
	start := time.Now()

	var tempFile string
	defer func() {
		if tempFile != "" {
			if err := os.Remove(tempFile); err != nil && !os.IsNotExist(err) {
				log.Printf("[Worker] temp file cleanup failed for job %s: %v", jobID, err)
			}
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			w.fail(ctx, jobID, fmt.Sprintf("panic: %v", r))
		}
	}()

	job, err := w.repo.GetJob(ctx, jobID)
	if err != nil {
		log.Printf("[Worker] job %s not loadable: %v", jobID, err)
		return
	}

	lesson, err := w.courses.GetLesson(ctx, job.LessonID)
	if err != nil || strings.TrimSpace(lesson.VideoURL) == "" {
		w.fail(ctx, jobID, "invalid job data or missing video URL")
		return
	}

	if err := w.repo.SetProcessing(ctx, jobID); err != nil {
		log.Printf("[Worker] job %s: set processing failed: %v", jobID, err)
	}

	videoPath, temp, err := w.resolveVideo(ctx, lesson.VideoURL)
	tempFile = temp
	if err != nil {
		w.fail(ctx, jobID, err.Error())
		return
	}

	text, err := w.engine.Transcribe(ctx, videoPath)
	if err != nil {
		w.fail(ctx, jobID, err.Error())
		return
	}

	if err := w.repo.CompleteJob(ctx, jobID, job.LessonID, text, "en"); err != nil {
		w.fail(ctx, jobID, fmt.Sprintf("persist transcript: %v", err))
		return
	}

	metrics.TranscriptionJobs.WithLabelValues("completed").Inc()
	metrics.TranscriptionDuration.Observe(time.Since(start).Seconds())

	if w.cache != nil {
		w.cache.InvalidateLessonContext(ctx, job.LessonID)
	}

	// Best effort: the transcript is already safe, so an indexing failure
	// must not take the job back out of COMPLETED.
	if w.indexer != nil {
		if err := w.indexer.ReindexTranscript(ctx, lesson.CourseID, lesson.Title, text); err != nil {
			log.Printf("[Worker] job %s: search index rebuild failed: %v", jobID, err)
		}
	}

	log.Printf("[Worker] job %s completed in %s", jobID, time.Since(start))
}

// resolveVideo returns an absolute, locally readable path for the lesson's
// video. It tries the local media root first and falls back to downloading
// the object from blob storage. The second return value names a temp file
// the caller must remove, or "".
func (w *Worker) resolveVideo(ctx context.Context, videoURL string) (string, string, error) {
	rel := strings.TrimPrefix(videoURL, "/")
	local := filepath.Join(w.mediaRoot, rel)

	if _, err := os.Stat(local); err == nil {
		return local, "", nil
	}

	if w.blob != nil {
		tmp, err := w.blob.DownloadToTemp(ctx, rel)
		if err == nil {
			return tmp, tmp, nil
		}
		log.Printf("[Worker] blob download failed for %q: %v", rel, err)
	}

	return "", "", fmt.Errorf("video file not found at %s or in blob storage", local)
}

func (w *Worker) fail(ctx context.Context, jobID, msg string) {
	log.Printf("[Worker] job %s failed: %s", jobID, msg)
	metrics.TranscriptionJobs.WithLabelValues("failed").Inc()
	if err := w.repo.MarkFailed(ctx, jobID, msg); err != nil {
		log.Printf("[Worker] job %s: mark failed errored: %v", jobID, err)
	}
}

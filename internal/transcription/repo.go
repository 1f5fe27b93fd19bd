package transcription

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/learnassure/course-assistant/internal/common"
	"github.com/learnassure/course-assistant/internal/course"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// UpsertPending creates the lesson's job row or resets the existing one to
// PENDING, clearing any prior error and attempt count.
func (r *Repo) UpsertPending(ctx context.Context, lessonID string) (*Job, error) {
	var job Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("lesson_id = ?", lessonID).First(&job).Error
		if findErr == nil {
			job.Status = StatusPending
			job.Error = nil
			job.Attempts = 0
			return tx.Model(&Job{}).Where("id = ?", job.ID).
				Updates(map[string]any{
					"status":   StatusPending,
					"error":    nil,
					"attempts": 0,
				}).Error
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		id, idErr := common.NewULID()
		if idErr != nil {
			return idErr
		}
		job = Job{ID: id, LessonID: lessonID, Status: StatusPending}
		return tx.Create(&job).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *Repo) GetJob(ctx context.Context, id string) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) GetJobByLesson(ctx context.Context, lessonID string) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).First(&j, "lesson_id = ?", lessonID).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// SetProcessing flips the row to PROCESSING and counts the pickup.
func (r *Repo) SetProcessing(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   StatusProcessing,
			"attempts": gorm.Expr("attempts + 1"),
		}).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": StatusFailed,
			"error":  errMsg,
		}).Error
}

// CompleteJob applies the success writes as one transaction: the transcript
// upsert, the COMPLETED status, and the lesson ready flag. Either all three
// land or none do.
func (r *Repo) CompleteJob(ctx context.Context, jobID, lessonID, content, language string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Transcript
		findErr := tx.Where("lesson_id = ?", lessonID).First(&t).Error
		switch {
		case findErr == nil:
			if err := tx.Model(&Transcript{}).Where("id = ?", t.ID).
				Updates(map[string]any{"content": content, "language": language}).Error; err != nil {
				return err
			}
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			t = Transcript{LessonID: lessonID, Content: content, Language: language}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
		default:
			return findErr
		}

		if err := tx.Model(&Job{}).Where("id = ?", jobID).
			Updates(map[string]any{"status": StatusCompleted, "error": nil}).Error; err != nil {
			return err
		}

		return tx.Model(&course.Lesson{}).Where("id = ?", lessonID).
			Update("is_ready", true).Error
	})
}

func (r *Repo) GetTranscriptByLesson(ctx context.Context, lessonID string) (*Transcript, error) {
	var t Transcript
	if err := r.db.WithContext(ctx).First(&t, "lesson_id = ?", lessonID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

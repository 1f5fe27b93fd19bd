package course

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetLesson(ctx context.Context, id string) (*Lesson, error) {
	var l Lesson
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) GetCourse(ctx context.Context, id string) (*Course, error) {
	var c Course
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SetVideoURL stores the lesson's video location and drops the ready flag
// until a fresh transcript lands. Reports gorm.ErrRecordNotFound when no
// such lesson exists.
func (r *Repo) SetVideoURL(ctx context.Context, lessonID, videoURL string) error {
	res := r.db.WithContext(ctx).Model(&Lesson{}).
		Where("id = ?", lessonID).
		Updates(map[string]any{"video_url": videoURL, "is_ready": false})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsInstructorOf reports whether userID owns the course the lesson belongs to.
func (r *Repo) IsInstructorOf(ctx context.Context, userID, lessonID string) (bool, error) {
	lesson, err := r.GetLesson(ctx, lessonID)
	if err != nil {
		return false, err
	}
	c, err := r.GetCourse(ctx, lesson.CourseID)
	if err != nil {
		return false, err
	}
	return c.InstructorID == userID, nil
}

package rag

import (
	"context"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Replace swaps out every chunk stored under (courseID, lectureTitle) for the
// given fresh set, inside one transaction. This is a full replacement, not a
// merge: reindexing the same text twice leaves the same rows. Readers racing
// the transaction may briefly see zero chunks for the key.
func (s *Store) Replace(ctx context.Context, courseID, lectureTitle string, chunks []Chunk) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ? AND lecture_title = ?", courseID, lectureTitle).
			Delete(&Chunk{}).Error; err != nil {
			return err
		}
		for i := range chunks {
			chunks[i].ID = 0
			chunks[i].CourseID = courseID
			chunks[i].LectureTitle = lectureTitle
			if err := tx.Create(&chunks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByCourse loads every chunk for a course. Retrieval is a linear scan
// over these rows; fine for course-sized corpora, not for millions of rows.
func (s *Store) ListByCourse(ctx context.Context, courseID string) ([]Chunk, error) {
	var chunks []Chunk
	if err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Find(&chunks).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *Store) CountByLecture(ctx context.Context, courseID, lectureTitle string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Chunk{}).
		Where("course_id = ? AND lecture_title = ?", courseID, lectureTitle).
		Count(&n).Error
	return n, err
}

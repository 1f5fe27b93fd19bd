package rag

import "time"

// Chunk is a bounded slice of lecture text stored with its embedding.
//
// Chunks are keyed by (course_id, lecture_title), not by lesson id: two
// lessons in one course sharing a title will merge their chunks. The main
// LMS schema never linked chunks to lessons, and changing the key here would
// change what a reindex deletes, so the proxy key is kept as-is.
type Chunk struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID     string    `gorm:"size:26;not null;index:idx_chunk_course_lecture,priority:1" json:"course_id"`
	LectureTitle string    `gorm:"size:255;not null;index:idx_chunk_course_lecture,priority:2" json:"lecture_title"`
	ChunkText    string    `gorm:"type:text;not null" json:"chunk_text"`
	// JSON-serialized vector in a plain text column; portable across drivers
	// at the cost of parsing on every scan.
	Embedding string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Chunk) TableName() string { return "lecture_chunks" }

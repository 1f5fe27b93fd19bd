package transcription

import "time"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Job tracks transcription of one lesson's video. A lesson has at most one
// job row: re-enqueuing overwrites the existing row in place, including while
// a prior run is still PROCESSING (the running worker and the fresh enqueue
// then race on the same row; known, accepted).
//
// There is no built-in retry. Attempts only counts how often the row was
// picked up; retries have to be driven from outside.
type Job struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	LessonID  string    `gorm:"size:26;uniqueIndex;not null" json:"lesson_id"`
	Status    Status    `gorm:"type:varchar(16);index;not null" json:"status"`
	Error     *string   `gorm:"type:text" json:"error"`
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Job) TableName() string { return "transcription_jobs" }

// Transcript holds the full text produced for a lesson's video. Created or
// replaced only when a job completes.
type Transcript struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	LessonID  string    `gorm:"size:26;uniqueIndex;not null" json:"lesson_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Language  string    `gorm:"size:8;not null;default:en" json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Transcript) TableName() string { return "transcripts" }

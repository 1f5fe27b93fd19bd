package course

import "time"

// Course and Lesson records are owned by the main LMS; this service reads
// them and flips Lesson.IsReady after a successful transcription.

type Course struct {
	ID           string    `gorm:"primaryKey;size:26" json:"id"`
	InstructorID string    `gorm:"size:26;index;not null" json:"-"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Subject      string    `gorm:"size:128" json:"subject"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Course) TableName() string { return "courses" }

type Lesson struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	CourseID  string    `gorm:"size:26;index;not null" json:"course_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"` // instructor notes
	VideoURL  string    `gorm:"size:512" json:"video_url"`
	IsReady   bool      `gorm:"not null;default:false" json:"is_ready"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lesson) TableName() string { return "lessons" }

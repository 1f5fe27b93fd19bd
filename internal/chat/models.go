package chat

import "time"

const (
	SenderStudent = "student"
	SenderAI      = "ai"
)

// Message is one row of the append-only per-course chat log. Rows are never
// updated or deleted here.
type Message struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID    string    `gorm:"size:26;index;not null" json:"course_id"`
	Sender      string    `gorm:"type:varchar(16);not null" json:"sender"`
	MessageText string    `gorm:"type:text;not null" json:"message_text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }

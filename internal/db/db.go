package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/learnassure/course-assistant/internal/chat"
	"github.com/learnassure/course-assistant/internal/course"
	"github.com/learnassure/course-assistant/internal/rag"
	"github.com/learnassure/course-assistant/internal/transcription"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}

func Migrate(gdb *gorm.DB) {
	if err := gdb.AutoMigrate(
		&course.Course{},
		&course.Lesson{},
		&transcription.Job{},
		&transcription.Transcript{},
		&rag.Chunk{},
		&chat.Message{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}
}

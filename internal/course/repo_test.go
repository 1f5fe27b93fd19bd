package course

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Course{}, &Lesson{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestSetVideoURL_ResetsReadiness(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	if err := db.Create(&Lesson{
		ID:       "lesson-1",
		CourseID: "course-1",
		Title:    "Loops",
		IsReady:  true,
	}).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	if err := repo.SetVideoURL(ctx, "lesson-1", "/videos/loops.mp4"); err != nil {
		t.Fatalf("set video url: %v", err)
	}

	lesson, err := repo.GetLesson(ctx, "lesson-1")
	if err != nil {
		t.Fatalf("get lesson: %v", err)
	}
	if lesson.VideoURL != "/videos/loops.mp4" {
		t.Fatalf("unexpected video url: %q", lesson.VideoURL)
	}
	if lesson.IsReady {
		t.Fatalf("new video must reset the ready flag")
	}
}

func TestSetVideoURL_MissingLesson(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	err := repo.SetVideoURL(context.Background(), "no-such-lesson", "/videos/x.mp4")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestIsInstructorOf(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	if err := db.Create(&Course{ID: "course-1", InstructorID: "teacher-1", Title: "Go"}).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	if err := db.Create(&Lesson{ID: "lesson-1", CourseID: "course-1", Title: "Loops"}).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	owns, err := repo.IsInstructorOf(ctx, "teacher-1", "lesson-1")
	if err != nil {
		t.Fatalf("ownership check: %v", err)
	}
	if !owns {
		t.Fatalf("expected ownership for the course instructor")
	}

	owns, err = repo.IsInstructorOf(ctx, "someone-else", "lesson-1")
	if err != nil {
		t.Fatalf("ownership check: %v", err)
	}
	if owns {
		t.Fatalf("expected no ownership for a stranger")
	}

	if _, err := repo.IsInstructorOf(ctx, "teacher-1", "no-such-lesson"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for missing lesson, got %v", err)
	}
}

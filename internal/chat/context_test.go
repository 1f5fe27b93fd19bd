package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/learnassure/course-assistant/internal/course"
	"github.com/learnassure/course-assistant/internal/rag"
	"github.com/learnassure/course-assistant/internal/transcription"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&course.Course{},
		&course.Lesson{},
		&transcription.Job{},
		&transcription.Transcript{},
		&rag.Chunk{},
		&Message{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedLesson(t *testing.T, db *gorm.DB, lessonID, courseID, title, notes string) {
	t.Helper()
	if err := db.Create(&course.Lesson{
		ID:       lessonID,
		CourseID: courseID,
		Title:    title,
		Content:  notes,
	}).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
}

func newTestContextBuilder(db *gorm.DB) *ContextBuilder {
	// nil redis store: cache calls are nil-safe no-ops
	return NewContextBuilder(course.NewRepo(db), transcription.NewRepo(db), nil)
}

func TestOptimizeTranscript_WithinBudgetVerbatim(t *testing.T) {
	text := strings.Repeat("a", maxTranscriptChars)
	if got := optimizeTranscript(text); got != text {
		t.Fatalf("transcript at the budget should pass through verbatim")
	}
}

func TestOptimizeTranscript_OverBudget(t *testing.T) {
	head := strings.Repeat("h", 12000)
	tail := strings.Repeat("t", 12000)
	got := optimizeTranscript(head + tail)

	if !strings.Contains(got, truncationMarker) {
		t.Fatalf("expected truncation marker in output")
	}
	if !strings.HasPrefix(got, strings.Repeat("h", 10500)) {
		t.Fatalf("expected 10500-char head kept")
	}
	if !strings.HasSuffix(got, strings.Repeat("t", 4500)) {
		t.Fatalf("expected 4500-char tail kept")
	}
	if want := 10500 + len(truncationMarker) + 4500; len(got) != want {
		t.Fatalf("expected %d chars, got %d", want, len(got))
	}
}

func TestOptimizeTranscript_NeverSplitsRunes(t *testing.T) {
	// ASCII prefix shifts the 3-byte runes off the byte cut points, so both
	// the head and tail cuts land mid-rune without snapping
	text := "ab" + strings.Repeat("日", 12000) + "yz"
	got := optimizeTranscript(text)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated transcript contains invalid UTF-8")
	}
	if !strings.Contains(got, truncationMarker) {
		t.Fatalf("expected truncation marker in output")
	}
	if len(got) > maxTranscriptChars+len(truncationMarker) {
		t.Fatalf("truncation exceeded the budget: %d bytes", len(got))
	}
	head := got[:strings.Index(got, truncationMarker)]
	tail := got[strings.Index(got, truncationMarker)+len(truncationMarker):]
	if !utf8.ValidString(head) || !utf8.ValidString(tail) {
		t.Fatalf("head or tail cut through a rune")
	}
	if len(head) == 0 || len(tail) == 0 {
		t.Fatalf("both head and tail must survive truncation")
	}
}

func TestLessonContext_MissingLessonIsNil(t *testing.T) {
	db := openTestDB(t)
	b := newTestContextBuilder(db)

	lc, err := b.LessonContext(context.Background(), "no-such-lesson")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc != nil {
		t.Fatalf("expected nil context for missing lesson, got %+v", lc)
	}
}

func TestLessonContext_NotesOnly(t *testing.T) {
	db := openTestDB(t)
	b := newTestContextBuilder(db)

	seedLesson(t, db, "lesson-1", "course-1", "Loops", "Loops execute repeatedly.")

	lc, err := b.LessonContext(context.Background(), "lesson-1")
	if err != nil {
		t.Fatalf("lesson context: %v", err)
	}
	if lc == nil {
		t.Fatalf("expected context")
	}
	if !lc.HasContent() {
		t.Fatalf("notes should count as content")
	}
	if !strings.HasPrefix(lc.Combined, "Title: Loops\n\n") {
		t.Fatalf("combined should open with the title line: %q", lc.Combined)
	}
	if !strings.Contains(lc.Combined, "[INSTRUCTOR NOTES]\nLoops execute repeatedly.") {
		t.Fatalf("combined missing notes section: %q", lc.Combined)
	}
	if strings.Contains(lc.Combined, "[VIDEO TRANSCRIPT]") {
		t.Fatalf("no transcript section expected: %q", lc.Combined)
	}
}

func TestLessonContext_WithTranscript(t *testing.T) {
	db := openTestDB(t)
	b := newTestContextBuilder(db)

	seedLesson(t, db, "lesson-2", "course-1", "Slices", "")
	if err := db.Create(&transcription.Transcript{
		LessonID: "lesson-2",
		Content:  "today we cover slices",
		Language: "en",
	}).Error; err != nil {
		t.Fatalf("seed transcript: %v", err)
	}

	lc, err := b.LessonContext(context.Background(), "lesson-2")
	if err != nil {
		t.Fatalf("lesson context: %v", err)
	}
	if !strings.Contains(lc.Combined, "[VIDEO TRANSCRIPT]\ntoday we cover slices") {
		t.Fatalf("combined missing transcript section: %q", lc.Combined)
	}
	if strings.Contains(lc.Combined, "[INSTRUCTOR NOTES]") {
		t.Fatalf("no notes section expected for blank notes: %q", lc.Combined)
	}
}

func TestLessonContext_NoContent(t *testing.T) {
	db := openTestDB(t)
	b := newTestContextBuilder(db)

	seedLesson(t, db, "lesson-3", "course-1", "Untitled", "   ")

	lc, err := b.LessonContext(context.Background(), "lesson-3")
	if err != nil {
		t.Fatalf("lesson context: %v", err)
	}
	if lc == nil {
		t.Fatalf("lesson exists, context should not be nil")
	}
	if lc.HasContent() {
		t.Fatalf("blank notes and no transcript should report no content")
	}
}

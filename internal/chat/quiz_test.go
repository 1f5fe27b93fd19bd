package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/learnassure/course-assistant/internal/transcription"
)

func quizJSON(n int) string {
	qs := make([]QuizQuestion, n)
	for i := range qs {
		qs[i] = QuizQuestion{
			Question:     fmt.Sprintf("Question %d?", i),
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
			Explanation:  "because",
		}
	}
	raw, _ := json.Marshal(map[string]any{"questions": qs})
	return string(raw)
}

func TestParseQuizResponse_ToleratesSurroundingProse(t *testing.T) {
	raw := "Sure! Here is your quiz:\n```json\n" + quizJSON(6) + "\n```\nEnjoy!"

	questions, err := parseQuizResponse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(questions))
	}
	if questions[0].Question != "Question 0?" {
		t.Fatalf("unexpected first question: %q", questions[0].Question)
	}
}

func TestParseQuizResponse_FiltersInvalidQuestions(t *testing.T) {
	raw := `{"questions": [
		{"question": "ok?", "options": ["a","b","c","d"], "correctIndex": 1, "explanation": "x"},
		{"question": "", "options": ["a","b","c","d"], "correctIndex": 0},
		{"question": "three options?", "options": ["a","b","c"], "correctIndex": 0},
		{"question": "bad index?", "options": ["a","b","c","d"], "correctIndex": 4}
	]}`

	questions, err := parseQuizResponse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 1 || questions[0].Question != "ok?" {
		t.Fatalf("expected only the valid question, got %v", questions)
	}
}

func TestParseQuizResponse_NoJSON(t *testing.T) {
	if _, err := parseQuizResponse("I cannot do that."); err == nil {
		t.Fatalf("expected error for prose-only response")
	}
}

func TestGenerateQuiz_FromTranscript(t *testing.T) {
	db := openTestDB(t)
	seedLesson(t, db, "lesson-1", "course-1", "Loops", "")
	if err := db.Create(&transcription.Transcript{
		LessonID: "lesson-1",
		Content:  "loops repeat blocks of code until a condition fails",
		Language: "en",
	}).Error; err != nil {
		t.Fatalf("seed transcript: %v", err)
	}

	prov := &scriptedProvider{responses: []string{quizJSON(10)}}
	svc := newTestService(t, db, prov)

	questions, err := svc.GenerateQuiz(context.Background(), "lesson-1")
	if err != nil {
		t.Fatalf("generate quiz: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}

	if len(prov.calls) != 1 {
		t.Fatalf("expected 1 backend call, got %d", len(prov.calls))
	}
	if !strings.Contains(prov.calls[0][0].Content, "loops repeat blocks") {
		t.Fatalf("prompt missing transcript: %q", prov.calls[0][0].Content)
	}
	if prov.opts[0].Temperature != 0.5 {
		t.Fatalf("expected temperature 0.5, got %f", prov.opts[0].Temperature)
	}
}

func TestGenerateQuiz_TooFewValidQuestions(t *testing.T) {
	db := openTestDB(t)
	seedLesson(t, db, "lesson-1", "course-1", "Loops", "")
	if err := db.Create(&transcription.Transcript{
		LessonID: "lesson-1",
		Content:  "short transcript",
	}).Error; err != nil {
		t.Fatalf("seed transcript: %v", err)
	}

	prov := &scriptedProvider{responses: []string{quizJSON(3)}}
	svc := newTestService(t, db, prov)

	if _, err := svc.GenerateQuiz(context.Background(), "lesson-1"); err == nil {
		t.Fatalf("expected error for too few valid questions")
	}
}

func TestGenerateQuiz_RequiresTranscript(t *testing.T) {
	db := openTestDB(t)
	seedLesson(t, db, "lesson-1", "course-1", "Loops", "notes only")

	prov := &scriptedProvider{}
	svc := newTestService(t, db, prov)

	if _, err := svc.GenerateQuiz(context.Background(), "lesson-1"); err == nil {
		t.Fatalf("expected error when no transcript exists")
	}
	if len(prov.calls) != 0 {
		t.Fatalf("must not call the backend without a transcript, got %d calls", len(prov.calls))
	}

	if _, err := svc.GenerateQuiz(context.Background(), "no-such-lesson"); err == nil {
		t.Fatalf("expected error for missing lesson")
	}
}

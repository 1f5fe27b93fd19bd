package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/learnassure/course-assistant/internal/course"
	"github.com/learnassure/course-assistant/internal/store/redisstore"
	"github.com/learnassure/course-assistant/internal/transcription"
)

const (
	// maxTranscriptChars bounds how much transcript lands in one prompt.
	maxTranscriptChars = 15000
	truncationMarker   = "\n...[TRANSCRIPT TRUNCATED FOR LENGTH]...\n"
)

// LessonContext is the prompt-ready view of one lesson.
type LessonContext struct {
	LessonTitle     string `json:"lesson_title"`
	InstructorNotes string `json:"instructor_notes"`
	Transcript      string `json:"transcript"`
	Combined        string `json:"combined"`
}

// HasContent reports whether there is anything beyond the title line worth
// prompting a model with.
func (lc *LessonContext) HasContent() bool {
	return strings.TrimSpace(lc.InstructorNotes) != "" || strings.TrimSpace(lc.Transcript) != ""
}

// ContextBuilder assembles lesson context from instructor notes and the
// video transcript, with a redis cache in front of the two lookups.
type ContextBuilder struct {
	lessons     *course.Repo
	transcripts *transcription.Repo
	cache       *redisstore.Store
}

func NewContextBuilder(lessons *course.Repo, transcripts *transcription.Repo, cache *redisstore.Store) *ContextBuilder {
	return &ContextBuilder{lessons: lessons, transcripts: transcripts, cache: cache}
}

// LessonContext returns the assembled context for a lesson, or (nil, nil)
// when the lesson does not exist.
func (b *ContextBuilder) LessonContext(ctx context.Context, lessonID string) (*LessonContext, error) {
	if cached := b.cache.GetLessonContext(ctx, lessonID); cached != "" {
		var lc LessonContext
		if err := json.Unmarshal([]byte(cached), &lc); err == nil {
			return &lc, nil
		}
	}

	lesson, err := b.lessons.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	transcriptText := ""
	t, err := b.transcripts.GetTranscriptByLesson(ctx, lessonID)
	if err == nil {
		transcriptText = t.Content
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	lc := &LessonContext{
		LessonTitle:     lesson.Title,
		InstructorNotes: lesson.Content,
		Transcript:      transcriptText,
		Combined:        buildPromptContext(lesson.Title, lesson.Content, transcriptText),
	}

	if raw, err := json.Marshal(lc); err == nil {
		b.cache.SetLessonContext(ctx, lessonID, string(raw))
	}
	return lc, nil
}

func buildPromptContext(title, notes, transcript string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n\n", title)

	if strings.TrimSpace(notes) != "" {
		fmt.Fprintf(&sb, "[INSTRUCTOR NOTES]\n%s\n\n", notes)
	}
	if strings.TrimSpace(transcript) != "" {
		fmt.Fprintf(&sb, "[VIDEO TRANSCRIPT]\n%s\n\n", optimizeTranscript(transcript))
	}
	return sb.String()
}

// optimizeTranscript applies the length budget. Within budget the transcript
// passes through verbatim. Over budget, the head gets ~70% of the budget and
// the tail the rest, joined by an explicit marker: lecture openings and
// closings tend to carry the summary-relevant material. Cut points snap back
// onto rune boundaries so a multibyte character never gets split.
func optimizeTranscript(transcript string) string {
	if len(transcript) <= maxTranscriptChars {
		return transcript
	}

	keepStart := maxTranscriptChars * 7 / 10
	keepEnd := maxTranscriptChars - keepStart

	headEnd := keepStart
	for headEnd > 0 && !utf8.RuneStart(transcript[headEnd]) {
		headEnd--
	}
	tailStart := len(transcript) - keepEnd
	for tailStart < len(transcript) && !utf8.RuneStart(transcript[tailStart]) {
		tailStart++
	}

	return transcript[:headEnd] + truncationMarker + transcript[tailStart:]
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/learnassure/course-assistant/internal/ai"
)

// QuizQuestion is one multiple-choice item generated from lecture content.
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

const quizPromptFmt = `You are a teaching assistant creating a practice quiz from a lecture transcript.

Generate exactly %d multiple-choice questions covering the most important
concepts in the transcript below. Respond with a single JSON object and
nothing else, in this shape:

{"questions": [{"question": "...", "options": ["...", "...", "...", "..."], "correctIndex": 0, "explanation": "..."}]}

Each question must have exactly 4 options and correctIndex between 0 and 3.

Transcript:
%s`

const (
	quizQuestionCount    = 10
	quizMinimumQuestions = 5
)

// GenerateQuiz builds a practice quiz from a lesson's transcript. It needs
// a transcript to exist; instructor notes alone are not enough signal for
// question generation.
func (s *Service) GenerateQuiz(ctx context.Context, lessonID string) ([]QuizQuestion, error) {
	lc, err := s.contexts.LessonContext(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lc == nil {
		return nil, errors.New("lesson not found")
	}
	transcript := lc.Transcript
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.New("lesson has no transcript to quiz on")
	}
	if len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars]
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	raw, err := s.provider.Chat(genCtx, []ai.Message{
		{Role: "user", Content: fmt.Sprintf(quizPromptFmt, quizQuestionCount, transcript)},
	}, ai.Options{Temperature: 0.5})
	if err != nil {
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}

	questions, err := parseQuizResponse(raw)
	if err != nil {
		return nil, err
	}
	if len(questions) < quizMinimumQuestions {
		return nil, fmt.Errorf("quiz generation produced %d valid questions, need at least %d", len(questions), quizMinimumQuestions)
	}
	return questions, nil
}

// parseQuizResponse tolerates prose around the JSON object: models often
// wrap their output in markdown fences or a preamble, so we slice from the
// first '{' to the last '}'.
func parseQuizResponse(raw string) ([]QuizQuestion, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, errors.New("quiz response contains no JSON object")
	}

	var payload struct {
		Questions []QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("malformed quiz JSON: %w", err)
	}

	valid := make([]QuizQuestion, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		if len(q.Options) != 4 {
			continue
		}
		if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
			continue
		}
		valid = append(valid, q)
	}
	return valid, nil
}

package chat

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/learnassure/course-assistant/internal/ai"
)

type Intent string

const (
	IntentGreeting       Intent = "GREETING"
	IntentClarification  Intent = "CLARIFICATION"
	IntentMetaSummary    Intent = "META_SUMMARY"
	IntentCourseQuestion Intent = "COURSE_QUESTION"
)

var validIntents = []Intent{IntentGreeting, IntentClarification, IntentMetaSummary, IntentCourseQuestion}

// Trivial greetings are classified locally so they never cost a backend call
// and always resolve the same way.
var greetingRE = regexp.MustCompile(`^(hi|hello|hey|yo|good\s+(morning|afternoon|evening))[\s!.,?]*$`)

const classifyPromptFmt = `Classify this student message into one of these categories:
- GREETING (Hello, Hi, Good morning)
- CLARIFICATION (I don't understand, Can you explain that again, I'm lost - ONLY if no specific topic)
- META_SUMMARY (What is this lecture about, Summarize this lecture)
- COURSE_QUESTION (Specific question about course content, "What is X?", "Explain Y")

Message: "%s"

Reply ONLY with the category name.`

// ClassifyIntent maps a free-form student message onto one of the four
// intents. Classification is fail-open: any backend error or unexpected
// label degrades to COURSE_QUESTION so a broken classifier never blocks the
// student.
func (s *Service) ClassifyIntent(ctx context.Context, message string) Intent {
	norm := strings.ToLower(strings.TrimSpace(message))
	if greetingRE.MatchString(norm) {
		return IntentGreeting
	}

	cctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	out, err := s.provider.Chat(cctx, []ai.Message{
		{Role: "user", Content: fmt.Sprintf(classifyPromptFmt, message)},
	}, ai.Options{Temperature: 0})
	if err != nil {
		log.Printf("[Chat] intent classification failed, defaulting: %v", err)
		return IntentCourseQuestion
	}

	label := strings.ToUpper(strings.TrimSpace(out))
	for _, intent := range validIntents {
		if label == string(intent) {
			return intent
		}
	}
	// Models sometimes wrap the label in prose; take the first one mentioned.
	for _, intent := range validIntents {
		if strings.Contains(label, string(intent)) {
			return intent
		}
	}
	return IntentCourseQuestion
}

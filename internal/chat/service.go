package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/learnassure/course-assistant/internal/ai"
	"github.com/learnassure/course-assistant/internal/metrics"
	"github.com/learnassure/course-assistant/internal/rag"
)

const (
	greetingReply = "Hello! I am your AI Course Assistant. I'm here to help you understand the course material. You can ask me to summarize lectures or explain specific concepts."

	notEnoughContentReply = "I don't have enough content to summarize this specific lecture yet."

	clarifyReply = "I'd be happy to help clarify. Could you specify which topic or concept you're finding difficult?"
)

const summarySystemPrompt = `You are a helpful teaching assistant. Summarize the following lecture content using simple language and examples.`

// assistantSystemPrompt encodes the answer policy: answer in-topic questions
// from the supplied context; answer adjacent general-knowledge questions
// from general knowledge while never attributing unstated claims to the
// lecture; redirect unrelated-but-harmless questions; refuse only harmful
// or incoherent input.
const assistantSystemPrompt = `You are an AI Course Assistant inside a learning platform. You help a student
understand the current lecture.

You receive lecture context assembled from instructor notes and the video
transcript. Treat every student question as one of three kinds and respond
accordingly:

1. Directly in-topic: the question is about concepts, examples, or steps
   present in the lecture context. Answer it fully from that context.

2. Contextually related: the question is not covered by the context but
   concerns terminology used in the lecture, prerequisites, definitions, or
   simple general knowledge such as arithmetic. Answer it using general
   knowledge, and keep the sources distinct: say "the lecture states X" only
   for things actually in the context, and phrase everything else as
   "in general, X" or similar. Never claim the lecture taught something it
   did not.

3. Unrelated: the question has no meaningful connection to the lecture or
   course subject. Politely redirect the student toward lecture-relevant
   questions in one or two sentences.

Refuse outright only when the input is harmful or incoherent.

Speak directly to the student. Be precise and instructional. Do not add meta
commentary about the provided content.`

// AskRequest is one chat turn from a student.
type AskRequest struct {
	CourseID            string
	Question            string
	CurrentLectureID    string
	CurrentLectureTitle string
}

// AskResult is a complete answer with the titles of the context sources.
type AskResult struct {
	Answer  string
	Context []string
}

type Service struct {
	repo       *Repo
	provider   ai.Provider
	searcher   *rag.Searcher
	contexts   *ContextBuilder
	genTimeout time.Duration
}

func NewService(repo *Repo, provider ai.Provider, searcher *rag.Searcher, contexts *ContextBuilder, genTimeout time.Duration) *Service {
	if genTimeout <= 0 {
		genTimeout = 60 * time.Second
	}
	return &Service{
		repo:       repo,
		provider:   provider,
		searcher:   searcher,
		contexts:   contexts,
		genTimeout: genTimeout,
	}
}

// prepared is the outcome of classify+branch: either a canned terminal
// answer, or the messages to hand to the generation backend.
type prepared struct {
	canned   *AskResult
	messages []ai.Message
	titles   []string
}

func (s *Service) prepare(ctx context.Context, req AskRequest, intent Intent) (*prepared, error) {
	if intent == IntentGreeting {
		return &prepared{canned: &AskResult{Answer: greetingReply, Context: []string{}}}, nil
	}

	var (
		contextText string
		titles      = []string{}
		systemMsg   = assistantSystemPrompt
	)

	if intent == IntentMetaSummary && req.CurrentLectureID != "" {
		lc, err := s.contexts.LessonContext(ctx, req.CurrentLectureID)
		if err != nil {
			return nil, err
		}
		if lc == nil || !lc.HasContent() {
			return &prepared{canned: &AskResult{Answer: notEnoughContentReply, Context: []string{}}}, nil
		}
		contextText = lc.Combined
		systemMsg = summarySystemPrompt
		if req.CurrentLectureTitle != "" {
			titles = []string{req.CurrentLectureTitle}
		} else {
			titles = []string{lc.LessonTitle}
		}
	} else {
		results, err := s.searcher.Search(ctx, req.Question, req.CourseID, 5)
		if err != nil {
			return nil, err
		}

		if len(results) > 0 {
			parts := make([]string, 0, len(results))
			for _, r := range results {
				parts = append(parts, r.ChunkText)
				titles = append(titles, r.LectureTitle)
			}
			contextText = strings.Join(parts, "\n\n---\n\n")
		} else if req.CurrentLectureID != "" {
			// Retrieval came up empty; fall back to the full context of the
			// lecture the student is looking at instead of dead-ending.
			lc, err := s.contexts.LessonContext(ctx, req.CurrentLectureID)
			if err != nil {
				return nil, err
			}
			if lc != nil && lc.HasContent() {
				contextText = lc.Combined
				if req.CurrentLectureTitle != "" {
					titles = []string{req.CurrentLectureTitle}
				} else {
					titles = []string{"Current Lecture"}
				}
			}
		}

		if intent == IntentClarification && contextText == "" {
			return &prepared{canned: &AskResult{Answer: clarifyReply, Context: []string{}}}, nil
		}
	}

	userMsg := fmt.Sprintf("Lecture Content:\n%s\n\nQuestion: %s\n\nAnswer:", contextText, req.Question)

	return &prepared{
		messages: []ai.Message{
			{Role: "system", Content: systemMsg},
			{Role: "user", Content: userMsg},
		},
		titles: titles,
	}, nil
}

func (s *Service) persistPair(ctx context.Context, courseID, question, answer string) error {
	if err := s.repo.Append(ctx, &Message{CourseID: courseID, Sender: SenderStudent, MessageText: question}); err != nil {
		return err
	}
	return s.repo.Append(ctx, &Message{CourseID: courseID, Sender: SenderAI, MessageText: answer})
}

// Ask runs one chat turn in batch mode. The student's question is persisted
// before the generation call; the answer is persisted once generation
// returns. Backend failures come back as errors for the handler to surface
// inline, after the question is already logged.
func (s *Service) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	if strings.TrimSpace(req.Question) == "" || req.CourseID == "" {
		return nil, errors.New("question and course id are required")
	}

	intent := s.ClassifyIntent(ctx, req.Question)
	metrics.ChatRequests.WithLabelValues(string(intent)).Inc()

	prep, err := s.prepare(ctx, req, intent)
	if err != nil {
		return nil, err
	}

	if prep.canned != nil {
		if err := s.persistPair(ctx, req.CourseID, req.Question, prep.canned.Answer); err != nil {
			return nil, err
		}
		return prep.canned, nil
	}

	if err := s.repo.Append(ctx, &Message{CourseID: req.CourseID, Sender: SenderStudent, MessageText: req.Question}); err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	start := time.Now()
	answer, err := s.provider.Chat(genCtx, prep.messages, ai.DefaultOptions())
	metrics.GenerationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if err := s.repo.Append(ctx, &Message{CourseID: req.CourseID, Sender: SenderAI, MessageText: answer}); err != nil {
		return nil, err
	}

	return &AskResult{Answer: answer, Context: prep.titles}, nil
}

// AskStream runs one chat turn in streaming mode. Tokens arrive on the first
// channel; on completion the context source titles arrive on the second and
// the full answer is persisted. All channels close when the turn ends.
//
// Generation deliberately runs on its own timeout context, detached from the
// request: a client that disconnects mid-stream does not cancel generation,
// and the assembled answer is still persisted.
func (s *Service) AskStream(ctx context.Context, req AskRequest) (<-chan string, <-chan []string, <-chan error) {
	tokens := make(chan string, 16)
	done := make(chan []string, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(tokens)
		defer close(done)
		defer close(errs)

		if strings.TrimSpace(req.Question) == "" || req.CourseID == "" {
			errs <- errors.New("question and course id are required")
			return
		}

		intent := s.ClassifyIntent(ctx, req.Question)
		metrics.ChatRequests.WithLabelValues(string(intent)).Inc()

		prep, err := s.prepare(ctx, req, intent)
		if err != nil {
			errs <- err
			return
		}

		persistCtx := context.Background()

		if prep.canned != nil {
			if err := s.persistPair(persistCtx, req.CourseID, req.Question, prep.canned.Answer); err != nil {
				errs <- err
				return
			}
			tokens <- prep.canned.Answer
			done <- prep.canned.Context
			return
		}

		if err := s.repo.Append(persistCtx, &Message{CourseID: req.CourseID, Sender: SenderStudent, MessageText: req.Question}); err != nil {
			errs <- err
			return
		}

		genCtx, cancel := context.WithTimeout(context.Background(), s.genTimeout)
		defer cancel()

		start := time.Now()

		sp, ok := s.provider.(ai.StreamProvider)
		if !ok {
			// Provider can't stream; answer in one piece.
			answer, err := s.provider.Chat(genCtx, prep.messages, ai.DefaultOptions())
			metrics.GenerationLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				errs <- fmt.Errorf("generation failed: %w", err)
				return
			}
			if err := s.repo.Append(persistCtx, &Message{CourseID: req.CourseID, Sender: SenderAI, MessageText: answer}); err != nil {
				errs <- err
				return
			}
			tokens <- answer
			done <- prep.titles
			return
		}

		pChunks, pErrs := sp.StreamChat(genCtx, prep.messages, ai.DefaultOptions())

		var b strings.Builder
		for c := range pChunks {
			b.WriteString(c)
			tokens <- c
		}
		metrics.GenerationLatency.Observe(time.Since(start).Seconds())

		select {
		case err := <-pErrs:
			if err != nil {
				errs <- fmt.Errorf("generation failed: %w", err)
				return
			}
		default:
		}

		if err := s.repo.Append(persistCtx, &Message{CourseID: req.CourseID, Sender: SenderAI, MessageText: b.String()}); err != nil {
			errs <- err
			return
		}

		done <- prep.titles
	}()

	return tokens, done, errs
}

func (s *Service) ListMessages(ctx context.Context, courseID string, limit int, beforeID uint64) ([]Message, error) {
	return s.repo.ListMessages(ctx, courseID, limit, beforeID)
}

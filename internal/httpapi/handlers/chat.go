package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/learnassure/course-assistant/internal/chat"
	"github.com/learnassure/course-assistant/internal/common"
)

type askReq struct {
	Question            string `json:"question" binding:"required"`
	CurrentLectureID    string `json:"current_lecture_id"`
	CurrentLectureTitle string `json:"current_lecture_title"`
	Stream              bool   `json:"stream"`
}

// AskCourseAssistant answers one student question, as a single JSON body or
// as an SSE token stream when the request asks for it.
func (h *Handler) AskCourseAssistant(c *gin.Context) {
	if _, ok := userIDFromContext(c); !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	courseID := c.Param("course_id")

	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ask := chat.AskRequest{
		CourseID:            courseID,
		Question:            req.Question,
		CurrentLectureID:    req.CurrentLectureID,
		CurrentLectureTitle: req.CurrentLectureTitle,
	}

	if req.Stream {
		h.streamAnswer(c, ask)
		return
	}

	res, err := h.ChatSvc.Ask(c.Request.Context(), ask)
	if err != nil {
		log.Printf("[Chat] ask failed course_id=%s err=%v", courseID, err)
		common.Fail(c, http.StatusInternalServerError, 50004, "assistant unavailable")
		return
	}

	common.OK(c, gin.H{
		"answer":  res.Answer,
		"context": res.Context,
	})
}

func (h *Handler) streamAnswer(c *gin.Context, ask chat.AskRequest) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // helpful if behind nginx
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		fmt.Fprintf(c.Writer, "data: {\"error\":\"streaming not supported\"}\n\n")
		return
	}

	writeFrame := func(payload any) {
		b, err := json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(c.Writer, "data: {\"error\":\"encoding failed\"}\n\n")
			flusher.Flush()
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	ctx := c.Request.Context()
	tokens, done, errs := h.ChatSvc.AskStream(ctx, ask)

	// Generation keeps running if the client goes away, so the answer still
	// gets persisted; we just stop writing and keep draining the channels.
	disconnected := false
	clientGone := ctx.Done()

	for {
		select {
		case tok, ok := <-tokens:
			if !ok {
				tokens = nil
				continue
			}
			if !disconnected {
				writeFrame(gin.H{"token": tok})
			}

		case titles, ok := <-done:
			if !ok {
				continue
			}
			// Tokens buffered ahead of the done signal still need flushing.
			if tokens != nil {
				for tok := range tokens {
					if !disconnected {
						writeFrame(gin.H{"token": tok})
					}
				}
			}
			if !disconnected {
				writeFrame(gin.H{"done": true, "context": titles})
			}
			return

		case err, ok := <-errs:
			if !ok {
				continue
			}
			if err != nil {
				log.Printf("[Chat] stream failed course_id=%s err=%v", ask.CourseID, err)
				if !disconnected {
					writeFrame(gin.H{"error": err.Error()})
				}
				return
			}

		case <-clientGone:
			disconnected = true
			clientGone = nil
		}
	}
}

// ListChatMessages returns a course's chat history, newest first.
func (h *Handler) ListChatMessages(c *gin.Context) {
	if _, ok := userIDFromContext(c); !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	courseID := c.Param("course_id")

	limit, _ := strconv.Atoi(c.Query("limit"))
	var beforeID uint64
	if v := c.Query("before_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			beforeID = n
		}
	}

	msgs, err := h.ChatSvc.ListMessages(c.Request.Context(), courseID, limit, beforeID)
	if err != nil {
		log.Printf("[Chat] list messages failed course_id=%s err=%v", courseID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list messages")
		return
	}

	var nextBeforeID uint64
	if len(msgs) > 0 {
		nextBeforeID = msgs[len(msgs)-1].ID
	}

	common.OK(c, gin.H{
		"messages":       msgs,
		"next_before_id": nextBeforeID,
	})
}

// GenerateLessonQuiz builds a practice quiz from the lesson's transcript.
func (h *Handler) GenerateLessonQuiz(c *gin.Context) {
	if _, ok := userIDFromContext(c); !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	lessonID := c.Param("lesson_id")

	questions, err := h.ChatSvc.GenerateQuiz(c.Request.Context(), lessonID)
	if err != nil {
		log.Printf("[Chat] quiz generation failed lesson_id=%s err=%v", lessonID, err)
		common.Fail(c, http.StatusUnprocessableEntity, 42201, err.Error())
		return
	}

	common.OK(c, gin.H{"questions": questions})
}

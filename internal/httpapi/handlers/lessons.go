package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnassure/course-assistant/internal/common"
	"github.com/learnassure/course-assistant/internal/httpapi/middleware"
	"gorm.io/gorm"
)

func userIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// requireOwner resolves the authenticated user and checks they are the
// instructor of the lesson's course. Writes the error response itself and
// returns false when the caller should bail out.
func (h *Handler) requireOwner(c *gin.Context, lessonID string) bool {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return false
	}
	owns, err := h.Courses.IsInstructorOf(c.Request.Context(), uid, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "lesson not found")
			return false
		}
		log.Printf("[Lessons] ownership check failed lesson_id=%s err=%v", lessonID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return false
	}
	if !owns {
		common.Fail(c, http.StatusForbidden, 40301, "not the course instructor")
		return false
	}
	return true
}

type attachVideoReq struct {
	VideoURL string `json:"video_url" binding:"required"`
}

// AttachLessonVideo stores the lesson's video URL and enqueues a
// transcription job. The lesson's ready flag is reset until the new
// transcript lands.
func (h *Handler) AttachLessonVideo(c *gin.Context) {
	lessonID := c.Param("lesson_id")
	if !h.requireOwner(c, lessonID) {
		return
	}

	var req attachVideoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.Courses.SetVideoURL(c.Request.Context(), lessonID, req.VideoURL); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "lesson not found")
			return
		}
		log.Printf("[Lessons] SetVideoURL failed lesson_id=%s err=%v", lessonID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	jobID := h.Queue.Enqueue(c.Request.Context(), lessonID)
	if jobID == "" {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to enqueue transcription")
		return
	}

	common.OK(c, gin.H{"job_id": jobID})
}

// GetTranscriptionStatus reports the lesson's readiness together with the
// latest job's state. A lesson with no job yet reports null fields.
func (h *Handler) GetTranscriptionStatus(c *gin.Context) {
	lessonID := c.Param("lesson_id")
	if !h.requireOwner(c, lessonID) {
		return
	}

	lesson, err := h.Courses.GetLesson(c.Request.Context(), lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "lesson not found")
			return
		}
		log.Printf("[Lessons] GetLesson failed lesson_id=%s err=%v", lessonID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	job, err := h.Jobs.GetJobByLesson(c.Request.Context(), lessonID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[Lessons] GetJobByLesson failed lesson_id=%s err=%v", lessonID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	resp := gin.H{
		"isReady":   lesson.IsReady,
		"status":    nil,
		"error":     nil,
		"updatedAt": nil,
	}
	if job != nil {
		resp["status"] = job.Status
		resp["error"] = job.Error
		resp["updatedAt"] = job.UpdatedAt
	}
	common.OK(c, resp)
}

// ReindexLessonNotes rebuilds the retrieval chunks for a lesson's
// instructor notes on demand.
func (h *Handler) ReindexLessonNotes(c *gin.Context) {
	lessonID := c.Param("lesson_id")
	if !h.requireOwner(c, lessonID) {
		return
	}

	lesson, err := h.Courses.GetLesson(c.Request.Context(), lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "lesson not found")
			return
		}
		log.Printf("[Lessons] GetLesson failed lesson_id=%s err=%v", lessonID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	if err := h.Indexer.ReindexNotes(c.Request.Context(), lesson.CourseID, lesson.Title, lesson.Content); err != nil {
		log.Printf("[Lessons] notes reindex failed lesson_id=%s err=%v", lessonID, err)
		common.Fail(c, http.StatusInternalServerError, 50003, "reindex failed")
		return
	}
	if h.Redis != nil {
		h.Redis.InvalidateLessonContext(c.Request.Context(), lessonID)
	}

	common.OK(c, gin.H{"indexed": true})
}

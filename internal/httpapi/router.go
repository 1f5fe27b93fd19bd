package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnassure/course-assistant/internal/common"
	"github.com/learnassure/course-assistant/internal/httpapi/handlers"
	"github.com/learnassure/course-assistant/internal/httpapi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret))

	// instructor-side lesson pipeline
	authGroup.POST("/lessons/:lesson_id/video", h.AttachLessonVideo)
	authGroup.GET("/lessons/:lesson_id/transcription", h.GetTranscriptionStatus)
	authGroup.POST("/lessons/:lesson_id/index", h.ReindexLessonNotes)

	// student-side assistant
	authGroup.POST("/courses/:course_id/chat", h.AskCourseAssistant)
	authGroup.GET("/courses/:course_id/chat/messages", h.ListChatMessages)
	authGroup.POST("/lessons/:lesson_id/quiz", h.GenerateLessonQuiz)

	return r
}

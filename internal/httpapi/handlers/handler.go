package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/learnassure/course-assistant/internal/chat"
	"github.com/learnassure/course-assistant/internal/common"
	"github.com/learnassure/course-assistant/internal/config"
	"github.com/learnassure/course-assistant/internal/course"
	"github.com/learnassure/course-assistant/internal/rag"
	"github.com/learnassure/course-assistant/internal/store/redisstore"
	"github.com/learnassure/course-assistant/internal/transcription"
	"gorm.io/gorm"
)

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	Redis   *redisstore.Store
	Courses *course.Repo
	Jobs    *transcription.Repo
	Queue   *transcription.Queue
	Indexer *rag.Indexer
	ChatSvc *chat.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, queue *transcription.Queue, indexer *rag.Indexer, chatSvc *chat.Service) *Handler {
	return &Handler{
		DB:      db,
		Cfg:     cfg,
		Redis:   rds,
		Courses: course.NewRepo(db),
		Jobs:    transcription.NewRepo(db),
		Queue:   queue,
		Indexer: indexer,
		ChatSvc: chatSvc,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

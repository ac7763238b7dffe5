package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-backend/internal/imageproc"
	"journal-backend/internal/llm"
	"journal-backend/internal/model"
	"journal-backend/internal/prompt"
	"journal-backend/internal/service"
	"journal-backend/internal/storage"
	"journal-backend/pkg/logger"
)

type AssistantHandler struct {
	sessionService *service.SessionService
	maxImageBytes  int64
}

func NewAssistantHandler(sessionService *service.SessionService, maxImageBytes int64) *AssistantHandler {
	return &AssistantHandler{
		sessionService: sessionService,
		maxImageBytes:  maxImageBytes,
	}
}

// RegisterRoutes 注册 /api 下的路由。limiter 只作用于生成接口，可为 nil
func (h *AssistantHandler) RegisterRoutes(api gin.IRouter, limiter gin.HandlerFunc) {
	api.GET("/tasks", h.ListTasks)

	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions", h.ListSessions)
	api.GET("/sessions/:session_id", h.GetSession)
	api.DELETE("/sessions/:session_id", h.DeleteSession)
	api.PUT("/sessions/:session_id/text", h.UpdateText)
	api.POST("/sessions/:session_id/image", h.UploadImage)
	api.DELETE("/sessions/:session_id/image", h.ClearImage)

	if limiter != nil {
		api.POST("/sessions/:session_id/run", limiter, h.Run)
	} else {
		api.POST("/sessions/:session_id/run", h.Run)
	}
}

func (h *AssistantHandler) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, model.TaskCatalog{
		Tasks:     model.AllTasks(),
		Styles:    prompt.Styles(),
		Tones:     model.Tones,
		Audiences: model.Audiences,
		Lengths:   model.Lengths,
	})
}

func (h *AssistantHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	// 允许空的请求体，使用默认标题；chunked 请求的 ContentLength 为 -1，只能靠 EOF 判断
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	session, err := h.sessionService.CreateSession(req.Title, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *AssistantHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions()
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
	})
}

func (h *AssistantHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *AssistantHandler) DeleteSession(c *gin.Context) {
	if err := h.sessionService.DeleteSession(c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *AssistantHandler) UpdateText(c *gin.Context) {
	var req model.UpdateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := h.sessionService.SetText(c.Param("session_id"), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *AssistantHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"image\""})
		return
	}
	if h.maxImageBytes > 0 && header.Size > h.maxImageBytes {
		writeError(c, service.ErrImageTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.sessionService.AttachImage(c.Param("session_id"), data)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": c.Param("session_id"),
		"image":      asset,
	})
}

func (h *AssistantHandler) ClearImage(c *gin.Context) {
	if err := h.sessionService.ClearImage(c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image removed"})
}

func (h *AssistantHandler) Run(c *gin.Context) {
	var req model.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.sessionService.Run(c.Request.Context(), c.Param("session_id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// writeError 把领域错误映射为 HTTP 状态码
func writeError(c *gin.Context, err error) {
	var (
		invErr    *llm.InvocationError
		styleErr  *prompt.UnknownStyleError
		optionErr *prompt.UnknownOptionError
	)

	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrUnknownTask),
		errors.Is(err, imageproc.ErrImageDecode),
		errors.As(err, &styleErr),
		errors.As(err, &optionErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &invErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": invErr.UserMessage()})
	default:
		logger.Errorf("Unhandled request error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"scriptsportal/internal/app/portal/entity"
	"scriptsportal/internal/app/portal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ScriptServiceInterface interface {
	ListScripts(ctx context.Context, category, game, search string) ([]entity.Script, error)
	GetScript(ctx context.Context, id int64) (*entity.ScriptWithReviews, error)
	CreateScript(ctx context.Context, req *entity.CreateScriptRequest) (*entity.Script, error)
	UpdateScript(ctx context.Context, id int64, req *entity.UpdateScriptRequest) (*entity.Script, error)
	DeleteScript(ctx context.Context, id int64) error
	GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error)
}

// ScriptHandler обрабатывает HTTP запросы каталога скриптов
// Идентификатор скрипта всегда приходит в path-параметре,
// query-параметры используются только для фильтров списка
type ScriptHandler struct {
	scriptService ScriptServiceInterface
	validator     *validator.Validate
}

// NewScriptHandler создает новый обработчик каталога скриптов
func NewScriptHandler(scriptService ScriptServiceInterface) *ScriptHandler {
	return &ScriptHandler{
		scriptService: scriptService,
		validator:     validator.New(),
	}
}

// ListScripts обрабатывает GET /scripts
// Фильтры category, game и search опциональны и комбинируются через AND
func (h *ScriptHandler) ListScripts(c *gin.Context) {
	scripts, err := h.scriptService.ListScripts(
		c.Request.Context(),
		c.Query("category"),
		c.Query("game"),
		c.Query("search"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if scripts == nil {
		scripts = []entity.Script{}
	}

	c.JSON(http.StatusOK, scripts)
}

// GetScript обрабатывает GET /scripts/:id
// Отзывы скрипта возвращаются вместе со скриптом
func (h *ScriptHandler) GetScript(c *gin.Context) {
	id, err := parseScriptID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid script ID"})
		return
	}

	script, err := h.scriptService.GetScript(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrScriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Script not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, script)
}

// CreateScript обрабатывает POST /scripts
func (h *ScriptHandler) CreateScript(c *gin.Context) {
	var req entity.CreateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	script, err := h.scriptService.CreateScript(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, script)
}

// UpdateScript обрабатывает PUT /scripts/:id
// Обновляются только присланные поля, пустое тело не меняет даже updated_at
func (h *ScriptHandler) UpdateScript(c *gin.Context) {
	id, err := parseScriptID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid script ID"})
		return
	}

	var req entity.UpdateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	script, err := h.scriptService.UpdateScript(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrScriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Script not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, script)
}

// DeleteScript обрабатывает DELETE /scripts/:id
func (h *ScriptHandler) DeleteScript(c *gin.Context) {
	id, err := parseScriptID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid script ID"})
		return
	}

	if err := h.scriptService.DeleteScript(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrScriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Script not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entity.DeleteScriptResponse{
		Message: "Script deleted",
		ID:      id,
	})
}

// GetFilterOptions обрабатывает GET /scripts/filters (кеш Redis)
func (h *ScriptHandler) GetFilterOptions(c *gin.Context) {
	options, err := h.scriptService.GetFilterOptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, options)
}

func parseScriptID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}

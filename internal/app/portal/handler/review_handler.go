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

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReviewsByScript(ctx context.Context, scriptID int64) ([]entity.Review, error)
}

// ReviewHandler обрабатывает HTTP запросы отзывов
type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

// NewReviewHandler создает новый обработчик отзывов
func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// GetReviewsByScript обрабатывает GET /reviews?script_id=
// script_id обязателен: без него запрос не имеет смысла
func (h *ReviewHandler) GetReviewsByScript(c *gin.Context) {
	scriptIDParam := c.Query("script_id")
	if scriptIDParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "script_id parameter required"})
		return
	}

	scriptID, err := strconv.ParseInt(scriptIDParam, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid script_id"})
		return
	}

	reviews, err := h.reviewService.GetReviewsByScript(c.Request.Context(), scriptID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// CreateReview обрабатывает POST /reviews
// script_id, user_name и rating обязательны. Вставка отзыва и пересчет
// рейтинга скрипта коммитятся одной транзакцией
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "script_id, user_name, and rating are required"})
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrScriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Script not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, review)
}

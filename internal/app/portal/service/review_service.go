package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"scriptsportal/internal/app/portal/entity"
	"scriptsportal/internal/app/portal/repository"
	"scriptsportal/internal/app/portal/util"
	"scriptsportal/pkg/logger"
	"scriptsportal/pkg/metrics"
)

// ReviewService обрабатывает бизнес-логику отзывов
// Транзакция вставки отзыва и пересчета рейтинга живет в репозитории,
// сервис отвечает за события и метрики
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	kafkaProducer util.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	kafkaProducer util.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview создает отзыв и атомарно обновляет рейтинг скрипта
// Несуществующий script_id дает ErrScriptNotFound
func (s *ReviewService) CreateReview(ctx context.Context, req *entity.CreateReviewRequest) (*entity.Review, error) {
	review := &entity.Review{
		ScriptID: req.ScriptID,
		Author:   req.UserName,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return nil, ErrScriptNotFound
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.WithLabelValues(strconv.Itoa(review.Rating)).Inc()
	s.publishReviewEvent(ctx, review)

	return review, nil
}

// GetReviewsByScript получает все отзывы скрипта, новые первыми
func (s *ReviewService) GetReviewsByScript(ctx context.Context, scriptID int64) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.GetByScriptID(ctx, scriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// publishReviewEvent отправляет событие REVIEW_CREATED в Kafka
// Отправка best-effort: отзыв уже создан, проблемы с Kafka не критичны
func (s *ReviewService) publishReviewEvent(ctx context.Context, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID,
		ScriptID:  review.ScriptID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal review event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, strconv.FormatInt(review.ScriptID, 10), data); err != nil {
		logger.Warn().Err(err).Msg("failed to publish review event")
	}
}

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

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrScriptNotFound = errors.New("script not found")
)

// Sentinel-значения фильтров: фронтенд шлет их вместо отсутствия фильтра
// Это контракт с клиентом, а не данные
const (
	categoryAll = "All"
	gameAll     = "All Games"
)

const (
	defaultAuthor  = "Anonymous"
	filterCacheTTL = time.Hour
)

// ScriptService обрабатывает бизнес-логику каталога скриптов
// Координирует работу репозиториев, Redis кеша и Kafka producer
type ScriptService struct {
	scriptRepo    repository.ScriptRepository
	reviewRepo    repository.ReviewRepository
	cache         util.FilterCache
	kafkaProducer util.MessagePublisher
}

// NewScriptService создает новый сервис каталога с внедрением зависимостей
func NewScriptService(
	scriptRepo repository.ScriptRepository,
	reviewRepo repository.ReviewRepository,
	cache util.FilterCache,
	kafkaProducer util.MessagePublisher,
) *ScriptService {
	return &ScriptService{
		scriptRepo:    scriptRepo,
		reviewRepo:    reviewRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// ListScripts получает скрипты по фильтрам
// Sentinel-значения "All" и "All Games" нейтрализуются до похода в репозиторий:
// список с category="All" эквивалентен списку без фильтра по категории
func (s *ScriptService) ListScripts(ctx context.Context, category, game, search string) ([]entity.Script, error) {
	filter := entity.ScriptFilter{
		Category: category,
		Game:     game,
		Search:   search,
	}

	if filter.Category == categoryAll {
		filter.Category = ""
	}
	if filter.Game == gameAll {
		filter.Game = ""
	}

	scripts, err := s.scriptRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	return scripts, nil
}

// GetScript получает скрипт по ID вместе с его отзывами
func (s *ScriptService) GetScript(ctx context.Context, id int64) (*entity.ScriptWithReviews, error) {
	script, err := s.scriptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return nil, ErrScriptNotFound
		}
		return nil, fmt.Errorf("failed to get script: %w", err)
	}

	reviews, err := s.reviewRepo.GetByScriptID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get script reviews: %w", err)
	}

	return &entity.ScriptWithReviews{
		Script:  *script,
		Reviews: reviews,
	}, nil
}

// CreateScript создает новый скрипт с применением значений по умолчанию
// Автор по умолчанию Anonymous, скрипт создается неверифицированным
func (s *ScriptService) CreateScript(ctx context.Context, req *entity.CreateScriptRequest) (*entity.Script, error) {
	script := &entity.Script{
		Name:          req.Name,
		Description:   req.Description,
		ScriptContent: req.ScriptContent,
		Category:      req.Category,
		Game:          req.Game,
		Author:        req.Author,
	}

	if script.Author == "" {
		script.Author = defaultAuthor
	}
	if req.Verified != nil {
		script.Verified = *req.Verified
	}

	if err := s.scriptRepo.Create(ctx, script); err != nil {
		return nil, fmt.Errorf("failed to create script: %w", err)
	}

	metrics.ScriptsCreated.Inc()
	s.invalidateFilterCache(ctx)
	s.publishScriptEvent(ctx, "SCRIPT_CREATED", script)

	return script, nil
}

// UpdateScript применяет частичное обновление скрипта
// Обновляются только присланные поля из изменяемого набора
func (s *ScriptService) UpdateScript(ctx context.Context, id int64, req *entity.UpdateScriptRequest) (*entity.Script, error) {
	script, err := s.scriptRepo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return nil, ErrScriptNotFound
		}
		return nil, fmt.Errorf("failed to update script: %w", err)
	}

	s.invalidateFilterCache(ctx)
	s.publishScriptEvent(ctx, "SCRIPT_UPDATED", script)

	return script, nil
}

// DeleteScript удаляет скрипт вместе с его отзывами (CASCADE в схеме)
func (s *ScriptService) DeleteScript(ctx context.Context, id int64) error {
	if err := s.scriptRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return ErrScriptNotFound
		}
		return fmt.Errorf("failed to delete script: %w", err)
	}

	s.invalidateFilterCache(ctx)
	s.publishScriptEvent(ctx, "SCRIPT_DELETED", &entity.Script{ID: id})

	return nil
}

// GetFilterOptions получает значения фильтров с кешированием в Redis
// Сначала проверяет кеш, при промахе загружает из БД и кеширует на час
func (s *ScriptService) GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	options, err := s.cache.GetFilterOptions(ctx)
	if err == nil && options != nil {
		metrics.RedisCacheHits.WithLabelValues("scripts-portal", "scripts:filters").Inc()
		return options, nil
	}
	metrics.RedisCacheMisses.WithLabelValues("scripts-portal", "scripts:filters").Inc()

	options, err = s.scriptRepo.ListFilterOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get filter options: %w", err)
	}

	if err := s.cache.SetFilterOptions(ctx, options, filterCacheTTL); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to cache filter options")
	}

	return options, nil
}

// ReconcileRatings пересчитывает рейтинг всех скриптов по их отзывам
// Вызывается фоновой сверкой по расписанию
func (s *ScriptService) ReconcileRatings(ctx context.Context) (int64, error) {
	fixed, err := s.scriptRepo.RecomputeAllRatings(ctx)
	if err != nil {
		metrics.RatingReconcileRuns.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("failed to reconcile ratings: %w", err)
	}

	metrics.RatingReconcileRuns.WithLabelValues("success").Inc()
	return fixed, nil
}

// invalidateFilterCache сбрасывает кеш значений фильтров после записи
// Скрипт уже изменен, проблемы с кешем не критичны
func (s *ScriptService) invalidateFilterCache(ctx context.Context) {
	if err := s.cache.DeleteFilterOptions(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate filter options cache")
	}
}

// publishScriptEvent отправляет событие об изменении скрипта в Kafka
// Отправка best-effort: скрипт уже изменен, проблемы с Kafka не критичны
func (s *ScriptService) publishScriptEvent(ctx context.Context, eventType string, script *entity.Script) {
	event := entity.ScriptEvent{
		EventType: eventType,
		ScriptID:  script.ID,
		Name:      script.Name,
		Category:  script.Category,
		Game:      script.Game,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal script event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, strconv.FormatInt(script.ID, 10), data); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish script event")
	}
}

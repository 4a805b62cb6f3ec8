package processor

import (
	"context"

	"scriptsportal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RatingReconcilerService контракт сервиса для фоновой сверки рейтингов
type RatingReconcilerService interface {
	ReconcileRatings(ctx context.Context) (int64, error)
}

// RatingReconciler по расписанию пересчитывает агрегированные рейтинги
// скриптов по их отзывам. Лечит расхождения после ручных правок в хранилище
type RatingReconciler struct {
	cron      *cron.Cron
	scriptSvc RatingReconcilerService
}

// NewRatingReconciler создает новый планировщик сверки рейтингов
func NewRatingReconciler(scriptSvc RatingReconcilerService) *RatingReconciler {
	return &RatingReconciler{
		cron:      cron.New(),
		scriptSvc: scriptSvc,
	}
}

// Start запускает планировщик и выполняет первую сверку сразу
func (r *RatingReconciler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("starting rating reconciler")

	_, err := r.cron.AddFunc(schedule, func() {
		r.run(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()

	// Первый прогон при старте, чтобы не ждать расписания
	r.run(ctx)

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего прогона
func (r *RatingReconciler) Stop() {
	logger.Info().Msg("stopping rating reconciler")
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *RatingReconciler) run(ctx context.Context) {
	fixed, err := r.scriptSvc.ReconcileRatings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("rating reconciliation failed")
		return
	}

	logger.Info().Int64("fixed", fixed).Msg("rating reconciliation completed")
}

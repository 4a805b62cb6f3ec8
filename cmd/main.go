package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"scriptsportal/internal/app/portal/config"
	"scriptsportal/internal/app/portal/handler"
	"scriptsportal/internal/app/portal/processor"
	"scriptsportal/internal/app/portal/repository"
	"scriptsportal/internal/app/portal/service"
	"scriptsportal/internal/app/portal/util"
	"scriptsportal/pkg/logger"
)

func main() {
	// Загружаем конфигурацию из переменных окружения
	// Без DATABASE_URL сервис не стартует
	cfg, err := config.Load()
	if err != nil {
		logger.Init("scripts-portal", "info")
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init("scripts-portal", cfg.LogLevel)

	// Подключение к PostgreSQL через connection pool
	db, err := connectDB(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Msg("successfully connected to PostgreSQL")

	// Redis используется для кеширования значений фильтров каталога
	redisClient, err := util.NewRedisClient(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Msg("successfully connected to Redis")

	// Kafka producer отправляет события о скриптах и отзывах
	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Msg("successfully initialized Kafka producer")

	// Репозитории отвечают за работу с PostgreSQL
	scriptRepo := repository.NewScriptRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Service layer координирует репозитории, кеш и Kafka
	scriptService := service.NewScriptService(scriptRepo, reviewRepo, redisClient, kafkaProducer)
	reviewService := service.NewReviewService(reviewRepo, kafkaProducer)

	// HTTP handlers и маршруты
	scriptHandler := handler.NewScriptHandler(scriptService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	router := handler.SetupRoutes(scriptHandler, reviewHandler, cfg.Server.RequestTimeout)

	// Фоновая сверка рейтингов по расписанию
	reconciler := processor.NewRatingReconciler(scriptService)
	if err := reconciler.Start(context.Background(), cfg.Cron.RatingReconcileSchedule); err != nil {
		logger.Fatal().Err(err).Msg("failed to start rating reconciler")
	}
	defer reconciler.Stop()

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине для graceful shutdown
	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("starting Scripts Portal")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Ожидаем сигнала завершения (SIGINT или SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down Scripts Portal...")

	// Даем серверу 30 секунд на завершение текущих запросов
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("Scripts Portal stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя pgx connection pool
// Использует retry logic с 10 попытками для устойчивости при запуске в Docker
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// Пробуем подключиться с повторными попытками:
	// при запуске в Docker PostgreSQL может быть еще не готов
	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("failed to connect to database")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scriptsportal/pkg/logger"
	"scriptsportal/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Scripts Portal с использованием Gin
// CORS конфигурируется отдельно на каждый ресурс: у scripts и reviews
// разные списки разрешенных методов и заголовков
func SetupRoutes(scriptHandler *ScriptHandler, reviewHandler *ReviewHandler, storeTimeout time.Duration) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("scripts-portal"))

	// Неподдерживаемый метод - 405 с телом, а не 404
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "scripts-portal",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Preflight отвечает 200 без тела даже если CORS middleware не сработал
	// (запрос без Origin заголовка)
	preflight := func(c *gin.Context) {
		c.Status(http.StatusOK)
	}

	scripts := router.Group("/scripts")
	scripts.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		// X-Admin-Key пропускается для админки фронтенда, логикой не проверяется
		AllowHeaders:              []string{"Content-Type", "X-Admin-Key"},
		MaxAge:                    24 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}))
	scripts.Use(storeTimeoutMiddleware(storeTimeout))
	{
		scripts.GET("", scriptHandler.ListScripts)             // Список с фильтрами
		scripts.GET("/filters", scriptHandler.GetFilterOptions) // Значения фильтров (кеш Redis)
		scripts.GET("/:id", scriptHandler.GetScript)           // Скрипт с отзывами
		scripts.POST("", scriptHandler.CreateScript)           // Создать скрипт
		scripts.PUT("/:id", scriptHandler.UpdateScript)        // Частичное обновление
		scripts.DELETE("/:id", scriptHandler.DeleteScript)     // Удалить вместе с отзывами
		scripts.OPTIONS("", preflight)
		scripts.OPTIONS("/:id", preflight)
	}

	reviews := router.Group("/reviews")
	reviews.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type"},
		MaxAge:                    24 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}))
	reviews.Use(storeTimeoutMiddleware(storeTimeout))
	{
		reviews.GET("", reviewHandler.GetReviewsByScript) // Отзывы скрипта
		reviews.POST("", reviewHandler.CreateReview)      // Создать отзыв + пересчет рейтинга
		reviews.OPTIONS("", preflight)
	}

	return router
}

// storeTimeoutMiddleware ограничивает время похода в хранилище на один запрос
// Каждый вызов - короткая синхронная единица работы, дедлайн наследуют
// все запросы к PostgreSQL и Redis через request context
func storeTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

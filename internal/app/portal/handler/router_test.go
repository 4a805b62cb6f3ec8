package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scriptsportal/internal/app/portal/entity"
	"scriptsportal/internal/app/portal/repository/mocks"
	"scriptsportal/internal/app/portal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupRouter() (*gin.Engine, *mocks.MockScriptRepository, *mocks.MockReviewRepository) {
	scriptRepo := new(mocks.MockScriptRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cache := new(mocks.MockFilterCache)
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}

	scriptService := service.NewScriptService(scriptRepo, reviewRepo, cache, kafkaProducer)
	reviewService := service.NewReviewService(reviewRepo, kafkaProducer)

	router := SetupRoutes(NewScriptHandler(scriptService), NewReviewHandler(reviewService), 5*time.Second)
	return router, scriptRepo, reviewRepo
}

func TestRouter_HealthCheck(t *testing.T) {
	router, _, _ := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "service": "scripts-portal"}`, w.Body.String())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _, _ := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/scripts", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error": "Method not allowed"}`, w.Body.String())
}

func TestRouter_PreflightWithOrigin(t *testing.T) {
	router, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodOptions, "/scripts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Key")
}

func TestRouter_PreflightWithoutOrigin(t *testing.T) {
	router, _, _ := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/reviews", nil))

	// curl и health-чекеры шлют OPTIONS без Origin, ответ все равно 200
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CORSHeaderOnRegularRequest(t *testing.T) {
	router, scriptRepo, _ := setupRouter()

	scriptRepo.On("List", mock.Anything, entity.ScriptFilter{}).Return([]entity.Script{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/scripts", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ScriptRoutesWired(t *testing.T) {
	router, scriptRepo, reviewRepo := setupRouter()

	rating := 4.5
	scriptRepo.On("GetByID", mock.Anything, int64(1)).Return(&entity.Script{ID: 1, Rating: &rating}, nil)
	reviewRepo.On("GetByScriptID", mock.Anything, int64(1)).Return([]entity.Review{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scripts/1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	// Отзывы сериализуются как [], а не null
	assert.Contains(t, w.Body.String(), `"reviews":[]`)
}

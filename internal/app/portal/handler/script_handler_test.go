package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"scriptsportal/internal/app/portal/entity"
	"scriptsportal/internal/app/portal/repository"
	"scriptsportal/internal/app/portal/repository/mocks"
	"scriptsportal/internal/app/portal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Хелперы для создания тестового окружения

func setupScriptHandler() (*ScriptHandler, *mocks.MockScriptRepository, *mocks.MockReviewRepository, *mocks.MockFilterCache, *mocks.MockMessagePublisher) {
	scriptRepo := new(mocks.MockScriptRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cache := new(mocks.MockFilterCache)
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}

	scriptService := service.NewScriptService(scriptRepo, reviewRepo, cache, kafkaProducer)
	return NewScriptHandler(scriptService), scriptRepo, reviewRepo, cache, kafkaProducer
}

func newTestScript(id int64) *entity.Script {
	return &entity.Script{
		ID:            id,
		Name:          "Auto Farm",
		Description:   "Farms automatically",
		ScriptContent: "while true do end",
		Category:      "Farming",
		Game:          "Blox Fruits",
		Author:        "Anonymous",
		Downloads:     100,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

// ==================== ListScripts ====================

func TestScriptHandler_ListScripts_EmptyResultIsArray(t *testing.T) {
	handler, scriptRepo, _, _, _ := setupScriptHandler()

	scriptRepo.On("List", mock.Anything, entity.ScriptFilter{}).Return(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/scripts", nil)

	handler.ListScripts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	// Пустой каталог - это [], а не null
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestScriptHandler_ListScripts_FiltersFromQuery(t *testing.T) {
	handler, scriptRepo, _, _, _ := setupScriptHandler()

	expected := entity.ScriptFilter{Category: "Farming", Game: "Blox Fruits", Search: "auto"}
	scriptRepo.On("List", mock.Anything, expected).Return([]entity.Script{*newTestScript(1)}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/scripts?category=Farming&game=Blox+Fruits&search=auto", nil)

	handler.ListScripts(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var scripts []entity.Script
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scripts))
	assert.Len(t, scripts, 1)
	scriptRepo.AssertExpectations(t)
}

// ==================== GetScript ====================

func TestScriptHandler_GetScript_AttachesReviews(t *testing.T) {
	handler, scriptRepo, reviewRepo, _, _ := setupScriptHandler()

	script := newTestScript(1)
	rating := 4.5
	script.Rating = &rating

	scriptRepo.On("GetByID", mock.Anything, int64(1)).Return(script, nil)
	reviewRepo.On("GetByScriptID", mock.Anything, int64(1)).Return([]entity.Review{
		{ID: 2, ScriptID: 1, Author: "second", Rating: 5},
		{ID: 1, ScriptID: 1, Author: "first", Rating: 4},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/scripts/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.GetScript(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ScriptWithReviews
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Rating)
	assert.Equal(t, 4.5, *response.Rating)
	require.Len(t, response.Reviews, 2)
	assert.Equal(t, "second", response.Reviews[0].Author)
}

func TestScriptHandler_GetScript_NotFound(t *testing.T) {
	handler, scriptRepo, _, _, _ := setupScriptHandler()

	scriptRepo.On("GetByID", mock.Anything, int64(42)).Return(nil, repository.ErrScriptNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/scripts/42", nil)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.GetScript(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Script not found"}`, w.Body.String())
}

func TestScriptHandler_GetScript_InvalidID(t *testing.T) {
	handler, _, _, _, _ := setupScriptHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/scripts/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.GetScript(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== CreateScript ====================

func TestScriptHandler_CreateScript_Success(t *testing.T) {
	handler, scriptRepo, _, cache, kafkaProducer := setupScriptHandler()

	scriptRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Script")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Script).ID = 7
	})
	cache.On("DeleteFilterOptions", mock.Anything).Return(nil)
	kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(entity.CreateScriptRequest{
		Name:          "Auto Farm",
		Description:   "Farms automatically",
		ScriptContent: "while true do end",
		Category:      "Farming",
		Game:          "Blox Fruits",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/scripts", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateScript(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response entity.Script
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(7), response.ID)
	assert.Equal(t, "Auto Farm", response.Name)
	// Дефолты при отсутствии полей в запросе
	assert.Equal(t, "Anonymous", response.Author)
	assert.False(t, response.Verified)
	assert.Nil(t, response.Rating)
}

func TestScriptHandler_CreateScript_MissingRequiredField(t *testing.T) {
	handler, _, _, _, _ := setupScriptHandler()

	// name отсутствует
	body := []byte(`{"description": "d", "script_content": "c", "category": "Farming", "game": "Blox Fruits"}`)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/scripts", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateScript(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScriptHandler_CreateScript_InvalidJSON(t *testing.T) {
	handler, _, _, _, _ := setupScriptHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/scripts", bytes.NewBufferString("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateScript(c)

	// Битый JSON - это 400, а не 500
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== UpdateScript ====================

func TestScriptHandler_UpdateScript_Success(t *testing.T) {
	handler, scriptRepo, _, cache, kafkaProducer := setupScriptHandler()

	scriptRepo.On("Update", mock.Anything, int64(1), mock.AnythingOfType("*entity.UpdateScriptRequest")).
		Return(newTestScript(1), nil)
	cache.On("DeleteFilterOptions", mock.Anything).Return(nil)
	kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body := []byte(`{"name": "Renamed"}`)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/scripts/1", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.UpdateScript(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestScriptHandler_UpdateScript_NotFound(t *testing.T) {
	handler, scriptRepo, _, _, _ := setupScriptHandler()

	scriptRepo.On("Update", mock.Anything, int64(42), mock.Anything).
		Return(nil, repository.ErrScriptNotFound)

	body := []byte(`{}`)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/scripts/42", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.UpdateScript(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Script not found"}`, w.Body.String())
}

// ==================== DeleteScript ====================

func TestScriptHandler_DeleteScript_Success(t *testing.T) {
	handler, scriptRepo, _, cache, kafkaProducer := setupScriptHandler()

	scriptRepo.On("Delete", mock.Anything, int64(1)).Return(nil)
	cache.On("DeleteFilterOptions", mock.Anything).Return(nil)
	kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/scripts/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.DeleteScript(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Script deleted", "id": 1}`, w.Body.String())
}

func TestScriptHandler_DeleteScript_NotFound(t *testing.T) {
	handler, scriptRepo, _, _, _ := setupScriptHandler()

	scriptRepo.On("Delete", mock.Anything, int64(42)).Return(repository.ErrScriptNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/scripts/42", nil)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	handler.DeleteScript(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== GetFilterOptions ====================

func TestScriptHandler_GetFilterOptions_Success(t *testing.T) {
	handler, _, _, cache, _ := setupScriptHandler()

	cache.On("GetFilterOptions", mock.Anything).Return(&entity.FilterOptions{
		Categories: []string{"Farming"},
		Games:      []string{"Blox Fruits"},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/scripts/filters", nil)

	handler.GetFilterOptions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories": ["Farming"], "games": ["Blox Fruits"]}`, w.Body.String())
}

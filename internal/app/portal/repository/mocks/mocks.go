package mocks

import (
	"context"
	"time"

	"scriptsportal/internal/app/portal/entity"

	"github.com/stretchr/testify/mock"
)

// MockScriptRepository мок для ScriptRepository
type MockScriptRepository struct {
	mock.Mock
}

func (m *MockScriptRepository) Create(ctx context.Context, script *entity.Script) error {
	args := m.Called(ctx, script)
	return args.Error(0)
}

func (m *MockScriptRepository) GetByID(ctx context.Context, id int64) (*entity.Script, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Script), args.Error(1)
}

func (m *MockScriptRepository) List(ctx context.Context, filter entity.ScriptFilter) ([]entity.Script, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Script), args.Error(1)
}

func (m *MockScriptRepository) Update(ctx context.Context, id int64, req *entity.UpdateScriptRequest) (*entity.Script, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Script), args.Error(1)
}

func (m *MockScriptRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScriptRepository) ListFilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FilterOptions), args.Error(1)
}

func (m *MockScriptRepository) RecomputeAllRatings(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByScriptID(ctx context.Context, scriptID int64) ([]entity.Review, error) {
	args := m.Called(ctx, scriptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

// MockFilterCache мок для util.FilterCache
type MockFilterCache struct {
	mock.Mock
}

func (m *MockFilterCache) SetFilterOptions(ctx context.Context, options *entity.FilterOptions, ttl time.Duration) error {
	args := m.Called(ctx, options, ttl)
	return args.Error(0)
}

func (m *MockFilterCache) GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FilterOptions), args.Error(1)
}

func (m *MockFilterCache) DeleteFilterOptions(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFilterCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

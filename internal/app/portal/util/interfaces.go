package util

import (
	"context"
	"time"

	"scriptsportal/internal/app/portal/entity"
)

// FilterCache интерфейс для работы с кешем значений фильтров
// Используется для dependency injection и упрощения тестирования
type FilterCache interface {
	SetFilterOptions(ctx context.Context, options *entity.FilterOptions, ttl time.Duration) error
	GetFilterOptions(ctx context.Context) (*entity.FilterOptions, error)
	DeleteFilterOptions(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

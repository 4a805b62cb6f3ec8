package repository

import (
	"context"
	"errors"

	"scriptsportal/internal/app/portal/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrScriptNotFound = errors.New("script not found")
)

// DB - минимальный контракт пула соединений PostgreSQL
// Реализуется pgxpool.Pool в продакшене и pgxmock в тестах
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ScriptRepository interface {
	Create(ctx context.Context, script *entity.Script) error
	GetByID(ctx context.Context, id int64) (*entity.Script, error)
	List(ctx context.Context, filter entity.ScriptFilter) ([]entity.Script, error)
	Update(ctx context.Context, id int64, req *entity.UpdateScriptRequest) (*entity.Script, error)
	Delete(ctx context.Context, id int64) error
	ListFilterOptions(ctx context.Context) (*entity.FilterOptions, error)
	RecomputeAllRatings(ctx context.Context) (int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByScriptID(ctx context.Context, scriptID int64) ([]entity.Review, error)
}

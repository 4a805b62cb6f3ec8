package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"scriptsportal/internal/app/portal/entity"

	"github.com/jackc/pgx/v5"
)

const scriptColumns = `id, name, description, script_content, category, game, author, verified, rating, downloads, created_at, updated_at`

// Изменяемые клиентом поля скрипта. Rating и downloads сюда не входят:
// rating - производное значение, downloads меняется отдельным механизмом
var mutableScriptFields = []string{"name", "description", "script_content", "category", "game", "author", "verified"}

type scriptRepository struct {
	db DB // Пул соединений с PostgreSQL
}

// NewScriptRepository создает новый репозиторий скриптов
func NewScriptRepository(db DB) ScriptRepository {
	return &scriptRepository{db: db}
}

// Create создает новый скрипт в PostgreSQL
// Сгенерированные БД поля (id, rating, downloads, таймстемпы) читаются через RETURNING
func (r *scriptRepository) Create(ctx context.Context, script *entity.Script) error {
	query := `
		INSERT INTO scripts (name, description, script_content, category, game, author, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, rating, downloads, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		script.Name,
		script.Description,
		script.ScriptContent,
		script.Category,
		script.Game,
		script.Author,
		script.Verified,
	).Scan(&script.ID, &script.Rating, &script.Downloads, &script.CreatedAt, &script.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create script: %w", err)
	}

	return nil
}

// GetByID получает скрипт по ID
func (r *scriptRepository) GetByID(ctx context.Context, id int64) (*entity.Script, error) {
	query := `SELECT ` + scriptColumns + ` FROM scripts WHERE id = $1`

	script, err := scanScript(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScriptNotFound
		}
		return nil, fmt.Errorf("failed to get script by id: %w", err)
	}

	return script, nil
}

// List получает скрипты по фильтрам с сортировкой по популярности
// Условия собираются только из непустых полей фильтра и соединяются через AND
// Значения всегда передаются через bind-параметры, никакой конкатенации строк
func (r *scriptRepository) List(ctx context.Context, filter entity.ScriptFilter) ([]entity.Script, error) {
	query := `SELECT ` + scriptColumns + ` FROM scripts`

	var conds []string
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}

	if filter.Game != "" {
		args = append(args, filter.Game)
		conds = append(conds, fmt.Sprintf("game = $%d", len(args)))
	}

	if filter.Search != "" {
		// Регистронезависимый поиск подстроки по имени и описанию
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY downloads DESC, rating DESC NULLS LAST"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	defer rows.Close()

	var scripts []entity.Script
	for rows.Next() {
		script, err := scanScript(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan script: %w", err)
		}
		scripts = append(scripts, *script)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scripts: %w", err)
	}

	return scripts, nil
}

// Update применяет частичное обновление скрипта
// SET собирается только из присланных полей, updated_at обновляется всегда
// когда меняется хотя бы одно поле. Пустой запрос вырождается в GetByID,
// чтобы несуществующий id все равно давал not found
func (r *scriptRepository) Update(ctx context.Context, id int64, req *entity.UpdateScriptRequest) (*entity.Script, error) {
	if req.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var sets []string
	var args []any

	for _, field := range mutableScriptFields {
		value, ok := updateFieldValue(req, field)
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", field, len(args)))
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE scripts SET %s WHERE id = $%d RETURNING `+scriptColumns,
		strings.Join(sets, ", "), len(args),
	)

	script, err := scanScript(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScriptNotFound
		}
		return nil, fmt.Errorf("failed to update script: %w", err)
	}

	return script, nil
}

// Delete удаляет скрипт из PostgreSQL
// Отзывы удаляются автоматически через ON DELETE CASCADE
func (r *scriptRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM scripts WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete script: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrScriptNotFound
	}

	return nil
}

// ListFilterOptions получает фактические значения категорий и игр
// Результат кешируется в Redis на уровне service layer
func (r *scriptRepository) ListFilterOptions(ctx context.Context) (*entity.FilterOptions, error) {
	categories, err := r.listDistinct(ctx, `SELECT DISTINCT category FROM scripts ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	games, err := r.listDistinct(ctx, `SELECT DISTINCT game FROM scripts ORDER BY game`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return &entity.FilterOptions{Categories: categories, Games: games}, nil
}

// RecomputeAllRatings пересчитывает агрегированный рейтинг всех скриптов
// Возвращает количество скорректированных строк. Используется фоновой сверкой
// для лечения расхождений, например после ручных правок в хранилище
func (r *scriptRepository) RecomputeAllRatings(ctx context.Context) (int64, error) {
	updateQuery := `
		UPDATE scripts s
		SET rating = sub.avg_rating
		FROM (
			SELECT script_id, ROUND(AVG(rating)::numeric, 2) AS avg_rating
			FROM reviews
			GROUP BY script_id
		) sub
		WHERE s.id = sub.script_id AND s.rating IS DISTINCT FROM sub.avg_rating
	`

	result, err := r.db.Exec(ctx, updateQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute ratings: %w", err)
	}
	fixed := result.RowsAffected()

	// Скрипты оставшиеся без отзывов должны вернуться к NULL
	resetQuery := `
		UPDATE scripts
		SET rating = NULL
		WHERE rating IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM reviews r WHERE r.script_id = scripts.id)
	`

	result, err = r.db.Exec(ctx, resetQuery)
	if err != nil {
		return fixed, fmt.Errorf("failed to reset orphaned ratings: %w", err)
	}

	return fixed + result.RowsAffected(), nil
}

func (r *scriptRepository) listDistinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, rows.Err()
}

// scanScript читает одну строку scripts в порядке scriptColumns
// Rating сканируется через двойной указатель: NULL в БД дает nil в структуре
func scanScript(row pgx.Row) (*entity.Script, error) {
	var script entity.Script
	err := row.Scan(
		&script.ID,
		&script.Name,
		&script.Description,
		&script.ScriptContent,
		&script.Category,
		&script.Game,
		&script.Author,
		&script.Verified,
		&script.Rating,
		&script.Downloads,
		&script.CreatedAt,
		&script.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &script, nil
}

func updateFieldValue(req *entity.UpdateScriptRequest, field string) (any, bool) {
	switch field {
	case "name":
		if req.Name != nil {
			return *req.Name, true
		}
	case "description":
		if req.Description != nil {
			return *req.Description, true
		}
	case "script_content":
		if req.ScriptContent != nil {
			return *req.ScriptContent, true
		}
	case "category":
		if req.Category != nil {
			return *req.Category, true
		}
	case "game":
		if req.Game != nil {
			return *req.Game, true
		}
	case "author":
		if req.Author != nil {
			return *req.Author, true
		}
	case "verified":
		if req.Verified != nil {
			return *req.Verified, true
		}
	}
	return nil, false
}

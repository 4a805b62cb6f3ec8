package repository

import (
	"context"
	"errors"
	"fmt"

	"scriptsportal/internal/app/portal/entity"

	"github.com/jackc/pgx/v5/pgconn"
)

type reviewRepository struct {
	db DB // Пул соединений с PostgreSQL
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create создает отзыв и пересчитывает рейтинг родительского скрипта
// Обе операции выполняются в одной транзакции: отзыв не должен стать видимым
// если пересчет агрегата не прошел. AVG читается внутри транзакции, поэтому
// при конкурентных вставках каждый коммит видит консистентный набор отзывов
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO reviews (script_id, author, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = tx.QueryRow(ctx, insertQuery,
		review.ScriptID,
		review.Author,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return ErrScriptNotFound
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	// Рейтинг скрипта - среднее по всем его отзывам, округленное до 2 знаков
	updateQuery := `
		UPDATE scripts
		SET rating = ROUND((SELECT AVG(rating) FROM reviews WHERE script_id = $1)::numeric, 2)
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, updateQuery, review.ScriptID)
	if err != nil {
		return fmt.Errorf("failed to update script rating: %w", err)
	}

	// Скрипт удалили между вставкой и пересчетом
	if result.RowsAffected() == 0 {
		return ErrScriptNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit review transaction: %w", err)
	}

	return nil
}

// GetByScriptID получает все отзывы скрипта, новые первыми
func (r *reviewRepository) GetByScriptID(ctx context.Context, scriptID int64) ([]entity.Review, error) {
	query := `
		SELECT id, script_id, author, rating, comment, created_at
		FROM reviews
		WHERE script_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, scriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	defer rows.Close()

	reviews := []entity.Review{}
	for rows.Next() {
		var review entity.Review
		if err := rows.Scan(
			&review.ID,
			&review.ScriptID,
			&review.Author,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

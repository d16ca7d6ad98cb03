package postgres

import (
	"context"
	"errors"
	"fmt"

	"screening-score-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader reads a screening's questions from Postgres in catalog order.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, screeningID string) (domain.Catalog, error) {
	catalog := domain.Catalog{ScreeningID: screeningID}

	var passMark int64
	err := l.pool.QueryRow(ctx, `SELECT COALESCE(pass_mark, -1) FROM screenings WHERE id=$1`, screeningID).Scan(&passMark)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Catalog{}, domain.ErrScreeningNotFound
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load screening: %w", err)
	}
	if passMark >= 0 {
		mark := int(passMark)
		catalog.PassMark = &mark
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, correct_answer, marks, subject_id, subject_name
		FROM questions
		WHERE screening_id=$1
		ORDER BY position, id`, screeningID)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q     domain.Question
			marks int64
		)
		if err := rows.Scan(&q.ID, &q.CorrectAnswer, &marks, &q.Subject.ID, &q.Subject.Name); err != nil {
			return domain.Catalog{}, fmt.Errorf("scan question: %w", err)
		}
		q.Marks = int(marks)
		catalog.Questions = append(catalog.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("load questions: %w", err)
	}
	return catalog, nil
}

package migrations

import (
	"context"

	"screening-score-service/internal/infra/postgres"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

var tables = []interface{}{
	(*postgres.ScreeningModel)(nil),
	(*postgres.QuestionModel)(nil),
	(*postgres.CandidateModel)(nil),
	(*postgres.ScoreRecordModel)(nil),
	(*postgres.AuditLogModel)(nil),
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range tables {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return err
				}
			}
			indexes := []struct {
				model   interface{}
				name    string
				unique  bool
				columns []string
			}{
				{(*postgres.QuestionModel)(nil), "questions_screening_position_idx", false, []string{"screening_id", "position"}},
				{(*postgres.CandidateModel)(nil), "candidates_screening_idx", false, []string{"screening_id", "has_written"}},
				// At most one record per question per candidate.
				{(*postgres.ScoreRecordModel)(nil), "score_records_candidate_question_idx", true, []string{"candidate_id", "question_id"}},
				{(*postgres.AuditLogModel)(nil), "audit_log_candidate_idx", false, []string{"candidate_id"}},
			}
			for _, idx := range indexes {
				q := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists()
				if idx.unique {
					q = q.Unique()
				}
				if _, err := q.Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for i := len(tables) - 1; i >= 0; i-- {
				if _, err := db.NewDropTable().Model(tables[i]).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

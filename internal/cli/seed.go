package cli

import (
	"fmt"

	"screening-score-service/internal/config"
	"screening-score-service/internal/domain"
	"screening-score-service/internal/infra/postgres"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads screenings, questions and candidates from a YAML fixture.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load screenings and candidates from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			log := config.NewLogger(cfg)

			var fixture seedFixture
			if err := readYAML(file, &fixture); err != nil {
				return err
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			if err := runMigrations(cmd.Context(), db, log); err != nil {
				return err
			}
			store := postgres.NewScoreStore(db)

			for _, s := range fixture.Screenings {
				catalog := domain.Catalog{ScreeningID: s.ID, PassMark: s.PassMark, Questions: s.Questions}
				if err := store.SaveCatalog(cmd.Context(), s.Name, catalog); err != nil {
					return err
				}
			}
			for _, c := range fixture.Candidates {
				if err := store.CreateCandidate(cmd.Context(), c); err != nil {
					return err
				}
			}
			log.WithFields(logrus.Fields{
				"screenings": len(fixture.Screenings),
				"candidates": len(fixture.Candidates),
			}).Info("fixture seeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "fixture.yaml", "path to YAML fixture")
	return cmd
}

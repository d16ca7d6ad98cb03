package cli

import (
	"encoding/json"

	"screening-score-service/internal/config"

	"github.com/spf13/cobra"
)

// NewBatchCmd scores a file of submissions and prints the outcome as JSON.
func NewBatchCmd(configPath *string) *cobra.Command {
	var (
		file     string
		scoredBy string
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score a cohort of submissions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := config.NewLogger(cfg)
			log.SetOutput(cmd.ErrOrStderr())

			var fixture batchFixture
			if err := readYAML(file, &fixture); err != nil {
				return err
			}

			rt, err := buildRuntime(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := rt.service.BatchScore(cmd.Context(), fixture.Submissions, scoredBy)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&file, "file", "submissions.yaml", "path to YAML submissions")
	cmd.Flags().StringVar(&scoredBy, "scored-by", "", "user recorded as the scorer")
	_ = cmd.MarkFlagRequired("scored-by")
	return cmd
}

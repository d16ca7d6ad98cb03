package cli

import (
	"fmt"
	"os"

	"screening-score-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// seedFixture is the YAML layout accepted by the seed command.
type seedFixture struct {
	Screenings []struct {
		ID        string            `yaml:"id"`
		Name      string            `yaml:"name"`
		PassMark  *int              `yaml:"passMark"`
		Questions []domain.Question `yaml:"questions"`
	} `yaml:"screenings"`
	Candidates []domain.Candidate `yaml:"candidates"`
}

// batchFixture is the YAML layout accepted by the batch command.
type batchFixture struct {
	Submissions []domain.Submission `yaml:"submissions"`
}

func readYAML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

package storage

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type SeedComment struct {
	Language string `yaml:"language"`
	Text     string `yaml:"text"`
}

type seedFile struct {
	Comments []SeedComment `yaml:"comments"`
}

// SeedComments returns the built-in multilingual sample set.
func SeedComments() ([]SeedComment, error) {
	var file seedFile
	if err := yaml.Unmarshal(seedYAML, &file); err != nil {
		return nil, fmt.Errorf("error parsing seed data: %w", err)
	}
	return file.Comments, nil
}

// Seed inserts the sample set when the store holds no comments and reports
// how many comments were inserted.
func Seed(ctx context.Context, store Storage, logger *zap.Logger) (int, error) {
	count, err := store.CountComments(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Debug("Store already seeded", zap.Int("comments", count))
		return 0, nil
	}

	comments, err := SeedComments()
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}

	if err := store.InsertComments(ctx, texts); err != nil {
		return 0, err
	}

	logger.Info("Seeded sample comments", zap.Int("comments", len(texts)))
	return len(texts), nil
}

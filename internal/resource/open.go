package resource

import (
	"context"
	"fmt"

	"intent-engine/internal/config"
	"intent-engine/internal/repository"

	"go.uber.org/zap"
)

// Open builds the loader selected by cfg.Resources.Source, loads the store under the
// configured timeout and releases any connection it opened.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Resources.LoadTimeout)
	defer cancel()

	var loader Loader
	switch cfg.Resources.Source {
	case config.SourceFile:
		loader = NewFileLoader(FilePathsFromConfig(cfg.Resources))
	case config.SourcePostgres:
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, &LoadError{Artifact: "resources", Source: "postgres", Err: err}
		}
		defer repo.Close()
		loader = NewPostgresLoader(repo)
	default:
		return nil, fmt.Errorf("unknown resource source %q", cfg.Resources.Source)
	}

	store, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Loaded classifier resources",
			zap.String("source", cfg.Resources.Source),
			zap.Int("vocabulary_size", store.Vocabulary.Size()),
			zap.Int("classes", store.Model.NumClasses()),
			zap.Int("dataset_rows", len(store.Dataset)),
			zap.Int("fuzzy_rows", len(store.FuzzyDataset)),
		)
	}
	return store, nil
}

// FilePathsFromConfig maps the configured artifact paths
func FilePathsFromConfig(cfg config.ResourcesConfig) FilePaths {
	return FilePaths{
		Vocabulary:   cfg.VocabularyPath,
		Model:        cfg.ModelPath,
		Dataset:      cfg.DatasetPath,
		FuzzyDataset: cfg.FuzzyDatasetPath,
	}
}

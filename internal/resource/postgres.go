package resource

import (
	"context"

	"intent-engine/internal/model"

	"golang.org/x/sync/errgroup"
)

// Repository is the read side of the artifact tables
type Repository interface {
	LoadVocabulary(ctx context.Context) (model.Vocabulary, error)
	LoadModel(ctx context.Context) (*model.ModelParams, error)
	LoadDataset(ctx context.Context, corpus string) ([]model.LabeledRow, error)
}

// PostgresLoader reads the artifacts from the database
type PostgresLoader struct {
	repo Repository
}

// NewPostgresLoader creates a loader backed by repo
func NewPostgresLoader(repo Repository) *PostgresLoader {
	return &PostgresLoader{repo: repo}
}

// Load queries all four artifacts concurrently and validates the result
func (l *PostgresLoader) Load(ctx context.Context) (*Store, error) {
	store := &Store{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vocab, err := l.repo.LoadVocabulary(gCtx)
		if err != nil {
			return &LoadError{Artifact: ArtifactVocabulary, Source: "postgres", Err: err}
		}
		store.Vocabulary = vocab
		return nil
	})
	g.Go(func() error {
		params, err := l.repo.LoadModel(gCtx)
		if err != nil {
			return &LoadError{Artifact: ArtifactModel, Source: "postgres", Err: err}
		}
		store.Model = params
		return nil
	})
	g.Go(func() error {
		rows, err := l.repo.LoadDataset(gCtx, model.CorpusTraining)
		if err != nil {
			return &LoadError{Artifact: ArtifactDataset, Source: "postgres", Err: err}
		}
		store.Dataset = rows
		return nil
	})
	g.Go(func() error {
		rows, err := l.repo.LoadDataset(gCtx, model.CorpusFuzzy)
		if err != nil {
			return &LoadError{Artifact: ArtifactFuzzyDataset, Source: "postgres", Err: err}
		}
		store.FuzzyDataset = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}
	return store, nil
}

package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// FilePaths locates the four JSON artifacts on disk
type FilePaths struct {
	Vocabulary   string
	Model        string
	Dataset      string
	FuzzyDataset string
}

// FileLoader reads the artifacts from JSON files
type FileLoader struct {
	paths FilePaths
}

// NewFileLoader creates a loader for the given artifact paths
func NewFileLoader(paths FilePaths) *FileLoader {
	return &FileLoader{paths: paths}
}

// Load reads all four files concurrently and validates the result
func (l *FileLoader) Load(ctx context.Context) (*Store, error) {
	store := &Store{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return readJSON(gCtx, ArtifactVocabulary, l.paths.Vocabulary, &store.Vocabulary)
	})
	g.Go(func() error {
		return readJSON(gCtx, ArtifactModel, l.paths.Model, &store.Model)
	})
	g.Go(func() error {
		return readJSON(gCtx, ArtifactDataset, l.paths.Dataset, &store.Dataset)
	})
	g.Go(func() error {
		return readJSON(gCtx, ArtifactFuzzyDataset, l.paths.FuzzyDataset, &store.FuzzyDataset)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}
	return store, nil
}

func readJSON(ctx context.Context, artifact, path string, target any) error {
	if path == "" {
		return &LoadError{Artifact: artifact, Err: fmt.Errorf("no path configured")}
	}
	if err := ctx.Err(); err != nil {
		return &LoadError{Artifact: artifact, Source: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Artifact: artifact, Source: path, Err: err}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &LoadError{Artifact: artifact, Source: path, Err: fmt.Errorf("malformed JSON: %w", err)}
	}
	return nil
}

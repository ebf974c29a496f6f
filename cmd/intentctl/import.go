package main

import (
	"fmt"

	"intent-engine/internal/repository"
	"intent-engine/internal/resource"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the JSON resource files into PostgreSQL",
	Long: `Load the vocabulary, model and both datasets from the configured file paths
(VOCABULARY_PATH, MODEL_PATH, DATASET_PATH, FUZZY_DATASET_PATH), validate them and
replace the PostgreSQL copy in a single transaction. The schema and the vector
extension are created when missing.

Run the server with RESOURCE_SOURCE=postgres to serve the imported resources.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		zlog, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = zlog.Sync() }()

		store, err := resource.NewFileLoader(resource.FilePathsFromConfig(cfg.Resources)).Load(cmd.Context())
		if err != nil {
			return err
		}

		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer repo.Close()

		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		if err := repo.ReplaceResources(cmd.Context(), store.Vocabulary, store.Model, store.Dataset, store.FuzzyDataset); err != nil {
			return err
		}

		zlog.Info("Imported classifier resources",
			zap.Int("vocabulary_size", store.Vocabulary.Size()),
			zap.Int("classes", store.Model.NumClasses()),
			zap.Int("dataset_rows", len(store.Dataset)),
			zap.Int("fuzzy_rows", len(store.FuzzyDataset)),
		)
		fmt.Fprintln(cmd.OutOrStdout(), "import complete")
		return nil
	},
}

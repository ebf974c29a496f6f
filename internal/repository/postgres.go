package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"intent-engine/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Schema creates the tables backing the classifier artifacts
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS intent_vocabulary (
	token TEXT PRIMARY KEY,
	idx   INTEGER NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS intent_model_classes (
	position     INTEGER PRIMARY KEY,
	class_id     TEXT NOT NULL UNIQUE,
	intercept    DOUBLE PRECISION NOT NULL,
	coefficients vector NOT NULL
);

CREATE TABLE IF NOT EXISTS intent_dataset_rows (
	id     BIGSERIAL PRIMARY KEY,
	corpus TEXT NOT NULL,
	text   TEXT NOT NULL,
	label  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_intent_dataset_rows_corpus ON intent_dataset_rows (corpus, id);
`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty database DSN")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the vector extension and artifact tables if missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

type vocabularyRow struct {
	Token string `db:"token"`
	Index int    `db:"idx"`
}

type classRow struct {
	Position     int             `db:"position"`
	ClassID      string          `db:"class_id"`
	Intercept    float64         `db:"intercept"`
	Coefficients pgvector.Vector `db:"coefficients"`
}

// LoadVocabulary reads the token to feature index mapping
func (r *PostgresRepository) LoadVocabulary(ctx context.Context) (model.Vocabulary, error) {
	var rows []vocabularyRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT token, idx FROM intent_vocabulary ORDER BY idx`); err != nil {
		return nil, fmt.Errorf("failed to fetch vocabulary: %w", err)
	}

	vocab := make(model.Vocabulary, len(rows))
	for _, row := range rows {
		vocab[row.Token] = row.Index
	}
	return vocab, nil
}

// LoadModel reads the per-class intercepts and coefficient rows in class order.
// Coefficients are stored as float32 vectors and widened on read.
func (r *PostgresRepository) LoadModel(ctx context.Context) (*model.ModelParams, error) {
	var rows []classRow
	query := `SELECT position, class_id, intercept, coefficients FROM intent_model_classes ORDER BY position`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to fetch model classes: %w", err)
	}

	params := &model.ModelParams{
		Classes:      make([]model.IntentID, 0, len(rows)),
		Intercept:    make([]float64, 0, len(rows)),
		Coefficients: make([][]float64, 0, len(rows)),
	}
	for _, row := range rows {
		params.Classes = append(params.Classes, model.IntentID(row.ClassID))
		params.Intercept = append(params.Intercept, row.Intercept)
		params.Coefficients = append(params.Coefficients, widen(row.Coefficients.Slice()))
	}
	return params, nil
}

// LoadDataset reads the labeled rows of one corpus in insertion order
func (r *PostgresRepository) LoadDataset(ctx context.Context, corpus string) ([]model.LabeledRow, error) {
	var rows []model.LabeledRow
	query := `SELECT text, label FROM intent_dataset_rows WHERE corpus = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, corpus); err != nil {
		return nil, fmt.Errorf("failed to fetch %s dataset: %w", corpus, err)
	}
	return rows, nil
}

// ReplaceResources overwrites every stored artifact in a single transaction
func (r *PostgresRepository) ReplaceResources(
	ctx context.Context,
	vocab model.Vocabulary,
	params *model.ModelParams,
	training []model.LabeledRow,
	fuzzy []model.LabeledRow,
) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"intent_vocabulary", "intent_model_classes", "intent_dataset_rows"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	vocabStmt, err := tx.PreparexContext(ctx, `INSERT INTO intent_vocabulary (token, idx) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("failed to prepare vocabulary statement: %w", err)
	}
	defer vocabStmt.Close()

	for token, idx := range vocab {
		if _, err := vocabStmt.ExecContext(ctx, token, idx); err != nil {
			return fmt.Errorf("token %q: %w", token, err)
		}
	}

	classStmt, err := tx.PreparexContext(ctx, `
		INSERT INTO intent_model_classes (position, class_id, intercept, coefficients)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare model statement: %w", err)
	}
	defer classStmt.Close()

	for i, class := range params.Classes {
		vec := pgvector.NewVector(narrow(params.Coefficients[i]))
		if _, err := classStmt.ExecContext(ctx, i, string(class), params.Intercept[i], vec); err != nil {
			return fmt.Errorf("class %s: %w", class, err)
		}
	}

	rowStmt, err := tx.PreparexContext(ctx, `INSERT INTO intent_dataset_rows (corpus, text, label) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("failed to prepare dataset statement: %w", err)
	}
	defer rowStmt.Close()

	corpora := []struct {
		name string
		rows []model.LabeledRow
	}{
		{model.CorpusTraining, training},
		{model.CorpusFuzzy, fuzzy},
	}
	for _, corpus := range corpora {
		for _, row := range corpus.rows {
			if _, err := rowStmt.ExecContext(ctx, corpus.name, row.Text, string(row.Label)); err != nil {
				return fmt.Errorf("%s row %q: %w", corpus.name, row.Text, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func narrow(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Package history stores generated documents and names in PostgreSQL.
package history

import (
	"context"
	"fmt"

	"github.com/genpersona/api/internal/database"
	"github.com/genpersona/api/internal/models"
	"github.com/genpersona/api/internal/persona"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// Service reads and writes generation history.
type Service struct {
	db     *database.Postgres
	logger *zap.Logger
}

// NewService creates a history service.
func NewService(db *database.Postgres, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// RecordDocument stores a finished document generation.
func (s *Service) RecordDocument(ctx context.Context, seed string, res *persona.DocumentResult) error {
	id := uuid.New()
	query := `
		INSERT INTO persona_documents (id, seed, status, attempts, failure_path, document)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.Pool().Exec(ctx, query, id, seed, string(res.Status), res.Attempts, res.FailurePath, res.Document); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	s.logger.Debug("document recorded", zap.String("id", id.String()), zap.String("status", string(res.Status)))
	return nil
}

// RecordName stores an issued name.
func (s *Service) RecordName(ctx context.Context, rec *persona.NameRecord) error {
	id := uuid.New()
	query := `
		INSERT INTO persona_names (id, full_name, title, source_persona, source, attempts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.Pool().Exec(ctx, query, id, rec.FullName, rec.Title, rec.SourcePersona, string(rec.Source), rec.Attempts); err != nil {
		return fmt.Errorf("insert name: %w", err)
	}
	s.logger.Debug("name recorded", zap.String("id", id.String()), zap.String("source", string(rec.Source)))
	return nil
}

// ListDocuments returns the most recent documents.
func (s *Service) ListDocuments(ctx context.Context, limit int) ([]models.DocumentRecord, error) {
	query := `
		SELECT id, seed, status, attempts, failure_path, document, created_at
		FROM persona_documents
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.Pool().Query(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DocumentRecord, error) {
		var d models.DocumentRecord
		err := row.Scan(&d.ID, &d.Seed, &d.Status, &d.Attempts, &d.FailurePath, &d.Document, &d.CreatedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return out, nil
}

// ListNames returns the most recently issued names.
func (s *Service) ListNames(ctx context.Context, limit int) ([]models.NameRecord, error) {
	query := `
		SELECT id, full_name, title, source_persona, source, attempts, created_at
		FROM persona_names
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.Pool().Query(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.NameRecord, error) {
		var n models.NameRecord
		err := row.Scan(&n.ID, &n.FullName, &n.Title, &n.SourcePersona, &n.Source, &n.Attempts, &n.CreatedAt)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan names: %w", err)
	}
	return out, nil
}

// ClampLimit bounds a caller-supplied page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// PostgresRepository persists artifacts in the analysis_artifacts table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository wraps an open pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Insert(ctx context.Context, a *AnalysisArtifact) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO analysis_artifacts
			(artifact_id, kind, subject, session_id, inputs, outputs, confidence, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, q,
		a.ID, string(a.Kind), a.Subject, a.SessionID,
		rawOrEmpty(a.Inputs), rawOrEmpty(a.Outputs), a.Confidence, a.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to insert artifact")
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*AnalysisArtifact, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Kind != "" {
		add("kind = $%d", string(f.Kind))
	}
	if f.Subject != "" {
		add("subject = $%d", f.Subject)
	}
	if f.SessionID != "" {
		add("session_id = $%d", f.SessionID)
	}

	q := `SELECT artifact_id, kind, COALESCE(subject, ''), COALESCE(session_id, ''),
	             inputs, outputs, confidence, created_at
	      FROM analysis_artifacts`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list artifacts")
	}
	defer rows.Close()

	var out []*AnalysisArtifact
	for rows.Next() {
		a := &AnalysisArtifact{}
		if err := rows.Scan(&a.ID, &a.Kind, &a.Subject, &a.SessionID,
			&a.Inputs, &a.Outputs, &a.Confidence, &a.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan artifact")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*AnalysisArtifact, error) {
	const q = `SELECT artifact_id, kind, COALESCE(subject, ''), COALESCE(session_id, ''),
	                  inputs, outputs, confidence, created_at
	           FROM analysis_artifacts WHERE artifact_id = $1`
	a := &AnalysisArtifact{}
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.Kind, &a.Subject, &a.SessionID,
		&a.Inputs, &a.Outputs, &a.Confidence, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.New(apperrors.ErrCodeArtifactNotFound, "analysis artifact not found").
			WithDetail("artifact_id=" + id)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to get artifact")
	}
	return a, nil
}

func rawOrEmpty(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

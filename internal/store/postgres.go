package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const recordColumns = `id, client_id, mapping_version, mode, codes, score, categories, created_at`

func (s *PostgresStore) CreateScoreRecord(ctx context.Context, rec *ScoreRecord) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO score_records (client_id, mapping_version, mode, codes, score, categories)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		rec.ClientID, rec.MappingVersion, rec.Mode, rec.Codes, rec.Score, rec.Categories,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (s *PostgresStore) GetScoreRecord(ctx context.Context, id uuid.UUID) (*ScoreRecord, error) {
	rec := &ScoreRecord{}
	err := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM score_records WHERE id = $1`, id,
	).Scan(
		&rec.ID, &rec.ClientID, &rec.MappingVersion, &rec.Mode,
		&rec.Codes, &rec.Score, &rec.Categories, &rec.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) ListScoreRecords(ctx context.Context, filter RecordFilter) ([]*ScoreRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM score_records WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.MappingVersion != "" {
		n++
		query += fmt.Sprintf(" AND mapping_version = $%d", n)
		args = append(args, filter.MappingVersion)
	}
	if filter.ClientID != "" {
		n++
		query += fmt.Sprintf(" AND client_id = $%d", n)
		args = append(args, filter.ClientID)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ScoreRecord
	for rows.Next() {
		rec := &ScoreRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.ClientID, &rec.MappingVersion, &rec.Mode,
			&rec.Codes, &rec.Score, &rec.Categories, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*ScoreStats, error) {
	stats := &ScoreStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(score), 0),
			COALESCE(MAX(score), 0)
		FROM score_records`,
	).Scan(&stats.TotalRecords, &stats.AvgScore, &stats.MaxScore)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

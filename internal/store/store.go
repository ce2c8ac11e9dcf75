package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScoreRecord is the audit trail entry for one scoring call.
type ScoreRecord struct {
	ID             uuid.UUID `json:"id"`
	ClientID       string    `json:"client_id,omitempty"`
	MappingVersion string    `json:"mapping_version"`
	Mode           string    `json:"mode"`
	Codes          []string  `json:"codes"`
	Score          int       `json:"score"`
	Categories     []string  `json:"categories"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordFilter narrows ListScoreRecords.
type RecordFilter struct {
	MappingVersion string
	ClientID       string
	Limit          int
	Offset         int
}

// ScoreStats summarises the audit trail.
type ScoreStats struct {
	TotalRecords int     `json:"total_records"`
	AvgScore     float64 `json:"avg_score"`
	MaxScore     int     `json:"max_score"`
}

type Store interface {
	CreateScoreRecord(ctx context.Context, rec *ScoreRecord) error
	GetScoreRecord(ctx context.Context, id uuid.UUID) (*ScoreRecord, error)
	ListScoreRecords(ctx context.Context, filter RecordFilter) ([]*ScoreRecord, error)
	GetStats(ctx context.Context) (*ScoreStats, error)
	Close() error
}

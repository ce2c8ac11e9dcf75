package events

import "time"

// ScoreComputedEvent is published after a score has been computed and
// persisted.
type ScoreComputedEvent struct {
	RecordID       string    `json:"record_id"`
	ClientID       string    `json:"client_id,omitempty"`
	MappingVersion string    `json:"mapping_version"`
	Mode           string    `json:"mode"`
	Score          int       `json:"score"`
	Categories     []string  `json:"categories,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// MappingReloadedEvent is published when the mapping registry is swapped.
type MappingReloadedEvent struct {
	Versions  []string  `json:"versions"`
	Timestamp time.Time `json:"timestamp"`
}

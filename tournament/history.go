package tournament

import (
	"context"
	"time"
)

// TournamentHistoryRecord is one archived tournament.
type TournamentHistoryRecord struct {
	Tournament       *Tournament `json:"tournament"`
	ArchivedAt       time.Time   `json:"archivedAt"`
	ParticipantCount int         `json:"participantCount"`
	WinnerID         string      `json:"winnerId,omitempty"`
}

// HistoryConfig is the data definition for the history system.
type HistoryConfig struct {
	// MaxRecords bounds the archive; the oldest record is dropped first.
	MaxRecords int `json:"max_records,omitempty"`
}

// DefaultHistoryConfig returns the stock history configuration.
func DefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{MaxRecords: 50}
}

// HistorySystem keeps a bounded archive of completed tournaments.
type HistorySystem interface {
	System

	// Archive stores a completed tournament, evicting the oldest record
	// when the archive is full.
	Archive(ctx context.Context, tournament *Tournament) error

	// List returns archived records, most recent first.
	List(ctx context.Context) ([]*TournamentHistoryRecord, error)

	// ListByGame returns archived records whose rotation included the
	// game, most recent first.
	ListByGame(ctx context.Context, gameID string) ([]*TournamentHistoryRecord, error)

	// ListSince returns archived records with an archive time at or after
	// since, most recent first.
	ListSince(ctx context.Context, since time.Time) ([]*TournamentHistoryRecord, error)

	// Totals returns the lifetime count of archived tournaments and the
	// sum of their participant counts, including evicted records.
	Totals(ctx context.Context) (int, int, error)
}

package tournament

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const historyStateKey = "tournament_history"

var _ HistorySystem = (*LocalHistorySystem)(nil)

type historyState struct {
	Completed         []*TournamentHistoryRecord `json:"completedTournaments"`
	TotalTournaments  int                        `json:"totalTournaments"`
	TotalParticipants int                        `json:"totalParticipants"`
	LastCleanup       time.Time                  `json:"lastCleanup"`
}

// LocalHistorySystem archives completed tournaments to storage, loading the
// persisted state lazily on first use.
type LocalHistorySystem struct {
	sync.Mutex

	config  *HistoryConfig
	logger  Logger
	clock   Clock
	storage Storage

	state *historyState
}

// NewLocalHistorySystem creates a history system from the given config.
func NewLocalHistorySystem(config *HistoryConfig, logger Logger, clock Clock, storage Storage) *LocalHistorySystem {
	if config == nil {
		config = DefaultHistoryConfig()
	}
	if config.MaxRecords <= 0 {
		config.MaxRecords = 50
	}
	return &LocalHistorySystem{
		config:  config,
		logger:  logger,
		clock:   clock,
		storage: storage,
	}
}

func (h *LocalHistorySystem) GetType() SystemType {
	return SystemTypeHistory
}

func (h *LocalHistorySystem) GetConfig() any {
	return h.config
}

// loadState must be called with the mutex held.
func (h *LocalHistorySystem) loadState(ctx context.Context) error {
	if h.state != nil {
		return nil
	}
	value, found, err := h.storage.Read(ctx, tournamentStorageCollection, historyStateKey)
	if err != nil {
		return err
	}
	state := &historyState{}
	if found {
		if err := json.Unmarshal(value, state); err != nil {
			h.logger.Error("tournament history state is corrupt: %v", err)
			return ErrPayloadDecode
		}
	}
	h.state = state
	return nil
}

// saveState must be called with the mutex held.
func (h *LocalHistorySystem) saveState(ctx context.Context) error {
	value, err := json.Marshal(h.state)
	if err != nil {
		return ErrPayloadEncode
	}
	return h.storage.Write(ctx, tournamentStorageCollection, historyStateKey, value)
}

func (h *LocalHistorySystem) Archive(ctx context.Context, tournament *Tournament) error {
	if tournament == nil {
		return ErrBadInput
	}

	h.Lock()
	defer h.Unlock()

	if err := h.loadState(ctx); err != nil {
		return err
	}

	record := &TournamentHistoryRecord{
		Tournament:       tournament,
		ArchivedAt:       h.clock.Now().UTC(),
		ParticipantCount: len(tournament.Participants),
		WinnerID:         tournamentWinner(tournament),
	}

	h.state.Completed = append(h.state.Completed, record)
	h.state.TotalTournaments++
	h.state.TotalParticipants += record.ParticipantCount
	if excess := len(h.state.Completed) - h.config.MaxRecords; excess > 0 {
		h.state.Completed = h.state.Completed[excess:]
		h.state.LastCleanup = record.ArchivedAt
	}

	return h.saveState(ctx)
}

// tournamentWinner picks the participant with the highest total points,
// breaking ties on the lexically smaller player id.
func tournamentWinner(tournament *Tournament) string {
	var winnerID string
	var best int
	for playerID, p := range tournament.Participants {
		if winnerID == "" || p.TotalPoints > best || (p.TotalPoints == best && playerID < winnerID) {
			winnerID = playerID
			best = p.TotalPoints
		}
	}
	return winnerID
}

func (h *LocalHistorySystem) List(ctx context.Context) ([]*TournamentHistoryRecord, error) {
	h.Lock()
	defer h.Unlock()

	if err := h.loadState(ctx); err != nil {
		return nil, err
	}

	out := make([]*TournamentHistoryRecord, 0, len(h.state.Completed))
	for i := len(h.state.Completed) - 1; i >= 0; i-- {
		out = append(out, h.state.Completed[i])
	}
	return out, nil
}

func (h *LocalHistorySystem) ListByGame(ctx context.Context, gameID string) ([]*TournamentHistoryRecord, error) {
	records, err := h.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := records[:0]
	for _, r := range records {
		for _, id := range r.Tournament.GameRotation {
			if id == gameID {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered, nil
}

func (h *LocalHistorySystem) ListSince(ctx context.Context, since time.Time) ([]*TournamentHistoryRecord, error) {
	records, err := h.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := records[:0]
	for _, r := range records {
		if !r.ArchivedAt.Before(since) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (h *LocalHistorySystem) Totals(ctx context.Context) (int, int, error) {
	h.Lock()
	defer h.Unlock()

	if err := h.loadState(ctx); err != nil {
		return 0, 0, err
	}
	return h.state.TotalTournaments, h.state.TotalParticipants, nil
}

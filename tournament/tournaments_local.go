package tournament

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const (
	tournamentStorageCollection = "tournaments"
	tournamentStateKey          = "tournament_data"
)

var _ TournamentSystem = (*LocalTournamentSystem)(nil)

// tournamentState is the persisted document. Its field names are the wire
// format; changing them invalidates existing saves.
type tournamentState struct {
	CurrentTournament *Tournament                  `json:"currentTournament"`
	PlayerStats       map[string]*PlayerStats      `json:"playerStats"`
	Leaderboards      map[string]*GameLeaderboards `json:"leaderboards"`
	LastSaved         time.Time                    `json:"lastSaved"`
}

// pendingEvent is a bus publication queued while the state mutex is held.
// Publishing happens after unlock so listeners can call back into the
// system.
type pendingEvent struct {
	eventType string
	data      interface{}
	source    string
}

// LocalTournamentSystem owns the tournament lifecycle, leaderboards and
// player stats, persisting everything as one document. All mutation happens
// under one mutex; events and publisher deliveries are flushed after it is
// released.
type LocalTournamentSystem struct {
	mu sync.Mutex

	config  *TournamentsConfig
	logger  Logger
	clock   Clock
	storage Storage
	hub     Hub

	rng        *rand.Rand
	cronParser cron.Parser

	state *tournamentState
}

// NewLocalTournamentSystem creates a tournament system from the given
// config. The hub must be attached with SetHub before use.
func NewLocalTournamentSystem(config *TournamentsConfig, logger Logger, clock Clock, storage Storage) *LocalTournamentSystem {
	if config == nil {
		config = DefaultTournamentsConfig()
	}
	if config.DurationDays == 0 {
		config.DurationDays = 7
	}
	if config.RotationSize == 0 {
		config.RotationSize = 5
	}
	if config.LeaderboardSize == 0 {
		config.LeaderboardSize = 10
	}
	return &LocalTournamentSystem{
		config:     config,
		logger:     logger,
		clock:      clock,
		storage:    storage,
		rng:        rand.New(rand.NewSource(clock.Now().UnixNano())),
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

func (s *LocalTournamentSystem) GetType() SystemType {
	return SystemTypeTournaments
}

func (s *LocalTournamentSystem) GetConfig() any {
	return s.config
}

// SetHub attaches the hub for access to the sibling systems.
func (s *LocalTournamentSystem) SetHub(hub Hub) {
	s.hub = hub
}

// SetRand replaces the rotation sampling source. Intended for deterministic
// tests.
func (s *LocalTournamentSystem) SetRand(rng *rand.Rand) {
	s.mu.Lock()
	s.rng = rng
	s.mu.Unlock()
}

// bootstrap loads persisted state and makes sure a live tournament exists.
func (s *LocalTournamentSystem) bootstrap(ctx context.Context) error {
	s.mu.Lock()
	if err := s.loadState(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	pending, err := s.ensureActiveTournament(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.flush(ctx, pending, nil)
	return nil
}

// loadState must be called with the mutex held.
func (s *LocalTournamentSystem) loadState(ctx context.Context) error {
	if s.state != nil {
		return nil
	}
	value, found, err := s.storage.Read(ctx, tournamentStorageCollection, tournamentStateKey)
	if err != nil {
		return err
	}
	state := &tournamentState{}
	if found {
		if err := json.Unmarshal(value, state); err != nil {
			s.logger.Error("tournament state is corrupt: %v", err)
			return ErrPayloadDecode
		}
	}
	if state.PlayerStats == nil {
		state.PlayerStats = make(map[string]*PlayerStats)
	}
	if state.Leaderboards == nil {
		state.Leaderboards = make(map[string]*GameLeaderboards)
	}
	s.state = state
	return nil
}

// saveState must be called with the mutex held. A write failure is logged
// and reported but in-memory state stays authoritative.
func (s *LocalTournamentSystem) saveState(ctx context.Context) error {
	s.state.LastSaved = s.clock.Now().UTC()
	value, err := json.Marshal(s.state)
	if err != nil {
		return ErrPayloadEncode
	}
	if err := s.storage.Write(ctx, tournamentStorageCollection, tournamentStateKey, value); err != nil {
		s.logger.Error("failed to persist tournament state: %v", err)
		return err
	}
	return nil
}

// flush delivers queued bus and publisher events. Must be called without
// the mutex held.
func (s *LocalTournamentSystem) flush(ctx context.Context, events []pendingEvent, publisherEvents []*PublisherEvent) {
	if s.hub == nil {
		return
	}
	if bus := s.hub.GetEventBus(); bus != nil {
		for _, e := range events {
			var opts *PublishOptions
			if e.source != "" {
				opts = &PublishOptions{Source: e.source}
			}
			if _, err := bus.Publish(e.eventType, e.data, opts); err != nil {
				s.logger.Error("failed to publish %q: %v", e.eventType, err)
			}
		}
	}
	s.hub.SendPublisherEvents(ctx, publisherEvents...)
}

func (s *LocalTournamentSystem) scoring() ScoringSystem {
	if s.hub != nil {
		if sc := s.hub.GetScoringSystem(); sc != nil {
			return sc
		}
	}
	return nil
}

// ensureActiveTournament replaces a missing or expired tournament. An
// expired one is archived first; there is never more than one current
// tournament. Must be called with the mutex held; returns events to flush
// after unlock.
func (s *LocalTournamentSystem) ensureActiveTournament(ctx context.Context) ([]pendingEvent, error) {
	var pending []pendingEvent
	now := s.clock.Now()

	current := s.state.CurrentTournament
	if current != nil && !now.After(current.EndDate) {
		return nil, nil
	}

	if current != nil {
		current.Status = TournamentStatusExpired
		winnerID := tournamentWinner(current)
		if s.hub != nil {
			if history := s.hub.GetHistorySystem(); history != nil {
				if err := history.Archive(ctx, current); err != nil {
					s.logger.Error("failed to archive tournament %s: %v", current.ID, err)
				}
			}
		}
		pending = append(pending, pendingEvent{
			eventType: EventTournamentCompleted,
			data:      TournamentCompletedPayload{Tournament: current, WinnerID: winnerID},
		})
		s.logger.Info("tournament %s expired, winner: %s", current.ID, winnerID)
	}

	tournament := s.createTournament(now)
	s.state.CurrentTournament = tournament
	if err := s.saveState(ctx); err != nil {
		return pending, err
	}

	pending = append(pending, pendingEvent{
		eventType: EventTournamentStart,
		data:      TournamentStartPayload{Tournament: tournament},
	})
	s.logger.Info("started tournament %s with rotation %v", tournament.ID, tournament.GameRotation)
	return pending, nil
}

// createTournament builds a fresh tournament. Must be called with the
// mutex held.
func (s *LocalTournamentSystem) createTournament(now time.Time) *Tournament {
	endDate := now.AddDate(0, 0, s.config.DurationDays)
	if next, ok := s.nextResetTime(now); ok {
		endDate = next
	}
	return &Tournament{
		ID:           "weekly-" + uuid.NewString(),
		Name:         s.config.Name,
		Type:         "weekly",
		StartDate:    now.UTC(),
		EndDate:      endDate.UTC(),
		Status:       TournamentStatusActive,
		Participants: make(map[string]*Participant),
		GameRotation: s.generateRotation(),
		Prizes:       s.config.Prizes,
	}
}

// nextResetTime resolves the configured reset schedule, when one is set.
func (s *LocalTournamentSystem) nextResetTime(now time.Time) (time.Time, bool) {
	if s.config.ResetCronexpr == "" {
		return time.Time{}, false
	}
	sched, err := s.cronParser.Parse(s.config.ResetCronexpr)
	if err != nil {
		s.logger.Error("invalid reset schedule %q: %v", s.config.ResetCronexpr, err)
		return time.Time{}, false
	}
	return sched.Next(now), true
}

// generateRotation samples one game per configured category, then fills up
// to the rotation size with random games, without duplicates. Must be
// called with the mutex held.
func (s *LocalTournamentSystem) generateRotation() []string {
	scoring := s.scoring()
	if scoring == nil {
		return nil
	}
	games := scoring.SupportedGames()

	byCategory := make(map[string][]string)
	for _, gameID := range games {
		if profile, ok := scoring.Profile(gameID); ok {
			byCategory[profile.Category] = append(byCategory[profile.Category], gameID)
		}
	}

	rotation := make([]string, 0, s.config.RotationSize)
	used := make(map[string]bool)
	for _, category := range s.config.RotationCategories {
		if len(rotation) >= s.config.RotationSize {
			break
		}
		candidates := byCategory[category]
		if len(candidates) == 0 {
			continue
		}
		pick := candidates[s.rng.Intn(len(candidates))]
		if !used[pick] {
			rotation = append(rotation, pick)
			used[pick] = true
		}
	}

	for len(rotation) < s.config.RotationSize && len(used) < len(games) {
		pick := games[s.rng.Intn(len(games))]
		if !used[pick] {
			rotation = append(rotation, pick)
			used[pick] = true
		}
	}
	return rotation
}

func (s *LocalTournamentSystem) StartWeeklyTournament(ctx context.Context) (*Tournament, error) {
	s.mu.Lock()
	if err := s.loadState(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var pending []pendingEvent
	current := s.state.CurrentTournament
	if current != nil {
		current.Status = TournamentStatusExpired
		winnerID := tournamentWinner(current)
		if s.hub != nil {
			if history := s.hub.GetHistorySystem(); history != nil {
				if err := history.Archive(ctx, current); err != nil {
					s.logger.Error("failed to archive tournament %s: %v", current.ID, err)
				}
			}
		}
		pending = append(pending, pendingEvent{
			eventType: EventTournamentCompleted,
			data:      TournamentCompletedPayload{Tournament: current, WinnerID: winnerID},
		})
	}

	tournament := s.createTournament(s.clock.Now())
	s.state.CurrentTournament = tournament
	if err := s.saveState(ctx); err != nil {
		s.mu.Unlock()
		s.flush(ctx, pending, nil)
		return nil, err
	}
	pending = append(pending, pendingEvent{
		eventType: EventTournamentStart,
		data:      TournamentStartPayload{Tournament: tournament},
	})
	s.mu.Unlock()

	s.flush(ctx, pending, []*PublisherEvent{{
		Name:      "tournament_started",
		Id:        uuid.NewString(),
		Timestamp: s.clock.Now().UnixMilli(),
		Metadata: map[string]string{
			"tournament_id": tournament.ID,
			"rotation":      fmt.Sprintf("%v", tournament.GameRotation),
		},
	}})

	s.logger.Info("started tournament %s with rotation %v", tournament.ID, tournament.GameRotation)
	return tournament, nil
}

func (s *LocalTournamentSystem) SubmitScore(ctx context.Context, playerID, gameID string, score float64, level int, extra map[string]interface{}) bool {
	if playerID == "" || gameID == "" {
		s.logger.Warn("score submission rejected: missing player or game id")
		return false
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		s.logger.Warn("score submission rejected for %s: invalid score", playerID)
		return false
	}
	if level < 1 {
		level = 1
	}

	scoring := s.scoring()
	if scoring == nil {
		s.logger.Error("score submission rejected: scoring system not available")
		return false
	}
	profile, ok := scoring.Profile(gameID)
	if !ok {
		s.logger.Warn("score submission rejected: unknown game %q", gameID)
		return false
	}

	s.mu.Lock()
	if err := s.loadState(ctx); err != nil {
		s.mu.Unlock()
		return false
	}
	pending, err := s.ensureActiveTournament(ctx)
	if err != nil {
		s.mu.Unlock()
		s.flush(ctx, pending, nil)
		return false
	}

	now := s.clock.Now()
	tournament := s.state.CurrentTournament
	points := scoring.CalculateTournamentPoints(score, level, profile.Weight)

	participant, ok := tournament.Participants[playerID]
	if !ok {
		participant = &Participant{
			GamesPlayed: make(map[string]*ParticipantGame),
			JoinDate:    now.UTC(),
		}
		tournament.Participants[playerID] = participant
	}

	// Best-of per game: the stored entry only improves, and totalPoints
	// stays the exact sum of best-per-game points.
	previous := participant.GamesPlayed[gameID]
	if previous == nil || points > previous.Points {
		previousPoints := 0
		if previous != nil {
			previousPoints = previous.Points
		}
		participant.GamesPlayed[gameID] = &ParticipantGame{
			Score:     score,
			Level:     level,
			Points:    points,
			Timestamp: now.UTC(),
			Extra:     extra,
		}
		participant.TotalPoints += points - previousPoints
	}

	s.updateLeaderboards(playerID, gameID, score, level, now)
	stats := s.updatePlayerStats(playerID, gameID, score, level, now)
	unlocked := s.unlockAchievements(playerID, stats)

	if err := s.saveState(ctx); err != nil {
		s.logger.Error("score for %s recorded but not persisted: %v", playerID, err)
	}

	pending = append(pending,
		pendingEvent{
			eventType: EventScoreSubmitted,
			data: ScoreSubmittedPayload{
				PlayerID: playerID,
				GameID:   gameID,
				Score:    score,
				Level:    level,
				Points:   points,
			},
			source: gameID,
		},
		pendingEvent{
			eventType: EventTournamentUpdated,
			data: TournamentUpdatedPayload{
				TournamentID: tournament.ID,
				PlayerID:     playerID,
				TotalPoints:  participant.TotalPoints,
			},
		},
	)
	for _, a := range unlocked {
		pending = append(pending, pendingEvent{
			eventType: EventAchievementUnlocked,
			data:      a,
		})
	}
	s.mu.Unlock()

	publisherEvents := []*PublisherEvent{{
		Name:      "score_submitted",
		Id:        uuid.NewString(),
		Timestamp: now.UnixMilli(),
		PlayerID:  playerID,
		Metadata: map[string]string{
			"game_id": gameID,
			"level":   fmt.Sprintf("%d", level),
			"points":  fmt.Sprintf("%d", points),
		},
		Value: fmt.Sprintf("%.0f", score),
	}}
	for _, a := range unlocked {
		publisherEvents = append(publisherEvents, &PublisherEvent{
			Name:      "achievement_unlocked",
			Id:        uuid.NewString(),
			Timestamp: now.UnixMilli(),
			PlayerID:  playerID,
			Metadata:  map[string]string{"achievement_id": a.AchievementID},
		})
	}
	s.flush(ctx, pending, publisherEvents)

	return true
}

// updateLeaderboards records an entry on the game's three period boards.
// Must be called with the mutex held.
func (s *LocalTournamentSystem) updateLeaderboards(playerID, gameID string, score float64, level int, now time.Time) {
	boards, ok := s.state.Leaderboards[gameID]
	if !ok {
		boards = &GameLeaderboards{}
		s.state.Leaderboards[gameID] = boards
	}

	entry := LeaderboardEntry{
		PlayerID:  playerID,
		Score:     score,
		Level:     level,
		Timestamp: now.UTC(),
	}

	boards.AllTime = s.insertEntry(boards.AllTime, entry)
	boards.Weekly = s.insertEntry(s.pruneWindow(boards.Weekly, now, 7*24*time.Hour), entry)
	boards.Monthly = s.insertEntry(s.pruneWindow(boards.Monthly, now, 30*24*time.Hour), entry)
}

// pruneWindow drops entries older than the rolling window.
func (s *LocalTournamentSystem) pruneWindow(entries []LeaderboardEntry, now time.Time, window time.Duration) []LeaderboardEntry {
	cutoff := now.Add(-window)
	kept := entries[:0]
	for _, e := range entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	return kept
}

// insertEntry places a candidate on a board sorted best first. Each player
// holds at most one row; an existing equal-or-better row wins over the
// candidate, equal scores keep the earlier submission ahead.
func (s *LocalTournamentSystem) insertEntry(entries []LeaderboardEntry, entry LeaderboardEntry) []LeaderboardEntry {
	for i, existing := range entries {
		if existing.PlayerID == entry.PlayerID {
			if existing.Score >= entry.Score {
				return entries
			}
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}

	idx := len(entries)
	for i, existing := range entries {
		if entry.Score > existing.Score {
			idx = i
			break
		}
	}
	entries = append(entries, LeaderboardEntry{})
	copy(entries[idx+1:], entries[idx:])
	entries[idx] = entry

	if len(entries) > s.config.LeaderboardSize {
		entries = entries[:s.config.LeaderboardSize]
	}
	return entries
}

// updatePlayerStats folds one play into the player's lifetime record and
// returns it. Must be called with the mutex held.
func (s *LocalTournamentSystem) updatePlayerStats(playerID, gameID string, score float64, level int, now time.Time) *PlayerStats {
	stats, ok := s.state.PlayerStats[playerID]
	if !ok {
		stats = &PlayerStats{
			JoinDate: now.UTC(),
			Games:    make(map[string]*PlayerGameStats),
		}
		s.state.PlayerStats[playerID] = stats
	}
	if stats.Games == nil {
		stats.Games = make(map[string]*PlayerGameStats)
	}

	stats.TotalGames++
	stats.TotalScore += score

	game, ok := stats.Games[gameID]
	if !ok {
		game = &PlayerGameStats{}
		stats.Games[gameID] = game
	}
	game.Played++
	if score > game.BestScore {
		game.BestScore = score
	}
	if level > game.BestLevel {
		game.BestLevel = level
	}

	stats.FavoriteGame = favoriteGame(stats.Games)
	return stats
}

// favoriteGame is the most played game, ties broken by the lexically
// smaller id so the result is stable.
func favoriteGame(games map[string]*PlayerGameStats) string {
	ids := make([]string, 0, len(games))
	for id := range games {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var favorite string
	var most int
	for _, id := range ids {
		if games[id].Played > most {
			favorite = id
			most = games[id].Played
		}
	}
	return favorite
}

// unlockAchievements records newly satisfied achievements on the stats and
// returns their event payloads. Must be called with the mutex held.
func (s *LocalTournamentSystem) unlockAchievements(playerID string, stats *PlayerStats) []AchievementUnlockedPayload {
	if s.hub == nil {
		return nil
	}
	achievements := s.hub.GetAchievementsSystem()
	if achievements == nil {
		return nil
	}

	var payloads []AchievementUnlockedPayload
	for _, id := range achievements.Evaluate(stats) {
		stats.Achievements = append(stats.Achievements, id)
		name := id
		if def, ok := achievements.Get(id); ok {
			name = def.Name
		}
		payloads = append(payloads, AchievementUnlockedPayload{
			PlayerID:      playerID,
			AchievementID: id,
			Name:          name,
		})
	}
	return payloads
}

func (s *LocalTournamentSystem) GetTournamentStatus(ctx context.Context) *TournamentStatus {
	s.mu.Lock()
	if err := s.loadState(ctx); err != nil {
		s.mu.Unlock()
		return nil
	}
	pending, err := s.ensureActiveTournament(ctx)
	if err != nil {
		s.mu.Unlock()
		s.flush(ctx, pending, nil)
		return nil
	}

	tournament := s.state.CurrentTournament
	now := s.clock.Now()
	timeLeft := tournament.EndDate.Sub(now)
	if timeLeft < 0 {
		timeLeft = 0
	}
	daysLeft := int(math.Ceil(timeLeft.Hours() / 24))
	if daysLeft < 0 {
		daysLeft = 0
	}

	standings := tournamentStandings(tournament)
	if len(standings) > 10 {
		standings = standings[:10]
	}

	status := &TournamentStatus{
		Tournament: tournament,
		TimeLeft:   timeLeft,
		DaysLeft:   daysLeft,
		TopPlayers: standings,
	}
	s.mu.Unlock()

	s.flush(ctx, pending, nil)
	return status
}

// tournamentStandings orders participants by total points, ties broken by
// games played then player id.
func tournamentStandings(tournament *Tournament) []TournamentRank {
	ranks := make([]TournamentRank, 0, len(tournament.Participants))
	for playerID, p := range tournament.Participants {
		ranks = append(ranks, TournamentRank{
			PlayerID:    playerID,
			TotalPoints: p.TotalPoints,
			GamesPlayed: len(p.GamesPlayed),
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].TotalPoints != ranks[j].TotalPoints {
			return ranks[i].TotalPoints > ranks[j].TotalPoints
		}
		if ranks[i].GamesPlayed != ranks[j].GamesPlayed {
			return ranks[i].GamesPlayed > ranks[j].GamesPlayed
		}
		return ranks[i].PlayerID < ranks[j].PlayerID
	})
	return ranks
}

func (s *LocalTournamentSystem) GetGameLeaderboard(gameID string, period LeaderboardPeriod) []LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadState(context.Background()); err != nil {
		return nil
	}
	boards, ok := s.state.Leaderboards[gameID]
	if !ok {
		return nil
	}

	var entries []LeaderboardEntry
	switch period {
	case LeaderboardPeriodWeekly:
		entries = boards.Weekly
	case LeaderboardPeriodMonthly:
		entries = boards.Monthly
	default:
		entries = boards.AllTime
	}

	out := make([]LeaderboardEntry, len(entries))
	copy(out, entries)
	return out
}

func (s *LocalTournamentSystem) GetPlayerRank(playerID, gameID string, period LeaderboardPeriod) (int, bool) {
	for i, entry := range s.GetGameLeaderboard(gameID, period) {
		if entry.PlayerID == playerID {
			return i + 1, true
		}
	}
	return 0, false
}

func (s *LocalTournamentSystem) GetPlayerStats(playerID string) *PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadState(context.Background()); err != nil {
		return nil
	}
	return s.state.PlayerStats[playerID]
}

func (s *LocalTournamentSystem) GetTournamentLeaderboard() []TournamentRank {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadState(context.Background()); err != nil {
		return nil
	}
	if s.state.CurrentTournament == nil {
		return nil
	}
	return tournamentStandings(s.state.CurrentTournament)
}

func (s *LocalTournamentSystem) IsTournamentExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadState(context.Background()); err != nil {
		return false
	}
	current := s.state.CurrentTournament
	return current != nil && s.clock.Now().After(current.EndDate)
}

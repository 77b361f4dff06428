package tournament

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTournamentSystem(t *testing.T, clock Clock, storage Storage) (TournamentSystem, Hub) {
	t.Helper()
	hub, err := newTestHub(context.Background(), clock, storage)
	require.NoError(t, err)
	ts := hub.GetTournamentSystem()
	require.NotNil(t, ts)
	return ts, hub
}

func TestTournamentBootstrap_StartsTournament(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())

	status := ts.GetTournamentStatus(context.Background())
	require.NotNil(t, status)
	require.NotNil(t, status.Tournament)

	tournament := status.Tournament
	assert.Equal(t, TournamentStatusActive, tournament.Status)
	assert.Equal(t, "Weekly Championship", tournament.Name)
	assert.Equal(t, "weekly", tournament.Type)
	assert.Equal(t, tournament.StartDate.AddDate(0, 0, 7), tournament.EndDate)
	assert.Equal(t, 7, status.DaysLeft)
	assert.False(t, ts.IsTournamentExpired())
}

func TestTournamentRotation_UniqueAndCategoryCovering(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, hub := newTestTournamentSystem(t, clock, NewMemoryStorage())
	scoring := hub.GetScoringSystem()

	for i := 0; i < 20; i++ {
		tournament, err := ts.StartWeeklyTournament(context.Background())
		require.NoError(t, err)

		require.Len(t, tournament.GameRotation, 5)
		seen := make(map[string]bool)
		categories := make(map[string]bool)
		for _, gameID := range tournament.GameRotation {
			assert.False(t, seen[gameID], "duplicate game %s in rotation", gameID)
			seen[gameID] = true
			profile, ok := scoring.Profile(gameID)
			require.True(t, ok, "rotation contains unknown game %s", gameID)
			categories[profile.Category] = true
		}
		// One pick per required category before random fill.
		for _, category := range []string{"classic", "action", "puzzle", "maze", "space"} {
			assert.True(t, categories[category], "category %s missing from rotation", category)
		}
	}
}

func TestSubmitScore_BestOfPerGame(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 500, 2, nil))
	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 300, 2, nil))

	status := ts.GetTournamentStatus(ctx)
	participant := status.Tournament.Participants["playerA"]
	require.NotNil(t, participant)

	game := participant.GamesPlayed["snake-GG"]
	require.NotNil(t, game)
	assert.Equal(t, 500.0, game.Score)

	// totalPoints is exactly the sum of best-per-game points.
	expected := 0
	for _, g := range participant.GamesPlayed {
		expected += g.Points
	}
	assert.Equal(t, expected, participant.TotalPoints)
}

func TestSubmitScore_TotalPointsDelta(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, hub := newTestTournamentSystem(t, clock, NewMemoryStorage())
	scoring := hub.GetScoringSystem()
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 300, 1, nil))
	require.True(t, ts.SubmitScore(ctx, "playerA", "pong-GG", 15, 1, nil))
	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 900, 3, nil))

	snakePoints := scoring.CalculateTournamentPoints(900, 3, 1.0)
	pongPoints := scoring.CalculateTournamentPoints(15, 1, 0.8)

	status := ts.GetTournamentStatus(ctx)
	participant := status.Tournament.Participants["playerA"]
	assert.Equal(t, snakePoints+pongPoints, participant.TotalPoints)
	assert.Len(t, participant.GamesPlayed, 2)
}

func TestSubmitScore_RejectsInvalidInput(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	assert.False(t, ts.SubmitScore(ctx, "", "snake-GG", 100, 1, nil))
	assert.False(t, ts.SubmitScore(ctx, "playerA", "", 100, 1, nil))
	assert.False(t, ts.SubmitScore(ctx, "playerA", "bogus-GG", 100, 1, nil))
	assert.False(t, ts.SubmitScore(ctx, "playerA", "snake-GG", -5, 1, nil))

	// No participant bookkeeping happened.
	status := ts.GetTournamentStatus(ctx)
	assert.Empty(t, status.Tournament.Participants)
}

func TestSubmitScore_EmitsEvents(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, hub := newTestTournamentSystem(t, clock, NewMemoryStorage())
	bus := hub.GetEventBus()
	ctx := context.Background()

	var submitted []ScoreSubmittedPayload
	_, err := bus.Subscribe(EventScoreSubmitted, func(e Event) error {
		submitted = append(submitted, e.Data.(ScoreSubmittedPayload))
		return nil
	}, nil)
	require.NoError(t, err)

	var updated []TournamentUpdatedPayload
	_, err = bus.Subscribe(EventTournamentUpdated, func(e Event) error {
		updated = append(updated, e.Data.(TournamentUpdatedPayload))
		return nil
	}, nil)
	require.NoError(t, err)

	publisher := &capturePublisher{}
	hub.AddPublisher(publisher)

	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 500, 2, nil))

	require.Len(t, submitted, 1)
	assert.Equal(t, "playerA", submitted[0].PlayerID)
	assert.Equal(t, "snake-GG", submitted[0].GameID)
	assert.Equal(t, 500.0, submitted[0].Score)

	require.Len(t, updated, 1)
	assert.Equal(t, "playerA", updated[0].PlayerID)
	assert.Positive(t, updated[0].TotalPoints)

	events := publisher.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "score_submitted", events[0].Name)
	assert.Equal(t, "playerA", events[0].PlayerID)
}

func TestGameLeaderboard_SortedAndBounded(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		playerID := string(rune('a' + i))
		require.True(t, ts.SubmitScore(ctx, playerID, "snake-GG", float64(100*(i+1)), 1, nil))
	}

	entries := ts.GetGameLeaderboard("snake-GG", LeaderboardPeriodAllTime)
	require.Len(t, entries, 10)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Score, entries[i].Score)
	}
	assert.Equal(t, 1500.0, entries[0].Score)
}

func TestGameLeaderboard_OneEntryPerPlayer(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 300, 1, nil))
	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 500, 1, nil))
	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 400, 1, nil))

	entries := ts.GetGameLeaderboard("snake-GG", LeaderboardPeriodAllTime)
	require.Len(t, entries, 1)
	assert.Equal(t, 500.0, entries[0].Score)
}

func TestGameLeaderboard_EqualScoresKeepSubmissionOrder(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "early", "snake-GG", 500, 1, nil))
	clock.Advance(time.Minute)
	require.True(t, ts.SubmitScore(ctx, "late", "snake-GG", 500, 1, nil))

	entries := ts.GetGameLeaderboard("snake-GG", LeaderboardPeriodAllTime)
	require.Len(t, entries, 2)
	assert.Equal(t, "early", entries[0].PlayerID)
	assert.Equal(t, "late", entries[1].PlayerID)
}

func TestGameLeaderboard_RollingWindowPruning(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "old", "snake-GG", 900, 1, nil))

	// Eight days later the weekly entry is stale; the next submission
	// prunes it while the monthly and all-time views keep it.
	clock.Advance(8 * 24 * time.Hour)
	require.True(t, ts.SubmitScore(ctx, "new", "snake-GG", 100, 1, nil))

	weekly := ts.GetGameLeaderboard("snake-GG", LeaderboardPeriodWeekly)
	require.Len(t, weekly, 1)
	assert.Equal(t, "new", weekly[0].PlayerID)

	monthly := ts.GetGameLeaderboard("snake-GG", LeaderboardPeriodMonthly)
	assert.Len(t, monthly, 2)
	allTime := ts.GetGameLeaderboard("snake-GG", LeaderboardPeriodAllTime)
	assert.Len(t, allTime, 2)
}

func TestGetPlayerRank(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "first", "snake-GG", 900, 1, nil))
	require.True(t, ts.SubmitScore(ctx, "second", "snake-GG", 500, 1, nil))

	rank, ok := ts.GetPlayerRank("second", "snake-GG", LeaderboardPeriodAllTime)
	require.True(t, ok)
	assert.Equal(t, 2, rank)

	_, ok = ts.GetPlayerRank("nobody", "snake-GG", LeaderboardPeriodAllTime)
	assert.False(t, ok)
}

func TestPlayerStats(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 500, 2, nil))
	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 300, 4, nil))
	require.True(t, ts.SubmitScore(ctx, "playerA", "pong-GG", 15, 1, nil))

	stats := ts.GetPlayerStats("playerA")
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.TotalGames)
	assert.Equal(t, 815.0, stats.TotalScore)
	assert.Equal(t, "snake-GG", stats.FavoriteGame)

	snake := stats.Games["snake-GG"]
	require.NotNil(t, snake)
	assert.Equal(t, 2, snake.Played)
	assert.Equal(t, 500.0, snake.BestScore)
	assert.Equal(t, 4, snake.BestLevel)

	assert.Nil(t, ts.GetPlayerStats("nobody"))
}

func TestTournamentLeaderboard_Ordering(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 500, 1, nil))
	require.True(t, ts.SubmitScore(ctx, "playerB", "snake-GG", 900, 1, nil))

	ranks := ts.GetTournamentLeaderboard()
	require.Len(t, ranks, 2)
	assert.Equal(t, "playerB", ranks[0].PlayerID)
	assert.Equal(t, "playerA", ranks[1].PlayerID)
	assert.Greater(t, ranks[0].TotalPoints, ranks[1].TotalPoints)
}

func TestTournamentExpiry_AutoReplacement(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	storage := NewMemoryStorage()
	ts, hub := newTestTournamentSystem(t, clock, storage)
	ctx := context.Background()

	var completed []TournamentCompletedPayload
	_, err := hub.GetEventBus().Subscribe(EventTournamentCompleted, func(e Event) error {
		completed = append(completed, e.Data.(TournamentCompletedPayload))
		return nil
	}, nil)
	require.NoError(t, err)

	firstID := ts.GetTournamentStatus(ctx).Tournament.ID
	require.True(t, ts.SubmitScore(ctx, "winner", "snake-GG", 900, 1, nil))
	require.True(t, ts.SubmitScore(ctx, "loser", "snake-GG", 100, 1, nil))

	clock.Advance(8 * 24 * time.Hour)
	require.True(t, ts.IsTournamentExpired())

	// Submitting into an expired tournament replaces it first and the
	// submission lands in the fresh one.
	require.True(t, ts.SubmitScore(ctx, "playerC", "snake-GG", 400, 1, nil))

	status := ts.GetTournamentStatus(ctx)
	assert.NotEqual(t, firstID, status.Tournament.ID)
	assert.Len(t, status.Tournament.Participants, 1)
	assert.False(t, ts.IsTournamentExpired())

	require.Len(t, completed, 1)
	assert.Equal(t, firstID, completed[0].Tournament.ID)
	assert.Equal(t, "winner", completed[0].WinnerID)

	// The finished tournament was archived.
	records, err := hub.GetHistorySystem().List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, firstID, records[0].Tournament.ID)
	assert.Equal(t, 2, records[0].ParticipantCount)
	assert.Equal(t, "winner", records[0].WinnerID)
}

func TestTournamentState_PersistenceRoundTrip(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	storage := NewMemoryStorage()
	ts, _ := newTestTournamentSystem(t, clock, storage)
	ctx := context.Background()

	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 500, 2, nil))
	require.True(t, ts.SubmitScore(ctx, "playerB", "pong-GG", 15, 1, nil))
	before := ts.GetTournamentStatus(ctx)

	// A second hub on the same storage resumes the same tournament.
	restored, _ := newTestTournamentSystem(t, clock, storage)
	after := restored.GetTournamentStatus(ctx)

	require.NotNil(t, after)
	assert.Equal(t, before.Tournament.ID, after.Tournament.ID)
	assert.Equal(t, before.Tournament.GameRotation, after.Tournament.GameRotation)
	require.Len(t, after.Tournament.Participants, 2)
	assert.Equal(t,
		before.Tournament.Participants["playerA"].TotalPoints,
		after.Tournament.Participants["playerA"].TotalPoints)

	stats := restored.GetPlayerStats("playerA")
	require.NotNil(t, stats)
	assert.Equal(t, 500.0, stats.TotalScore)

	entries := restored.GetGameLeaderboard("snake-GG", LeaderboardPeriodAllTime)
	require.Len(t, entries, 1)
	assert.Equal(t, "playerA", entries[0].PlayerID)
}

func TestTournamentStatus_TimeLeft(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	ts, _ := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	clock.Advance(3*24*time.Hour + 12*time.Hour)
	status := ts.GetTournamentStatus(ctx)
	assert.Equal(t, 3*24*time.Hour+12*time.Hour, status.TimeLeft)
	assert.Equal(t, 4, status.DaysLeft)
}

func TestStartWeeklyTournament_ArchivesPredecessor(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, hub := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	first := ts.GetTournamentStatus(ctx).Tournament.ID

	tournament, err := ts.StartWeeklyTournament(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, tournament.ID)

	records, err := hub.GetHistorySystem().List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, first, records[0].Tournament.ID)
	assert.Equal(t, TournamentStatusExpired, records[0].Tournament.Status)
}

func TestTournamentResetSchedule(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)) // a Monday
	storage := NewMemoryStorage()
	hub, err := Init(context.Background(), &mockLogger{}, storage, clock,
		NewSystemConfig(SystemTypeEventBus, ""),
		NewSystemConfig(SystemTypeScoring, ""),
		NewSystemConfig(SystemTypeTournaments, ""),
	)
	require.NoError(t, err)

	ts := hub.GetTournamentSystem().(*LocalTournamentSystem)
	ts.config.ResetCronexpr = "0 0 * * 1" // midnight on Mondays

	tournament, err := ts.StartWeeklyTournament(context.Background())
	require.NoError(t, err)

	// End date snaps to the next scheduled reset instead of start+7d.
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), tournament.EndDate)
}

func TestSubmitScore_ListenerCanReadStateDuringDelivery(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	ts, hub := newTestTournamentSystem(t, clock, NewMemoryStorage())
	ctx := context.Background()

	var observedRank int
	_, err := hub.GetEventBus().Subscribe(EventScoreSubmitted, func(e Event) error {
		payload := e.Data.(ScoreSubmittedPayload)
		rank, ok := ts.GetPlayerRank(payload.PlayerID, payload.GameID, LeaderboardPeriodAllTime)
		if ok {
			observedRank = rank
		}
		return nil
	}, nil)
	require.NoError(t, err)

	require.True(t, ts.SubmitScore(ctx, "playerA", "snake-GG", 500, 1, nil))
	assert.Equal(t, 1, observedRank)
}

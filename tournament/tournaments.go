package tournament

import (
	"context"
	"time"
)

// Tournament statuses.
const (
	TournamentStatusActive  = "active"
	TournamentStatusExpired = "expired"
)

// LeaderboardPeriod selects which rolling window of a game leaderboard to
// read.
type LeaderboardPeriod string

const (
	LeaderboardPeriodAllTime LeaderboardPeriod = "allTime"
	LeaderboardPeriodWeekly  LeaderboardPeriod = "weekly"
	LeaderboardPeriodMonthly LeaderboardPeriod = "monthly"
)

// ParticipantGame is a participant's best result in one rotation game.
type ParticipantGame struct {
	Score     float64                `json:"score"`
	Level     int                    `json:"level"`
	Points    int                    `json:"points"`
	Timestamp time.Time              `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Participant is one player's standing inside a tournament.
type Participant struct {
	TotalPoints int                         `json:"totalPoints"`
	GamesPlayed map[string]*ParticipantGame `json:"gamesPlayed"`
	JoinDate    time.Time                   `json:"joinDate"`
}

// Tournament is one competition window over a rotation of games.
type Tournament struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Type         string                  `json:"type"`
	StartDate    time.Time               `json:"startDate"`
	EndDate      time.Time               `json:"endDate"`
	Status       string                  `json:"status"`
	Participants map[string]*Participant `json:"participants"`
	GameRotation []string                `json:"gameRotation"`
	Prizes       map[string]string       `json:"prizes,omitempty"`
}

// LeaderboardEntry is one row of a per-game leaderboard.
type LeaderboardEntry struct {
	PlayerID  string    `json:"playerId"`
	Score     float64   `json:"score"`
	Level     int       `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

// GameLeaderboards holds the three period views for one game.
type GameLeaderboards struct {
	AllTime []LeaderboardEntry `json:"allTime"`
	Weekly  []LeaderboardEntry `json:"weekly"`
	Monthly []LeaderboardEntry `json:"monthly"`
}

// PlayerGameStats is a player's lifetime record for one game.
type PlayerGameStats struct {
	Played    int     `json:"played"`
	BestScore float64 `json:"bestScore"`
	BestLevel int     `json:"bestLevel"`
}

// PlayerStats is a player's lifetime record across all games.
type PlayerStats struct {
	TotalGames   int                         `json:"totalGames"`
	TotalScore   float64                     `json:"totalScore"`
	FavoriteGame string                      `json:"favoriteGame,omitempty"`
	Achievements []string                    `json:"achievements,omitempty"`
	JoinDate     time.Time                   `json:"joinDate"`
	Games        map[string]*PlayerGameStats `json:"games"`
}

// TournamentRank is one row of the tournament standings.
type TournamentRank struct {
	PlayerID    string `json:"playerId"`
	TotalPoints int    `json:"totalPoints"`
	GamesPlayed int    `json:"gamesPlayed"`
}

// TournamentStatus is a point-in-time view of the active tournament.
type TournamentStatus struct {
	Tournament *Tournament      `json:"tournament"`
	TimeLeft   time.Duration    `json:"timeLeft"`
	DaysLeft   int              `json:"daysLeft"`
	TopPlayers []TournamentRank `json:"topPlayers"`
}

// TournamentsConfig is the data definition for the tournament system.
type TournamentsConfig struct {
	Name               string            `json:"name,omitempty"`
	DurationDays       int               `json:"duration_days,omitempty"`
	RotationSize       int               `json:"rotation_size,omitempty"`
	RotationCategories []string          `json:"rotation_categories,omitempty"`
	ResetCronexpr      string            `json:"reset_cronexpr,omitempty"`
	LeaderboardSize    int               `json:"leaderboard_size,omitempty"`
	Prizes             map[string]string `json:"prizes,omitempty"`
}

// Validate checks the config for values the tournament lifecycle cannot
// work with.
func (c *TournamentsConfig) Validate() error {
	if c.DurationDays < 0 {
		return NewError("tournaments config: negative duration", INVALID_ARGUMENT_ERROR_CODE)
	}
	if c.RotationSize < 0 {
		return NewError("tournaments config: negative rotation size", INVALID_ARGUMENT_ERROR_CODE)
	}
	if c.LeaderboardSize < 0 {
		return NewError("tournaments config: negative leaderboard size", INVALID_ARGUMENT_ERROR_CODE)
	}
	return nil
}

// DefaultTournamentsConfig returns the stock weekly championship setup.
func DefaultTournamentsConfig() *TournamentsConfig {
	return &TournamentsConfig{
		Name:               "Weekly Championship",
		DurationDays:       7,
		RotationSize:       5,
		RotationCategories: []string{"classic", "action", "puzzle", "maze", "space"},
		LeaderboardSize:    10,
		Prizes: map[string]string{
			"first":  "Champion Trophy",
			"second": "Silver Medal",
			"third":  "Bronze Medal",
		},
	}
}

// TournamentSystem runs the rotating weekly tournament, per-game
// leaderboards and player lifetime stats. Expired tournaments are replaced
// lazily: any read or write that observes an expired tournament archives it
// and starts the next one before proceeding.
type TournamentSystem interface {
	System

	// StartWeeklyTournament archives any finished tournament and starts
	// a fresh one with a new game rotation.
	StartWeeklyTournament(ctx context.Context) (*Tournament, error)

	// SubmitScore records a play result. It reports whether the
	// submission was accepted; unknown games and invalid scores are
	// rejected with a warning log. A participant's tournament entry for
	// a game only improves, never regresses.
	SubmitScore(ctx context.Context, playerID, gameID string, score float64, level int, extra map[string]interface{}) bool

	// GetTournamentStatus returns the active tournament with time
	// remaining and current standings, or nil when none exists.
	GetTournamentStatus(ctx context.Context) *TournamentStatus

	// GetGameLeaderboard returns the entries for one game and period,
	// best first.
	GetGameLeaderboard(gameID string, period LeaderboardPeriod) []LeaderboardEntry

	// GetPlayerRank returns a player's 1-based position on a game
	// leaderboard.
	GetPlayerRank(playerID, gameID string, period LeaderboardPeriod) (int, bool)

	// GetPlayerStats returns a player's lifetime stats, or nil for an
	// unknown player.
	GetPlayerStats(playerID string) *PlayerStats

	// GetTournamentLeaderboard returns the full standings of the active
	// tournament, best first.
	GetTournamentLeaderboard() []TournamentRank

	// IsTournamentExpired reports whether the current tournament's end
	// date has passed. It does not trigger replacement.
	IsTournamentExpired() bool
}

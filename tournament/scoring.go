package tournament

// ScoreType describes how raw points accumulate in a game.
type ScoreType string

const (
	ScoreTypeIncremental ScoreType = "incremental"
	ScoreTypeExponential ScoreType = "exponential"
	ScoreTypeMatch       ScoreType = "match"
)

// SkillCeiling describes how much headroom a game leaves above the average
// player. High ceiling games get sigmoid compression so outliers do not
// dominate cross-game rankings.
type SkillCeiling string

const (
	SkillCeilingLow    SkillCeiling = "low"
	SkillCeilingMedium SkillCeiling = "medium"
	SkillCeilingHigh   SkillCeiling = "high"
)

// GameScoringProfile captures the scoring characteristics of one game so
// raw scores from different games can be compared on a common 0..1 scale.
type GameScoringProfile struct {
	Name                 string       `json:"name"`
	Category             string       `json:"category"`
	ScoreType            ScoreType    `json:"score_type"`
	BaseUnit             float64      `json:"base_unit"`
	LevelBonus           float64      `json:"level_bonus"`
	MaxReasonableScore   float64      `json:"max_reasonable_score"`
	AverageScore         float64      `json:"average_score"`
	DifficultyMultiplier float64      `json:"difficulty_multiplier"`
	TimeWeight           float64      `json:"time_weight"`
	SkillCeiling         SkillCeiling `json:"skill_ceiling"`
	Weight               float64      `json:"weight"`
}

// ScoringConfig is the data definition for the scoring system.
type ScoringConfig struct {
	Profiles map[string]*GameScoringProfile `json:"profiles,omitempty"`
	// HistoricalLimit bounds the per-game score buffer used for
	// percentile normalization.
	HistoricalLimit int `json:"historical_limit,omitempty"`
}

// Validate checks the config for values the scoring math cannot work with.
func (c *ScoringConfig) Validate() error {
	for gameID, p := range c.Profiles {
		if p == nil {
			return NewError("scoring config: nil profile for "+gameID, INVALID_ARGUMENT_ERROR_CODE)
		}
		if p.MaxReasonableScore <= 0 {
			return NewError("scoring config: non-positive max reasonable score for "+gameID, INVALID_ARGUMENT_ERROR_CODE)
		}
		if p.AverageScore <= 0 {
			return NewError("scoring config: non-positive average score for "+gameID, INVALID_ARGUMENT_ERROR_CODE)
		}
		if p.Weight < 0 {
			return NewError("scoring config: negative weight for "+gameID, INVALID_ARGUMENT_ERROR_CODE)
		}
	}
	return nil
}

// DefaultScoringConfig returns profiles for the stock arcade catalog.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		HistoricalLimit: 1000,
		Profiles: map[string]*GameScoringProfile{
			"snake-GG": {
				Name:                 "Snake",
				Category:             "classic",
				ScoreType:            ScoreTypeIncremental,
				BaseUnit:             10,
				LevelBonus:           50,
				MaxReasonableScore:   5000,
				AverageScore:         500,
				DifficultyMultiplier: 1.0,
				TimeWeight:           0.3,
				SkillCeiling:         SkillCeilingMedium,
				Weight:               1.0,
			},
			"tetris-GG": {
				Name:                 "Tetris",
				Category:             "puzzle",
				ScoreType:            ScoreTypeExponential,
				BaseUnit:             100,
				LevelBonus:           10,
				MaxReasonableScore:   100000,
				AverageScore:         8000,
				DifficultyMultiplier: 1.2,
				TimeWeight:           0.2,
				SkillCeiling:         SkillCeilingHigh,
				Weight:               1.5,
			},
			"pacman-GG": {
				Name:                 "Pac-Man",
				Category:             "maze",
				ScoreType:            ScoreTypeIncremental,
				BaseUnit:             10,
				LevelBonus:           200,
				MaxReasonableScore:   15000,
				AverageScore:         2000,
				DifficultyMultiplier: 1.2,
				TimeWeight:           0.4,
				SkillCeiling:         SkillCeilingMedium,
				Weight:               1.3,
			},
			"mspacman-GG": {
				Name:                 "Ms. Pac-Man",
				Category:             "maze",
				ScoreType:            ScoreTypeIncremental,
				BaseUnit:             10,
				LevelBonus:           200,
				MaxReasonableScore:   18000,
				AverageScore:         2500,
				DifficultyMultiplier: 1.3,
				TimeWeight:           0.4,
				SkillCeiling:         SkillCeilingMedium,
				Weight:               1.3,
			},
			"breakout-GG": {
				Name:                 "Breakout",
				Category:             "action",
				ScoreType:            ScoreTypeIncremental,
				BaseUnit:             5,
				LevelBonus:           100,
				MaxReasonableScore:   8000,
				AverageScore:         1200,
				DifficultyMultiplier: 1.1,
				TimeWeight:           0.3,
				SkillCeiling:         SkillCeilingMedium,
				Weight:               1.2,
			},
			"asteroids-GG": {
				Name:                 "Asteroids",
				Category:             "space",
				ScoreType:            ScoreTypeIncremental,
				BaseUnit:             20,
				LevelBonus:           500,
				MaxReasonableScore:   25000,
				AverageScore:         3000,
				DifficultyMultiplier: 1.4,
				TimeWeight:           0.5,
				SkillCeiling:         SkillCeilingHigh,
				Weight:               1.4,
			},
			"space-invaders-GG": {
				Name:                 "Space Invaders",
				Category:             "space",
				ScoreType:            ScoreTypeIncremental,
				BaseUnit:             10,
				LevelBonus:           300,
				MaxReasonableScore:   20000,
				AverageScore:         2500,
				DifficultyMultiplier: 1.3,
				TimeWeight:           0.4,
				SkillCeiling:         SkillCeilingMedium,
				Weight:               1.3,
			},
			"galaga-GG": {
				Name:                 "Galaga",
				Category:             "space",
				ScoreType:            ScoreTypeIncremental,
				BaseUnit:             50,
				LevelBonus:           1000,
				MaxReasonableScore:   30000,
				AverageScore:         4000,
				DifficultyMultiplier: 1.4,
				TimeWeight:           0.4,
				SkillCeiling:         SkillCeilingHigh,
				Weight:               1.4,
			},
			"pong-GG": {
				Name:                 "Pong",
				Category:             "sports",
				ScoreType:            ScoreTypeMatch,
				BaseUnit:             1,
				LevelBonus:           0,
				MaxReasonableScore:   21,
				AverageScore:         11,
				DifficultyMultiplier: 0.8,
				TimeWeight:           0.6,
				SkillCeiling:         SkillCeilingLow,
				Weight:               0.8,
			},
			"fruit-catcher-GG": {
				Name:                 "Fruit Catcher",
				Category:             "action",
				ScoreType:            ScoreTypeIncremental,
				BaseUnit:             5,
				LevelBonus:           50,
				MaxReasonableScore:   3000,
				AverageScore:         400,
				DifficultyMultiplier: 0.9,
				TimeWeight:           0.5,
				SkillCeiling:         SkillCeilingLow,
				Weight:               0.9,
			},
		},
	}
}

// ScoreMetadata carries per-session details used to refine a normalized
// score. Zero values mean "not provided".
type ScoreMetadata struct {
	Level        int     `json:"level,omitempty"`
	Duration     int64   `json:"duration,omitempty"` // milliseconds
	SnakeLength  int     `json:"snake_length,omitempty"`
	LinesCleared int     `json:"lines_cleared,omitempty"`
	TotalPieces  int     `json:"total_pieces,omitempty"`
	GhostsEaten  int     `json:"ghosts_eaten,omitempty"`
	Accuracy     float64 `json:"accuracy,omitempty"`
}

// AggregationMethod selects how per-game normalized scores combine into a
// single cross-game total.
type AggregationMethod string

const (
	AggregationSum      AggregationMethod = "sum"
	AggregationWeighted AggregationMethod = "weighted"
	AggregationBest     AggregationMethod = "best"
	AggregationAverage  AggregationMethod = "average"
)

// RankedParticipant is one row of a cross-game ranking.
type RankedParticipant struct {
	PlayerID             string             `json:"player_id"`
	Name                 string             `json:"name"`
	NormalizedScores     map[string]float64 `json:"normalized_scores"`
	TotalNormalizedScore float64            `json:"total_normalized_score"`
	Rank                 int                `json:"rank"`
}

// ScoreRange is the min and max of an observed score set.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// LeaderboardStatistics summarizes the score distribution of a report.
type LeaderboardStatistics struct {
	AverageScore   float64    `json:"average_score"`
	MedianScore    float64    `json:"median_score"`
	ScoreRange     ScoreRange `json:"score_range"`
	CompletionRate float64    `json:"completion_rate"`
}

// LeaderboardReport is a ranking plus distribution statistics.
type LeaderboardReport struct {
	Method       AggregationMethod      `json:"method"`
	Participants []*RankedParticipant   `json:"participants"`
	Statistics   *LeaderboardStatistics `json:"statistics"`
}

// ParticipantScores holds one participant's raw per-game results as input
// to ranking.
type ParticipantScores struct {
	PlayerID string             `json:"player_id"`
	Name     string             `json:"name"`
	Scores   map[string]float64 `json:"scores"` // gameID -> raw score
}

// ScoringSystem converts raw game scores into comparable values and
// tournament points. Implementations are safe for concurrent use.
type ScoringSystem interface {
	System

	// NormalizeScore maps a raw score to 0..1 via the game's profile.
	NormalizeScore(gameID string, rawScore float64) (float64, error)

	// NormalizeScoreWithMetadata refines the base normalization with
	// session details, clamped to 0..1.
	NormalizeScoreWithMetadata(gameID string, rawScore float64, meta *ScoreMetadata) (float64, error)

	// CalculateTournamentPoints converts a raw score, level and game
	// weight into integer tournament points.
	CalculateTournamentPoints(score float64, level int, weight float64) int

	// CalculateRanking orders participants by aggregated normalized
	// score. Equal scores share a rank.
	CalculateRanking(participants []*ParticipantScores, method AggregationMethod) ([]*RankedParticipant, error)

	// GenerateLeaderboardReport ranks participants and attaches
	// distribution statistics.
	GenerateLeaderboardReport(participants []*ParticipantScores, method AggregationMethod) (*LeaderboardReport, error)

	// AddHistoricalScore records a raw score for percentile lookups.
	AddHistoricalScore(gameID string, rawScore float64) error

	// PercentileScore returns the fraction of recorded scores at or
	// below rawScore, falling back to linear normalization when the
	// game has no history.
	PercentileScore(gameID string, rawScore float64) (float64, error)

	// Profile returns the scoring profile for a game.
	Profile(gameID string) (*GameScoringProfile, bool)

	// SupportedGames lists configured game ids in sorted order.
	SupportedGames() []string
}

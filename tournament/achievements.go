package tournament

// AchievementDefinition is one declarative unlock condition. All non-zero
// condition fields must hold for the achievement to unlock; GameID scopes
// the score and level conditions to one game's stats, otherwise they apply
// to lifetime totals.
type AchievementDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Points      int    `json:"points,omitempty"`

	GameID        string  `json:"game_id,omitempty"`
	MinTotalGames int     `json:"min_total_games,omitempty"`
	MinBestScore  float64 `json:"min_best_score,omitempty"`
	MinBestLevel  int     `json:"min_best_level,omitempty"`
}

// AchievementsConfig is the data definition for the achievements system.
type AchievementsConfig struct {
	Achievements map[string]*AchievementDefinition `json:"achievements,omitempty"`
}

// DefaultAchievementsConfig returns the stock achievement catalog.
func DefaultAchievementsConfig() *AchievementsConfig {
	return &AchievementsConfig{
		Achievements: map[string]*AchievementDefinition{
			"first-steps": {
				Name:          "First Steps",
				Description:   "Play your first game",
				Category:      "progression",
				Points:        10,
				MinTotalGames: 1,
			},
			"game-veteran": {
				Name:          "Game Veteran",
				Description:   "Play 50 games",
				Category:      "progression",
				Points:        50,
				MinTotalGames: 50,
			},
			"score-hunter": {
				Name:         "Score Hunter",
				Description:  "Reach a score of 1,000 in any game",
				Category:     "score",
				Points:       25,
				MinBestScore: 1000,
			},
			"high-roller": {
				Name:         "High Roller",
				Description:  "Reach a score of 5,000 in any game",
				Category:     "score",
				Points:       50,
				MinBestScore: 5000,
			},
			"legendary": {
				Name:         "Legendary",
				Description:  "Reach a score of 10,000 in any game",
				Category:     "score",
				Points:       100,
				MinBestScore: 10000,
			},
			"level-master": {
				Name:         "Level Master",
				Description:  "Reach level 10 in any game",
				Category:     "skill",
				Points:       40,
				MinBestLevel: 10,
			},
			"snake-master": {
				Name:         "Snake Master",
				Description:  "Reach level 10 in Snake",
				Category:     "skill",
				Points:       30,
				GameID:       "snake-GG",
				MinBestLevel: 10,
			},
			"brick-breaker": {
				Name:         "Brick Breaker",
				Description:  "Reach level 5 in Breakout",
				Category:     "skill",
				Points:       30,
				GameID:       "breakout-GG",
				MinBestLevel: 5,
			},
			"ghost-hunter": {
				Name:         "Ghost Hunter",
				Description:  "Score 2,000 in Pac-Man",
				Category:     "skill",
				Points:       40,
				GameID:       "pacman-GG",
				MinBestScore: 2000,
			},
		},
	}
}

// AchievementsSystem evaluates declarative achievement conditions against
// player stats. It never mutates the stats it is given; recording unlocks is
// the caller's job.
type AchievementsSystem interface {
	System

	// Evaluate returns the ids of achievements the stats satisfy but do
	// not yet hold, in sorted order.
	Evaluate(stats *PlayerStats) []string

	// Get returns the definition for an achievement id.
	Get(id string) (*AchievementDefinition, bool)

	// List returns every definition keyed by id.
	List() map[string]*AchievementDefinition
}

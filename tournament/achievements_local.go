package tournament

import (
	"sort"
)

var _ AchievementsSystem = (*LocalAchievementsSystem)(nil)

// LocalAchievementsSystem evaluates the configured achievement catalog. It
// holds no mutable state of its own.
type LocalAchievementsSystem struct {
	config *AchievementsConfig
	logger Logger
}

// NewLocalAchievementsSystem creates an achievements system from the given
// config.
func NewLocalAchievementsSystem(config *AchievementsConfig, logger Logger) *LocalAchievementsSystem {
	if config == nil {
		config = DefaultAchievementsConfig()
	}
	return &LocalAchievementsSystem{config: config, logger: logger}
}

func (a *LocalAchievementsSystem) GetType() SystemType {
	return SystemTypeAchievements
}

func (a *LocalAchievementsSystem) GetConfig() any {
	return a.config
}

func (a *LocalAchievementsSystem) Get(id string) (*AchievementDefinition, bool) {
	def, ok := a.config.Achievements[id]
	return def, ok
}

func (a *LocalAchievementsSystem) List() map[string]*AchievementDefinition {
	out := make(map[string]*AchievementDefinition, len(a.config.Achievements))
	for id, def := range a.config.Achievements {
		out[id] = def
	}
	return out
}

func (a *LocalAchievementsSystem) Evaluate(stats *PlayerStats) []string {
	if stats == nil {
		return nil
	}

	held := make(map[string]bool, len(stats.Achievements))
	for _, id := range stats.Achievements {
		held[id] = true
	}

	var unlocked []string
	for id, def := range a.config.Achievements {
		if held[id] {
			continue
		}
		if a.satisfied(def, stats) {
			unlocked = append(unlocked, id)
		}
	}
	sort.Strings(unlocked)
	return unlocked
}

func (a *LocalAchievementsSystem) satisfied(def *AchievementDefinition, stats *PlayerStats) bool {
	if def.MinTotalGames > 0 && stats.TotalGames < def.MinTotalGames {
		return false
	}

	bestScore, bestLevel := lifetimeBests(stats)
	if def.GameID != "" {
		game, ok := stats.Games[def.GameID]
		if !ok {
			return false
		}
		bestScore, bestLevel = game.BestScore, game.BestLevel
	}

	if def.MinBestScore > 0 && bestScore < def.MinBestScore {
		return false
	}
	if def.MinBestLevel > 0 && bestLevel < def.MinBestLevel {
		return false
	}
	return true
}

func lifetimeBests(stats *PlayerStats) (float64, int) {
	var bestScore float64
	var bestLevel int
	for _, game := range stats.Games {
		if game.BestScore > bestScore {
			bestScore = game.BestScore
		}
		if game.BestLevel > bestLevel {
			bestLevel = game.BestLevel
		}
	}
	return bestScore, bestLevel
}

package tournament

// Event types published on the EventBus by the tournament systems. The bus
// itself accepts any non-empty string; these constants pin the payload shape
// for the events the core emits so subscribers get compile-time checking.
const (
	EventTournamentStart     = "tournament:start"
	EventTournamentUpdated   = "tournament:updated"
	EventTournamentCompleted = "tournament:completed"
	EventScoreSubmitted      = "tournament:score-submitted"
	EventAchievementUnlocked = "achievement:unlocked"
)

// TournamentStartPayload is the data of an EventTournamentStart event.
type TournamentStartPayload struct {
	Tournament *Tournament
}

// TournamentCompletedPayload is the data of an EventTournamentCompleted
// event, emitted when an expired tournament is archived and replaced.
type TournamentCompletedPayload struct {
	Tournament *Tournament
	WinnerID   string
}

// ScoreSubmittedPayload is the data of an EventScoreSubmitted event.
type ScoreSubmittedPayload struct {
	PlayerID string
	GameID   string
	Score    float64
	Level    int
	Points   int
}

// TournamentUpdatedPayload is the data of an EventTournamentUpdated event.
type TournamentUpdatedPayload struct {
	TournamentID string
	PlayerID     string
	TotalPoints  int
}

// AchievementUnlockedPayload is the data of an EventAchievementUnlocked
// event.
type AchievementUnlockedPayload struct {
	PlayerID      string
	AchievementID string
	Name          string
}

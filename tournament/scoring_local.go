package tournament

import (
	"math"
	"sort"
	"sync"
)

var _ ScoringSystem = (*LocalScoringSystem)(nil)

// rankEpsilon treats aggregated scores within this distance as tied.
const rankEpsilon = 1e-4

// LocalScoringSystem normalizes raw scores against per-game profiles and
// keeps a bounded buffer of historical scores for percentile lookups.
type LocalScoringSystem struct {
	sync.RWMutex

	config *ScoringConfig
	logger Logger

	historical map[string][]float64
}

// NewLocalScoringSystem creates a scoring system from the given config.
func NewLocalScoringSystem(config *ScoringConfig, logger Logger) *LocalScoringSystem {
	if config == nil {
		config = DefaultScoringConfig()
	}
	if config.HistoricalLimit <= 0 {
		config.HistoricalLimit = 1000
	}
	return &LocalScoringSystem{
		config:     config,
		logger:     logger,
		historical: make(map[string][]float64),
	}
}

func (s *LocalScoringSystem) GetType() SystemType {
	return SystemTypeScoring
}

func (s *LocalScoringSystem) GetConfig() any {
	return s.config
}

func (s *LocalScoringSystem) Profile(gameID string) (*GameScoringProfile, bool) {
	p, ok := s.config.Profiles[gameID]
	return p, ok
}

func (s *LocalScoringSystem) SupportedGames() []string {
	games := make([]string, 0, len(s.config.Profiles))
	for gameID := range s.config.Profiles {
		games = append(games, gameID)
	}
	sort.Strings(games)
	return games
}

func (s *LocalScoringSystem) NormalizeScore(gameID string, rawScore float64) (float64, error) {
	profile, ok := s.config.Profiles[gameID]
	if !ok {
		return 0, ErrGameUnknown
	}
	if math.IsNaN(rawScore) || math.IsInf(rawScore, 0) {
		return 0, ErrScoreInvalid
	}
	if rawScore < 0 {
		return 0, nil
	}
	return s.applyBaseNormalization(profile, rawScore), nil
}

// applyBaseNormalization picks the curve for a profile. Exponential scoring
// games use a log curve so late-game score explosions do not swamp other
// games, match play maps linearly onto the winning score, and everything
// else is linear unless the skill ceiling calls for sigmoid compression.
func (s *LocalScoringSystem) applyBaseNormalization(profile *GameScoringProfile, rawScore float64) float64 {
	switch profile.ScoreType {
	case ScoreTypeExponential:
		return s.logarithmicNormalize(rawScore, profile.MaxReasonableScore)
	case ScoreTypeMatch:
		return s.linearNormalize(rawScore, profile.MaxReasonableScore)
	default:
		if profile.SkillCeiling == SkillCeilingHigh {
			return s.sigmoidNormalize(rawScore, profile.AverageScore)
		}
		return s.linearNormalize(rawScore, profile.MaxReasonableScore)
	}
}

func (s *LocalScoringSystem) linearNormalize(score, max float64) float64 {
	return math.Min(score/max, 1.0)
}

func (s *LocalScoringSystem) logarithmicNormalize(score, max float64) float64 {
	if score <= 0 {
		return 0
	}
	return math.Min(math.Log(score+1)/math.Log(max+1), 1.0)
}

// sigmoidNormalize maps a score onto 0..1 with its midpoint steepness set
// by the average score. Deliberately uncapped at exactly 1 so extreme
// outliers still order correctly among themselves.
func (s *LocalScoringSystem) sigmoidNormalize(score, average float64) float64 {
	return 2.0/(1.0+math.Exp(-score/average)) - 1.0
}

func (s *LocalScoringSystem) NormalizeScoreWithMetadata(gameID string, rawScore float64, meta *ScoreMetadata) (float64, error) {
	base, err := s.NormalizeScore(gameID, rawScore)
	if err != nil {
		return 0, err
	}
	if meta == nil {
		return math.Min(base, 1.0), nil
	}
	profile := s.config.Profiles[gameID]

	normalized := base * profile.DifficultyMultiplier

	if meta.Level > 1 {
		bonus := float64(meta.Level-1) * 0.1 * 0.2
		normalized += math.Min(bonus, 0.2)
	}

	if meta.Duration > 0 && profile.TimeWeight > 0 {
		normalized *= s.timeEfficiency(meta.Duration, profile.TimeWeight)
	}

	normalized += s.gameSpecificBonus(gameID, meta)

	return math.Max(0, math.Min(normalized, 1.0)), nil
}

// timeEfficiency rewards finishing faster than a three minute baseline and
// penalizes slower runs, scaled by the profile's time weight. The effect is
// bounded to plus or minus twenty percent.
func (s *LocalScoringSystem) timeEfficiency(durationMs int64, timeWeight float64) float64 {
	const baselineMs = 3 * 60 * 1000
	const floorMs = 30 * 1000

	d := durationMs
	if d < floorMs {
		d = floorMs
	}
	ratio := float64(baselineMs) / float64(d)
	adjustment := (ratio - 1.0) * timeWeight * 0.2
	adjustment = math.Max(-0.2, math.Min(adjustment, 0.2))
	return 1.0 + adjustment
}

func (s *LocalScoringSystem) gameSpecificBonus(gameID string, meta *ScoreMetadata) float64 {
	switch gameID {
	case "snake-GG":
		if meta.SnakeLength > 0 {
			return math.Min(float64(meta.SnakeLength)/50.0*0.1, 0.1)
		}
	case "tetris-GG":
		if meta.TotalPieces > 0 && meta.LinesCleared > 0 {
			efficiency := float64(meta.LinesCleared) / float64(meta.TotalPieces)
			if efficiency > 0.3 {
				return math.Min((efficiency-0.3)*0.5, 0.1)
			}
		}
	case "pacman-GG", "mspacman-GG":
		if meta.GhostsEaten > 0 {
			return math.Min(float64(meta.GhostsEaten)/20.0*0.1, 0.1)
		}
	case "space-invaders-GG", "galaga-GG", "asteroids-GG":
		if meta.Accuracy > 0.5 {
			return math.Min((meta.Accuracy-0.5)*0.2, 0.1)
		}
	}
	return 0
}

func (s *LocalScoringSystem) CalculateTournamentPoints(score float64, level int, weight float64) int {
	if score < 0 {
		score = 0
	}
	if level < 1 {
		level = 1
	}
	levelBonus := math.Pow(float64(level), 1.5) * 100
	return int(math.Round((score + levelBonus) * weight))
}

func (s *LocalScoringSystem) CalculateRanking(participants []*ParticipantScores, method AggregationMethod) ([]*RankedParticipant, error) {
	if method == "" {
		method = AggregationWeighted
	}

	ranked := make([]*RankedParticipant, 0, len(participants))
	for _, p := range participants {
		if p == nil || p.PlayerID == "" {
			return nil, ErrBadInput
		}
		normalized := make(map[string]float64, len(p.Scores))
		for gameID, raw := range p.Scores {
			n, err := s.NormalizeScore(gameID, raw)
			if err != nil {
				return nil, err
			}
			normalized[gameID] = n
		}
		ranked = append(ranked, &RankedParticipant{
			PlayerID:             p.PlayerID,
			Name:                 p.Name,
			NormalizedScores:     normalized,
			TotalNormalizedScore: s.aggregate(normalized, method),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return s.rankLess(ranked[i], ranked[j])
	})

	// Scores within the tie epsilon share a rank.
	for i, r := range ranked {
		if i > 0 && math.Abs(r.TotalNormalizedScore-ranked[i-1].TotalNormalizedScore) < rankEpsilon {
			r.Rank = ranked[i-1].Rank
		} else {
			r.Rank = i + 1
		}
	}
	return ranked, nil
}

// rankLess orders two participants for ranking. Ties on aggregated score
// break on games played, then best single-game score, then name.
func (s *LocalScoringSystem) rankLess(a, b *RankedParticipant) bool {
	if math.Abs(a.TotalNormalizedScore-b.TotalNormalizedScore) >= rankEpsilon {
		return a.TotalNormalizedScore > b.TotalNormalizedScore
	}
	if len(a.NormalizedScores) != len(b.NormalizedScores) {
		return len(a.NormalizedScores) > len(b.NormalizedScores)
	}
	aMax, bMax := maxScore(a.NormalizedScores), maxScore(b.NormalizedScores)
	if math.Abs(aMax-bMax) >= rankEpsilon {
		return aMax > bMax
	}
	return a.Name < b.Name
}

func maxScore(scores map[string]float64) float64 {
	var max float64
	for _, v := range scores {
		if v > max {
			max = v
		}
	}
	return max
}

func (s *LocalScoringSystem) aggregate(normalized map[string]float64, method AggregationMethod) float64 {
	switch method {
	case AggregationBest:
		return maxScore(normalized)
	case AggregationAverage:
		if len(normalized) == 0 {
			return 0
		}
		var sum float64
		for _, v := range normalized {
			sum += v
		}
		return sum / float64(len(normalized))
	case AggregationWeighted:
		var sum float64
		for gameID, v := range normalized {
			multiplier := 1.0
			if profile, ok := s.config.Profiles[gameID]; ok {
				multiplier = profile.DifficultyMultiplier
			}
			sum += v * multiplier
		}
		return sum
	default:
		var sum float64
		for _, v := range normalized {
			sum += v
		}
		return sum
	}
}

func (s *LocalScoringSystem) GenerateLeaderboardReport(participants []*ParticipantScores, method AggregationMethod) (*LeaderboardReport, error) {
	ranked, err := s.CalculateRanking(participants, method)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = AggregationWeighted
	}

	report := &LeaderboardReport{
		Method:       method,
		Participants: ranked,
		Statistics:   &LeaderboardStatistics{},
	}
	if len(ranked) == 0 {
		return report, nil
	}

	totalGames := len(s.config.Profiles)
	scores := make([]float64, 0, len(ranked))
	var sum, played float64
	for _, r := range ranked {
		scores = append(scores, r.TotalNormalizedScore)
		sum += r.TotalNormalizedScore
		played += float64(len(r.NormalizedScores))
	}
	sort.Float64s(scores)

	report.Statistics.AverageScore = sum / float64(len(scores))
	report.Statistics.MedianScore = median(scores)
	report.Statistics.ScoreRange = ScoreRange{Min: scores[0], Max: scores[len(scores)-1]}
	if totalGames > 0 {
		report.Statistics.CompletionRate = played / float64(len(ranked)*totalGames)
	}
	return report, nil
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func (s *LocalScoringSystem) AddHistoricalScore(gameID string, rawScore float64) error {
	if _, ok := s.config.Profiles[gameID]; !ok {
		return ErrGameUnknown
	}
	if math.IsNaN(rawScore) || math.IsInf(rawScore, 0) {
		return ErrScoreInvalid
	}

	s.Lock()
	defer s.Unlock()

	buf := append(s.historical[gameID], rawScore)
	if excess := len(buf) - s.config.HistoricalLimit; excess > 0 {
		buf = buf[excess:]
	}
	s.historical[gameID] = buf
	return nil
}

func (s *LocalScoringSystem) PercentileScore(gameID string, rawScore float64) (float64, error) {
	profile, ok := s.config.Profiles[gameID]
	if !ok {
		return 0, ErrGameUnknown
	}
	if math.IsNaN(rawScore) || math.IsInf(rawScore, 0) {
		return 0, ErrScoreInvalid
	}

	s.RLock()
	buf := s.historical[gameID]
	var atOrBelow int
	for _, v := range buf {
		if v <= rawScore {
			atOrBelow++
		}
	}
	n := len(buf)
	s.RUnlock()

	if n == 0 {
		return s.linearNormalize(math.Max(rawScore, 0), profile.MaxReasonableScore), nil
	}
	return float64(atOrBelow) / float64(n), nil
}

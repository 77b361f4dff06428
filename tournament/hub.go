package tournament

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// The SystemType identifies each of the tournament core systems.
type SystemType uint

const (
	SystemTypeUnknown SystemType = iota
	SystemTypeEventBus
	SystemTypeScoring
	SystemTypeTournaments
	SystemTypeAchievements
	SystemTypeHistory
)

// A System is a single self-contained unit of tournament logic.
type System interface {
	// GetType returns the runtime type of the system.
	GetType() SystemType

	// GetConfig returns the configuration of the system.
	GetConfig() any
}

// SystemConfig describes which system to initialize and where its
// configuration file lives. An empty config file selects the system's
// built-in defaults.
type SystemConfig interface {
	GetType() SystemType
	GetConfigFile() string
}

type systemConfig struct {
	systemType SystemType
	configFile string
}

func (sc *systemConfig) GetType() SystemType   { return sc.systemType }
func (sc *systemConfig) GetConfigFile() string { return sc.configFile }

// NewSystemConfig creates a SystemConfig for the given system type and
// optional config file path.
func NewSystemConfig(systemType SystemType, configFile string) SystemConfig {
	return &systemConfig{systemType: systemType, configFile: configFile}
}

// Hub combines the tournament core systems behind one explicitly constructed
// value. Callers receive it from Init and pass it (or the individual systems)
// where needed; there is no package-level instance.
type Hub interface {
	// AddPublisher registers a sink for analytics-style events generated by
	// the systems.
	AddPublisher(publisher Publisher)

	// SendPublisherEvents delivers events to every registered publisher.
	SendPublisherEvents(ctx context.Context, events ...*PublisherEvent)

	GetEventBus() EventBus
	GetScoringSystem() ScoringSystem
	GetTournamentSystem() TournamentSystem
	GetAchievementsSystem() AchievementsSystem
	GetHistorySystem() HistorySystem
}

// Init initializes a Hub with the configurations provided. A nil storage
// falls back to in-memory state, a nil clock to the system clock and a nil
// logger to a no-op logger.
func Init(ctx context.Context, logger Logger, storage Storage, clock Clock, configs ...SystemConfig) (Hub, error) {
	if logger == nil {
		logger = NewZapLogger(zap.NewNop())
	}
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if clock == nil {
		clock = NewSystemClock()
	}

	h := &hubImpl{
		logger:     logger,
		storage:    storage,
		clock:      clock,
		publishers: make([]Publisher, 0),
		systems:    make(map[SystemType]System),
	}

	for _, config := range configs {
		if err := h.initSystem(config); err != nil {
			return nil, err
		}
	}

	// Cross-system wiring happens after every system exists so config order
	// does not matter.
	if ts, ok := h.systems[SystemTypeTournaments].(*LocalTournamentSystem); ok {
		ts.SetHub(h)
		if err := ts.bootstrap(ctx); err != nil {
			return nil, err
		}
	}

	return h, nil
}

type hubImpl struct {
	logger     Logger
	storage    Storage
	clock      Clock
	publishers []Publisher
	systems    map[SystemType]System
}

// initSystem loads the config file (when given) and constructs the system.
func (h *hubImpl) initSystem(config SystemConfig) error {
	h.logger.Info("Initializing system type: %v, config file: %s", config.GetType(), config.GetConfigFile())

	var system System

	switch config.GetType() {
	case SystemTypeEventBus:
		cfg := DefaultEventBusConfig()
		if config.GetConfigFile() != "" {
			if err := loadConfigFile(config.GetConfigFile(), cfg); err != nil {
				return err
			}
		}
		system = NewLocalEventBus(cfg, h.logger, h.clock)

	case SystemTypeScoring:
		cfg := DefaultScoringConfig()
		if config.GetConfigFile() != "" {
			cfg = &ScoringConfig{}
			if err := loadConfigFile(config.GetConfigFile(), cfg); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("scoring config: %w", err)
		}
		system = NewLocalScoringSystem(cfg, h.logger)

	case SystemTypeTournaments:
		cfg := DefaultTournamentsConfig()
		if config.GetConfigFile() != "" {
			if err := loadConfigFile(config.GetConfigFile(), cfg); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("tournaments config: %w", err)
		}
		system = NewLocalTournamentSystem(cfg, h.logger, h.clock, h.storage)

	case SystemTypeAchievements:
		cfg := DefaultAchievementsConfig()
		if config.GetConfigFile() != "" {
			cfg = &AchievementsConfig{}
			if err := loadConfigFile(config.GetConfigFile(), cfg); err != nil {
				return err
			}
		}
		system = NewLocalAchievementsSystem(cfg, h.logger)

	case SystemTypeHistory:
		cfg := DefaultHistoryConfig()
		if config.GetConfigFile() != "" {
			if err := loadConfigFile(config.GetConfigFile(), cfg); err != nil {
				return err
			}
		}
		system = NewLocalHistorySystem(cfg, h.logger, h.clock, h.storage)

	default:
		h.logger.Error("Unknown system type: %v", config.GetType())
		return NewError("unknown system type", INVALID_ARGUMENT_ERROR_CODE)
	}

	h.systems[config.GetType()] = system
	return nil
}

func (h *hubImpl) AddPublisher(publisher Publisher) {
	h.publishers = append(h.publishers, publisher)
}

func (h *hubImpl) SendPublisherEvents(ctx context.Context, events ...*PublisherEvent) {
	if len(events) == 0 {
		return
	}
	for _, publisher := range h.publishers {
		publisher.Send(ctx, h.logger, events)
	}
}

func (h *hubImpl) GetEventBus() EventBus {
	if s, ok := h.systems[SystemTypeEventBus].(EventBus); ok {
		return s
	}
	return nil
}

func (h *hubImpl) GetScoringSystem() ScoringSystem {
	if s, ok := h.systems[SystemTypeScoring].(ScoringSystem); ok {
		return s
	}
	return nil
}

func (h *hubImpl) GetTournamentSystem() TournamentSystem {
	if s, ok := h.systems[SystemTypeTournaments].(TournamentSystem); ok {
		return s
	}
	return nil
}

func (h *hubImpl) GetAchievementsSystem() AchievementsSystem {
	if s, ok := h.systems[SystemTypeAchievements].(AchievementsSystem); ok {
		return s
	}
	return nil
}

func (h *hubImpl) GetHistorySystem() HistorySystem {
	if s, ok := h.systems[SystemTypeHistory].(HistorySystem); ok {
		return s
	}
	return nil
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/swordgame-go/internal/model"
)

// BotIDPrefix marks connection ids that belong to house bots
const BotIDPrefix = "bot-"

// Driver is the slice of the dispatcher bots act through
type Driver interface {
	Submit(ctx context.Context, in model.Inbound) error
	Player(ctx context.Context, id model.ConnectionID) (model.Player, error)
}

// Action is one event a bot submitted during a step
type Action struct {
	ID   model.ConnectionID
	Kind model.InboundKind
}

// Service runs house bots: in-process players that join the session and
// act on a timer, using the same inbound events as real clients.
type Service struct {
	driver     Driver
	strategies map[string]Strategy
	logger     *slog.Logger

	mu      sync.Mutex
	bots    map[model.ConnectionID]string
	spawned int
}

// NewService creates a new bot Service
func NewService(driver Driver, strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		driver:     driver,
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
		bots:       make(map[model.ConnectionID]string),
	}
}

// Spawn logs a new bot in with the named strategy
func (s *Service) Spawn(ctx context.Context, strategy string) (model.ConnectionID, error) {
	if _, ok := s.strategies[strategy]; !ok {
		return "", fmt.Errorf("unknown bot strategy: %s", strategy)
	}

	s.mu.Lock()
	s.spawned++
	nickname := fmt.Sprintf("Bot %d", s.spawned)
	s.mu.Unlock()

	id := model.ConnectionID(BotIDPrefix + uuid.NewString())
	if err := s.driver.Submit(ctx, model.Inbound{ConnectionID: id, Kind: model.InboundLogin, Text: nickname}); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.bots[id] = strategy
	s.mu.Unlock()

	s.logger.Info("bot joined",
		slog.String("bot_id", string(id)),
		slog.String("bot_name", nickname),
		slog.String("strategy", strategy),
	)
	return id, nil
}

// Remove disconnects a bot
func (s *Service) Remove(ctx context.Context, id model.ConnectionID) error {
	s.mu.Lock()
	_, ok := s.bots[id]
	delete(s.bots, id)
	s.mu.Unlock()
	if !ok {
		return model.ErrUnknownConnection
	}
	return s.driver.Submit(ctx, model.Inbound{ConnectionID: id, Kind: model.InboundDisconnect})
}

// Bots returns the live bot ids in a stable order
func (s *Service) Bots() []model.ConnectionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]model.ConnectionID, 0, len(s.bots))
	for id := range s.bots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Step lets every bot take one action. Bots whose record has gone are forgotten.
func (s *Service) Step(ctx context.Context) ([]Action, error) {
	var actions []Action

	for _, id := range s.Bots() {
		player, err := s.driver.Player(ctx, id)
		if errors.Is(err, model.ErrUnknownConnection) {
			s.forget(id)
			continue
		}
		if err != nil {
			return actions, err
		}

		kind := s.strategyFor(id).Choose(player)
		if err := s.driver.Submit(ctx, model.Inbound{ConnectionID: id, Kind: kind}); err != nil {
			return actions, err
		}
		actions = append(actions, Action{ID: id, Kind: kind})
	}

	return actions, nil
}

// Run steps every bot on each tick until ctx is done or the dispatcher stops
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Step(ctx); err != nil {
				if errors.Is(err, model.ErrDispatcherStopped) || ctx.Err() != nil {
					return
				}
				s.logger.Warn("bot step failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Service) forget(id model.ConnectionID) {
	s.mu.Lock()
	delete(s.bots, id)
	s.mu.Unlock()
	s.logger.Debug("bot no longer registered", slog.String("bot_id", string(id)))
}

// strategyFor returns the strategy for a bot, falling back to any
// registered strategy if its own is missing
func (s *Service) strategyFor(id model.ConnectionID) Strategy {
	s.mu.Lock()
	name := s.bots[id]
	s.mu.Unlock()
	if st, ok := s.strategies[name]; ok {
		return st
	}
	for _, st := range s.strategies {
		return st
	}
	return nil
}

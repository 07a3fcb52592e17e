package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/swordgame-go/internal/dependencies/clock"
	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/storage"
)

// InitialMoney is the stake every new player starts with
const InitialMoney int64 = 1000

// Registry is the single owner of player records, keyed by connection.
// Every value it hands out is a copy.
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a Registry over the given storage
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Create registers a fresh player for a connection.
// It fails with ErrDuplicateConnection if the connection already has one.
func (r *Registry) Create(ctx context.Context, id model.ConnectionID, nickname string) (model.Player, error) {
	exists, err := r.storage.PlayerExists(ctx, id)
	if err != nil {
		return model.Player{}, fmt.Errorf("check player: %w", err)
	}
	if exists {
		return model.Player{}, model.ErrDuplicateConnection
	}

	player := model.Player{
		ID:       id,
		Nickname: nickname,
		Level:    0,
		Money:    InitialMoney,
		JoinedAt: r.clock.Now(),
	}
	if err := r.storage.SavePlayer(ctx, &player); err != nil {
		return model.Player{}, fmt.Errorf("save player: %w", err)
	}

	r.logger.Info("player created",
		slog.String("connection_id", string(id)),
		slog.String("nickname", nickname),
	)
	return player, nil
}

// Get returns a copy of the player for a connection, or ErrUnknownConnection
func (r *Registry) Get(ctx context.Context, id model.ConnectionID) (model.Player, error) {
	player, err := r.storage.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return model.Player{}, model.ErrUnknownConnection
		}
		return model.Player{}, err
	}
	return *player, nil
}

// Save stores the result of a state transition for an existing player
func (r *Registry) Save(ctx context.Context, player model.Player) error {
	exists, err := r.storage.PlayerExists(ctx, player.ID)
	if err != nil {
		return fmt.Errorf("check player: %w", err)
	}
	if !exists {
		return model.ErrUnknownConnection
	}
	return r.storage.SavePlayer(ctx, &player)
}

// Remove deletes the record for a connection. The second return value is false
// when there was nothing to remove.
func (r *Registry) Remove(ctx context.Context, id model.ConnectionID) (model.Player, bool, error) {
	player, err := r.Get(ctx, id)
	if errors.Is(err, model.ErrUnknownConnection) {
		return model.Player{}, false, nil
	}
	if err != nil {
		return model.Player{}, false, err
	}

	if err := r.storage.DeletePlayer(ctx, id); err != nil {
		return model.Player{}, false, fmt.Errorf("delete player: %w", err)
	}

	r.logger.Info("player removed",
		slog.String("connection_id", string(id)),
		slog.String("nickname", player.Nickname),
		slog.Duration("session_duration", r.clock.Since(player.JoinedAt)),
	)
	return player, true, nil
}

// SnapshotAll returns value copies of every live player
func (r *Registry) SnapshotAll(ctx context.Context) (model.Roster, error) {
	players, err := r.storage.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	roster := make(model.Roster, len(players))
	for _, p := range players {
		roster[p.ID] = p.View()
	}
	return roster, nil
}

// List returns copies of every live player record
func (r *Registry) List(ctx context.Context) ([]model.Player, error) {
	players, err := r.storage.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]model.Player, 0, len(players))
	for _, p := range players {
		out = append(out, *p)
	}
	return out, nil
}

// Count returns the number of live players
func (r *Registry) Count(ctx context.Context) (int, error) {
	players, err := r.storage.ListPlayers(ctx)
	if err != nil {
		return 0, err
	}
	return len(players), nil
}

// Reset drops every record. Called at startup: records left by a previous
// process describe connections that no longer exist.
func (r *Registry) Reset(ctx context.Context) error {
	if err := r.storage.Clear(ctx); err != nil {
		return fmt.Errorf("clear players: %w", err)
	}
	r.logger.Info("registry reset")
	return nil
}

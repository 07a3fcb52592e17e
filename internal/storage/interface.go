package storage

import (
	"context"

	"github.com/mcoot/swordgame-go/internal/model"
)

// Storage holds player records for live connections.
// Implementations store and return copies; callers never share a record with the store.
type Storage interface {
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.ConnectionID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.ConnectionID) error
	PlayerExists(ctx context.Context, id model.ConnectionID) (bool, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// Clear removes every player record
	Clear(ctx context.Context) error
}

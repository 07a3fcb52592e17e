package redis

import (
	"fmt"

	"github.com/mcoot/swordgame-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "swordgame"

// playerKey returns the Redis key for a Player
func playerKey(id model.ConnectionID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the SET of all player keys
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

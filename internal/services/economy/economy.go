// Package economy implements the deterministic money-making actions.
package economy

import (
	"github.com/mcoot/swordgame-go/internal/model"
)

const (
	// MineReward is credited for every mining action
	MineReward int64 = 10
	// saleMultiplier scales the squared level into a sale price
	saleMultiplier int64 = 100
)

// SellResult describes a completed weapon sale
type SellResult struct {
	Player    model.Player // state after the sale
	Reward    int64
	SoldLevel int
}

// Mine credits the fixed mining reward
func Mine(player model.Player) model.Player {
	player.Money += MineReward
	return player
}

// SaleValue returns what a weapon at the given level sells for
func SaleValue(level int) int64 {
	l := int64(level)
	return l * l * saleMultiplier
}

// Sell converts the player's weapon into money and resets it to base.
// A base-level weapon cannot be sold.
func Sell(player model.Player) (SellResult, error) {
	if player.Level == 0 {
		return SellResult{Player: player}, model.ErrNothingToSell
	}

	reward := SaleValue(player.Level)
	sold := player.Level
	player.Money += reward
	player.Level = 0

	return SellResult{
		Player:    player,
		Reward:    reward,
		SoldLevel: sold,
	}, nil
}

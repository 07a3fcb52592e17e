package bot

import (
	"github.com/mcoot/swordgame-go/internal/dependencies/random"
	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/services/enhance"
)

// Strategy names
const (
	StrategyRandom = "random"
	StrategyTarget = "target"
)

// Strategy decides a bot's next action from its current record
type Strategy interface {
	Choose(p model.Player) model.InboundKind
}

// RandomStrategy picks uniformly among the actions the player can take
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

func (s *RandomStrategy) Choose(p model.Player) model.InboundKind {
	options := []model.InboundKind{model.InboundMineGold}
	if p.Money >= enhance.Cost(p.Level) {
		options = append(options, model.InboundRequestEnhance)
	}
	if p.Level > 0 {
		options = append(options, model.InboundSellWeapon)
	}
	return options[s.random.Intn(len(options))]
}

// TargetStrategy enhances until the sword reaches Target, then sells it.
// It mines whenever the next attempt is unaffordable.
type TargetStrategy struct {
	Target int
}

// NewTargetStrategy creates a TargetStrategy; targets below 1 mean 1
func NewTargetStrategy(target int) *TargetStrategy {
	if target < 1 {
		target = 1
	}
	return &TargetStrategy{Target: target}
}

func (s *TargetStrategy) Choose(p model.Player) model.InboundKind {
	switch {
	case p.Level >= s.Target:
		return model.InboundSellWeapon
	case p.Money >= enhance.Cost(p.Level):
		return model.InboundRequestEnhance
	default:
		return model.InboundMineGold
	}
}

// DefaultStrategies returns every built-in strategy by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		StrategyRandom: NewRandomStrategy(rnd),
		StrategyTarget: NewTargetStrategy(8),
	}
}

// Package enhance decides the cost and outcome of weapon enhancement attempts.
package enhance

import (
	"fmt"
	"math"

	"github.com/mcoot/swordgame-go/internal/dependencies/random"
	"github.com/mcoot/swordgame-go/internal/model"
)

// MilestoneLevel is the legendary tier whose arrival is announced to everyone
const MilestoneLevel = 13

const (
	costPerLevel = 10

	baseFailChance    = 0.10
	failChancePerLvl  = 0.02
	maxFailChance     = 0.40
	baseSuccessChance = 0.30
	successLossPerLvl = 0.01
	minSuccessChance  = 0.10
)

// Odds is the outcome distribution for one attempt at a given level
type Odds struct {
	Success  float64 `json:"success"`
	Maintain float64 `json:"maintain"`
	Fail     float64 `json:"fail"`
}

// Cost returns the price of an attempt from the given level
func Cost(level int) int64 {
	return int64(level+1) * costPerLevel
}

// OddsFor returns the outcome distribution at the given level.
// Maintain is the remainder of the two clamped values and is never clamped itself.
func OddsFor(level int) Odds {
	l := float64(level)
	fail := math.Min(maxFailChance, baseFailChance+failChancePerLvl*l)
	success := math.Max(minSuccessChance, baseSuccessChance-successLossPerLvl*l)
	return Odds{
		Success:  success,
		Maintain: 1 - fail - success,
		Fail:     fail,
	}
}

// Classify maps a roll in [0, 1) onto an outcome.
// Ranges are checked in order success, maintain, then fail as the catch-all.
func (o Odds) Classify(roll float64) model.Outcome {
	switch {
	case roll < o.Success:
		return model.OutcomeSuccess
	case roll < o.Success+o.Maintain:
		return model.OutcomeMaintain
	default:
		return model.OutcomeFail
	}
}

// Result describes one enhancement attempt
type Result struct {
	Player    model.Player // state after the attempt
	Outcome   model.Outcome
	Cost      int64
	Milestone bool // success that landed exactly on MilestoneLevel
	Roll      float64
}

// Engine runs enhancement attempts against an injected random source
type Engine struct {
	random random.Random
}

// New creates an Engine drawing rolls from rnd
func New(rnd random.Random) *Engine {
	return &Engine{random: rnd}
}

// Attempt charges the player and resolves one enhancement.
// On ErrInsufficientFunds the result carries the required cost and the unchanged player,
// and no roll is drawn.
func (e *Engine) Attempt(player model.Player) (Result, error) {
	cost := Cost(player.Level)
	if player.Money < cost {
		return Result{Player: player, Cost: cost}, fmt.Errorf("%w: need %d, have %d", model.ErrInsufficientFunds, cost, player.Money)
	}
	return Resolve(player, e.random.Float64()), nil
}

// Resolve applies an attempt for a known roll. The caller must have checked affordability.
func Resolve(player model.Player, roll float64) Result {
	cost := Cost(player.Level)
	odds := OddsFor(player.Level)

	// Paid regardless of outcome
	player.Money -= cost

	result := Result{Cost: cost, Roll: roll, Outcome: odds.Classify(roll)}
	switch result.Outcome {
	case model.OutcomeSuccess:
		player.Level++
		result.Milestone = player.Level == MilestoneLevel
	case model.OutcomeFail:
		player.Level = 0
	}
	result.Player = player
	return result
}

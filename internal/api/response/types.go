package response

import (
	"time"

	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/services/economy"
	"github.com/mcoot/swordgame-go/internal/services/enhance"
)

// Player represents a player in API responses
type Player struct {
	ID       string    `json:"id"`
	Nickname string    `json:"nickname"`
	Level    int       `json:"level"`
	Money    int64     `json:"money"`
	JoinedAt time.Time `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:       string(p.ID),
		Nickname: p.Nickname,
		Level:    p.Level,
		Money:    p.Money,
		JoinedAt: p.JoinedAt,
	}
}

// Roster is the leaderboard view of every connected player
type Roster struct {
	Count   int      `json:"count"`
	Players []Player `json:"players"`
}

// RosterFromModel converts already-ordered players
func RosterFromModel(players []model.Player) Roster {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return Roster{Count: len(out), Players: out}
}

// Odds describes what an enhancement attempt at a level costs and risks
type Odds struct {
	Level     int     `json:"level"`
	Cost      int64   `json:"cost"`
	Success   float64 `json:"success"`
	Maintain  float64 `json:"maintain"`
	Fail      float64 `json:"fail"`
	Milestone bool    `json:"milestone"`
	SaleValue int64   `json:"sale_value"`
}

// OddsForLevel builds the odds row for a level. Milestone is true when a
// success from this level reaches the milestone level.
func OddsForLevel(level int) Odds {
	odds := enhance.OddsFor(level)
	return Odds{
		Level:     level,
		Cost:      enhance.Cost(level),
		Success:   odds.Success,
		Maintain:  odds.Maintain,
		Fail:      odds.Fail,
		Milestone: level+1 == enhance.MilestoneLevel,
		SaleValue: economy.SaleValue(level),
	}
}

// Health is the response for the health check
type Health struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}

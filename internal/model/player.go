package model

import "time"

// ConnectionID identifies one live client connection. It doubles as the player ID.
type ConnectionID string

// Player is the authoritative record for a connected player
type Player struct {
	ID       ConnectionID `json:"id"`
	Nickname string       `json:"nickname"`
	Level    int          `json:"level"` // weapon enhancement tier, 0 = base
	Money    int64        `json:"money"`
	JoinedAt time.Time    `json:"joined_at"`
}

// PlayerView is the client-visible shape of a Player
type PlayerView struct {
	ID       ConnectionID `json:"id"`
	Nickname string       `json:"nickname"`
	Level    int          `json:"level"`
	Money    int64        `json:"money"`
}

// View returns the client-visible copy of the player
func (p Player) View() PlayerView {
	return PlayerView{
		ID:       p.ID,
		Nickname: p.Nickname,
		Level:    p.Level,
		Money:    p.Money,
	}
}

// Roster maps connection IDs to client-visible player copies
type Roster map[ConnectionID]PlayerView

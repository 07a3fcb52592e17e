package model

// InboundKind identifies an event sent by a client (or synthesized by the transport)
type InboundKind string

const (
	InboundLogin          InboundKind = "login"
	InboundMineGold       InboundKind = "mine_gold"
	InboundSellWeapon     InboundKind = "sell_weapon"
	InboundRequestEnhance InboundKind = "request_enhance"
	InboundSendChat       InboundKind = "send_chat"
	InboundDisconnect     InboundKind = "disconnect"
)

// Valid reports whether k is a known inbound event
func (k InboundKind) Valid() bool {
	switch k {
	case InboundLogin, InboundMineGold, InboundSellWeapon, InboundRequestEnhance, InboundSendChat, InboundDisconnect:
		return true
	}
	return false
}

// Inbound is one event addressed to the dispatcher
type Inbound struct {
	ConnectionID ConnectionID
	Kind         InboundKind
	Text         string // nickname for login, message body for send_chat
}

// EventName identifies an outbound event
type EventName string

const (
	EventInitUsers    EventName = "init_users"
	EventUserJoined   EventName = "user_joined"
	EventUserLeft     EventName = "user_left"
	EventUpdateStats  EventName = "update_stats"
	EventUpdateVisual EventName = "update_visual"
	EventNews         EventName = "news"
	EventNewsPersonal EventName = "news_personal"
	EventChatMessage  EventName = "chat_message"
)

// Event is the wire envelope used in both directions
type Event struct {
	Name EventName `json:"event"`
	Data any       `json:"data,omitempty"`
}

// Outcome tags the result of an enhancement attempt or sale for rendering
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeMaintain Outcome = "maintain"
	OutcomeFail     Outcome = "fail"
	OutcomeReset    Outcome = "reset"
)

// VisualUpdate tells every client how to redraw one player's weapon
type VisualUpdate struct {
	ID      ConnectionID `json:"id"`
	Level   int          `json:"level"`
	Outcome Outcome      `json:"outcome"`
}

// ChatKind discriminates user chat from server announcements
type ChatKind string

const (
	ChatUser       ChatKind = "user"
	ChatSystem     ChatKind = "system"
	ChatSystemBold ChatKind = "system_bold"
)

// ChatMessage is a line in the shared chat log
type ChatMessage struct {
	Nickname string   `json:"nickname"`
	Msg      string   `json:"msg"`
	Type     ChatKind `json:"type"`
}

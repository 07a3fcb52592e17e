package session

import (
	"fmt"

	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/services/chat"
	"github.com/mcoot/swordgame-go/internal/services/enhance"
)

type audience int

const (
	toSender audience = iota
	toAll
	toOthers
)

// result names how an inbound event resolved
type result string

const (
	resultJoined        result = "joined"
	resultMined         result = "mined"
	resultSold          result = "sold"
	resultNothingToSell result = "nothing_to_sell"
	resultUnaffordable  result = "unaffordable"
	resultSuccess       result = "success"
	resultMilestone     result = "milestone"
	resultMaintain      result = "maintain"
	resultFail          result = "fail"
	resultChatted       result = "chatted"
	resultLeft          result = "left"
)

type routeKey struct {
	kind   model.InboundKind
	result result
}

// route is one outbound event produced for a resolved inbound event
type route struct {
	audience audience
	event    model.EventName
	payload  func(t *transition) any
}

// transition carries everything a payload may need about one handled event
type transition struct {
	sender    model.ConnectionID
	player    model.Player // state after the transition
	roster    model.Roster
	cost      int64
	reward    int64
	soldLevel int
	outcome   model.Outcome
	chat      model.ChatMessage
}

var (
	statsToSender = route{toSender, model.EventUpdateStats, playerPayload}
	visualToAll   = route{toAll, model.EventUpdateVisual, visualPayload}
)

// protocol is the complete outbound side of the session protocol.
// Routes are emitted in order.
var protocol = map[routeKey][]route{
	{model.InboundLogin, resultJoined}: {
		{toSender, model.EventInitUsers, func(t *transition) any { return t.roster }},
		{toOthers, model.EventUserJoined, playerPayload},
		{toAll, model.EventNews, func(t *transition) any {
			return fmt.Sprintf("[System] '%s' has joined.", t.player.Nickname)
		}},
		{toAll, model.EventChatMessage, func(t *transition) any {
			return chat.SystemMessage(fmt.Sprintf("'%s' has joined.", t.player.Nickname))
		}},
	},

	{model.InboundMineGold, resultMined}: {statsToSender},

	{model.InboundSellWeapon, resultSold}: {
		statsToSender,
		visualToAll,
		{toAll, model.EventNews, func(t *transition) any {
			return fmt.Sprintf("'%s' sold a +%d sword for %dG!", t.player.Nickname, t.soldLevel, t.reward)
		}},
	},
	{model.InboundSellWeapon, resultNothingToSell}: {
		{toSender, model.EventNewsPersonal, func(*transition) any { return "A +0 sword cannot be sold!" }},
	},

	{model.InboundRequestEnhance, resultUnaffordable}: {
		{toSender, model.EventNewsPersonal, func(t *transition) any {
			return fmt.Sprintf("Not enough gold to enhance! (required: %dG)", t.cost)
		}},
	},
	{model.InboundRequestEnhance, resultSuccess}: {
		successNews,
		statsToSender,
		visualToAll,
	},
	{model.InboundRequestEnhance, resultMilestone}: {
		successNews,
		{toAll, model.EventNews, legendaryText},
		{toAll, model.EventChatMessage, func(t *transition) any { return chat.BoldMessage(legendaryText(t).(string)) }},
		statsToSender,
		visualToAll,
	},
	{model.InboundRequestEnhance, resultMaintain}: {
		{toSender, model.EventNewsPersonal, func(*transition) any { return "Enhancement held! (level preserved)" }},
		statsToSender,
		visualToAll,
	},
	{model.InboundRequestEnhance, resultFail}: {
		{toAll, model.EventNews, func(t *transition) any {
			return fmt.Sprintf("'%s' failed to enhance... reset to +0.", t.player.Nickname)
		}},
		statsToSender,
		visualToAll,
	},

	{model.InboundSendChat, resultChatted}: {
		{toAll, model.EventChatMessage, func(t *transition) any { return t.chat }},
	},

	{model.InboundDisconnect, resultLeft}: {
		{toAll, model.EventUserLeft, func(t *transition) any { return t.sender }},
		{toAll, model.EventChatMessage, func(t *transition) any {
			return chat.SystemMessage(fmt.Sprintf("'%s' has left.", t.player.Nickname))
		}},
	},
}

var successNews = route{toAll, model.EventNews, func(t *transition) any {
	return fmt.Sprintf("'%s' enhanced to +%d!", t.player.Nickname, t.player.Level)
}}

func legendaryText(t *transition) any {
	return fmt.Sprintf("🎉 '%s' forged the legendary +%d Black sword!!! 🎉", t.player.Nickname, enhance.MilestoneLevel)
}

func playerPayload(t *transition) any {
	return t.player.View()
}

func visualPayload(t *transition) any {
	return model.VisualUpdate{ID: t.player.ID, Level: t.player.Level, Outcome: t.outcome}
}

// enhanceResult picks the route for an enhancement outcome
func enhanceResult(r enhance.Result) result {
	switch {
	case r.Milestone:
		return resultMilestone
	case r.Outcome == model.OutcomeSuccess:
		return resultSuccess
	case r.Outcome == model.OutcomeMaintain:
		return resultMaintain
	default:
		return resultFail
	}
}

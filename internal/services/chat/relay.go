// Package chat sanitizes free text and builds chat lines for broadcast.
package chat

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/mcoot/swordgame-go/internal/model"
)

// MaxMessageLength is the longest chat body kept, in characters
const MaxMessageLength = 50

// SystemNickname labels server-originated chat lines
const SystemNickname = "System"

// Sanitize trims, normalizes and truncates a chat body.
// Returns ErrEmptyMessage when nothing is left after trimming.
func Sanitize(text string) (string, error) {
	text = strings.Map(dropControl, norm.NFC.String(text))
	text = strings.TrimSpace(text)
	if text == "" {
		return "", model.ErrEmptyMessage
	}
	return truncate(text, MaxMessageLength), nil
}

// UserMessage builds a chat line sent by a player
func UserMessage(nickname, text string) (model.ChatMessage, error) {
	body, err := Sanitize(text)
	if err != nil {
		return model.ChatMessage{}, err
	}
	return model.ChatMessage{Nickname: nickname, Msg: body, Type: model.ChatUser}, nil
}

// SystemMessage builds a plain server announcement
func SystemMessage(text string) model.ChatMessage {
	return model.ChatMessage{Nickname: SystemNickname, Msg: text, Type: model.ChatSystem}
}

// BoldMessage builds a highlighted server announcement
func BoldMessage(text string) model.ChatMessage {
	return model.ChatMessage{Nickname: SystemNickname, Msg: text, Type: model.ChatSystemBold}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// dropControl strips control characters except ordinary whitespace
func dropControl(r rune) rune {
	if unicode.IsControl(r) && !unicode.IsSpace(r) {
		return -1
	}
	return r
}

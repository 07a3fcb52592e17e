package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	mu     sync.Mutex
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	if ev, ok := data.(Event); ok {
		// one event per line so streams stay line-delimited
		line, _ := json.Marshal(ev)
		_, _ = fmt.Fprintln(o.w, string(line))
		return
	}
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case Roster:
		o.printRoster(v)
	case Odds:
		o.printOdds(v)
	case HealthResult:
		o.printHealthResult(v)
	case Event:
		o.printEvent(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID       string    `json:"id"`
	Nickname string    `json:"nickname"`
	Level    int       `json:"level"`
	Money    int64     `json:"money"`
	JoinedAt time.Time `json:"joined_at"`
}

// Roster response type
type Roster struct {
	Count   int      `json:"count"`
	Players []Player `json:"players"`
}

// Odds response type
type Odds struct {
	Level     int     `json:"level"`
	Cost      int64   `json:"cost"`
	Success   float64 `json:"success"`
	Maintain  float64 `json:"maintain"`
	Fail      float64 `json:"fail"`
	Milestone bool    `json:"milestone"`
	SaleValue int64   `json:"sale_value"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}

// Event is a server event as received over the websocket or the feed
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

type statsData struct {
	Level int   `json:"level"`
	Money int64 `json:"money"`
}

type visualData struct {
	ID      string `json:"id"`
	Level   int    `json:"level"`
	Outcome string `json:"outcome"`
}

type chatData struct {
	Nickname string `json:"nickname"`
	Msg      string `json:"msg"`
	Type     string `json:"type"`
}

func (o *Output) printPlayer(p Player) {
	_, _ = fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Nickname, p.ID)
	_, _ = fmt.Fprintf(o.w, "Sword: +%d\n", p.Level)
	_, _ = fmt.Fprintf(o.w, "Money: %dG\n", p.Money)
}

func (o *Output) printRoster(r Roster) {
	_, _ = fmt.Fprintf(o.w, "Players (%d):\n", r.Count)
	for i, p := range r.Players {
		_, _ = fmt.Fprintf(o.w, "  %d. %s +%d (%dG)\n", i+1, p.Nickname, p.Level, p.Money)
	}
}

func (o *Output) printOdds(od Odds) {
	_, _ = fmt.Fprintf(o.w, "Level: +%d\n", od.Level)
	_, _ = fmt.Fprintf(o.w, "Cost: %dG\n", od.Cost)
	_, _ = fmt.Fprintf(o.w, "Success: %.0f%%\n", od.Success*100)
	_, _ = fmt.Fprintf(o.w, "Maintain: %.0f%%\n", od.Maintain*100)
	_, _ = fmt.Fprintf(o.w, "Fail: %.0f%%\n", od.Fail*100)
	_, _ = fmt.Fprintf(o.w, "Sale value: %dG\n", od.SaleValue)
	if od.Milestone {
		_, _ = fmt.Fprintln(o.w, "Milestone: success reaches a legendary sword")
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Players: %d\n", h.Players)
}

func (o *Output) printEvent(ev Event) {
	switch ev.Name {
	case "init_users":
		var players map[string]Player
		if json.Unmarshal(ev.Data, &players) == nil {
			_, _ = fmt.Fprintf(o.w, "[users] %d connected\n", len(players))
			return
		}
	case "user_joined":
		var p Player
		if json.Unmarshal(ev.Data, &p) == nil {
			_, _ = fmt.Fprintf(o.w, "[joined] %s (+%d)\n", p.Nickname, p.Level)
			return
		}
	case "user_left":
		var id string
		if json.Unmarshal(ev.Data, &id) == nil {
			_, _ = fmt.Fprintf(o.w, "[left] %s\n", id)
			return
		}
	case "update_stats":
		var s statsData
		if json.Unmarshal(ev.Data, &s) == nil {
			_, _ = fmt.Fprintf(o.w, "[stats] sword +%d, %dG\n", s.Level, s.Money)
			return
		}
	case "update_visual":
		var v visualData
		if json.Unmarshal(ev.Data, &v) == nil {
			_, _ = fmt.Fprintf(o.w, "[visual] %s +%d (%s)\n", v.ID, v.Level, v.Outcome)
			return
		}
	case "news", "news_personal":
		var msg string
		if json.Unmarshal(ev.Data, &msg) == nil {
			_, _ = fmt.Fprintf(o.w, "[%s] %s\n", ev.Name, msg)
			return
		}
	case "chat_message":
		var c chatData
		if json.Unmarshal(ev.Data, &c) == nil {
			if c.Type == "user" {
				_, _ = fmt.Fprintf(o.w, "<%s> %s\n", c.Nickname, c.Msg)
			} else {
				_, _ = fmt.Fprintf(o.w, "* %s\n", c.Msg)
			}
			return
		}
	}
	_, _ = fmt.Fprintf(o.w, "[%s] %s\n", ev.Name, string(ev.Data))
}

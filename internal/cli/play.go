package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

const playHelp = `commands: mine, enhance, sell, chat <text>, quit`

// outbound is a frame sent to the game socket
type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

var errQuit = errors.New("quit")

func newPlayCmd() *cobra.Command {
	var linger time.Duration

	cmd := &cobra.Command{
		Use:   "play <nickname>",
		Short: "Join the game and play from the terminal",
		Long: `Join the game over the websocket protocol under the given nickname.

Commands are read one per line from stdin:
  mine            earn gold
  enhance         try to enhance your sword
  sell            sell your sword for gold
  chat <text>     say something to everyone
  quit            leave the game

Server events are printed as they arrive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return play(cmd.Context(), args[0], cmd.InOrStdin(), NewOutput(cfg.Output, cmd.OutOrStdout()), linger)
		},
	}

	cmd.Flags().DurationVar(&linger, "linger", 500*time.Millisecond, "How long to keep printing events after input ends")

	return cmd
}

// parseCommand turns one input line into a frame. Blank lines yield nil.
func parseCommand(line string) (*outbound, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	switch strings.ToLower(verb) {
	case "mine", "m":
		return &outbound{Event: "mine_gold"}, nil
	case "enhance", "e":
		return &outbound{Event: "request_enhance"}, nil
	case "sell", "s":
		return &outbound{Event: "sell_weapon"}, nil
	case "chat", "say":
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return nil, fmt.Errorf("chat needs a message")
		}
		return &outbound{Event: "send_chat", Data: rest}, nil
	case "quit", "exit", "q":
		return nil, errQuit
	default:
		return nil, fmt.Errorf("unknown command %q (%s)", verb, playHelp)
	}
}

func play(ctx context.Context, nickname string, in io.Reader, out *Output, linger time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wsURL, err := cfg.WebSocketURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.WriteJSON(outbound{Event: "login", Data: nickname}); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	readErr := make(chan error, 1)
	go func() {
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				readErr <- err
				return
			}
			out.Print(ev)
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return closeSocket(conn, readErr, 0)
		case err := <-readErr:
			return serverClosed(err)
		case line, ok := <-lines:
			if !ok {
				return closeSocket(conn, readErr, linger)
			}
			frame, err := parseCommand(line)
			if errors.Is(err, errQuit) {
				return closeSocket(conn, readErr, linger)
			}
			if err != nil {
				out.PrintMessage(err.Error())
				continue
			}
			if frame == nil {
				continue
			}
			if err := conn.WriteJSON(frame); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

// closeSocket keeps reading for the linger period, then performs a clean
// close handshake.
func closeSocket(conn *websocket.Conn, readErr <-chan error, linger time.Duration) error {
	if linger > 0 {
		select {
		case err := <-readErr:
			return serverClosed(err)
		case <-time.After(linger):
		}
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		return nil
	}
	select {
	case <-readErr:
	case <-time.After(time.Second):
	}
	return nil
}

// serverClosed reports why the server ended the session. A normal close is
// not an error.
func serverClosed(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Code == websocket.CloseNormalClosure {
			return nil
		}
		return fmt.Errorf("disconnected by server: %s", ce.Text)
	}
	return fmt.Errorf("connection lost: %w", err)
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the public spectator feed",
		Long: `Connect to the server's spectator feed and print events as they happen.

The feed starts with the current roster (init_users) and then carries
every public event: joins, departures, sword redraws, news and chat.
Personal events such as stat updates are never sent to spectators.

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamFeed(cmd.Context(), NewOutput(cfg.Output, cmd.OutOrStdout()), count)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after this many events (0 streams until interrupted)")

	return cmd
}

func streamFeed(ctx context.Context, out *Output, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	url := strings.TrimSuffix(cfg.ServerURL, "/") + "/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout for a long-lived stream
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if cfg.Verbose {
		out.PrintMessage("Connected to " + url)
	}

	seen := 0
	err = readSSE(resp.Body, func(ev Event) bool {
		out.Print(ev)
		seen++
		return limit <= 0 || seen < limit
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if cfg.Verbose {
		out.PrintMessage("Disconnected")
	}
	return nil
}

// readSSE parses a text/event-stream body and hands each named event to fn
// until fn returns false or the stream ends. Comments and retry hints are
// skipped.
func readSSE(r io.Reader, fn func(Event) bool) error {
	scanner := bufio.NewScanner(r)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				ev := Event{Name: currentEvent}
				if data := strings.Join(dataLines, "\n"); data != "" && data != "null" {
					ev.Data = []byte(data)
				}
				if !fn(ev) {
					return nil
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	return scanner.Err()
}

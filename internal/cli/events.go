package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/codebreaker/internal/api/response"
)

func (s *session) newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		count      int
	)

	cmd := &cobra.Command{
		Use:   "events <lobby-id> <player-id>",
		Short: "Stream lobby snapshots over SSE",
		Long: `Connect to the lobby's SSE stream and print each snapshot as it arrives.

The first snapshot is the lobby's current state. Every later snapshot
follows a mutation (join, leave, start, guess, round end, restart).
The stream ends if the same player connects from elsewhere.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return s.streamEvents(ctx, args[0], args[1], jsonOutput, count)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output snapshots as JSON lines")
	cmd.Flags().IntVar(&count, "count", 0, "Disconnect after this many snapshots (0 streams until interrupted)")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time       `json:"time"`
	ID    string          `json:"id"`
	Lobby json.RawMessage `json:"lobby"`
}

func (s *session) streamEvents(ctx context.Context, lobbyID, playerID string, jsonOutput bool, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	path := lobbyPath(lobbyID, "stream") + "?playerId=" + url.QueryEscape(playerID)
	resp, err := s.client.Stream(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !jsonOutput {
		s.out.printf("Connected to lobby %s\n", strings.ToUpper(lobbyID))
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var id string
	var dataLines []string
	received := 0

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
			// Keepalive comment
		case strings.HasPrefix(line, "id: "):
			id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if len(dataLines) > 0 {
				s.printSnapshot(id, strings.Join(dataLines, "\n"), jsonOutput)
				received++
			}
			id = ""
			dataLines = nil
			if count > 0 && received >= count {
				return nil
			}
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation is expected
		if ctx.Err() != nil {
			if !jsonOutput {
				s.out.printf("\nDisconnected\n")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		s.out.printf("Disconnected\n")
	}
	return nil
}

func (s *session) printSnapshot(id, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{Time: now, ID: id, Lobby: json.RawMessage(data)}
		jsonData, err := json.Marshal(evt)
		if err != nil {
			s.out.PrintError(err)
			return
		}
		s.out.printf("%s\n", jsonData)
		return
	}

	var lobby response.Lobby
	if err := json.Unmarshal([]byte(data), &lobby); err != nil {
		s.out.PrintError(fmt.Errorf("malformed snapshot: %w", err))
		return
	}
	timestamp := now.Format("2006-01-02 15:04:05")
	s.out.printf("[%s] v%s %s phase=%s round=%d players=%d\n",
		timestamp, id, lobby.LastEvent.Type, lobby.Phase, lobby.RoundNumber, len(lobby.Players))
}

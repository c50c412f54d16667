package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/codebreaker/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Lobby:
		o.printLobby(v)
	case response.CreateLobbyResponse:
		o.printf("Lobby created: %s\n", v.LobbyID)
		o.printLobby(v.Lobby)
	case response.JoinLobbyResponse:
		o.printf("Joined lobby %s as %s\n", v.Lobby.ID, v.Player.Name)
		o.printf("Player ID: %s\n", v.Player.ID)
	case response.Ack:
		o.printf("OK: %t\n", v.OK)
	case response.HealthResponse:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.out, format, args...)
}

func (o *Output) printLobby(l response.Lobby) {
	o.printf("Lobby: %s (v%d)\n", l.ID, l.Version)
	o.printf("Phase: %s\n", l.Phase)
	o.printf("Round: %d of %d\n", l.RoundNumber, l.NumGames)
	o.printf("Code Length: %d\n", l.CodeLength)
	o.printf("Winners Needed: %d\n", l.MaxWinners)
	if len(l.Winners) > 0 {
		o.printf("Winners: %s\n", strings.Join(l.Winners, ", "))
	}

	if len(l.Players) == 0 {
		o.printf("Players: none\n")
		return
	}
	o.printf("Players:\n")
	for i, p := range l.Players {
		marker := " "
		if l.Started && i == l.TurnIndex {
			marker = ">"
		}
		name := p.Name
		if p.IsBot {
			name += " [bot]"
		}
		o.printf(" %s %s (%s) points=%d wins=%d attempts=%d\n",
			marker, name, p.ID, p.Stats.TotalPoints, p.Stats.RoundsWon, p.Stats.Attempts)
		for _, g := range p.Guesses {
			o.printf("      %s  %d positions, %d digits (round %d)\n",
				g.Value, g.CorrectPositions, g.CorrectDigits, g.Round)
		}
	}
}

// printGuessResult prints the scored guess a player just submitted
func (o *Output) printGuessResult(l response.Lobby, playerID string) {
	for _, p := range l.Players {
		if p.ID != playerID {
			continue
		}
		if len(p.Guesses) == 0 {
			break
		}
		g := p.Guesses[len(p.Guesses)-1]
		o.printf("%s: %d correct positions, %d correct digits\n", g.Value, g.CorrectPositions, g.CorrectDigits)
		if g.CorrectPositions == l.CodeLength {
			o.printf("Code cracked!\n")
		}
		o.printf("Phase: %s\n", l.Phase)
		return
	}
	o.printLobby(l)
}

package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/codebreaker/internal/api/request"
	"github.com/mcoot/codebreaker/internal/api/response"
)

func (s *session) newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Lobby management commands",
	}

	cmd.AddCommand(s.newLobbyCreateCmd())
	cmd.AddCommand(s.newLobbyGetCmd())
	cmd.AddCommand(s.newLobbyJoinCmd())
	cmd.AddCommand(s.newLobbyLeaveCmd())
	cmd.AddCommand(s.newLobbyStartCmd())
	cmd.AddCommand(s.newLobbyRestartCmd())

	return cmd
}

func (s *session) newLobbyCreateCmd() *cobra.Command {
	var (
		numGames       int
		maxWinners     int
		codeLength     int
		showAllGuesses bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new lobby",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only send what was set so the server applies its defaults
			req := request.CreateLobbyRequest{}
			if cmd.Flags().Changed("games") {
				req.NumGames = &numGames
			}
			if cmd.Flags().Changed("winners") {
				req.MaxWinners = &maxWinners
			}
			if cmd.Flags().Changed("code-length") {
				req.CodeLength = &codeLength
			}
			if cmd.Flags().Changed("show-all-guesses") {
				req.ShowAllGuesses = &showAllGuesses
			}

			var result response.CreateLobbyResponse
			if err := s.client.Post(cmd.Context(), "/lobby/create", req, &result); err != nil {
				return err
			}

			s.out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&numGames, "games", 0, "Number of rounds in the match")
	cmd.Flags().IntVar(&maxWinners, "winners", 0, "Winners needed to end a round")
	cmd.Flags().IntVar(&codeLength, "code-length", 0, "Digits in the secret code")
	cmd.Flags().BoolVar(&showAllGuesses, "show-all-guesses", false, "Reveal every player's guesses to all players")

	return cmd
}

func (s *session) newLobbyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <lobby-id>",
		Short: "Get a lobby snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby
			if err := s.client.Get(cmd.Context(), lobbyPath(args[0], ""), &result); err != nil {
				return err
			}

			s.out.Print(result)
			return nil
		},
	}
}

func (s *session) newLobbyJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <lobby-id> <name>",
		Short: "Join a lobby",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.JoinLobbyRequest{Name: args[1]}

			var result response.JoinLobbyResponse
			if err := s.client.Post(cmd.Context(), lobbyPath(args[0], "join"), req, &result); err != nil {
				return err
			}

			s.out.Print(result)
			return nil
		},
	}
}

func (s *session) newLobbyLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <lobby-id> <player-id>",
		Short: "Leave a lobby",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.LeaveLobbyRequest{PlayerID: args[1]}
			if err := s.client.Post(cmd.Context(), lobbyPath(args[0], "leave"), req, nil); err != nil {
				return err
			}

			s.out.PrintMessage(fmt.Sprintf("Left lobby %s", strings.ToUpper(args[0])))
			return nil
		},
	}
}

func (s *session) newLobbyStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <lobby-id>",
		Short: "Start the match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.ackCommand(cmd, lobbyPath(args[0], "start"), "Match started")
		},
	}
}

func (s *session) newLobbyRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart <lobby-id>",
		Short: "Restart the match with the same players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.ackCommand(cmd, lobbyPath(args[0], "restart"), "Match restarted")
		},
	}
}

func (s *session) ackCommand(cmd *cobra.Command, path, msg string) error {
	var result response.Ack
	if err := s.client.Post(cmd.Context(), path, nil, &result); err != nil {
		return err
	}
	if s.cfg.Output == "json" {
		s.out.Print(result)
		return nil
	}
	s.out.PrintMessage(msg)
	return nil
}

// lobbyPath builds /lobby/{id}[/suffix]
func lobbyPath(lobbyID, suffix string) string {
	p := "/lobby/" + url.PathEscape(strings.ToUpper(lobbyID))
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

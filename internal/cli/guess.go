package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/codebreaker/internal/api/request"
	"github.com/mcoot/codebreaker/internal/api/response"
)

func (s *session) newGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <lobby-id> <player-id> <code>",
		Short: "Submit a guess on your turn",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.GuessRequest{PlayerID: args[1], Guess: args[2]}

			var result response.Lobby
			if err := s.client.Post(cmd.Context(), lobbyPath(args[0], "guess"), req, &result); err != nil {
				return err
			}

			if s.cfg.Output == "json" {
				s.out.Print(result)
				return nil
			}
			s.out.printGuessResult(result, args[1])
			return nil
		},
	}
}

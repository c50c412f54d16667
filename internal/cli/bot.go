package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/codebreaker/internal/api/request"
	"github.com/mcoot/codebreaker/internal/api/response"
)

func (s *session) newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Bot player commands",
	}

	cmd.AddCommand(s.newBotAddCmd())
	cmd.AddCommand(s.newBotRemoveCmd())

	return cmd
}

func (s *session) newBotAddCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "add <lobby-id>",
		Short: "Add a bot player to a lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.AddBotRequest{Strategy: strategy}

			var result response.JoinLobbyResponse
			if err := s.client.Post(cmd.Context(), lobbyPath(args[0], "bots"), req, &result); err != nil {
				return err
			}

			s.out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "Bot strategy: random, consistent (default: server default)")

	return cmd
}

func (s *session) newBotRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <lobby-id> <player-id>",
		Short: "Remove a bot player from a lobby",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby
			if err := s.client.Delete(cmd.Context(), lobbyPath(args[0], "bots/"+url.PathEscape(args[1])), &result); err != nil {
				return err
			}

			s.out.Print(result)
			return nil
		},
	}
}

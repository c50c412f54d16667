package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/codebreaker/internal/api/response"
)

func (s *session) newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable and healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			var result response.HealthResponse
			if err := s.client.Get(cmd.Context(), "/health", &result); err != nil {
				return err
			}

			if s.cfg.Verbose {
				s.out.printf("%s responded in %s\n", s.cfg.ServerURL, time.Since(start).Round(time.Millisecond))
			}
			s.out.Print(result)
			return nil
		},
	}
}

package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// session carries the resolved configuration and client into subcommands
type session struct {
	cfg    *Config
	client *Client
	out    *Output
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	s := &session{cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "codebreaker",
		Short: "CLI tool for the codebreaker game API",
		Long: `codebreaker is a CLI tool for interacting with the codebreaker game server.

It supports lobby management, game actions, bots and real-time
snapshot streaming over SSE.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := s.cfg.Validate(); err != nil {
				return err
			}
			s.client = NewClient(s.cfg.ServerURL)
			s.out = NewOutput(s.cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&s.cfg.ServerURL, "server", s.cfg.ServerURL, "Server URL (env: "+EnvServer+")")
	rootCmd.PersistentFlags().StringVarP(&s.cfg.Output, "output", "o", s.cfg.Output, "Output format: text, json (env: "+EnvOutput+")")
	rootCmd.PersistentFlags().BoolVarP(&s.cfg.Verbose, "verbose", "v", s.cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(s.newLobbyCmd())
	rootCmd.AddCommand(s.newGuessCmd())
	rootCmd.AddCommand(s.newBotCmd())
	rootCmd.AddCommand(s.newEventsCmd())
	rootCmd.AddCommand(s.newHealthCmd())

	return rootCmd
}

// Run executes the CLI with the given arguments and writers
func Run(args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

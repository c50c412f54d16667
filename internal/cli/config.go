package cli

import (
	"fmt"
	"os"
)

// Environment variables read by the CLI
const (
	EnvServer = "CODEBREAKER_SERVER"
	EnvOutput = "CODEBREAKER_OUTPUT"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config from the environment, falling back to a
// local server and text output
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault(EnvServer, "http://localhost:8080"),
		Output:    getEnvOrDefault(EnvOutput, "text"),
	}
}

// Validate rejects unknown output formats
func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q: must be text or json", c.Output)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

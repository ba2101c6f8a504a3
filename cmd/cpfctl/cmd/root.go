// Package cmd implements the cpfctl CLI commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cpfctl",
		Short: "Operator tooling for the CPF gateway",
		Long: `cpfctl validates CPF identifiers and issues or verifies the access
tokens the gateway signs, using the same signing settings as the service.`,
		Version:      Version,
		SilenceUsage: true,
	}
	root.AddCommand(newValidateCmd(), newTokenCmd())
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

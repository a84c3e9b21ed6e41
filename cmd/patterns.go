package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/syzygy/internal/pattern"
	"github.com/papapumpkin/syzygy/internal/ui"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the detectable patterns and their shapes",
	RunE: func(c *cobra.Command, _ []string) error {
		ui.New(c.OutOrStdout()).Patterns(pattern.Definitions())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}

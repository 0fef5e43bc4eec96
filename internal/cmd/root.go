// Package cmd implements the inkwell command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "a terminal writing studio with assisted continuation",
	Long: `inkwell - a terminal writing studio
  - draft articles and posts in the terminal
  - assisted continuations while you write, staged edits you confirm`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

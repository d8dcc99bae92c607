package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bundleid/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bundleid",
	Short: "Stable module and chunk ids for bundle builds",
	Long: `bundleid assigns ids to the modules and chunks of a bundle graph.
Ids are short, unique and reproducible across builds, and can be
pinned to a records file so incremental builds keep them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := colorEnabled(cmd)
		if err != nil {
			return err
		}
		color.NoColor = !enabled
		return nil
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 1024, "events kept for the failure dump")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event every interval (0 disables)")
}

// main executes the root command. A failing command exits with status 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func colorEnabled(cmd *cobra.Command) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bundleid/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show bundleid build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		full, err := cmd.Flags().GetBool("full")
		if err != nil {
			return err
		}
		info := version.Current()
		if full {
			info = info.Full()
		}
		switch format {
		case "pretty":
			printVersion(cmd.OutOrStdout(), info, full)
			return nil
		case "json":
			return writeVersionJSON(cmd.OutOrStdout(), info)
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("full", false, "include commit and build date")
}

func printVersion(out io.Writer, info version.Info, full bool) {
	fmt.Fprintf(out, "%s %s\n", info.Tool, version.Colored(info.Version))
	if full {
		fmt.Fprintf(out, "commit: %s\nbuilt:  %s\n", info.GitCommit, info.BuildDate)
	}
}

func writeVersionJSON(out io.Writer, info version.Info) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

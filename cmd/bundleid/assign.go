package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bundleid/internal/assign"
	"bundleid/internal/config"
	"bundleid/internal/graph"
	"bundleid/internal/observ"
	"bundleid/internal/pipeline"
	"bundleid/internal/records"
	"bundleid/internal/report"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign ids to the modules and chunks of a graph manifest",
	Long: `Assign reads a graph manifest (graph.toml, or graph.yaml), assigns ids
with the strategies configured in bundleid.toml and prints the result.

BUNDLEID_MODULES, BUNDLEID_CHUNKS, BUNDLEID_LIBRARY, BUNDLEID_SALT,
BUNDLEID_FAIL_ON_CONFLICT and BUNDLEID_RECORDS override the file; flags
override both.

When a records file is configured, ids of the previous build are restored
first and the new assignment is written back afterwards.`,
	Args: cobra.NoArgs,
	RunE: runAssign,
}

func init() {
	assignCmd.Flags().String("graph", "graph.toml", "graph manifest to assign ids for")
	assignCmd.Flags().String("config", "", "path to bundleid.toml (default: searched upwards)")
	assignCmd.Flags().String("format", "table", "output format (table|json)")
	assignCmd.Flags().String("records", "", "records file (overrides [records].path)")
	assignCmd.Flags().Bool("no-records", false, "neither restore nor save records")
	assignCmd.Flags().String("modules", "", "module id strategy (natural|named|deterministic|hashed)")
	assignCmd.Flags().String("chunks", "", "chunk id strategy (natural|named|deterministic)")
	assignCmd.Flags().String("ui", "off", "progress interface (auto|on|off)")
}

func runAssign(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	flags := cmd.Flags()
	formatValue, err := flags.GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return err
	}
	mode, err := parseUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyStrategyFlags(cmd, &cfg.IDs); err != nil {
		return err
	}

	graphPath, err := flags.GetString("graph")
	if err != nil {
		return err
	}
	g, err := graph.LoadManifest(graphPath)
	if err != nil {
		return err
	}
	if g.Context == "" {
		g.Context = cfg.Context
	}

	store, err := recordsStore(cmd, cfg)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	req := &pipeline.Request{
		Graph:           g,
		Options:         cfg.IDs,
		ReservedModules: cfg.ReservedModules,
		ReservedChunks:  cfg.ReservedChunks,
		Records:         store,
		Timer:           timer,
	}

	var res pipeline.Result
	if mode.enabled(quiet) {
		res, err = runAssignWithUI(cmd.Context(), "assigning ids", req)
	} else {
		res, err = pipeline.Run(cmd.Context(), req)
	}
	if err != nil {
		dumpTrace(cmd)
		return err
	}

	doc := report.Build(g, res.Table, cfg.Library)
	colored, err := colorEnabled(cmd)
	if err != nil {
		return err
	}
	if err := report.Write(cmd.OutOrStdout(), doc, format, report.Options{Color: colored}); err != nil {
		return err
	}

	if !quiet && res.Restored.Dropped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d recorded ids were reserved or taken and got reassigned\n", res.Restored.Dropped)
	}
	if showTimings {
		fmt.Fprintf(cmd.ErrOrStderr(), "run %s\n", res.RunID)
		printStageTimings(cmd.ErrOrStderr(), res.Timings)
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := readConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return config.Load(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	found, ok, err := config.Find(cwd)
	if err != nil {
		return nil, err
	}
	if !ok {
		return config.Default(cwd), nil
	}
	return config.Load(found)
}

func applyStrategyFlags(cmd *cobra.Command, opts *assign.Options) error {
	if cmd.Flags().Changed("modules") {
		value, err := cmd.Flags().GetString("modules")
		if err != nil {
			return err
		}
		if opts.Modules, err = assign.ParseStrategy(value, false); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("chunks") {
		value, err := cmd.Flags().GetString("chunks")
		if err != nil {
			return err
		}
		if opts.Chunks, err = assign.ParseStrategy(value, true); err != nil {
			return err
		}
	}
	return opts.Validate()
}

func recordsStore(cmd *cobra.Command, cfg *config.Config) (*records.Store, error) {
	disabled, err := cmd.Flags().GetBool("no-records")
	if err != nil {
		return nil, err
	}
	if disabled {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("records")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = cfg.RecordsPath
	}
	if path == "" {
		return nil, nil
	}
	return records.Open(path), nil
}

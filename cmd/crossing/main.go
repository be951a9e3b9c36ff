package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	seed       int64
	logLevel   string
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "crossing",
		Short:        "Adaptive traffic signal engine for a four-way intersection",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults apply to missing keys)")
	rootCmd.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "random seed, 0 seeds from the clock")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(configCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd(opts *options) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the engine headless and print a metrics summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHeadless(cmd.Context(), opts, duration, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", time.Minute, "how long to run, 0 runs until interrupted")
	return cmd
}

func serveCmd(opts *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine and serve snapshots over HTTP and websockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP server port")
	return cmd
}

func planCmd() *cobra.Command {
	var svg bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the signal plan as Graphviz DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.OutOrStdout(), svg)
		},
	}

	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG through the dot binary")
	return cmd
}

func configCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(opts, cmd.OutOrStdout())
		},
	}
}

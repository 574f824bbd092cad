// Package main is the entry point for the seedgen CLI.
// seedgen draws deterministic sample data from composable generators: the
// builtin catalog and the component schemas of OpenAPI documents. The same
// generator, seed and size always produce the same values.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nomagicln/seedgen/pkg/cli"
	"github.com/nomagicln/seedgen/pkg/config"
	"github.com/nomagicln/seedgen/pkg/sampler"
	"github.com/nomagicln/seedgen/pkg/schema"
)

// Build information, set via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// Execute runs the root command with args. Errors are formatted and written
// to stderr before being returned.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, cli.NewErrorFormatter().FormatError(err))
		return err
	}
	return nil
}

// app holds the state shared by the subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configDir string
	output    string
	verbose   bool

	logger *slog.Logger
	mgr    *config.Manager
	cfg    *config.Config
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seedgen",
		Short: "seedgen - deterministic sample data generator",
		Long: `seedgen draws reproducible sample values from named generators.

Generators come from a builtin catalog and from the component schemas of
OpenAPI documents listed in the configuration file. Every run is determined
by its seed and size, so the same command always prints the same values.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "Configuration directory (default: $"+config.EnvConfigDir+" or the platform config dir)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "", "Output format: json, yaml, table, text (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.AddCommand(
		newListCmd(a),
		newSampleCmd(a),
		newGenerateCmd(a),
		newSchemaCmd(a),
		newConfigCmd(a),
		newMCPCmd(a),
		newVersionCmd(a),
	)

	a.registerFlagCompletions(rootCmd)
	for _, cmd := range rootCmd.Commands() {
		a.registerFlagCompletions(cmd)
	}

	return rootCmd
}

// setup resolves logging and configuration. It runs before every subcommand.
func (a *app) setup() error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	var opts []config.ManagerOption
	if a.configDir != "" {
		opts = append(opts, config.WithConfigDir(a.configDir))
	}
	mgr, err := config.NewManager(opts...)
	if err != nil {
		return err
	}
	a.mgr = mgr
	a.logger.Debug("using config directory", "dir", mgr.ConfigDir())

	cfg, err := mgr.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.output != "" {
		if err := config.ValidateOutput(a.output); err != nil {
			return err
		}
	}
	return nil
}

// outputFormat returns the flag value, falling back to the configured default.
func (a *app) outputFormat() string {
	if a.output != "" {
		return a.output
	}
	return a.cfg.Defaults.Output
}

func (a *app) formatter() *cli.Formatter {
	return cli.NewFormatter(cli.WithStyle(cli.IsTerminal(a.stdout)))
}

// newSampler builds the catalog from the current configuration.
func (a *app) newSampler(ctx context.Context) (*sampler.Sampler, error) {
	registry, err := cli.BuildRegistry(ctx, a.mgr, a.cfg, schema.NewLoader(), a.logger)
	if err != nil {
		return nil, err
	}
	return sampler.New(registry, sampler.WithLogger(a.logger)), nil
}

// resolveSeed applies the precedence flag > SEEDGEN_SEED > config.
func (a *app) resolveSeed(cmd *cobra.Command, flagSeed int64) (int64, error) {
	if cmd.Flags().Changed("seed") {
		return flagSeed, nil
	}
	seed, ok, err := config.SeedFromEnv()
	if err != nil {
		return 0, err
	}
	if ok {
		return seed, nil
	}
	return a.cfg.Defaults.Seed, nil
}

func (a *app) println(s string) {
	_, _ = fmt.Fprintln(a.stdout, s)
}

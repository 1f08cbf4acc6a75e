package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/adamwoolhether/courier/client"
	"github.com/adamwoolhether/courier/config"
)

type globalOptions struct {
	cfgPath string
	envFile string
	timeout time.Duration
	verbose bool

	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{stderr: stderr}

	cmd := &cobra.Command{
		Use:           "courier",
		Short:         "Issue HTTP requests through the courier client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addGlobalFlags(cmd.PersistentFlags(), g)

	cmd.AddCommand(
		newRequestCmd(g),
		newURICmd(g),
		newDownloadCmd(g),
		newVersionCmd(),
	)

	return cmd
}

func addGlobalFlags(fs *pflag.FlagSet, g *globalOptions) {
	fs.StringVarP(&g.cfgPath, "config", "c", "", "YAML config file")
	fs.StringVar(&g.envFile, "env-file", "", ".env file loaded before reading COURIER_* variables")
	fs.DurationVar(&g.timeout, "timeout", 0, "request timeout, overrides the configured value")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "log request details")
}

// buildClient assembles a client from the configured sources, flags
// taking precedence.
func (g *globalOptions) buildClient() (*client.Client, error) {
	var loadOpts []config.LoaderOption
	if g.cfgPath != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(g.cfgPath))
	}
	if g.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(g.envFile))
	}

	settings, err := config.Load(loadOpts...)
	if err != nil {
		return nil, err
	}
	if g.timeout > 0 {
		settings.Timeout = g.timeout
	}

	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(g.stderr, &slog.HandlerOptions{Level: level}))

	c, err := client.Build(append(settings.Options(), client.WithLogger(logger))...)
	if err != nil {
		return nil, fmt.Errorf("building client: %w", err)
	}

	return c, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "courier", client.Version)
			return err
		},
	}
}

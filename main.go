package main

import (
	"context"
	"fmt"
	"os"

	"asset-manager-api/config"
	"asset-manager-api/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// cli holds what PersistentPreRunE prepares for every subcommand.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	c.cfg, c.logger = cfg, logger
	return nil
}

// withApp builds the application for one command run and closes it after.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	return fn(ctx, a)
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:               "asset-manager-api",
		Short:             "Subscription and entitlement backend for the asset manager",
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, runServer)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withApp(cmd, runServer)
			},
		},
		newSeedOrgCmd(c),
		newLinkSubscriptionCmd(c),
		newSyncOrgCmd(c),
		newPlansCmd(c),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skips configuration loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "asset-manager-api %s\n", Version)
			if GitCommit != "unknown" {
				fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", GitCommit)
			}
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

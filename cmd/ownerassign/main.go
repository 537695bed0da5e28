package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ownerassign/ownerassign/internal/app"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ownerassign",
		Short:         "Assign listings to owner accounts created from their email",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), serve)
		},
	}
	root.AddCommand(newServeCommand(), newInstallCommand(), newProvisionCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), serve)
		},
	}
}

type runFunc func(ctx context.Context, cfg *app.Config, logger *slog.Logger) error

// withRuntime loads configuration and logging, then runs fn and logs its error.
func withRuntime(ctx context.Context, fn runFunc) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		return err
	}
	logger := app.NewLogger(cfg)
	if err := fn(ctx, cfg, logger); err != nil {
		logger.Error("command failed", slog.Any("error", err))
		return err
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ownerassign/ownerassign/cmd/ownerassign/cli"
	"github.com/ownerassign/ownerassign/internal/app"
	"github.com/ownerassign/ownerassign/internal/listings"
	"github.com/ownerassign/ownerassign/internal/platform/db"
	"github.com/ownerassign/ownerassign/internal/provision"
	"github.com/ownerassign/ownerassign/internal/rbac"
	"github.com/ownerassign/ownerassign/internal/users"
)

func newProvisionCommand() *cobra.Command {
	var inline bool
	cmd := &cobra.Command{
		Use:   "provision [listing-id...]",
		Short: "Assign listings to owner accounts; without ids, sweep administrator-owned listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := cli.ParseListingIDs(args)
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), func(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
				if inline {
					return provisionInline(ctx, cfg, logger, ids)
				}
				return enqueueProvision(ctx, cfg, logger, ids)
			})
		},
	}
	cmd.Flags().BoolVar(&inline, "inline", false, "run in this process instead of enqueueing a worker task")
	return cmd
}

func enqueueProvision(ctx context.Context, cfg *app.Config, logger *slog.Logger, ids []int64) error {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := jobsCLI.Close(); err != nil {
			logger.Warn("jobs cli close", slog.Any("error", err))
		}
	}()
	info, err := jobsCLI.EnqueueProvision(ctx, ids)
	if err != nil {
		return fmt.Errorf("enqueue provision: %w", err)
	}
	logger.Info("provision task enqueued", slog.String("task_id", info.ID), slog.String("queue", info.Queue), slog.Int("listings", len(ids)))
	return nil
}

func provisionInline(ctx context.Context, cfg *app.Config, logger *slog.Logger, ids []int64) error {
	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	listingsService := listings.NewService(listings.NewRepository(dbpool), rbac.NewService(dbpool))
	if len(ids) == 0 {
		ids, err = listingsService.AdminOwnedWithEmail(ctx)
		if err != nil {
			return err
		}
	}
	report := provision.NewService(listingsService, users.NewService(users.NewRepository(dbpool)), logger).Provision(ctx, ids)
	fmt.Println(cli.FormatReport(report))
	return nil
}

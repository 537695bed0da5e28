package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ownerassign/ownerassign/internal/app"
	"github.com/ownerassign/ownerassign/internal/platform/db"
	"github.com/ownerassign/ownerassign/internal/roles"
	"github.com/ownerassign/ownerassign/migrations"
)

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Apply migrations and create the administrator and owner roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), install)
		},
	}
}

func install(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	if err := db.Migrate(ctx, dbpool, migrations.FS, logger); err != nil {
		return err
	}
	if err := roles.NewService(roles.NewRepository(dbpool), logger).Install(ctx); err != nil {
		return err
	}
	logger.Info("install complete")
	return nil
}

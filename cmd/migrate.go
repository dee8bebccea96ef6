package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/coreapi/codecamp/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "migrate",
		Short:                 "Apply all database migrations and exit",
		Long:                  ``,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			pg, err := postgres.ConnectWithRetry(ctx, postgres.Config{
				User:       conf.Postgres.User,
				Password:   conf.Postgres.Password.Secret(),
				Database:   conf.Postgres.Database,
				Host:       conf.Postgres.Host,
				Port:       conf.Postgres.Port,
				SSLMode:    conf.Postgres.SSLMode,
				MaxConns:   1,
				Migrations: postgres.CodecampMigrations,
			}, noop.NewTracerProvider(), time.Duration(conf.Postgres.ConnectTimeoutSeconds)*time.Second)
			if err != nil {
				return fmt.Errorf("could not connect to postgres: %w", err)
			}
			defer pg.Shutdown(ctx) //nolint:errcheck // closing is best effort

			if err = pg.Migrate(); err != nil {
				return err //nolint:wrapcheck // already carries postgres.ErrMigrationFailed
			}

			fmt.Fprintf(cmd.OutOrStdout(), "database %s is migrated\n", conf.Postgres.Database)

			return nil
		},
	}
}

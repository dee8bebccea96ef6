package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color" //nolint:misspell
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coreapi/codecamp"
	camps "github.com/coreapi/codecamp/contexts/camps/init"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(osSignal <-chan os.Signal) *cobra.Command {
	return &cobra.Command{
		Use:                   "serve",
		Short:                 "Migrate the database and serve the REST API",
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

			di, err := codecamp.InitialiseDefaultDependencies(ctx, conf)
			if err != nil {
				return fmt.Errorf("could not initialise dependencies: %w", err)
			}

			campsContext, err := camps.NewCampsContext(ctx, di)
			if err != nil {
				_ = di.Shutdown(ctx)

				return fmt.Errorf("could not initialise camps: %w", err)
			}

			hash := readBuild().revision
			color.New(color.FgBlue, color.Bold).Fprintf(cmd.OutOrStdout(),
				"codecamp %s listening on :%d\n", hash, conf.HTTP.Port,
			)

			group, groupCtx := errgroup.WithContext(ctx)

			group.Go(func() error {
				return di.Start(groupCtx)
			})

			group.Go(func() error {
				select {
				case <-osSignal:
				case <-groupCtx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				return errors.Join(campsContext.Shutdown(shutdownCtx), di.Shutdown(shutdownCtx))
			})

			if err := group.Wait(); err != nil {
				return fmt.Errorf("serving stopped: %w", err)
			}

			return nil
		},
	}
}

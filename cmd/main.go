package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orbitaledge/internal/config"
	"orbitaledge/pkg/logger"
)

// app carries what every subcommand needs once the root has loaded it.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func (a *app) sync() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orbital",
		Short: "Orbital Edge satellite imagery catalog and ordering service",
		Long: `Orbital Edge serves a PostGIS-backed catalog of satellite imagery.

Clients search the catalog by area of interest and place orders for
individual catalog entries. Running without a subcommand starts the API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envErr := godotenv.Load()

			a.cfg = config.Load()
			if a.log == nil {
				log, err := logger.New(a.cfg.IsDevelopment())
				if err != nil {
					return err
				}
				a.log = log
			}

			if envErr != nil {
				a.log.Debug("no .env file found, using environment variables")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a, serveOptions{migrate: true})
		},
	}

	cmd.AddCommand(
		newServeCmd(a),
		newProxyCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newSearchCmd(a),
	)

	return cmd
}

// execute runs root and flushes the logger on every exit path.
func execute(ctx context.Context, root *cobra.Command, a *app) error {
	defer a.sync()
	return root.ExecuteContext(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := execute(ctx, newRootCmd(a), a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

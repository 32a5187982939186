package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"orbitaledge/internal/repository"
	"orbitaledge/internal/service"
	"orbitaledge/pkg/database"
)

func newSeedCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed <catalog.geojson|->",
		Short: "Load catalog entries from a GeoJSON FeatureCollection",
		Long: `Loads catalog entries from a GeoJSON FeatureCollection. Each feature's
properties carry the entry attributes (catalogID, acquisitionDateStart,
acquisitionDateEnd, resolution, cloudCoverage, offNadir, sensor,
scanDirection, satelliteElevation, imageBands) and its geometry is the
footprint. Entries whose catalogID already exists are refreshed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open catalog: %w", err)
				}
				defer f.Close()
				in = f
			}

			db, err := database.Connect(a.cfg.DB, a.log, a.cfg.App.Debug)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if migrate {
				if err := database.Migrate(db, a.log); err != nil {
					return err
				}
			}

			loader := service.NewCatalogLoader(repository.NewImageRepository(db), a.log)
			n, err := loader.Load(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d catalog entries\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "run database migrations first")

	return cmd
}

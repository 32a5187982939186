package main

import (
	"github.com/spf13/cobra"

	"orbitaledge/pkg/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostGIS extension, tables, indexes and constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Connect(a.cfg.DB, a.log, a.cfg.App.Debug)
			if err != nil {
				return err
			}
			defer database.Close(db)

			return database.Migrate(db, a.log)
		},
	}
}

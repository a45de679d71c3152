package cli

import (
	"context"
	"fmt"

	migrations "k9harmony/internal/migrations/mongo"

	"github.com/spf13/cobra"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create Mongo collections, validators and indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rt.config()
			cfg.SetMongo()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.MongoConnTimeout*6)
			defer cancel()
			if err := migrations.RunMigration(ctx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.Log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied to", cfg.MongoDatabaseName)
			return nil
		},
	}
}

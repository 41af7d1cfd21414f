package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/nyashahama/partner-risk-engine/internal/app"
	"github.com/nyashahama/partner-risk-engine/internal/config"
	"github.com/nyashahama/partner-risk-engine/internal/db"
)

var errNoDatabase = errors.New("DATABASE_URL is required")

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enable := func(c *config.Config) { c.AutoMigrate = true }
			return o.withApp(cmd, enable, func(a *app.App) error {
				if a.Pool == nil {
					return errNoDatabase
				}
				v, err := db.Version(cmd.Context(), a.Pool)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"version": v})
			})
		},
	}
}

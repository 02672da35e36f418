package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/stationhub-backend/internal/app"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// building the app migrates the schema
			return withApp(cmd, rootOpts, func(a *app.App) error {
				return emit(cmd.OutOrStdout(), rootOpts, map[string]any{"migrated": true, "driver": a.Cfg.DB.Driver}, func(w io.Writer) {
					fmt.Fprintf(w, "schema up to date (%s)\n", a.Cfg.DB.Driver)
				})
			})
		},
	}
}

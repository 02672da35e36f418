package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/stationhub-backend/internal/app"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/webhook"
)

type webhooksOptions struct {
	triggers []string
}

// NewWebhooksCommand shows which webhooks of a station would fire for a set of triggers.
func NewWebhooksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &webhooksOptions{}
	cmd := &cobra.Command{
		Use:   "webhooks <station>",
		Short: "List the webhooks that would fire for the given triggers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App) error {
				found, err := lookupStation(cmd.Context(), a, args[0])
				if err != nil {
					return err
				}
				st, err := a.Repos.Station.GetByID(dbctx.Context{Ctx: cmd.Context()}, found.ID, "Webhooks")
				if err != nil {
					return err
				}
				plan := a.Services.Webhooks.Plan(st, opts.triggers)
				if plan == nil {
					plan = []webhook.Delivery{}
				}
				return emit(cmd.OutOrStdout(), rootOpts, plan, func(w io.Writer) {
					if len(plan) == 0 {
						fmt.Fprintf(w, "%s: no webhooks match\n", st.ShortName)
						return
					}
					for _, d := range plan {
						state := "routable"
						if !d.Routable {
							state = "no connector"
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Hook.ID, d.Hook.Type, d.Hook.Name, state)
					}
				})
			})
		},
	}
	cmd.Flags().StringSliceVarP(&opts.triggers, "trigger", "t", nil, "event trigger, repeatable (e.g. song_changed)")
	return cmd
}

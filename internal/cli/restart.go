package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/stationhub-backend/internal/app"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/realtime"
)

type pendingStation struct {
	ID        string    `json:"id"`
	ShortName string    `json:"short_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewRestartPendingCommand(rootOpts *RootOptions) *cobra.Command {
	var ack bool
	cmd := &cobra.Command{
		Use:   "restart-pending",
		Short: "List stations whose configuration changed since their last restart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App) error {
				list, err := a.Repos.Station.ListNeedingRestart(dbctx.Context{Ctx: cmd.Context()})
				if err != nil {
					return err
				}
				out := make([]pendingStation, 0, len(list))
				for _, st := range list {
					out = append(out, pendingStation{ID: st.ID.String(), ShortName: st.ShortName, UpdatedAt: st.UpdatedAt})
					if ack {
						if _, err := a.Services.Stations.AcknowledgeRestart(cmd.Context(), st.ID); err != nil {
							return err
						}
					}
				}
				return emit(cmd.OutOrStdout(), rootOpts, out, func(w io.Writer) {
					for _, st := range out {
						fmt.Fprintf(w, "%s\t%s\n", st.ShortName, st.UpdatedAt.Format(time.RFC3339))
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&ack, "ack", false, "clear the flag after listing")
	return cmd
}

func NewWatchRestartsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch-restarts",
		Short: "Print restart notifications until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App) error {
				if a.Cfg.RedisAddr == "" {
					return fmt.Errorf("REDIS_ADDR is required to watch restarts")
				}
				w := cmd.OutOrStdout()
				events := make(chan realtime.RestartEvent, 16)
				ctx := cmd.Context()
				if err := a.Bus.Subscribe(ctx, func(ev realtime.RestartEvent) {
					select {
					case events <- ev:
					case <-ctx.Done():
					}
				}); err != nil {
					return err
				}
				for {
					select {
					case <-ctx.Done():
						return nil
					case ev := <-events:
						if err := printEvent(w, rootOpts, ev); err != nil {
							return err
						}
					}
				}
			})
		},
	}
}

func printEvent(w io.Writer, opts *RootOptions, ev realtime.RestartEvent) error {
	if opts.Format == "json" {
		return json.NewEncoder(w).Encode(ev)
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", ev.At.Format(time.RFC3339), ev.ShortName, ev.StationID)
	return err
}

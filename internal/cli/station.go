package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/stationhub-backend/internal/app"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
)

func lookupStation(ctx context.Context, a *app.App, shortName string) (*station.Station, error) {
	st, err := a.Repos.Station.GetByShortName(dbctx.Context{Ctx: ctx}, shortName)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("station %q not found", shortName)
	}
	return st, nil
}

type mediaPathOptions struct {
	autoDJ bool
}

func NewMediaPathCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &mediaPathOptions{}
	cmd := &cobra.Command{
		Use:   "media-path <station> <uri>",
		Short: "Resolve a library URI to a local file for Liquidsoap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App) error {
				st, err := lookupStation(cmd.Context(), a, args[0])
				if err != nil {
					return err
				}
				p, err := a.Services.Copy.Run(cmd.Context(), st, opts.autoDJ, map[string]any{"uri": args[1]})
				if err != nil {
					return err
				}
				return emit(cmd.OutOrStdout(), rootOpts, map[string]string{"path": p}, func(w io.Writer) {
					fmt.Fprintln(w, p)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&opts.autoDJ, "autodj", false, "request comes from the AutoDJ")
	return cmd
}

func NewCheckPortsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-ports <station>",
		Short: "Report ports a station shares with other stations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App) error {
				st, err := lookupStation(cmd.Context(), a, args[0])
				if err != nil {
					return err
				}
				violations, err := a.Services.Ports.Check(cmd.Context(), st)
				if err != nil {
					return err
				}
				if violations == nil {
					violations = []station.PortViolation{}
				}
				err = emit(cmd.OutOrStdout(), rootOpts, violations, func(w io.Writer) {
					if len(violations) == 0 {
						fmt.Fprintf(w, "%s: no port conflicts\n", st.ShortName)
						return
					}
					for _, v := range violations {
						fmt.Fprintf(w, "%s: %s\n", v.Field, v.Message)
					}
				})
				if err != nil {
					return err
				}
				if len(violations) > 0 {
					return fmt.Errorf("%d port conflict(s)", len(violations))
				}
				return nil
			})
		},
	}
}

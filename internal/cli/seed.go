package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/stationhub-backend/internal/app"
	"github.com/yungbote/stationhub-backend/internal/services"
)

type seedOptions struct {
	fixture string
	music   string
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a station from a YAML fixture and import its music",
		Long: `Create the fixture station unless one with the same short name exists, then
upload every mp3/aac/ogg/flac file under the music directory into the station
library and add it to the fixture's media playlist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := services.LoadFixture(opts.fixture)
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(a *app.App) error {
				seeder := a.Services.Seeder
				if opts.music != "" {
					seeder = services.NewMediaSeeder(a.Log, services.MediaSeederDeps{
						Stations:  a.Repos.Station,
						Playlists: a.Repos.Playlist,
						Aggregate: a.Services.StationAgg,
						Files:     a.Services.Filesystems,
						MusicPath: opts.music,
					})
				}
				res, err := seeder.Seed(cmd.Context(), fx)
				if err != nil {
					return err
				}
				out := map[string]any{
					"station_id":      res.Station.ID,
					"short_name":      res.Station.ShortName,
					"station_created": res.StationCreated,
					"media_created":   res.Media.Created,
					"media_skipped":   res.Media.Skipped,
				}
				return emit(cmd.OutOrStdout(), rootOpts, out, func(w io.Writer) {
					verb := "exists"
					if res.StationCreated {
						verb = "created"
					}
					fmt.Fprintf(w, "station %s %s; media created=%d skipped=%d\n",
						res.Station.ShortName, verb, res.Media.Created, res.Media.Skipped)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&opts.fixture, "fixture", "f", "", "station fixture YAML")
	cmd.Flags().StringVar(&opts.music, "music", "", "music directory (default INIT_MUSIC_PATH)")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}

package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	stationrepo "github.com/yungbote/stationhub-backend/internal/data/repos/station"
	domainagg "github.com/yungbote/stationhub-backend/internal/domain/aggregates"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
	"github.com/yungbote/stationhub-backend/internal/platform/storage"
)

var mediaFilePattern = regexp.MustCompile(`(?i)^.+\.(mp3|aac|ogg|flac)$`)

const defaultHashWorkers = 4

// Fixture is a station definition loaded from YAML.
type Fixture struct {
	Station StationFixture `yaml:"station"`
	// MediaPlaylist names the playlist that receives files from the music directory.
	MediaPlaylist string `yaml:"media_playlist"`
}

type StationFixture struct {
	Name      string            `yaml:"name"`
	ShortName string            `yaml:"short_name"`
	Enabled   *bool             `yaml:"enabled"`
	Frontend  FrontendFixture   `yaml:"frontend"`
	Backend   BackendFixture    `yaml:"backend"`
	Storage   StorageFixture    `yaml:"storage"`
	Mounts    []MountFixture    `yaml:"mounts"`
	Playlists []PlaylistFixture `yaml:"playlists"`
}

type FrontendFixture struct {
	Port           *int   `yaml:"port"`
	SourcePassword string `yaml:"source_password"`
	AdminPassword  string `yaml:"admin_password"`
	MaxListeners   int    `yaml:"max_listeners"`
}

type BackendFixture struct {
	UseManualAutoDJ  bool    `yaml:"use_manual_autodj"`
	DJPort           *int    `yaml:"dj_port"`
	TelnetPort       *int    `yaml:"telnet_port"`
	CrossfadeSeconds float64 `yaml:"crossfade_seconds"`
}

type StorageFixture struct {
	Adapter string `yaml:"adapter"`
	Path    string `yaml:"path"`
	Bucket  string `yaml:"bucket"`
	Prefix  string `yaml:"prefix"`
}

type MountFixture struct {
	Name          string `yaml:"name"`
	DisplayName   string `yaml:"display_name"`
	Default       bool   `yaml:"default"`
	Public        *bool  `yaml:"public"`
	AutoDJFormat  string `yaml:"autodj_format"`
	AutoDJBitrate int    `yaml:"autodj_bitrate"`
}

type PlaylistFixture struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Weight  int    `yaml:"weight"`
	Enabled *bool  `yaml:"enabled"`
}

// ParseFixture decodes a station fixture and fills defaults.
func ParseFixture(raw []byte) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	fx.Station.ShortName = strings.TrimSpace(fx.Station.ShortName)
	if fx.Station.ShortName == "" {
		return Fixture{}, errors.New("fixture: station.short_name is required")
	}
	if strings.TrimSpace(fx.Station.Name) == "" {
		fx.Station.Name = fx.Station.ShortName
	}
	if strings.TrimSpace(fx.MediaPlaylist) == "" && len(fx.Station.Playlists) > 0 {
		fx.MediaPlaylist = fx.Station.Playlists[0].Name
	}
	return fx, nil
}

func LoadFixture(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, err
	}
	return ParseFixture(raw)
}

func (f StationFixture) input() domainagg.CreateStationInput {
	in := domainagg.CreateStationInput{
		Name:      f.Name,
		ShortName: f.ShortName,
		IsEnabled: boolOr(f.Enabled, true),
		Frontend: station.FrontendConfig{
			Port:           f.Frontend.Port,
			SourcePassword: f.Frontend.SourcePassword,
			AdminPassword:  f.Frontend.AdminPassword,
			MaxListeners:   f.Frontend.MaxListeners,
		},
		Backend: station.BackendConfig{
			UseManualAutoDJ:  f.Backend.UseManualAutoDJ,
			DJPort:           f.Backend.DJPort,
			TelnetPort:       f.Backend.TelnetPort,
			CrossfadeSeconds: f.Backend.CrossfadeSeconds,
		},
		Storage: station.StorageConfig{
			Adapter: station.StorageAdapter(strings.TrimSpace(f.Storage.Adapter)),
			Path:    f.Storage.Path,
			Bucket:  f.Storage.Bucket,
			Prefix:  f.Storage.Prefix,
		},
	}
	if in.Storage.Adapter == "" {
		in.Storage.Adapter = station.StorageLocal
	}
	for _, m := range f.Mounts {
		in.Mounts = append(in.Mounts, domainagg.AddMountInput{
			Name:          m.Name,
			DisplayName:   m.DisplayName,
			IsDefault:     m.Default,
			IsPublic:      boolOr(m.Public, true),
			AutoDJFormat:  m.AutoDJFormat,
			AutoDJBitrate: m.AutoDJBitrate,
		})
	}
	for _, p := range f.Playlists {
		typ := station.PlaylistType(strings.TrimSpace(p.Type))
		if typ == "" {
			typ = station.PlaylistDefault
		}
		in.Playlists = append(in.Playlists, domainagg.CreatePlaylistInput{
			Name:      p.Name,
			Type:      typ,
			Weight:    p.Weight,
			IsEnabled: boolOr(p.Enabled, true),
		})
	}
	return in
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// MediaFilesystems resolves the media library of a station.
type MediaFilesystems interface {
	Media(ctx context.Context, st *station.Station) (storage.Filesystem, error)
}

type MediaSeederDeps struct {
	Stations  stationrepo.StationRepo
	Playlists stationrepo.PlaylistRepo
	Aggregate domainagg.StationAggregate
	Files     MediaFilesystems
	// MusicPath is the directory scanned for media, usually INIT_MUSIC_PATH.
	MusicPath   string
	HashWorkers int
}

// MediaSeeder creates a station from a fixture and fills one playlist from a music directory.
type MediaSeeder struct {
	log  *logger.Logger
	deps MediaSeederDeps
}

type SeedResult struct {
	Station        *station.Station
	StationCreated bool
	Media          domainagg.ImportMediaResult
}

func NewMediaSeeder(log *logger.Logger, deps MediaSeederDeps) *MediaSeeder {
	if log == nil {
		log = logger.Nop()
	}
	if deps.HashWorkers <= 0 {
		deps.HashWorkers = defaultHashWorkers
	}
	return &MediaSeeder{log: log.With("service", "MediaSeeder"), deps: deps}
}

func (s *MediaSeeder) Seed(ctx context.Context, fx Fixture) (SeedResult, error) {
	st, created, err := s.SeedStation(ctx, fx)
	if err != nil {
		return SeedResult{}, err
	}
	res := SeedResult{Station: st, StationCreated: created}
	if strings.TrimSpace(fx.MediaPlaylist) == "" {
		return res, nil
	}
	res.Media, err = s.SeedMedia(ctx, st, fx.MediaPlaylist)
	if err != nil {
		return res, err
	}
	return res, nil
}

// SeedStation creates the fixture station unless one with the same short name exists.
func (s *MediaSeeder) SeedStation(ctx context.Context, fx Fixture) (*station.Station, bool, error) {
	existing, err := s.deps.Stations.GetByShortName(dbctx.Context{Ctx: ctx}, fx.Station.ShortName)
	if err != nil {
		return nil, false, fmt.Errorf("lookup station %q: %w", fx.Station.ShortName, err)
	}
	if existing != nil {
		s.log.Info("fixture station already exists", "station", existing.ShortName)
		return existing, false, nil
	}
	st, err := s.deps.Aggregate.CreateStation(ctx, fx.Station.input())
	if err != nil {
		return nil, false, err
	}
	s.log.Info("fixture station created", "station", st.ShortName, "station_id", st.ID)
	return st, true, nil
}

// SeedMedia uploads every audio file under MusicPath into the station library and links it to
// the named playlist. A missing music directory is not an error.
func (s *MediaSeeder) SeedMedia(ctx context.Context, st *station.Station, playlistName string) (domainagg.ImportMediaResult, error) {
	var out domainagg.ImportMediaResult
	root := strings.TrimSpace(s.deps.MusicPath)
	if root == "" {
		return out, nil
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		s.log.Debug("music path is not a directory, skipping media", "path", root)
		return out, nil
	}

	pl, err := s.deps.Playlists.GetByStationAndName(dbctx.Context{Ctx: ctx}, st.ID, playlistName)
	if err != nil {
		return out, err
	}
	if pl == nil {
		return out, fmt.Errorf("playlist %q not found on station %s", playlistName, st.ShortName)
	}

	paths, err := findMedia(root)
	if err != nil {
		return out, err
	}
	if len(paths) == 0 {
		return out, nil
	}

	files, err := s.hashAll(ctx, paths)
	if err != nil {
		return out, err
	}

	lib, err := s.deps.Files.Media(ctx, st)
	if err != nil {
		return out, err
	}
	for i, p := range paths {
		if err := lib.Upload(ctx, p, files[i].Path); err != nil {
			return out, fmt.Errorf("upload %s: %w", files[i].Path, err)
		}
	}

	out, err = s.deps.Aggregate.ImportMedia(ctx, domainagg.ImportMediaInput{
		StationID:  st.ID,
		PlaylistID: pl.ID,
		Files:      files,
		Weight:     1,
	})
	if err != nil {
		return domainagg.ImportMediaResult{}, err
	}
	s.log.Info("fixture media imported", "station", st.ShortName, "playlist", pl.Name, "created", out.Created, "skipped", out.Skipped)
	return out, nil
}

func findMedia(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !mediaFilePattern.MatchString(d.Name()) {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan music path: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MediaSeeder) hashAll(ctx context.Context, paths []string) ([]domainagg.MediaFileInput, error) {
	files := make([]domainagg.MediaFileInput, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deps.HashWorkers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, size, err := hashFile(p)
			if err != nil {
				return fmt.Errorf("hash %s: %w", p, err)
			}
			base := filepath.Base(p)
			files[i] = domainagg.MediaFileInput{
				Path:     base,
				Title:    strings.TrimSuffix(base, filepath.Ext(base)),
				Size:     size,
				Checksum: sum,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func hashFile(p string) (string, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

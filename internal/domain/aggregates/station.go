package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

// StationAggregate owns writes to a station and the entities that configure its stream.
//
// Every write flushes through a unit of work with the restart capture listener attached, so a
// relevant change and the station's needs_restart flag commit together or not at all.
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeInvariantViolation,
// CodePreconditionFailed, CodeRetryable, CodeInternal.
type StationAggregate interface {
	CreateStation(ctx context.Context, in CreateStationInput) (*station.Station, error)
	UpdateStation(ctx context.Context, in UpdateStationInput) (*station.Station, error)

	AddMount(ctx context.Context, in AddMountInput) (*station.Mount, error)
	UpdateMount(ctx context.Context, in UpdateMountInput) (*station.Mount, error)
	DeleteMount(ctx context.Context, mountID uuid.UUID) (*station.Station, error)

	AddHLSStream(ctx context.Context, in AddHLSStreamInput) (*station.HLSStream, error)
	DeleteHLSStream(ctx context.Context, streamID uuid.UUID) (*station.Station, error)

	UpdateRemote(ctx context.Context, in UpdateRemoteInput) (*station.Remote, error)
	UpdatePlaylist(ctx context.Context, in UpdatePlaylistInput) (*station.Playlist, error)

	// ImportMedia records library files and links them to a playlist in one commit.
	ImportMedia(ctx context.Context, in ImportMediaInput) (ImportMediaResult, error)

	// AcknowledgeRestart clears needs_restart once the backend has been restarted.
	AcknowledgeRestart(ctx context.Context, stationID uuid.UUID) (*station.Station, error)
}

type CreateStationInput struct {
	Name      string
	ShortName string
	IsEnabled bool
	Frontend  station.FrontendConfig
	Backend   station.BackendConfig
	Storage   station.StorageConfig
	Mounts    []AddMountInput
	Playlists []CreatePlaylistInput
}

type CreatePlaylistInput struct {
	Name      string
	Type      station.PlaylistType
	Weight    int
	IsEnabled bool
}

type UpdateStationInput struct {
	StationID uuid.UUID
	Name      *string
	IsEnabled *bool
	Frontend  *station.FrontendConfig
	Backend   *station.BackendConfig
	Storage   *station.StorageConfig
}

type AddMountInput struct {
	StationID     uuid.UUID
	Name          string
	DisplayName   string
	IsDefault     bool
	IsPublic      bool
	AutoDJFormat  string
	AutoDJBitrate int
	RelayURL      string
}

type UpdateMountInput struct {
	MountID         uuid.UUID
	Name            *string
	DisplayName     *string
	IsDefault       *bool
	IsPublic        *bool
	AutoDJFormat    *string
	AutoDJBitrate   *int
	RelayURL        *string
	ListenersUnique *int
	ListenersTotal  *int
}

type AddHLSStreamInput struct {
	StationID uuid.UUID
	Name      string
	Format    string
	Bitrate   int
}

type UpdateRemoteInput struct {
	RemoteID       uuid.UUID
	DisplayName    *string
	URL            *string
	Mount          *string
	EnableAutoDJ   *bool
	SourceUsername *string
	SourcePassword *string
	SourcePort     *int
}

type UpdatePlaylistInput struct {
	PlaylistID          uuid.UUID
	Name                *string
	Weight              *int
	IsEnabled           *bool
	Order               *string
	IncludeInAutomation *bool
	PlayedAt            *int64
}

type ImportMediaInput struct {
	StationID  uuid.UUID
	PlaylistID uuid.UUID
	Files      []MediaFileInput
	Weight     int
}

type MediaFileInput struct {
	Path     string
	Title    string
	Size     int64
	Checksum string
}

type ImportMediaResult struct {
	Created int
	Skipped int
}

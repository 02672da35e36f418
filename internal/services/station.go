package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	stationrepo "github.com/yungbote/stationhub-backend/internal/data/repos/station"
	domainagg "github.com/yungbote/stationhub-backend/internal/domain/aggregates"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

// StationService serves station reads and forwards writes to the station aggregate.
type StationService interface {
	Get(ctx context.Context, id uuid.UUID) (*station.Station, error)
	ListRestartPending(ctx context.Context) ([]*station.Station, error)

	Update(ctx context.Context, in domainagg.UpdateStationInput) (*station.Station, error)
	AcknowledgeRestart(ctx context.Context, id uuid.UUID) (*station.Station, error)

	AddMount(ctx context.Context, in domainagg.AddMountInput) (*station.Mount, error)
	UpdateMount(ctx context.Context, in domainagg.UpdateMountInput) (*station.Mount, error)
	DeleteMount(ctx context.Context, id uuid.UUID) (*station.Station, error)

	AddHLSStream(ctx context.Context, in domainagg.AddHLSStreamInput) (*station.HLSStream, error)
	DeleteHLSStream(ctx context.Context, id uuid.UUID) (*station.Station, error)

	UpdateRemote(ctx context.Context, in domainagg.UpdateRemoteInput) (*station.Remote, error)
	UpdatePlaylist(ctx context.Context, in domainagg.UpdatePlaylistInput) (*station.Playlist, error)
}

type stationService struct {
	log      *logger.Logger
	stations stationrepo.StationRepo
	agg      domainagg.StationAggregate
}

func NewStationService(log *logger.Logger, stations stationrepo.StationRepo, agg domainagg.StationAggregate) StationService {
	return &stationService{
		log:      log.With("service", "StationService"),
		stations: stations,
		agg:      agg,
	}
}

var stationPreloads = []string{"Mounts", "HLSStreams", "Remotes", "Playlists"}

func (s *stationService) Get(ctx context.Context, id uuid.UUID) (*station.Station, error) {
	st, err := s.stations.GetByID(dbctx.Context{Ctx: ctx}, id, stationPreloads...)
	if err != nil {
		return nil, fmt.Errorf("load station: %w", err)
	}
	if st == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "Radio.Station.Get", "station not found", nil)
	}
	return st, nil
}

func (s *stationService) ListRestartPending(ctx context.Context) ([]*station.Station, error) {
	return s.stations.ListNeedingRestart(dbctx.Context{Ctx: ctx})
}

func (s *stationService) Update(ctx context.Context, in domainagg.UpdateStationInput) (*station.Station, error) {
	return s.agg.UpdateStation(ctx, in)
}

func (s *stationService) AcknowledgeRestart(ctx context.Context, id uuid.UUID) (*station.Station, error) {
	st, err := s.agg.AcknowledgeRestart(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("station restart acknowledged", "station", st.ShortName)
	return st, nil
}

func (s *stationService) AddMount(ctx context.Context, in domainagg.AddMountInput) (*station.Mount, error) {
	return s.agg.AddMount(ctx, in)
}

func (s *stationService) UpdateMount(ctx context.Context, in domainagg.UpdateMountInput) (*station.Mount, error) {
	return s.agg.UpdateMount(ctx, in)
}

func (s *stationService) DeleteMount(ctx context.Context, id uuid.UUID) (*station.Station, error) {
	return s.agg.DeleteMount(ctx, id)
}

func (s *stationService) AddHLSStream(ctx context.Context, in domainagg.AddHLSStreamInput) (*station.HLSStream, error) {
	return s.agg.AddHLSStream(ctx, in)
}

func (s *stationService) DeleteHLSStream(ctx context.Context, id uuid.UUID) (*station.Station, error) {
	return s.agg.DeleteHLSStream(ctx, id)
}

func (s *stationService) UpdateRemote(ctx context.Context, in domainagg.UpdateRemoteInput) (*station.Remote, error) {
	return s.agg.UpdateRemote(ctx, in)
}

func (s *stationService) UpdatePlaylist(ctx context.Context, in domainagg.UpdatePlaylistInput) (*station.Playlist, error) {
	return s.agg.UpdatePlaylist(ctx, in)
}

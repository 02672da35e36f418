package station

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

type PlaylistRepo interface {
	GetByStationAndName(dbc dbctx.Context, stationID uuid.UUID, name string) (*types.Playlist, error)
	ListByStation(dbc dbctx.Context, stationID uuid.UUID) ([]*types.Playlist, error)
}

type playlistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaylistRepo(db *gorm.DB, baseLog *logger.Logger) PlaylistRepo {
	return &playlistRepo{
		db:  db,
		log: baseLog.With("repo", "PlaylistRepo"),
	}
}

func (r *playlistRepo) GetByStationAndName(dbc dbctx.Context, stationID uuid.UUID, name string) (*types.Playlist, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	name = strings.TrimSpace(name)
	if stationID == uuid.Nil || name == "" {
		return nil, nil
	}
	var p types.Playlist
	if err := transaction.WithContext(dbc.Ctx).
		Where("station_id = ? AND name = ?", stationID, name).
		Limit(1).
		Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *playlistRepo) ListByStation(dbc dbctx.Context, stationID uuid.UUID) ([]*types.Playlist, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Playlist
	if stationID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("station_id = ?", stationID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

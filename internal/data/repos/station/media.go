package station

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

type MediaRepo interface {
	GetByPath(dbc dbctx.Context, stationID uuid.UUID, path string) (*types.Media, error)
	CountByStation(dbc dbctx.Context, stationID uuid.UUID) (int64, error)
}

type mediaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaRepo(db *gorm.DB, baseLog *logger.Logger) MediaRepo {
	return &mediaRepo{
		db:  db,
		log: baseLog.With("repo", "MediaRepo"),
	}
}

func (r *mediaRepo) GetByPath(dbc dbctx.Context, stationID uuid.UUID, path string) (*types.Media, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	path = strings.TrimSpace(path)
	if stationID == uuid.Nil || path == "" {
		return nil, nil
	}
	var m types.Media
	if err := transaction.WithContext(dbc.Ctx).
		Where("station_id = ? AND path = ?", stationID, path).
		Limit(1).
		Find(&m).Error; err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		return nil, nil
	}
	return &m, nil
}

func (r *mediaRepo) CountByStation(dbc dbctx.Context, stationID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Media{}).
		Where("station_id = ?", stationID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

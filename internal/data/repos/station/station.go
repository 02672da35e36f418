package station

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

type StationRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID, preloads ...string) (*types.Station, error)
	GetByShortName(dbc dbctx.Context, shortName string) (*types.Station, error)
	ListNeedingRestart(dbc dbctx.Context) ([]*types.Station, error)
	UsedPorts(dbc dbctx.Context, excludeID uuid.UUID) (map[int]uuid.UUID, error)
}

type stationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStationRepo(db *gorm.DB, baseLog *logger.Logger) StationRepo {
	return &stationRepo{
		db:  db,
		log: baseLog.With("repo", "StationRepo"),
	}
}

func (r *stationRepo) GetByID(dbc dbctx.Context, id uuid.UUID, preloads ...string) (*types.Station, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	q := transaction.WithContext(dbc.Ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var st types.Station
	if err := q.Where("id = ?", id).Limit(1).Find(&st).Error; err != nil {
		return nil, err
	}
	if st.ID == uuid.Nil {
		return nil, nil
	}
	return &st, nil
}

func (r *stationRepo) GetByShortName(dbc dbctx.Context, shortName string) (*types.Station, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	shortName = strings.TrimSpace(shortName)
	if shortName == "" {
		return nil, nil
	}
	var st types.Station
	if err := transaction.WithContext(dbc.Ctx).
		Where("short_name = ?", shortName).
		Limit(1).
		Find(&st).Error; err != nil {
		return nil, err
	}
	if st.ID == uuid.Nil {
		return nil, nil
	}
	return &st, nil
}

// ListNeedingRestart returns enabled and disabled stations whose backend configuration
// changed since their last restart, oldest change first.
func (r *stationRepo) ListNeedingRestart(dbc dbctx.Context) ([]*types.Station, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Station
	if err := transaction.WithContext(dbc.Ctx).
		Where("needs_restart = ?", true).
		Order("updated_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UsedPorts maps every port claimed by a station other than excludeID to its owner.
// A DJ port also claims the port above it.
func (r *stationRepo) UsedPorts(dbc dbctx.Context, excludeID uuid.UUID) (map[int]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*types.Station
	q := transaction.WithContext(dbc.Ctx).Select("id", "frontend_config", "backend_config")
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	used := make(map[int]uuid.UUID, len(rows)*3)
	for _, st := range rows {
		fe := st.FrontendConfig()
		be := st.BackendConfig()
		if fe.Port != nil {
			used[*fe.Port] = st.ID
		}
		if be.DJPort != nil {
			used[*be.DJPort] = st.ID
			used[*be.DJPort+1] = st.ID
		}
		if be.TelnetPort != nil {
			used[*be.TelnetPort] = st.ID
		}
	}
	return used, nil
}

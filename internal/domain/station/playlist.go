package station

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlaylistType string

const (
	PlaylistDefault       PlaylistType = "default"
	PlaylistOncePerXSongs PlaylistType = "once_per_x_songs"
	PlaylistOncePerHour   PlaylistType = "once_per_hour"
	PlaylistAdvanced      PlaylistType = "custom"
)

type Playlist struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StationID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"station_id"`
	Station             *Station       `gorm:"foreignKey:StationID" json:"-"`
	Name                string         `gorm:"column:name;not null" json:"name"`
	Type                PlaylistType   `gorm:"column:type;not null" json:"type"`
	Source              string         `gorm:"column:source;not null" json:"source"`
	Order               string         `gorm:"column:playback_order;not null" json:"order"`
	Weight              int            `gorm:"column:weight;not null" json:"weight"`
	IsEnabled           bool           `gorm:"column:is_enabled;not null" json:"is_enabled"`
	IncludeInAutomation bool           `gorm:"column:include_in_automation;not null;default:false" json:"include_in_automation"`
	PlayedAt            int64          `gorm:"column:played_at;not null;default:0" json:"played_at"`
	QueueResetAt        int64          `gorm:"column:queue_reset_at;not null;default:0" json:"queue_reset_at"`
	Queue               datatypes.JSON `gorm:"column:queue" json:"-"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
}

func (Playlist) TableName() string { return "station_playlist" }

func (p *Playlist) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Playlist) OwnedKind() OwnedKind { return KindPlaylist }

func (p *Playlist) Owner() (*Station, error) {
	if p == nil {
		return nil, ErrMissingOwner
	}
	return resolveOwner(KindPlaylist, p.ID, p.Station)
}

func (p *Playlist) owned() {}

func NewPlaylist(st *Station, name string) *Playlist {
	return &Playlist{
		StationID: st.ID,
		Station:   st,
		Name:      name,
		Type:      PlaylistDefault,
		Source:    "songs",
		Order:     "shuffle",
		Weight:    3,
		IsEnabled: true,
	}
}

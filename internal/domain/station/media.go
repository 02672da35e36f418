package station

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media is a file in a station's media library.
type Media struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_station_media_path" json:"station_id"`
	Path      string    `gorm:"column:path;not null;uniqueIndex:idx_station_media_path" json:"path"`
	Title     string    `gorm:"column:title" json:"title,omitempty"`
	Size      int64     `gorm:"column:size;not null;default:0" json:"size"`
	Checksum  string    `gorm:"column:checksum;index" json:"checksum,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Media) TableName() string { return "station_media" }

func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type PlaylistMedia struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlaylistID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_playlist_media" json:"playlist_id"`
	MediaID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_playlist_media" json:"media_id"`
	Weight     int       `gorm:"column:weight;not null;default:0" json:"weight"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (PlaylistMedia) TableName() string { return "station_playlist_media" }

func (pm *PlaylistMedia) BeforeCreate(tx *gorm.DB) error {
	if pm.ID == uuid.Nil {
		pm.ID = uuid.New()
	}
	return nil
}

func NewPlaylistMedia(p *Playlist, m *Media) *PlaylistMedia {
	return &PlaylistMedia{PlaylistID: p.ID, MediaID: m.ID}
}

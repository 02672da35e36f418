package station

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Mount struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StationID       uuid.UUID `gorm:"type:uuid;not null;index" json:"station_id"`
	Station         *Station  `gorm:"foreignKey:StationID" json:"-"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	DisplayName     string    `gorm:"column:display_name" json:"display_name,omitempty"`
	IsDefault       bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	IsPublic        bool      `gorm:"column:is_public;not null" json:"is_public"`
	AutoDJFormat    string    `gorm:"column:autodj_format" json:"autodj_format,omitempty"`
	AutoDJBitrate   int       `gorm:"column:autodj_bitrate" json:"autodj_bitrate,omitempty"`
	RelayURL        string    `gorm:"column:relay_url" json:"relay_url,omitempty"`
	ListenersUnique int       `gorm:"column:listeners_unique;not null;default:0" json:"listeners_unique"`
	ListenersTotal  int       `gorm:"column:listeners_total;not null;default:0" json:"listeners_total"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (Mount) TableName() string { return "station_mount" }

func (m *Mount) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Mount) OwnedKind() OwnedKind { return KindMount }

func (m *Mount) Owner() (*Station, error) {
	if m == nil {
		return nil, ErrMissingOwner
	}
	return resolveOwner(KindMount, m.ID, m.Station)
}

func (m *Mount) owned() {}

// NewMount returns a mount attached to st.
func NewMount(st *Station, name string) *Mount {
	return &Mount{StationID: st.ID, Station: st, Name: name, IsPublic: true}
}

package station

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RemoteType string

const (
	RemoteIcecast    RemoteType = "icecast"
	RemoteShoutcast1 RemoteType = "shoutcast1"
	RemoteShoutcast2 RemoteType = "shoutcast2"
	// RemoteRelay remotes are provisioned by an upstream relay and are read-only here.
	RemoteRelay RemoteType = "relay"
)

type Remote struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StationID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"station_id"`
	Station         *Station   `gorm:"foreignKey:StationID" json:"-"`
	Type            RemoteType `gorm:"column:type;not null" json:"type"`
	DisplayName     string     `gorm:"column:display_name" json:"display_name,omitempty"`
	URL             string     `gorm:"column:url;not null" json:"url"`
	Mount           string     `gorm:"column:mount" json:"mount,omitempty"`
	EnableAutoDJ    bool       `gorm:"column:enable_autodj;not null;default:false" json:"enable_autodj"`
	SourceUsername  string     `gorm:"column:source_username" json:"source_username,omitempty"`
	SourcePassword  string     `gorm:"column:source_password" json:"-"`
	SourcePort      *int       `gorm:"column:source_port" json:"source_port,omitempty"`
	ListenersUnique int        `gorm:"column:listeners_unique;not null;default:0" json:"listeners_unique"`
	ListenersTotal  int        `gorm:"column:listeners_total;not null;default:0" json:"listeners_total"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (Remote) TableName() string { return "station_remote" }

func (r *Remote) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsEditable reports whether the remote is managed locally. Relay remotes are not.
func (r *Remote) IsEditable() bool {
	return r != nil && r.Type != RemoteRelay
}

func (r *Remote) OwnedKind() OwnedKind { return KindRemote }

func (r *Remote) Owner() (*Station, error) {
	if r == nil {
		return nil, ErrMissingOwner
	}
	return resolveOwner(KindRemote, r.ID, r.Station)
}

func (r *Remote) owned() {}

package station

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Webhook struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	StationID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"station_id"`
	Type      string                      `gorm:"column:type;not null" json:"type"`
	Name      string                      `gorm:"column:name" json:"name,omitempty"`
	IsEnabled bool                        `gorm:"column:is_enabled;not null" json:"is_enabled"`
	Triggers  datatypes.JSONSlice[string] `gorm:"column:triggers" json:"triggers"`
	Config    datatypes.JSONMap           `gorm:"column:config" json:"config,omitempty"`
	CreatedAt time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Webhook) TableName() string { return "station_webhook" }

func (w *Webhook) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

package station

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HLSStream struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StationID uuid.UUID `gorm:"type:uuid;not null;index" json:"station_id"`
	Station   *Station  `gorm:"foreignKey:StationID" json:"-"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Format    string    `gorm:"column:format;not null" json:"format"`
	Bitrate   int       `gorm:"column:bitrate;not null" json:"bitrate"`
	Listeners int       `gorm:"column:listeners;not null;default:0" json:"listeners"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (HLSStream) TableName() string { return "station_hls_stream" }

func (h *HLSStream) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

func (h *HLSStream) OwnedKind() OwnedKind { return KindHLSStream }

func (h *HLSStream) Owner() (*Station, error) {
	if h == nil {
		return nil, ErrMissingOwner
	}
	return resolveOwner(KindHLSStream, h.ID, h.Station)
}

func (h *HLSStream) owned() {}

func NewHLSStream(st *Station, name, format string, bitrate int) *HLSStream {
	return &HLSStream{StationID: st.ID, Station: st, Name: name, Format: format, Bitrate: bitrate}
}

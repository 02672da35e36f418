package station

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Station struct {
	ID           uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                             `gorm:"column:name;not null" json:"name"`
	ShortName    string                             `gorm:"column:short_name;not null;uniqueIndex" json:"short_name"`
	IsEnabled    bool                               `gorm:"column:is_enabled;not null" json:"is_enabled"`
	NeedsRestart bool                               `gorm:"column:needs_restart;not null;default:false;index" json:"needs_restart"`
	Frontend     datatypes.JSONType[FrontendConfig] `gorm:"column:frontend_config" json:"frontend_config"`
	Backend      datatypes.JSONType[BackendConfig]  `gorm:"column:backend_config" json:"backend_config"`
	MediaStorage datatypes.JSONType[StorageConfig]  `gorm:"column:media_storage" json:"media_storage"`
	CreatedAt    time.Time                          `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time                          `gorm:"not null;index" json:"updated_at"`

	Mounts     []*Mount     `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"mounts,omitempty"`
	HLSStreams []*HLSStream `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"hls_streams,omitempty"`
	Remotes    []*Remote    `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"remotes,omitempty"`
	Playlists  []*Playlist  `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"playlists,omitempty"`
	Webhooks   []*Webhook   `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"webhooks,omitempty"`
}

func (Station) TableName() string { return "station" }

func (s *Station) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// FrontendConfig describes the listener-facing broadcast server.
type FrontendConfig struct {
	Port           *int   `json:"port,omitempty"`
	SourcePassword string `json:"source_password,omitempty"`
	AdminPassword  string `json:"admin_password,omitempty"`
	MaxListeners   int    `json:"max_listeners,omitempty"`
}

// BackendConfig describes the AutoDJ/streaming backend.
type BackendConfig struct {
	UseManualAutoDJ  bool    `json:"use_manual_autodj"`
	DJPort           *int    `json:"dj_port,omitempty"`
	TelnetPort       *int    `json:"telnet_port,omitempty"`
	CrossfadeSeconds float64 `json:"crossfade_seconds,omitempty"`
}

type StorageAdapter string

const (
	StorageLocal StorageAdapter = "local"
	StorageGCS   StorageAdapter = "gcs"
)

// StorageConfig locates a station's media library.
type StorageConfig struct {
	Adapter StorageAdapter `json:"adapter"`
	Path    string         `json:"path,omitempty"`
	Bucket  string         `json:"bucket,omitempty"`
	Prefix  string         `json:"prefix,omitempty"`
}

func (s *Station) FrontendConfig() FrontendConfig { return s.Frontend.Data() }

func (s *Station) BackendConfig() BackendConfig { return s.Backend.Data() }

func (s *Station) SetFrontendConfig(cfg FrontendConfig) { s.Frontend = datatypes.NewJSONType(cfg) }

func (s *Station) SetBackendConfig(cfg BackendConfig) { s.Backend = datatypes.NewJSONType(cfg) }

func (s *Station) StorageConfig() StorageConfig { return s.MediaStorage.Data() }

func (s *Station) SetStorageConfig(cfg StorageConfig) { s.MediaStorage = datatypes.NewJSONType(cfg) }

// UsesManualAutoDJ reports whether playlists are scheduled by hand rather than by the AutoDJ.
func (s *Station) UsesManualAutoDJ() bool {
	if s == nil {
		return false
	}
	return s.Backend.Data().UseManualAutoDJ
}

func (s *Station) MarkNeedsRestart() { s.NeedsRestart = true }

func (s *Station) ClearNeedsRestart() { s.NeedsRestart = false }

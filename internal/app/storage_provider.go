package app

import (
	"fmt"

	"github.com/yungbote/stationhub-backend/internal/platform/logger"
	"github.com/yungbote/stationhub-backend/internal/platform/storage"
)

type StorageProviderBootstrapError struct {
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	return fmt.Sprintf("object storage bootstrap failed (mode=%q emulator_host=%q): %v", e.Mode, e.EmulatorHost, e.Cause)
}

func (e *StorageProviderBootstrapError) Unwrap() error { return e.Cause }

var gcsConfigFromEnv = storage.GCSConfigFromEnv

// resolveFilesystems builds the per-station media filesystems. Remote clients are created
// lazily, so only the object storage configuration is validated here.
func resolveFilesystems(log *logger.Logger, cfg Config) (*storage.StationFilesystems, error) {
	gcsCfg, err := gcsConfigFromEnv()
	if err != nil {
		bootErr := &StorageProviderBootstrapError{
			Mode:         string(gcsCfg.Mode),
			EmulatorHost: gcsCfg.EmulatorHost,
			Cause:        err,
		}
		log.Error("Object storage provider selection failed", "mode", gcsCfg.Mode, "emulator_host", gcsCfg.EmulatorHost, "error", err)
		return nil, bootErr
	}
	log.Info("Selecting media storage", "media_root", cfg.MediaRoot, "gcs_mode", gcsCfg.Mode)
	return storage.NewStationFilesystems(log, storage.Config{
		MediaRoot: cfg.MediaRoot,
		CacheDir:  cfg.MediaCacheDir,
		GCS:       gcsCfg,
	}), nil
}

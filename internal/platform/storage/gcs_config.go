package storage

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"google.golang.org/api/option"
)

type GCSMode string

const (
	GCSModeCloud    GCSMode = "gcs"
	GCSModeEmulator GCSMode = "gcs_emulator"
)

type GCSConfig struct {
	Mode         GCSMode
	EmulatorHost string
}

// GCSConfigFromEnv reads OBJECT_STORAGE_MODE and STORAGE_EMULATOR_HOST. An emulator host
// without an explicit mode selects the emulator.
func GCSConfigFromEnv() (GCSConfig, error) {
	cfg := GCSConfig{EmulatorHost: strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST"))}
	raw := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_MODE"))
	switch GCSMode(strings.ToLower(raw)) {
	case "":
		cfg.Mode = GCSModeCloud
		if cfg.EmulatorHost != "" {
			cfg.Mode = GCSModeEmulator
		}
	case GCSModeCloud:
		cfg.Mode = GCSModeCloud
	case GCSModeEmulator:
		cfg.Mode = GCSModeEmulator
	default:
		return cfg, fmt.Errorf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", raw, GCSModeCloud, GCSModeEmulator)
	}
	return cfg, cfg.Validate()
}

func (c GCSConfig) Validate() error {
	switch c.Mode {
	case GCSModeCloud:
		return nil
	case GCSModeEmulator:
		u, err := url.Parse(c.EmulatorHost)
		if c.EmulatorHost == "" || err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", c.EmulatorHost)
		}
		return nil
	default:
		return fmt.Errorf("unsupported object storage mode %q", c.Mode)
	}
}

// ClientOptionsFromEnv builds credentials from GOOGLE_APPLICATION_CREDENTIALS_JSON, falling
// back to GOOGLE_APPLICATION_CREDENTIALS, which may hold inline JSON or a file path.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

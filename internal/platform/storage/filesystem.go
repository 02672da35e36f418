package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

var (
	// ErrPathOutsideRoot is returned for URIs that escape the filesystem root.
	ErrPathOutsideRoot = errors.New("storage: path escapes filesystem root")
	ErrNotExist        = errors.New("storage: file does not exist")
	ErrUnsupported     = errors.New("storage: unsupported adapter")
)

// Filesystem is a station media library.
type Filesystem interface {
	// Upload copies the local file at localPath to dest inside the library.
	Upload(ctx context.Context, localPath, dest string) error
	// LocalPath returns a path on local disk holding the contents of uri.
	LocalPath(ctx context.Context, uri string) (string, error)
	Exists(ctx context.Context, uri string) (bool, error)
}

// cleanURI normalizes a library-relative URI and rejects traversal.
func cleanURI(uri string) (string, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(uri, "\\", "/"))
	if raw == "" {
		return "", fmt.Errorf("%w: empty uri", ErrPathOutsideRoot)
	}
	cleaned := path.Clean("/" + raw)
	for _, part := range strings.Split(raw, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrPathOutsideRoot, uri)
		}
	}
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideRoot, uri)
	}
	return cleaned, nil
}

type Config struct {
	// MediaRoot is the base directory for local libraries without an explicit path.
	MediaRoot string
	// CacheDir holds local copies of remote media.
	CacheDir string
	GCS      GCSConfig
}

// StationFilesystems resolves the media filesystem configured for each station.
type StationFilesystems struct {
	log *logger.Logger
	cfg Config

	mu      sync.Mutex
	clients *gcsClients
}

func NewStationFilesystems(log *logger.Logger, cfg Config) *StationFilesystems {
	if log == nil {
		log = logger.Nop()
	}
	return &StationFilesystems{
		log:     log.With("service", "StationFilesystems"),
		cfg:     cfg,
		clients: newGCSClients(cfg.GCS),
	}
}

// Media returns the media filesystem for st.
func (f *StationFilesystems) Media(ctx context.Context, st *station.Station) (Filesystem, error) {
	if st == nil {
		return nil, fmt.Errorf("storage: nil station")
	}
	sc := st.StorageConfig()
	switch sc.Adapter {
	case station.StorageLocal, "":
		root := strings.TrimSpace(sc.Path)
		if root == "" {
			root = path.Join(f.cfg.MediaRoot, st.ShortName, "media")
		}
		return NewLocal(root), nil
	case station.StorageGCS:
		f.mu.Lock()
		client, err := f.clients.get(ctx)
		f.mu.Unlock()
		if err != nil {
			return nil, err
		}
		cache := path.Join(f.cfg.CacheDir, st.ShortName)
		return newGCS(f.log, client, sc.Bucket, sc.Prefix, cache), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, sc.Adapter)
	}
}

// Close releases shared remote clients.
func (f *StationFilesystems) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients.close()
}

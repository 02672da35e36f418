package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

const gcsTransferTimeout = 2 * time.Minute

type gcsClients struct {
	cfg    GCSConfig
	client *gcs.Client
}

func newGCSClients(cfg GCSConfig) *gcsClients {
	if cfg.Mode == "" {
		cfg.Mode = GCSModeCloud
	}
	return &gcsClients{cfg: cfg}
}

func (c *gcsClients) get(ctx context.Context) (*gcs.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		client *gcs.Client
		err    error
	)
	switch c.cfg.Mode {
	case GCSModeEmulator:
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(c.cfg.EmulatorHost, "/"))
		client, err = gcs.NewClient(ctx, option.WithoutAuthentication())
	default:
		opts := append(ClientOptionsFromEnv(), option.WithScopes(gcs.ScopeReadWrite))
		client, err = gcs.NewClient(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	c.client = client
	return client, nil
}

func (c *gcsClients) close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// GCS stores media in a Cloud Storage bucket. LocalPath downloads objects into a cache dir.
type GCS struct {
	log    *logger.Logger
	client *gcs.Client
	bucket string
	prefix string
	cache  string
}

var _ Filesystem = (*GCS)(nil)

func newGCS(log *logger.Logger, client *gcs.Client, bucket, prefix, cache string) *GCS {
	return &GCS{
		log:    log,
		client: client,
		bucket: strings.TrimSpace(bucket),
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		cache:  cache,
	}
}

func (g *GCS) key(uri string) (string, string, error) {
	rel, err := cleanURI(uri)
	if err != nil {
		return "", "", err
	}
	if g.bucket == "" {
		return "", "", fmt.Errorf("storage: gcs bucket not configured")
	}
	if g.prefix == "" {
		return rel, rel, nil
	}
	return path.Join(g.prefix, rel), rel, nil
}

func (g *GCS) Upload(ctx context.Context, localPath, dest string) error {
	key, _, err := g.key(dest)
	if err != nil {
		return err
	}
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(ctx, gcsTransferTimeout)
	defer cancel()
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if ct := contentTypeFor(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (g *GCS) LocalPath(ctx context.Context, uri string) (string, error) {
	key, rel, err := g.key(uri)
	if err != nil {
		return "", err
	}
	target := filepath.Join(g.cache, filepath.FromSlash(rel))

	ctx, cancel := context.WithTimeout(ctx, gcsTransferTimeout)
	defer cancel()
	obj := g.client.Bucket(g.bucket).Object(key)
	attrs, err := obj.Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotExist, uri)
	}
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(target); err == nil && fi.Size() == attrs.Size && !fi.ModTime().Before(attrs.Updated) {
		return target, nil
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to open GCS reader: %w", err)
	}
	defer r.Close()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	g.log.Debug("cached remote media", "bucket", g.bucket, "key", key, "size", attrs.Size)
	return target, nil
}

func (g *GCS) Exists(ctx context.Context, uri string) (bool, error) {
	key, _, err := g.key(uri)
	if err != nil {
		return false, err
	}
	_, err = g.client.Bucket(g.bucket).Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	return err == nil, err
}

func contentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".mp3":
		return "audio/mpeg"
	case ".aac":
		return "audio/aac"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	default:
		return ""
	}
}

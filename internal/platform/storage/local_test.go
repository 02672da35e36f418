package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

func TestLocalUploadAndResolve(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(src, []byte("id3"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	fs := NewLocal(root)
	if err := fs.Upload(ctx, src, "rock/song.mp3"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	ok, err := fs.Exists(ctx, "rock/song.mp3")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
	p, err := fs.LocalPath(ctx, "rock/song.mp3")
	if err != nil {
		t.Fatalf("LocalPath: %v", err)
	}
	if p != filepath.Join(root, "rock", "song.mp3") {
		t.Fatalf("unexpected local path: %s", p)
	}
	data, err := os.ReadFile(p)
	if err != nil || string(data) != "id3" {
		t.Fatalf("uploaded content: %q err=%v", data, err)
	}

	missing, err := fs.Exists(ctx, "rock/other.mp3")
	if err != nil || missing {
		t.Fatalf("missing file: ok=%v err=%v", missing, err)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	fs := NewLocal(t.TempDir())
	for _, uri := range []string{"../etc/passwd", "a/../../b", "", "   "} {
		if _, err := fs.LocalPath(context.Background(), uri); !errors.Is(err, ErrPathOutsideRoot) {
			t.Fatalf("%q: expected ErrPathOutsideRoot, got %v", uri, err)
		}
	}
}

func TestStationFilesystemsSelectsAdapter(t *testing.T) {
	root := t.TempDir()
	fsys := NewStationFilesystems(nil, Config{MediaRoot: root})

	st := &station.Station{ShortName: "alpha"}
	got, err := fsys.Media(context.Background(), st)
	if err != nil {
		t.Fatalf("Media: %v", err)
	}
	local, ok := got.(*Local)
	if !ok {
		t.Fatalf("default adapter should be local, got %T", got)
	}
	if local.Root() != filepath.Join(root, "alpha", "media") {
		t.Fatalf("unexpected default root: %s", local.Root())
	}

	custom := &station.Station{ShortName: "beta"}
	custom.SetStorageConfig(station.StorageConfig{Adapter: station.StorageLocal, Path: "/srv/beta"})
	got, err = fsys.Media(context.Background(), custom)
	if err != nil || got.(*Local).Root() != "/srv/beta" {
		t.Fatalf("explicit path not honored: %v", err)
	}

	bad := &station.Station{ShortName: "gamma"}
	bad.SetStorageConfig(station.StorageConfig{Adapter: "ftp"})
	if _, err := fsys.Media(context.Background(), bad); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestGCSConfigValidate(t *testing.T) {
	if err := (GCSConfig{Mode: GCSModeCloud}).Validate(); err != nil {
		t.Fatalf("cloud mode: %v", err)
	}
	if err := (GCSConfig{Mode: GCSModeEmulator}).Validate(); err == nil {
		t.Fatalf("emulator without host should fail")
	}
	if err := (GCSConfig{Mode: GCSModeEmulator, EmulatorHost: "http://fake-gcs:4443"}).Validate(); err != nil {
		t.Fatalf("emulator with host: %v", err)
	}
}

func TestGCSConfigFromEnv(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")
	cfg, err := GCSConfigFromEnv()
	if err != nil || cfg.Mode != GCSModeEmulator {
		t.Fatalf("emulator host should imply emulator mode: %+v err=%v", cfg, err)
	}
	t.Setenv("OBJECT_STORAGE_MODE", "s3")
	if _, err := GCSConfigFromEnv(); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

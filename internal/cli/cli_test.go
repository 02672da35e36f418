package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/stationhub-backend/internal/app"
	"github.com/yungbote/stationhub-backend/internal/data/db"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
	"github.com/yungbote/stationhub-backend/internal/webhook"
)

const fixture = `
station:
  name: CLI Radio
  short_name: cliradio
  frontend:
    port: 8100
  mounts:
    - name: live.mp3
  playlists:
    - name: default
`

type cliHarness struct {
	dir   string
	opts  func() *RootOptions
	media string
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	dir := t.TempDir()
	h := &cliHarness{dir: dir, media: filepath.Join(dir, "stations")}
	cfg := app.Config{
		Port:      "0",
		DB:        db.Config{Driver: db.DriverSQLite, SQLitePath: filepath.Join(dir, "cli.db")},
		MediaRoot: h.media,
	}
	h.opts = func() *RootOptions {
		return &RootOptions{NewApp: func(ctx context.Context) (*app.App, error) {
			return app.NewWithConfig(ctx, logger.Nop(), cfg)
		}}
	}
	return h
}

func (h *cliHarness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(h.opts())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	h := newCLIHarness(t)
	if _, err := h.run(t, "--format", "xml", "migrate"); err == nil {
		t.Fatalf("unknown format should fail")
	}
}

func TestSeedThenRestartPending(t *testing.T) {
	h := newCLIHarness(t)
	fx := filepath.Join(h.dir, "station.yml")
	if err := os.WriteFile(fx, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	music := filepath.Join(h.dir, "music")
	if err := os.MkdirAll(music, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(music, "song.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write song: %v", err)
	}

	out, err := h.run(t, "seed", "--fixture", fx, "--music", music)
	if err != nil {
		t.Fatalf("seed: %v (%s)", err, out)
	}
	if !strings.Contains(out, "station cliradio created; media created=1 skipped=0") {
		t.Fatalf("unexpected seed output: %q", out)
	}

	out, err = h.run(t, "--format", "json", "restart-pending")
	if err != nil {
		t.Fatalf("restart-pending: %v", err)
	}
	var pending []pendingStation
	if err := json.Unmarshal([]byte(out), &pending); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(pending) != 1 || pending[0].ShortName != "cliradio" {
		t.Fatalf("seeded station should need a restart: %+v", pending)
	}

	if _, err := h.run(t, "restart-pending", "--ack"); err != nil {
		t.Fatalf("ack: %v", err)
	}
	out, err = h.run(t, "restart-pending")
	if err != nil || strings.TrimSpace(out) != "" {
		t.Fatalf("nothing should be pending after ack: %q %v", out, err)
	}

	out, err = h.run(t, "media-path", "cliradio", "song.mp3")
	if err != nil {
		t.Fatalf("media-path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(h.media, "cliradio", "media", "song.mp3") {
		t.Fatalf("unexpected media path %q", out)
	}

	out, err = h.run(t, "check-ports", "cliradio")
	if err != nil || !strings.Contains(out, "no port conflicts") {
		t.Fatalf("check-ports: %q %v", out, err)
	}
}

func TestMediaPathRequiresURI(t *testing.T) {
	h := newCLIHarness(t)
	fx := filepath.Join(h.dir, "station.yml")
	if err := os.WriteFile(fx, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := h.run(t, "seed", "-f", fx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := h.run(t, "media-path", "cliradio", " "); err == nil {
		t.Fatalf("blank uri should fail")
	}
	if _, err := h.run(t, "media-path", "nosuch", "a.mp3"); err == nil {
		t.Fatalf("unknown station should fail")
	}
}

func TestWatchRestartsNeedsRedis(t *testing.T) {
	h := newCLIHarness(t)
	if _, err := h.run(t, "watch-restarts"); err == nil {
		t.Fatalf("watch-restarts without redis should fail")
	}
}

func TestWebhooksListsMatchingHooks(t *testing.T) {
	h := newCLIHarness(t)
	fx := filepath.Join(h.dir, "station.yml")
	if err := os.WriteFile(fx, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := h.run(t, "seed", "-f", fx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	a, err := h.opts().NewApp(context.Background())
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	st, err := lookupStation(context.Background(), a, "cliradio")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	hooks := []*station.Webhook{
		{StationID: st.ID, Type: "discord", Name: "chat", IsEnabled: true, Triggers: []string{webhook.TriggerSongChanged}},
		{StationID: st.ID, Type: "email", Name: "ops", IsEnabled: true, Triggers: []string{webhook.TriggerStationOffline}},
	}
	if err := a.DB.Create(&hooks).Error; err != nil {
		t.Fatalf("insert webhooks: %v", err)
	}
	a.Close()

	out, err := h.run(t, "webhooks", "cliradio", "--trigger", webhook.TriggerSongChanged)
	if err != nil {
		t.Fatalf("webhooks: %v", err)
	}
	if !strings.Contains(out, "discord\tchat\tno connector") || strings.Contains(out, "ops") {
		t.Fatalf("unexpected webhooks output: %q", out)
	}
}

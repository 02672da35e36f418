package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/stationhub-backend/internal/data/aggregates"
	stationrepo "github.com/yungbote/stationhub-backend/internal/data/repos/station"
	"github.com/yungbote/stationhub-backend/internal/data/repos/testutil"
	"github.com/yungbote/stationhub-backend/internal/data/restart"
	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	httpH "github.com/yungbote/stationhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/stationhub-backend/internal/http/middleware"
	"github.com/yungbote/stationhub-backend/internal/services"
)

const testSecret = "router-test-secret"

type apiHarness struct {
	db     *gorm.DB
	engine *gin.Engine
	token  string
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	stations := stationrepo.NewStationRepo(db, log)
	agg := aggregates.NewStationAggregate(aggregates.StationAggregateDeps{
		Base:     aggregates.BaseDeps{DB: db, Log: log, Listeners: []uow.Listener{restart.New(log)}},
		Stations: stations,
		Media:    stationrepo.NewMediaRepo(db, log),
		Ports:    services.NewPortChecker(log, stations),
	})
	engine := NewRouter(RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, testSecret),
		StationHandler: httpH.NewStationHandler(services.NewStationService(log, stations, agg)),
		HealthHandler:  httpH.NewHealthHandler(nil),
	})
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return &apiHarness{db: db, engine: engine, token: token}
}

func (h *apiHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Message string                  `json:"message"`
		Code    string                  `json:"code"`
		Details []station.PortViolation `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthcheckIsPublic(t *testing.T) {
	h := newAPIHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestAPIRequiresToken(t *testing.T) {
	h := newAPIHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/api/stations/restart-pending", nil)
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestMountLifecycleDrivesRestartFlag(t *testing.T) {
	h := newAPIHarness(t)
	st := testutil.SeedStation(t, h.db, "alpha", false)

	rec := h.do(t, http.MethodPost, "/api/stations/"+st.ID.String()+"/mounts", gin.H{"name": "radio.mp3", "is_public": true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add mount: %d %s", rec.Code, rec.Body.String())
	}
	added := decode[struct {
		Mount        station.Mount `json:"mount"`
		NeedsRestart bool          `json:"needs_restart"`
	}](t, rec)
	if !added.NeedsRestart || added.Mount.Name != "/radio.mp3" {
		t.Fatalf("unexpected add response: %+v", added)
	}

	rec = h.do(t, http.MethodGet, "/api/stations/restart-pending", nil)
	pending := decode[struct {
		Stations []struct {
			ID uuid.UUID `json:"id"`
		} `json:"stations"`
	}](t, rec)
	if len(pending.Stations) != 1 || pending.Stations[0].ID != st.ID {
		t.Fatalf("station should be pending restart: %s", rec.Body.String())
	}

	rec = h.do(t, http.MethodPost, "/api/stations/"+st.ID.String()+"/restart-ack", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ack: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodPatch, "/api/mounts/"+added.Mount.ID.String(), gin.H{"listeners_unique": 12, "listeners_total": 30})
	if rec.Code != http.StatusOK {
		t.Fatalf("listener stats: %d %s", rec.Code, rec.Body.String())
	}
	stats := decode[struct {
		NeedsRestart bool `json:"needs_restart"`
	}](t, rec)
	if stats.NeedsRestart {
		t.Fatalf("listener stats must not flag the station")
	}

	rec = h.do(t, http.MethodDelete, "/api/mounts/"+added.Mount.ID.String(), nil)
	deleted := decode[struct {
		NeedsRestart bool `json:"needs_restart"`
	}](t, rec)
	if rec.Code != http.StatusOK || !deleted.NeedsRestart {
		t.Fatalf("deleting a mount should flag: %d %s", rec.Code, rec.Body.String())
	}
}

func TestErrorEnvelope(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.do(t, http.MethodGet, "/api/stations/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest || decode[errorBody](t, rec).Error.Code != "invalid_station_id" {
		t.Fatalf("bad id: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodGet, "/api/stations/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound || decode[errorBody](t, rec).Error.Code != "not_found" {
		t.Fatalf("missing station: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodPatch, "/api/mounts/"+uuid.NewString(), gin.H{"name": "x"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing mount: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPortConflictReturnsViolations(t *testing.T) {
	h := newAPIHarness(t)
	taken := testutil.SeedStation(t, h.db, "taken", false)
	taken.SetFrontendConfig(station.FrontendConfig{Port: testutil.PtrInt(8000)})
	if err := h.db.Save(taken).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	st := testutil.SeedStation(t, h.db, "beta", false)

	rec := h.do(t, http.MethodPatch, "/api/stations/"+st.ID.String(), gin.H{
		"frontend_config": gin.H{"port": 8000},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d %s", rec.Code, rec.Body.String())
	}
	body := decode[errorBody](t, rec)
	if body.Error.Code != "port_conflict" || len(body.Error.Details) != 1 || body.Error.Details[0].Port != "8000" {
		t.Fatalf("unexpected conflict body: %s", rec.Body.String())
	}
}

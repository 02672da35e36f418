package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/stationhub-backend/internal/domain/aggregates"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/http/response"
	"github.com/yungbote/stationhub-backend/internal/services"
)

type StationHandler struct {
	stations services.StationService
}

func NewStationHandler(stations services.StationService) *StationHandler {
	return &StationHandler{stations: stations}
}

func parseID(c *gin.Context, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, err)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return false
	}
	return true
}

// GET /api/stations/restart-pending
func (h *StationHandler) ListRestartPending(c *gin.Context) {
	list, err := h.stations.ListRestartPending(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, st := range list {
		out = append(out, gin.H{"id": st.ID, "short_name": st.ShortName, "updated_at": st.UpdatedAt})
	}
	response.RespondOK(c, gin.H{"stations": out})
}

// GET /api/stations/:id
func (h *StationHandler) GetStation(c *gin.Context) {
	id, ok := parseID(c, "invalid_station_id")
	if !ok {
		return
	}
	st, err := h.stations.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"station": st})
}

type updateStationRequest struct {
	Name      *string                 `json:"name"`
	IsEnabled *bool                   `json:"is_enabled"`
	Frontend  *station.FrontendConfig `json:"frontend_config"`
	Backend   *station.BackendConfig  `json:"backend_config"`
	Storage   *station.StorageConfig  `json:"media_storage"`
}

// PATCH /api/stations/:id
func (h *StationHandler) UpdateStation(c *gin.Context) {
	id, ok := parseID(c, "invalid_station_id")
	if !ok {
		return
	}
	var req updateStationRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.stations.Update(c.Request.Context(), aggregates.UpdateStationInput{
		StationID: id,
		Name:      req.Name,
		IsEnabled: req.IsEnabled,
		Frontend:  req.Frontend,
		Backend:   req.Backend,
		Storage:   req.Storage,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"station": st})
}

// POST /api/stations/:id/restart-ack
func (h *StationHandler) AcknowledgeRestart(c *gin.Context) {
	id, ok := parseID(c, "invalid_station_id")
	if !ok {
		return
	}
	st, err := h.stations.AcknowledgeRestart(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"station": st})
}

type addMountRequest struct {
	Name          string `json:"name" binding:"required"`
	DisplayName   string `json:"display_name"`
	IsDefault     bool   `json:"is_default"`
	IsPublic      bool   `json:"is_public"`
	AutoDJFormat  string `json:"autodj_format"`
	AutoDJBitrate int    `json:"autodj_bitrate"`
	RelayURL      string `json:"relay_url"`
}

// POST /api/stations/:id/mounts
func (h *StationHandler) AddMount(c *gin.Context) {
	id, ok := parseID(c, "invalid_station_id")
	if !ok {
		return
	}
	var req addMountRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.stations.AddMount(c.Request.Context(), aggregates.AddMountInput{
		StationID:     id,
		Name:          req.Name,
		DisplayName:   req.DisplayName,
		IsDefault:     req.IsDefault,
		IsPublic:      req.IsPublic,
		AutoDJFormat:  req.AutoDJFormat,
		AutoDJBitrate: req.AutoDJBitrate,
		RelayURL:      req.RelayURL,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mount": m, "needs_restart": m.Station != nil && m.Station.NeedsRestart})
}

type updateMountRequest struct {
	Name            *string `json:"name"`
	DisplayName     *string `json:"display_name"`
	IsDefault       *bool   `json:"is_default"`
	IsPublic        *bool   `json:"is_public"`
	AutoDJFormat    *string `json:"autodj_format"`
	AutoDJBitrate   *int    `json:"autodj_bitrate"`
	RelayURL        *string `json:"relay_url"`
	ListenersUnique *int    `json:"listeners_unique"`
	ListenersTotal  *int    `json:"listeners_total"`
}

// PATCH /api/mounts/:id
func (h *StationHandler) UpdateMount(c *gin.Context) {
	id, ok := parseID(c, "invalid_mount_id")
	if !ok {
		return
	}
	var req updateMountRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.stations.UpdateMount(c.Request.Context(), aggregates.UpdateMountInput{
		MountID:         id,
		Name:            req.Name,
		DisplayName:     req.DisplayName,
		IsDefault:       req.IsDefault,
		IsPublic:        req.IsPublic,
		AutoDJFormat:    req.AutoDJFormat,
		AutoDJBitrate:   req.AutoDJBitrate,
		RelayURL:        req.RelayURL,
		ListenersUnique: req.ListenersUnique,
		ListenersTotal:  req.ListenersTotal,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"mount": m, "needs_restart": m.Station != nil && m.Station.NeedsRestart})
}

// DELETE /api/mounts/:id
func (h *StationHandler) DeleteMount(c *gin.Context) {
	id, ok := parseID(c, "invalid_mount_id")
	if !ok {
		return
	}
	st, err := h.stations.DeleteMount(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"station_id": st.ID, "needs_restart": st.NeedsRestart})
}

type addHLSStreamRequest struct {
	Name    string `json:"name" binding:"required"`
	Format  string `json:"format"`
	Bitrate int    `json:"bitrate"`
}

// POST /api/stations/:id/hls-streams
func (h *StationHandler) AddHLSStream(c *gin.Context) {
	id, ok := parseID(c, "invalid_station_id")
	if !ok {
		return
	}
	var req addHLSStreamRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.stations.AddHLSStream(c.Request.Context(), aggregates.AddHLSStreamInput{
		StationID: id,
		Name:      req.Name,
		Format:    req.Format,
		Bitrate:   req.Bitrate,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"hls_stream": s, "needs_restart": s.Station != nil && s.Station.NeedsRestart})
}

// DELETE /api/hls-streams/:id
func (h *StationHandler) DeleteHLSStream(c *gin.Context) {
	id, ok := parseID(c, "invalid_hls_stream_id")
	if !ok {
		return
	}
	st, err := h.stations.DeleteHLSStream(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"station_id": st.ID, "needs_restart": st.NeedsRestart})
}

type updateRemoteRequest struct {
	DisplayName    *string `json:"display_name"`
	URL            *string `json:"url"`
	Mount          *string `json:"mount"`
	EnableAutoDJ   *bool   `json:"enable_autodj"`
	SourceUsername *string `json:"source_username"`
	SourcePassword *string `json:"source_password"`
	SourcePort     *int    `json:"source_port"`
}

// PATCH /api/remotes/:id
func (h *StationHandler) UpdateRemote(c *gin.Context) {
	id, ok := parseID(c, "invalid_remote_id")
	if !ok {
		return
	}
	var req updateRemoteRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.stations.UpdateRemote(c.Request.Context(), aggregates.UpdateRemoteInput{
		RemoteID:       id,
		DisplayName:    req.DisplayName,
		URL:            req.URL,
		Mount:          req.Mount,
		EnableAutoDJ:   req.EnableAutoDJ,
		SourceUsername: req.SourceUsername,
		SourcePassword: req.SourcePassword,
		SourcePort:     req.SourcePort,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"remote": r})
}

type updatePlaylistRequest struct {
	Name                *string `json:"name"`
	Weight              *int    `json:"weight"`
	IsEnabled           *bool   `json:"is_enabled"`
	Order               *string `json:"order"`
	IncludeInAutomation *bool   `json:"include_in_automation"`
}

// PATCH /api/playlists/:id
func (h *StationHandler) UpdatePlaylist(c *gin.Context) {
	id, ok := parseID(c, "invalid_playlist_id")
	if !ok {
		return
	}
	var req updatePlaylistRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.stations.UpdatePlaylist(c.Request.Context(), aggregates.UpdatePlaylistInput{
		PlaylistID:          id,
		Name:                req.Name,
		Weight:              req.Weight,
		IsEnabled:           req.IsEnabled,
		Order:               req.Order,
		IncludeInAutomation: req.IncludeInAutomation,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"playlist": p})
}

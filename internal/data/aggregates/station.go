package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	stationrepo "github.com/yungbote/stationhub-backend/internal/data/repos/station"
	"github.com/yungbote/stationhub-backend/internal/data/uow"
	domainagg "github.com/yungbote/stationhub-backend/internal/domain/aggregates"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
)

// PortValidator reports ports of st that collide with other stations.
type PortValidator interface {
	Check(ctx context.Context, st *station.Station) ([]station.PortViolation, error)
}

// PortConflictError carries the port violations that rejected a station write.
type PortConflictError struct {
	Violations []station.PortViolation
}

func (e *PortConflictError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, " ")
}

func (e *PortConflictError) Is(target error) bool { return target == ErrValidation }

type StationAggregateDeps struct {
	Base BaseDeps

	Stations stationrepo.StationRepo
	Media    stationrepo.MediaRepo
	Ports    PortValidator
}

type stationAggregate struct {
	deps StationAggregateDeps
}

func NewStationAggregate(deps StationAggregateDeps) domainagg.StationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &stationAggregate{deps: deps}
}

func (a *stationAggregate) checkPorts(ctx context.Context, st *station.Station) error {
	if a.deps.Ports == nil {
		return nil
	}
	violations, err := a.deps.Ports.Check(ctx, st)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return &PortConflictError{Violations: violations}
	}
	return nil
}

func (a *stationAggregate) CreateStation(ctx context.Context, in domainagg.CreateStationInput) (*station.Station, error) {
	const op = "Radio.Station.CreateStation"
	name := strings.TrimSpace(in.Name)
	shortName := strings.TrimSpace(in.ShortName)
	if name == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing name", nil)
	}
	if shortName == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing short_name", nil)
	}
	if a.deps.Stations == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "station repos not configured", nil)
	}

	st := &station.Station{
		ID:        uuid.New(),
		Name:      name,
		ShortName: shortName,
		IsEnabled: in.IsEnabled,
	}
	st.SetFrontendConfig(in.Frontend)
	st.SetBackendConfig(in.Backend)
	st.SetStorageConfig(in.Storage)

	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		existing, err := a.deps.Stations.GetByShortName(dbctx.Context{Ctx: ctx}, shortName)
		if err != nil {
			return err
		}
		if existing != nil {
			return ConflictError(fmt.Sprintf("short_name %q already in use", shortName))
		}
		if err := a.checkPorts(ctx, st); err != nil {
			return err
		}
		if err := u.Persist(ctx, st); err != nil {
			return err
		}
		for _, mi := range in.Mounts {
			m, err := newMount(st, mi)
			if err != nil {
				return err
			}
			st.Mounts = append(st.Mounts, m)
			if err := u.Persist(ctx, m); err != nil {
				return err
			}
		}
		for _, pi := range in.Playlists {
			pname := strings.TrimSpace(pi.Name)
			if pname == "" {
				return ValidationError("playlist name is required")
			}
			p := station.NewPlaylist(st, pname)
			p.ID = uuid.New()
			if pi.Type != "" {
				p.Type = pi.Type
			}
			if pi.Weight > 0 {
				p.Weight = pi.Weight
			}
			p.IsEnabled = pi.IsEnabled
			st.Playlists = append(st.Playlists, p)
			if err := u.Persist(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (a *stationAggregate) UpdateStation(ctx context.Context, in domainagg.UpdateStationInput) (*station.Station, error) {
	const op = "Radio.Station.UpdateStation"
	if in.StationID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing station_id", nil)
	}
	var st station.Station
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		if err := loadOrNotFound(ctx, u, &st, in.StationID, "station"); err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ValidationError("name cannot be empty")
			}
			st.Name = name
		}
		if in.IsEnabled != nil {
			st.IsEnabled = *in.IsEnabled
		}
		if in.Storage != nil {
			st.SetStorageConfig(*in.Storage)
		}
		portsChanged := false
		if in.Frontend != nil {
			st.SetFrontendConfig(*in.Frontend)
			portsChanged = true
		}
		if in.Backend != nil {
			st.SetBackendConfig(*in.Backend)
			portsChanged = true
		}
		if portsChanged {
			return a.checkPorts(ctx, &st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (a *stationAggregate) AddMount(ctx context.Context, in domainagg.AddMountInput) (*station.Mount, error) {
	const op = "Radio.Station.AddMount"
	if in.StationID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing station_id", nil)
	}
	var m *station.Mount
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		var st station.Station
		if err := loadOrNotFound(ctx, u, &st, in.StationID, "station"); err != nil {
			return err
		}
		var err error
		if m, err = newMount(&st, in); err != nil {
			return err
		}
		return u.Persist(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (a *stationAggregate) UpdateMount(ctx context.Context, in domainagg.UpdateMountInput) (*station.Mount, error) {
	const op = "Radio.Station.UpdateMount"
	if in.MountID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing mount_id", nil)
	}
	var m station.Mount
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		if err := loadOrNotFound(ctx, u, &m, in.MountID, "mount", "Station"); err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ValidationError("mount name cannot be empty")
			}
			m.Name = name
		}
		if in.DisplayName != nil {
			m.DisplayName = strings.TrimSpace(*in.DisplayName)
		}
		if in.IsDefault != nil {
			m.IsDefault = *in.IsDefault
		}
		if in.IsPublic != nil {
			m.IsPublic = *in.IsPublic
		}
		if in.AutoDJFormat != nil {
			m.AutoDJFormat = strings.TrimSpace(*in.AutoDJFormat)
		}
		if in.AutoDJBitrate != nil {
			if *in.AutoDJBitrate < 0 {
				return ValidationError("autodj_bitrate must be >= 0")
			}
			m.AutoDJBitrate = *in.AutoDJBitrate
		}
		if in.RelayURL != nil {
			m.RelayURL = strings.TrimSpace(*in.RelayURL)
		}
		if in.ListenersUnique != nil {
			m.ListenersUnique = *in.ListenersUnique
		}
		if in.ListenersTotal != nil {
			m.ListenersTotal = *in.ListenersTotal
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (a *stationAggregate) DeleteMount(ctx context.Context, mountID uuid.UUID) (*station.Station, error) {
	const op = "Radio.Station.DeleteMount"
	if mountID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing mount_id", nil)
	}
	var m station.Mount
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		if err := loadOrNotFound(ctx, u, &m, mountID, "mount", "Station"); err != nil {
			return err
		}
		return u.Remove(ctx, &m)
	})
	if err != nil {
		return nil, err
	}
	return m.Station, nil
}

func (a *stationAggregate) AddHLSStream(ctx context.Context, in domainagg.AddHLSStreamInput) (*station.HLSStream, error) {
	const op = "Radio.Station.AddHLSStream"
	if in.StationID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing station_id", nil)
	}
	name := strings.TrimSpace(in.Name)
	format := strings.ToLower(strings.TrimSpace(in.Format))
	if name == "" || format == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "name and format are required", nil)
	}
	if in.Bitrate <= 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "bitrate must be > 0", nil)
	}
	var h *station.HLSStream
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		var st station.Station
		if err := loadOrNotFound(ctx, u, &st, in.StationID, "station"); err != nil {
			return err
		}
		h = station.NewHLSStream(&st, name, format, in.Bitrate)
		return u.Persist(ctx, h)
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (a *stationAggregate) DeleteHLSStream(ctx context.Context, streamID uuid.UUID) (*station.Station, error) {
	const op = "Radio.Station.DeleteHLSStream"
	if streamID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing stream_id", nil)
	}
	var h station.HLSStream
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		if err := loadOrNotFound(ctx, u, &h, streamID, "hls stream", "Station"); err != nil {
			return err
		}
		return u.Remove(ctx, &h)
	})
	if err != nil {
		return nil, err
	}
	return h.Station, nil
}

func (a *stationAggregate) UpdateRemote(ctx context.Context, in domainagg.UpdateRemoteInput) (*station.Remote, error) {
	const op = "Radio.Station.UpdateRemote"
	if in.RemoteID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing remote_id", nil)
	}
	var r station.Remote
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		if err := loadOrNotFound(ctx, u, &r, in.RemoteID, "remote", "Station"); err != nil {
			return err
		}
		if in.DisplayName != nil {
			r.DisplayName = strings.TrimSpace(*in.DisplayName)
		}
		if in.URL != nil {
			url := strings.TrimSpace(*in.URL)
			if url == "" {
				return ValidationError("remote url cannot be empty")
			}
			r.URL = url
		}
		if in.Mount != nil {
			r.Mount = strings.TrimSpace(*in.Mount)
		}
		if in.EnableAutoDJ != nil {
			r.EnableAutoDJ = *in.EnableAutoDJ
		}
		if in.SourceUsername != nil {
			r.SourceUsername = strings.TrimSpace(*in.SourceUsername)
		}
		if in.SourcePassword != nil {
			r.SourcePassword = *in.SourcePassword
		}
		if in.SourcePort != nil {
			r.SourcePort = in.SourcePort
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (a *stationAggregate) UpdatePlaylist(ctx context.Context, in domainagg.UpdatePlaylistInput) (*station.Playlist, error) {
	const op = "Radio.Station.UpdatePlaylist"
	if in.PlaylistID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing playlist_id", nil)
	}
	var p station.Playlist
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		if err := loadOrNotFound(ctx, u, &p, in.PlaylistID, "playlist", "Station"); err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ValidationError("playlist name cannot be empty")
			}
			p.Name = name
		}
		if in.Weight != nil {
			if *in.Weight < 1 {
				return ValidationError("playlist weight must be >= 1")
			}
			p.Weight = *in.Weight
		}
		if in.IsEnabled != nil {
			p.IsEnabled = *in.IsEnabled
		}
		if in.Order != nil {
			p.Order = strings.TrimSpace(*in.Order)
		}
		if in.IncludeInAutomation != nil {
			p.IncludeInAutomation = *in.IncludeInAutomation
		}
		if in.PlayedAt != nil {
			p.PlayedAt = *in.PlayedAt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *stationAggregate) ImportMedia(ctx context.Context, in domainagg.ImportMediaInput) (domainagg.ImportMediaResult, error) {
	const op = "Radio.Station.ImportMedia"
	var out domainagg.ImportMediaResult
	if in.StationID == uuid.Nil || in.PlaylistID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "station_id and playlist_id are required", nil)
	}
	if a.deps.Media == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "media repo not configured", nil)
	}
	weight := in.Weight
	if weight <= 0 {
		weight = 1
	}
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		var p station.Playlist
		if err := loadOrNotFound(ctx, u, &p, in.PlaylistID, "playlist"); err != nil {
			return err
		}
		if p.StationID != in.StationID {
			return InvariantError("playlist does not belong to station")
		}
		seen := map[string]struct{}{}
		for _, f := range in.Files {
			path := strings.TrimSpace(f.Path)
			if path == "" {
				return ValidationError("media path is required")
			}
			if _, dup := seen[path]; dup {
				out.Skipped++
				continue
			}
			seen[path] = struct{}{}
			existing, err := a.deps.Media.GetByPath(dbctx.Context{Ctx: ctx}, in.StationID, path)
			if err != nil {
				return err
			}
			if existing != nil {
				out.Skipped++
				continue
			}
			m := &station.Media{
				ID:        uuid.New(),
				StationID: in.StationID,
				Path:      path,
				Title:     strings.TrimSpace(f.Title),
				Size:      f.Size,
				Checksum:  f.Checksum,
			}
			pm := station.NewPlaylistMedia(&p, m)
			pm.Weight = weight
			if err := u.Persist(ctx, m); err != nil {
				return err
			}
			if err := u.Persist(ctx, pm); err != nil {
				return err
			}
			out.Created++
		}
		return nil
	})
	if err != nil {
		return domainagg.ImportMediaResult{}, err
	}
	return out, nil
}

func (a *stationAggregate) AcknowledgeRestart(ctx context.Context, stationID uuid.UUID) (*station.Station, error) {
	const op = "Radio.Station.AcknowledgeRestart"
	if stationID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing station_id", nil)
	}
	var st station.Station
	err := executeWrite(ctx, a.deps.Base, op, func(u *uow.UnitOfWork) error {
		if err := loadOrNotFound(ctx, u, &st, stationID, "station"); err != nil {
			return err
		}
		st.ClearNeedsRestart()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func newMount(st *station.Station, in domainagg.AddMountInput) (*station.Mount, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ValidationError("mount name is required")
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if in.AutoDJBitrate < 0 {
		return nil, ValidationError("autodj_bitrate must be >= 0")
	}
	m := station.NewMount(st, name)
	m.ID = uuid.New()
	m.DisplayName = strings.TrimSpace(in.DisplayName)
	m.IsDefault = in.IsDefault
	m.IsPublic = in.IsPublic
	m.AutoDJFormat = strings.TrimSpace(in.AutoDJFormat)
	m.AutoDJBitrate = in.AutoDJBitrate
	m.RelayURL = strings.TrimSpace(in.RelayURL)
	return m, nil
}

func loadOrNotFound(ctx context.Context, u *uow.UnitOfWork, dest any, id uuid.UUID, what string, preloads ...string) error {
	err := u.Load(ctx, dest, id, preloads...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError(fmt.Sprintf("%s not found: %s", what, id))
	}
	return err
}

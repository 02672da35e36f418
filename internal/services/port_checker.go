package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	stationrepo "github.com/yungbote/stationhub-backend/internal/data/repos/station"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/dbctx"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

// PortChecker rejects station ports already claimed by another station.
type PortChecker struct {
	log      *logger.Logger
	stations stationrepo.StationRepo
}

func NewPortChecker(log *logger.Logger, stations stationrepo.StationRepo) *PortChecker {
	return &PortChecker{log: log.With("service", "PortChecker"), stations: stations}
}

func (c *PortChecker) Check(ctx context.Context, st *station.Station) ([]station.PortViolation, error) {
	if st == nil {
		return nil, nil
	}
	used, err := c.stations.UsedPorts(dbctx.Context{Ctx: ctx}, st.ID)
	if err != nil {
		return nil, fmt.Errorf("load used ports: %w", err)
	}
	violations := CheckPorts(st, used)
	if len(violations) > 0 {
		c.log.Info("station port conflict", "station", st.ShortName, "violations", len(violations))
	}
	return violations, nil
}

// CheckPorts compares the frontend, DJ and telnet ports of st against used. The DJ port
// also needs the port above it free.
func CheckPorts(st *station.Station, used map[int]uuid.UUID) []station.PortViolation {
	fe := st.FrontendConfig()
	be := st.BackendConfig()
	checks := []struct {
		field string
		port  *int
	}{
		{station.PortFieldFrontend, fe.Port},
		{station.PortFieldDJ, be.DJPort},
		{station.PortFieldTelnet, be.TelnetPort},
	}

	var out []station.PortViolation
	for _, chk := range checks {
		if chk.port == nil {
			continue
		}
		port := *chk.port
		if _, taken := used[port]; taken {
			out = append(out, station.NewPortViolation(chk.field, strconv.Itoa(port)))
		}
		if chk.field == station.PortFieldDJ {
			if _, taken := used[port+1]; taken {
				out = append(out, station.NewPortViolation(chk.field, fmt.Sprintf("%d (%d + 1)", port+1, port)))
			}
		}
	}
	return out
}

package liquidsoap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/stationhub-backend/internal/domain/station"
	"github.com/yungbote/stationhub-backend/internal/platform/logger"
)

var ErrNoURI = errors.New("liquidsoap: no uri provided")

// CopyCommand resolves a media URI to a file Liquidsoap can read from local disk.
type CopyCommand struct {
	log *logger.Logger
	fs  MediaFilesystems
}

var _ Command = (*CopyCommand)(nil)

func NewCopyCommand(log *logger.Logger, fs MediaFilesystems) *CopyCommand {
	if log == nil {
		log = logger.Nop()
	}
	return &CopyCommand{log: log.With("command", "copy"), fs: fs}
}

func (c *CopyCommand) Run(ctx context.Context, st *station.Station, asAutoDJ bool, payload map[string]any) (string, error) {
	uri := payloadString(payload, "uri")
	if uri == "" {
		return "", ErrNoURI
	}
	fs, err := c.fs.Media(ctx, st)
	if err != nil {
		return "", fmt.Errorf("media filesystem for station %s: %w", st.ShortName, err)
	}
	p, err := fs.LocalPath(ctx, uri)
	if err != nil {
		return "", err
	}
	c.log.Debug("resolved media uri", "station", st.ShortName, "uri", uri, "autodj", asAutoDJ)
	return p, nil
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	switch v := payload[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}

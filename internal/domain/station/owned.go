package station

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// OwnedKind enumerates the station-owned entity kinds that can affect the streaming backend.
type OwnedKind string

const (
	KindMount     OwnedKind = "mount"
	KindHLSStream OwnedKind = "hls_stream"
	KindRemote    OwnedKind = "remote"
	KindPlaylist  OwnedKind = "playlist"
)

var ErrMissingOwner = errors.New("station relationship not loaded")

// Owned is implemented only by the entity types in this package that belong to a Station.
type Owned interface {
	OwnedKind() OwnedKind
	// Owner returns the loaded owning station, or ErrMissingOwner.
	Owner() (*Station, error)
	owned()
}

var (
	_ Owned = (*Mount)(nil)
	_ Owned = (*HLSStream)(nil)
	_ Owned = (*Remote)(nil)
	_ Owned = (*Playlist)(nil)
)

func resolveOwner(kind OwnedKind, id uuid.UUID, st *Station) (*Station, error) {
	if st == nil {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrMissingOwner)
	}
	return st, nil
}

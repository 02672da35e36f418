package restart

import (
	"errors"
	"fmt"

	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

// ErrUnclassifiable marks a mutation whose relevance could not be decided.
// It must abort the commit rather than let a restart go missing.
var ErrUnclassifiable = errors.New("restart: mutation cannot be classified")

// Verdict is the outcome of classifying one mutation.
type Verdict struct {
	Relevant bool
	Kind     station.OwnedKind
	Station  *station.Station
}

type relevanceRule func(o station.Owned) (bool, error)

var relevanceRules = map[station.OwnedKind]relevanceRule{
	station.KindMount:     always,
	station.KindHLSStream: always,
	station.KindRemote:    editableRemote,
	station.KindPlaylist:  manualPlaylist,
}

func always(station.Owned) (bool, error) { return true, nil }

func editableRemote(o station.Owned) (bool, error) {
	r, ok := o.(*station.Remote)
	if !ok {
		return false, fmt.Errorf("remote rule applied to %T", o)
	}
	return r.IsEditable(), nil
}

func manualPlaylist(o station.Owned) (bool, error) {
	p, ok := o.(*station.Playlist)
	if !ok {
		return false, fmt.Errorf("playlist rule applied to %T", o)
	}
	st, err := p.Owner()
	if err != nil {
		return false, err
	}
	return st.UsesManualAutoDJ(), nil
}

// Classify decides whether m requires its owning station to restart.
// Anything that is not a station-owned entity, the Station itself included, is not relevant.
func Classify(m uow.Mutation) (Verdict, error) {
	owned, ok := m.Entity.(station.Owned)
	if !ok || owned == nil {
		return Verdict{}, nil
	}
	kind := owned.OwnedKind()
	rule, ok := relevanceRules[kind]
	if !ok {
		return Verdict{}, nil
	}
	relevant, err := rule(owned)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s %s: %w", ErrUnclassifiable, m.Op, kind, err)
	}
	if !relevant {
		return Verdict{Kind: kind}, nil
	}
	st, err := owned.Owner()
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s %s: %w", ErrUnclassifiable, m.Op, kind, err)
	}
	return Verdict{Relevant: true, Kind: kind, Station: st}, nil
}

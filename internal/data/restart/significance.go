package restart

import (
	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

// SignificanceSource reports columns whose changes never warrant a restart.
// Unknown columns must be reported as not ignored.
type SignificanceSource interface {
	Ignored(kind station.OwnedKind, field string) bool
}

// FilterSignificant drops ignored columns from an update's change set. It reports
// suppressed when nothing significant is left, including when changes is empty.
func FilterSignificant(src SignificanceSource, kind station.OwnedKind, changes uow.ChangeSet) (uow.ChangeSet, bool) {
	if len(changes) == 0 {
		return nil, true
	}
	out := make(uow.ChangeSet, len(changes))
	for field, change := range changes {
		if src != nil && src.Ignored(kind, field) {
			continue
		}
		out[field] = change
	}
	if len(out) == 0 {
		return nil, true
	}
	return out, false
}

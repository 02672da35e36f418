package station

// insignificantFields lists, per owned kind, the columns whose changes never affect the
// streaming backend: listener statistics, scheduler bookkeeping and audit timestamps.
var insignificantFields = map[OwnedKind]map[string]struct{}{
	KindMount: {
		"listeners_unique": {},
		"listeners_total":  {},
		"created_at":       {},
		"updated_at":       {},
	},
	KindHLSStream: {
		"listeners":  {},
		"created_at": {},
		"updated_at": {},
	},
	KindRemote: {
		"listeners_unique": {},
		"listeners_total":  {},
		"created_at":       {},
		"updated_at":       {},
	},
	KindPlaylist: {
		"played_at":      {},
		"queue_reset_at": {},
		"queue":          {},
		"created_at":     {},
		"updated_at":     {},
	},
}

// SignificanceTable answers whether a column change is ignored for restart purposes.
type SignificanceTable map[OwnedKind]map[string]struct{}

// Significance is the table declared alongside the entity schemas above.
var Significance = SignificanceTable(insignificantFields)

// Ignored reports whether field is tagged insignificant for kind.
// Unknown kinds and fields are significant.
func (t SignificanceTable) Ignored(kind OwnedKind, field string) bool {
	fields, ok := t[kind]
	if !ok {
		return false
	}
	_, ok = fields[field]
	return ok
}

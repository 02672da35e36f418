package restart

import (
	"testing"

	"github.com/yungbote/stationhub-backend/internal/data/uow"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

func changes(fields ...string) uow.ChangeSet {
	cs := uow.ChangeSet{}
	for _, f := range fields {
		cs[f] = uow.FieldChange{Old: 0, New: 1}
	}
	return cs
}

func TestFilterSignificant(t *testing.T) {
	src := station.Significance
	cases := []struct {
		name       string
		kind       station.OwnedKind
		changes    uow.ChangeSet
		suppressed bool
		kept       []string
	}{
		{name: "listener stats only", kind: station.KindMount, changes: changes("listeners_total", "listeners_unique"), suppressed: true},
		{name: "timestamps only", kind: station.KindMount, changes: changes("updated_at"), suppressed: true},
		{name: "mixed keeps significant", kind: station.KindMount, changes: changes("listeners_total", "name"), kept: []string{"name"}},
		{name: "playlist scheduler bookkeeping", kind: station.KindPlaylist, changes: changes("played_at", "queue", "queue_reset_at"), suppressed: true},
		{name: "playlist weight", kind: station.KindPlaylist, changes: changes("weight", "played_at"), kept: []string{"weight"}},
		{name: "hls listeners", kind: station.KindHLSStream, changes: changes("listeners"), suppressed: true},
		{name: "unknown column is significant", kind: station.KindRemote, changes: changes("brand_new_column"), kept: []string{"brand_new_column"}},
		{name: "empty change set", kind: station.KindMount, changes: uow.ChangeSet{}, suppressed: true},
	}
	for _, tc := range cases {
		out, suppressed := FilterSignificant(src, tc.kind, tc.changes)
		if suppressed != tc.suppressed {
			t.Fatalf("%s: suppressed want=%v got=%v", tc.name, tc.suppressed, suppressed)
		}
		got := out.Fields()
		if len(got) != len(tc.kept) {
			t.Fatalf("%s: kept want=%v got=%v", tc.name, tc.kept, got)
		}
		for i := range got {
			if got[i] != tc.kept[i] {
				t.Fatalf("%s: kept want=%v got=%v", tc.name, tc.kept, got)
			}
		}
	}
}

func TestFilterSignificantDoesNotMutateInput(t *testing.T) {
	in := changes("listeners_total", "name")
	FilterSignificant(station.Significance, station.KindMount, in)
	if len(in) != 2 {
		t.Fatalf("input change set was modified: %v", in.Fields())
	}
}

func TestSignificanceTableUnknownKind(t *testing.T) {
	if station.Significance.Ignored(station.OwnedKind("nope"), "updated_at") {
		t.Fatalf("unknown kind must report every column as significant")
	}
}

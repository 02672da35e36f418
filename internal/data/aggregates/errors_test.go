package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/stationhub-backend/internal/data/restart"
	"github.com/yungbote/stationhub-backend/internal/data/uow"
	domainagg "github.com/yungbote/stationhub-backend/internal/domain/aggregates"
	"github.com/yungbote/stationhub-backend/internal/domain/station"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_UnclassifiableIsPreconditionFailed(t *testing.T) {
	cause := fmt.Errorf("%w: delete mount: %w", restart.ErrUnclassifiable, station.ErrMissingOwner)
	err := MapError("op", cause)
	if !domainagg.IsCode(err, domainagg.CodePreconditionFailed) {
		t.Fatalf("expected precondition_failed code, got %q (%v)", domainagg.CodeOf(err), err)
	}
	if !errors.Is(err, station.ErrMissingOwner) {
		t.Fatalf("cause chain lost: %v", err)
	}
}

func TestMapError_NotManagedIsInvariantViolation(t *testing.T) {
	err := MapError("op", fmt.Errorf("stage restart: %w", uow.ErrNotManaged))
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant_violation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PortConflictIsValidation(t *testing.T) {
	err := MapError("op", &PortConflictError{Violations: []station.PortViolation{
		station.NewPortViolation(station.PortFieldFrontend, "8000"),
	}})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
	var pc *PortConflictError
	if !errors.As(err, &pc) || len(pc.Violations) != 1 {
		t.Fatalf("violations not reachable through the mapped error")
	}
}

func TestMapError_SQLiteUniqueIsConflict(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: station.short_name"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_DriverFailures(t *testing.T) {
	cases := []struct {
		err  error
		want domainagg.ErrorCode
	}{
		{&pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{&pgconn.PgError{Code: "40P01"}, domainagg.CodeRetryable},
		{&pgconn.PgError{Code: "23503"}, domainagg.CodePreconditionFailed},
		{fmt.Errorf("flush: %w", &pgconn.PgError{Code: "42P01"}), domainagg.CodeInternal},
		{errors.New("database is locked (5) (SQLITE_BUSY)"), domainagg.CodeRetryable},
		{errors.New("FOREIGN KEY constraint failed"), domainagg.CodePreconditionFailed},
		{gorm.ErrDuplicatedKey, domainagg.CodeConflict},
	}
	for _, tc := range cases {
		if got := domainagg.CodeOf(MapError("Radio.Station.UpdateStation", tc.err)); got != tc.want {
			t.Fatalf("%v: want=%s got=%s", tc.err, tc.want, got)
		}
	}
}

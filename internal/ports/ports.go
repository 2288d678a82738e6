package ports

import (
	"context"
	"time"

	"duescope/internal/domain"
)

// CoverageReconciler is the engine surface consumed by the HTTP adapter and
// the report runner. Zero from/to values mean an open-ended window.
type CoverageReconciler interface {
	ResolveMembershipPeriods(ctx context.Context, memberID string, from, to time.Time) ([]domain.MembershipPeriod, error)
	ReconcileCoverage(ctx context.Context, memberID string, from, to time.Time) (domain.TimelineResult, error)
}

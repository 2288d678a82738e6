package ports

import (
	"context"
	"time"

	"duescope/internal/domain"
)

// MemberRepository reads members and member populations for report runs.
type MemberRepository interface {
	// Get returns domain.ErrNotFound for unknown members.
	Get(ctx context.Context, memberID string) (domain.Member, error)
	// List returns active members, optionally restricted to a chapter or to
	// members whose active dues schedule uses the given cadence.
	List(ctx context.Context, chapter string, cadence domain.BillingCadence) ([]domain.Member, error)
}

// MembershipRepository reads the raw membership rows periods are derived
// from, ordered by start date.
type MembershipRepository interface {
	ListByMember(ctx context.Context, memberID string) ([]domain.MembershipRecord, error)
}

// InvoiceRepository reads invoice coverage intervals for a billing party.
// Invoices without both coverage dates are excluded at the source. Zero
// from/to values mean no bound on that side.
type InvoiceRepository interface {
	ListCoverage(ctx context.Context, billingParty string, from, to time.Time) ([]domain.CoverageInterval, error)
}

// DuesScheduleRepository reads the active dues schedule used to price
// catch-up periods. found is false when the member has none.
type DuesScheduleRepository interface {
	ActiveSchedule(ctx context.Context, memberID string) (schedule domain.DuesSchedule, found bool, err error)
}

// CadenceResolver determines the billing cadence in effect for a member
// during a period. Returns CadenceUnknown (and no error) when it cannot be
// determined; errors are reserved for infrastructure failures.
type CadenceResolver interface {
	Resolve(ctx context.Context, memberID string, periodStart, periodEnd time.Time) (domain.BillingCadence, error)
}

// Package coverage implements the billing coverage reconciliation engine:
// it reconstructs a member's active membership timeline, reconciles it
// against invoiced coverage, classifies the uncovered gaps, flags anomalous
// billing patterns, and proposes calendar-aligned catch-up periods that
// would close every gap. The engine is read-only and stateless; proposing
// periods never creates invoices.
package coverage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"duescope/internal/domain"
	"duescope/internal/interval"
	"duescope/internal/ports"
)

type Service struct {
	members     ports.MemberRepository
	memberships ports.MembershipRepository
	invoices    ports.InvoiceRepository
	schedules   ports.DuesScheduleRepository
	cadence     ports.CadenceResolver
	log         *zap.Logger

	// now is swappable so tests can pin "today" for open-ended memberships.
	now func() time.Time
}

func New(
	members ports.MemberRepository,
	memberships ports.MembershipRepository,
	invoices ports.InvoiceRepository,
	schedules ports.DuesScheduleRepository,
	cadence ports.CadenceResolver,
	log *zap.Logger,
) *Service {
	return &Service{
		members:     members,
		memberships: memberships,
		invoices:    invoices,
		schedules:   schedules,
		cadence:     cadence,
		log:         log,
		now:         time.Now,
	}
}

// ResolveMembershipPeriods returns the member's active intervals in
// ascending start order, clipped to [from, to] when supplied. An empty
// result is valid, not an error.
func (s *Service) ResolveMembershipPeriods(ctx context.Context, memberID string, from, to time.Time) ([]domain.MembershipPeriod, error) {
	records, err := s.memberships.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list memberships for %s: %w", memberID, err)
	}
	return resolvePeriods(records, interval.DateOnly(from), interval.DateOnly(to), interval.DateOnly(s.now())), nil
}

// ReconcileCoverage runs the full reconciliation for one member: periods,
// coverage mapping, gap detection, pattern anomalies, catch-up proposal and
// summary statistics. Members without a billing party or without membership
// periods yield the canonical empty result.
func (s *Service) ReconcileCoverage(ctx context.Context, memberID string, from, to time.Time) (domain.TimelineResult, error) {
	member, err := s.members.Get(ctx, memberID)
	if err != nil {
		return domain.TimelineResult{}, fmt.Errorf("get member %s: %w", memberID, err)
	}
	if member.BillingParty == "" {
		s.log.Info("member has no billing party, returning empty coverage", zap.String("member", memberID))
		return domain.EmptyTimelineResult(), nil
	}

	periods, err := s.ResolveMembershipPeriods(ctx, memberID, from, to)
	if err != nil {
		return domain.TimelineResult{}, err
	}
	if len(periods) == 0 {
		return domain.EmptyTimelineResult(), nil
	}

	invoices, err := s.invoices.ListCoverage(ctx, member.BillingParty, interval.DateOnly(from), interval.DateOnly(to))
	if err != nil {
		return domain.TimelineResult{}, fmt.Errorf("list invoice coverage for %s: %w", member.BillingParty, err)
	}

	timeline := []domain.CoverageInterval{}
	allGaps := []domain.Gap{}
	stats := domain.CoverageStats{OutstandingAmount: decimal.Zero}

	for _, period := range periods {
		stats.ActiveDays += interval.DaysInclusive(period.Start, period.End)

		retained := mapCoverage(invoices, period)
		timeline = append(timeline, retained...)
		for _, cov := range retained {
			days := interval.DaysInclusive(cov.Start, cov.End)
			stats.CoveredDays += days
			if cov.PaymentStatus != domain.PaymentPaid {
				stats.UnpaidCoverageDays += days
				stats.OutstandingAmount = stats.OutstandingAmount.Add(cov.OutstandingAmount)
			}
		}

		cadence, err := s.cadence.Resolve(ctx, memberID, period.Start, period.End)
		if err != nil {
			// Non-fatal: classification degrades to duration-only thresholds
			// and anomaly detection is skipped for this period.
			s.log.Warn("billing cadence unresolved",
				zap.String("member", memberID), zap.Error(err))
			cadence = domain.CadenceUnknown
		}

		allGaps = append(allGaps, detectGaps(period, retained, cadence)...)
		if cadence == domain.CadenceDaily {
			allGaps = append(allGaps, detectPatternAnomalies(retained)...)
		}
	}

	for _, gap := range allGaps {
		stats.GapDays += gap.Days
	}
	if stats.ActiveDays > 0 {
		stats.CoveragePercent = float64(stats.CoveredDays) / float64(stats.ActiveDays) * 100
	}

	catchup, err := s.planCatchup(ctx, memberID, allGaps)
	if err != nil {
		return domain.TimelineResult{}, err
	}

	return domain.TimelineResult{
		Timeline: timeline,
		Gaps:     allGaps,
		Stats:    stats,
		Catchup:  catchup,
	}, nil
}

// planCatchup prices the periods needed to fill all gaps using the member's
// active dues schedule. Gaps without a schedule are reported but not priced.
func (s *Service) planCatchup(ctx context.Context, memberID string, gaps []domain.Gap) (domain.CatchupPlan, error) {
	plan := domain.CatchupPlan{Periods: []domain.CatchupPeriod{}, TotalAmount: decimal.Zero}

	if len(gaps) == 0 {
		plan.Summary = "no catch-up required"
		return plan, nil
	}

	schedule, found, err := s.schedules.ActiveSchedule(ctx, memberID)
	if err != nil {
		return plan, fmt.Errorf("active dues schedule for %s: %w", memberID, err)
	}
	if !found {
		plan.Summary = "no active dues schedule"
		return plan, nil
	}

	for _, gap := range gaps {
		for _, period := range ProposeCatchupPeriods(gap, schedule.Cadence, schedule.Rate) {
			plan.Periods = append(plan.Periods, period)
			plan.TotalAmount = plan.TotalAmount.Add(period.Amount)
		}
	}
	plan.Required = len(plan.Periods) > 0
	plan.Summary = fmt.Sprintf("%d period(s) needed - %s billing", len(plan.Periods), schedule.Cadence)
	return plan, nil
}

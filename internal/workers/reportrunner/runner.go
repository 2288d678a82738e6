// Package reportrunner executes queued batch reconciliation runs in the
// background: it claims runs from the report store, reconciles every member
// in the run's population concurrently and persists one row per member.
package reportrunner

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"duescope/internal/domain"
	"duescope/internal/ports"
	"duescope/internal/services/coverage"
)

// Processor reconciles every member of one report run.
type Processor struct {
	Repo    ports.ReportRepository
	Members ports.MemberRepository
	Engine  ports.CoverageReconciler
	Log     *zap.Logger

	// Concurrency bounds parallel member reconciliations. Values below 1
	// fall back to serial processing.
	Concurrency int
}

// Run polls for queued report runs and processes them until ctx is done.
func Run(ctx context.Context, proc Processor, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				run, found, err := proc.Repo.ClaimNext(ctx)
				if err != nil {
					proc.Log.Error("claim report run", zap.Error(err))
					break
				}
				if !found {
					break
				}
				proc.Process(ctx, run)
			}
		}
	}
}

// Process executes one claimed run to completion. Individual member failures
// are recorded as error rows and counted; only population-level failures
// fail the whole run.
func (p Processor) Process(ctx context.Context, run ports.ReportRun) {
	started := time.Now()
	members, err := p.Members.List(ctx, run.Params.Chapter, run.Params.Cadence)
	if err != nil {
		p.Log.Error("list report population", zap.String("run", run.ID.String()), zap.Error(err))
		if err := p.Repo.MarkFailed(ctx, run.ID, fmt.Sprintf("list members: %v", err)); err != nil {
			p.Log.Error("mark run failed", zap.Error(err))
		}
		return
	}

	limit := p.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	failed := 0

	for _, member := range members {
		member := member
		g.Go(func() error {
			row, memberErr := p.buildRow(gctx, run, member)
			if memberErr != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			if err := p.Repo.SaveRow(gctx, row); err != nil {
				return fmt.Errorf("save row for %s: %w", member.ID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.Log.Error("report run aborted", zap.String("run", run.ID.String()), zap.Error(err))
		if err := p.Repo.MarkFailed(ctx, run.ID, err.Error()); err != nil {
			p.Log.Error("mark run failed", zap.Error(err))
		}
		return
	}

	if err := p.Repo.MarkCompleted(ctx, run.ID, len(members), failed); err != nil {
		p.Log.Error("mark run completed", zap.Error(err))
		return
	}
	p.Log.Info("report run completed",
		zap.String("run", run.ID.String()),
		zap.Int("members", len(members)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(started)))
}

func (p Processor) buildRow(ctx context.Context, run ports.ReportRun, member domain.Member) (ports.ReportRow, error) {
	row := ports.ReportRow{
		RunID:    run.ID,
		MemberID: member.ID,
		FullName: member.FullName,
	}
	result, err := p.Engine.ReconcileCoverage(ctx, member.ID, run.Params.From, run.Params.To)
	if err != nil {
		p.Log.Warn("member reconciliation failed",
			zap.String("run", run.ID.String()), zap.String("member", member.ID), zap.Error(err))
		row.Error = err.Error()
		return row, err
	}

	row.ActiveDays = result.Stats.ActiveDays
	row.CoveredDays = result.Stats.CoveredDays
	row.GapDays = result.Stats.GapDays
	row.CoveragePercent = math.Round(result.Stats.CoveragePercent*10) / 10
	row.UnpaidDays = result.Stats.UnpaidCoverageDays
	row.OutstandingAmount = result.Stats.OutstandingAmount
	row.CatchupRequired = result.Catchup.Required
	row.CatchupAmount = result.Catchup.TotalAmount
	row.GapSummary = coverage.FormatGaps(result.Gaps)
	row.CatchupSummary = coverage.FormatCatchupPeriods(result.Catchup.Periods)
	row.MaxSeverity = coverage.MaxSeverity(result.Gaps)
	return row, nil
}

package worker

import (
	"context"
	"log"
	"time"

	"github.com/outreachlabs/leadengine/internal/entity"
	"github.com/outreachlabs/leadengine/internal/usecase"
)

// QuotaStore persists the planner's output so sourcing runs pick it up
// even across restarts.
type QuotaStore interface {
	SaveQuotas(ctx context.Context, quotas map[string]int) error
}

// VolumeControlWorker periodically replans daily sourcing volume from the
// current revenue projection and writes the per-channel quotas.
type VolumeControlWorker struct {
	leads      entity.LeadRepositoryInterface
	audits     entity.AuditLogRepositoryInterface
	calculator *usecase.RevenueCalculator
	planner    *usecase.VolumePlanner
	quotas     QuotaStore
	channels   []string

	tickInterval time.Duration
	now          func() time.Time
}

func NewVolumeControlWorker(
	leads entity.LeadRepositoryInterface,
	audits entity.AuditLogRepositoryInterface,
	calculator *usecase.RevenueCalculator,
	planner *usecase.VolumePlanner,
	quotas QuotaStore,
	channels []string,
) *VolumeControlWorker {
	return &VolumeControlWorker{
		leads:        leads,
		audits:       audits,
		calculator:   calculator,
		planner:      planner,
		quotas:       quotas,
		channels:     channels,
		tickInterval: 1 * time.Hour,
		now:          time.Now,
	}
}

func (w *VolumeControlWorker) Start(ctx context.Context) {
	log.Printf("[volume] control loop started (every %s, %d channels)", w.tickInterval, len(w.channels))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.replan(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[volume] control loop stopped")
			return
		case <-ticker.C:
			w.replan(ctx)
		}
	}
}

func (w *VolumeControlWorker) replan(ctx context.Context) {
	leads, err := w.leads.ListAll(ctx)
	if err != nil {
		log.Printf("[volume] listing leads failed: %v", err)
		return
	}

	metrics := w.calculator.Metrics(leads)
	decision := w.planner.Plan(
		metrics.CurrentRevenue,
		metrics.ProjectedRevenue,
		metrics.TargetRevenue,
		daysLeftInMonth(w.now()),
	)

	quotas := usecase.SplitQuota(decision.Volume, w.channels)
	if err := w.quotas.SaveQuotas(ctx, quotas); err != nil {
		log.Printf("[volume] saving quotas failed: %v", err)
		return
	}

	entry := entity.NewAuditLogEntry("", entity.ActionVolumeAdjusted, decision.Reason, map[string]any{
		"action":            string(decision.Action),
		"volume":            decision.Volume,
		"projected_revenue": metrics.ProjectedRevenue,
		"target_revenue":    metrics.TargetRevenue,
	})
	if err := w.audits.Append(ctx, entry); err != nil {
		log.Printf("[volume] audit append failed: %v", err)
	}

	log.Printf("[volume] %s: %d leads/day across %d channels", decision.Action, decision.Volume, len(w.channels))
}

func daysLeftInMonth(now time.Time) int {
	firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	days := int(firstOfNext.Sub(now).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}

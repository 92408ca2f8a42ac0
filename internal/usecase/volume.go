package usecase

import (
	"fmt"
	"math"

	"github.com/outreachlabs/leadengine/internal/entity"
)

type VolumeAction string

const (
	VolumeIncrease VolumeAction = "increase"
	VolumeDecrease VolumeAction = "decrease"
	VolumeMaintain VolumeAction = "maintain"
)

type VolumeDecision struct {
	Action VolumeAction `json:"action"`
	Volume int          `json:"volume"` // leads per day
	Reason string       `json:"reason"`
}

type VolumeConfig struct {
	BaselinePerDay int
	MinPerDay      int     // keeps the pipeline from starving
	MaxPerDay      int     // protects providers and compliance budget
	ConversionRate float64 // assumed share of leads that convert
}

func DefaultVolumeConfig() VolumeConfig {
	return VolumeConfig{
		BaselinePerDay: 50,
		MinPerDay:      20,
		MaxPerDay:      200,
		ConversionRate: 0.02,
	}
}

// VolumePlanner closes the loop between projected revenue and sourcing
// volume. Whatever the computed gap, the result never leaves the
// [min, max] band.
type VolumePlanner struct {
	Config VolumeConfig
}

func NewVolumePlanner(config VolumeConfig) *VolumePlanner {
	return &VolumePlanner{Config: config}
}

func (p *VolumePlanner) Plan(current, projected, target float64, daysRemaining int) VolumeDecision {
	if daysRemaining < 1 {
		daysRemaining = 1
	}

	if projected >= target {
		return VolumeDecision{
			Action: VolumeMaintain,
			Volume: p.Config.BaselinePerDay,
			Reason: fmt.Sprintf("Projected £%.0f meets the £%.0f target. Holding baseline of %d leads/day.", projected, target, p.Config.BaselinePerDay),
		}
	}

	gapPerDay := (target - projected) / float64(daysRemaining)
	revenuePerLead := entity.HighestTierMonthlyValue() * p.Config.ConversionRate
	needed := int(math.Ceil(gapPerDay / revenuePerLead))

	volume := needed
	if volume < p.Config.MinPerDay {
		volume = p.Config.MinPerDay
	}
	if volume > p.Config.MaxPerDay {
		volume = p.Config.MaxPerDay
	}

	action := VolumeMaintain
	switch {
	case volume > p.Config.BaselinePerDay:
		action = VolumeIncrease
	case volume < p.Config.BaselinePerDay:
		action = VolumeDecrease
	}

	reason := fmt.Sprintf(
		"Revenue at £%.0f, projected £%.0f against a £%.0f target with %d day(s) remaining. Need %d leads/day (clamped to %d).",
		current, projected, target, daysRemaining, needed, volume,
	)

	return VolumeDecision{Action: action, Volume: volume, Reason: reason}
}

// SplitQuota spreads a daily volume across channels, front-loading the
// remainder so the totals add up.
func SplitQuota(total int, channels []string) map[string]int {
	quotas := make(map[string]int, len(channels))
	if len(channels) == 0 || total <= 0 {
		return quotas
	}
	base := total / len(channels)
	remainder := total % len(channels)
	for i, channel := range channels {
		quotas[channel] = base
		if i < remainder {
			quotas[channel]++
		}
	}
	return quotas
}

package usecase

import (
	"math"

	"github.com/outreachlabs/leadengine/internal/entity"
)

type RevenueMetrics struct {
	CurrentRevenue     float64 `json:"current_revenue"`
	ProjectedRevenue   float64 `json:"projected_revenue"`
	PipelineValue      float64 `json:"pipeline_value"`
	TargetRevenue      float64 `json:"target_revenue"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// RevenueConfig carries the business guesses (target, stage odds) as
// configuration so they can be recalibrated without a deploy.
type RevenueConfig struct {
	TargetRevenue      float64
	StageProbabilities map[entity.Status]float64
}

func DefaultRevenueConfig() RevenueConfig {
	return RevenueConfig{
		TargetRevenue: 8333, // £100k/year
		StageProbabilities: map[entity.Status]float64{
			entity.StatusNew:           0.05,
			entity.StatusResearching:   0.10,
			entity.StatusScheduled:     0.12,
			entity.StatusContacted:     0.15,
			entity.StatusReplied:       0.25,
			entity.StatusInterested:    0.40,
			entity.StatusNegotiating:   0.60,
			entity.StatusConverted:     1.0,
			entity.StatusNotInterested: 0,
			entity.StatusDoNotContact:  0,
			entity.StatusUnqualified:   0,
		},
	}
}

// RevenueCalculator is a pure aggregation over the lead population. It
// keeps no state, so calling it twice over the same leads returns
// identical figures.
type RevenueCalculator struct {
	Config RevenueConfig
}

func NewRevenueCalculator(config RevenueConfig) *RevenueCalculator {
	return &RevenueCalculator{Config: config}
}

// DealValue resolves the lead's monthly value from the product catalog,
// classifying the tier from company size when it was never set.
func (c *RevenueCalculator) DealValue(lead *entity.Lead) float64 {
	tier := lead.DealTier
	if tier == "" {
		tier = entity.ClassifyDealTier(lead.EmployeeCount, lead.CompanyType)
	}
	return tier.MonthlyValue()
}

func (c *RevenueCalculator) Metrics(leads []entity.Lead) RevenueMetrics {
	var current, projected, pipeline float64

	for i := range leads {
		lead := &leads[i]
		value := c.DealValue(lead)

		if lead.Status == entity.StatusConverted {
			current += value
		}
		if lead.Status != entity.StatusUnqualified {
			projected += value * c.Config.StageProbabilities[lead.Status]
		}
		switch lead.Status {
		case entity.StatusNotInterested, entity.StatusDoNotContact, entity.StatusConverted, entity.StatusUnqualified:
		default:
			pipeline += value
		}
	}

	progress := 0.0
	if c.Config.TargetRevenue > 0 {
		progress = math.Min(100, current/c.Config.TargetRevenue*100)
	}

	return RevenueMetrics{
		CurrentRevenue:     current,
		ProjectedRevenue:   projected,
		PipelineValue:      pipeline,
		TargetRevenue:      c.Config.TargetRevenue,
		ProgressPercentage: progress,
	}
}

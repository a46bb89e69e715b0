package budget

import (
	"math"

	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

// weightEpsilon keeps zero-performance campaigns from dropping out of a
// weighted split entirely.
const weightEpsilon = 1e-6

type equalDistributionStrategy struct{}

func (equalDistributionStrategy) Name() models.AllocationStrategy {
	return models.StrategyEqualDistribution
}

func (equalDistributionStrategy) Allocate(
	campaigns []models.Campaign,
	totalBudget float64,
	constraints map[uuid.UUID]models.BudgetConstraint,
) ([]models.CampaignAllocation, error) {
	weights := make([]float64, len(campaigns))
	for i := range weights {
		weights[i] = 1
	}
	return allocateByWeights(campaigns, weights, totalBudget, constraints, "Equal distribution"), nil
}

type performanceWeightedStrategy struct{}

func (performanceWeightedStrategy) Name() models.AllocationStrategy {
	return models.StrategyPerformanceWeighted
}

func (performanceWeightedStrategy) Allocate(
	campaigns []models.Campaign,
	totalBudget float64,
	constraints map[uuid.UUID]models.BudgetConstraint,
) ([]models.CampaignAllocation, error) {
	weights := make([]float64, len(campaigns))
	for i, campaign := range campaigns {
		weights[i] = math.Max(campaign.Metrics.Roi, weightEpsilon)
	}
	return allocateByWeights(campaigns, weights, totalBudget, constraints,
		"Performance-weighted allocation"), nil
}

type predictiveStrategy struct{}

func (predictiveStrategy) Name() models.AllocationStrategy {
	return models.StrategyPredictive
}

// Predictive blends current performance with the trend between the two
// preceding windows: a campaign whose ROI is improving gets more than its
// plain performance share.
func (predictiveStrategy) Allocate(
	campaigns []models.Campaign,
	totalBudget float64,
	constraints map[uuid.UUID]models.BudgetConstraint,
) ([]models.CampaignAllocation, error) {
	weights := make([]float64, len(campaigns))
	for i, campaign := range campaigns {
		trend := 0.0
		if campaign.Metrics.PreviousRoi > 0 {
			trend = (campaign.Metrics.Roi - campaign.Metrics.PreviousRoi) / campaign.Metrics.PreviousRoi
		}
		weights[i] = math.Max(campaign.Metrics.Roi*(1+trend), weightEpsilon)
	}
	return allocateByWeights(campaigns, weights, totalBudget, constraints,
		"Predictive analytics-based allocation"), nil
}

// allocateByWeights splits totalBudget proportionally to weights, then
// enforces per-campaign bounds by iterative water-filling: every pass fixes
// the campaigns whose proportional share violates a bound at that bound and
// redistributes the rest over the remaining campaigns. Each pass fixes at
// least one campaign or terminates, so the loop runs at most N passes.
//
// Feasibility (sum of floors <= total <= sum of caps) is the caller's
// responsibility, checked in validateConstraints.
func allocateByWeights(
	campaigns []models.Campaign,
	weights []float64,
	totalBudget float64,
	constraints map[uuid.UUID]models.BudgetConstraint,
	rationale string,
) []models.CampaignAllocation {
	n := len(campaigns)
	budgets := make([]float64, n)
	fixed := make([]bool, n)
	remaining := totalBudget

	for pass := 0; pass < n; pass++ {
		sumWeights := 0.0
		unfixed := 0
		for i := range campaigns {
			if !fixed[i] {
				sumWeights += weights[i]
				unfixed++
			}
		}
		if unfixed == 0 {
			break
		}

		// Every share in a pass is computed from the remainder as it stood at
		// the start of the pass: clamping one campaign must not shrink its
		// siblings' shares until the next pass redistributes.
		clamped := false
		for i, campaign := range campaigns {
			if fixed[i] {
				continue
			}
			share := remaining / float64(unfixed)
			if sumWeights > 0 {
				share = remaining * weights[i] / sumWeights
			}

			min, max := constraintBounds(constraints, campaign.Id, totalBudget)
			if share < min {
				budgets[i] = min
				fixed[i] = true
				clamped = true
			} else if share > max {
				budgets[i] = max
				fixed[i] = true
				clamped = true
			}
		}
		if clamped {
			remaining = totalBudget
			for i := range budgets {
				if fixed[i] {
					remaining -= budgets[i]
				}
			}
			continue
		}

		for i := range campaigns {
			if fixed[i] {
				continue
			}
			share := remaining / float64(unfixed)
			if sumWeights > 0 {
				share = remaining * weights[i] / sumWeights
			}
			budgets[i] = share
		}
		break
	}

	return buildAllocations(campaigns, weights, budgets, totalBudget, rationale)
}

// buildAllocations rounds each budget to the cent and pins the rounding
// remainder on the highest-weight campaign so the split sums to exactly the
// requested total.
func buildAllocations(
	campaigns []models.Campaign,
	weights []float64,
	budgets []float64,
	totalBudget float64,
	rationale string,
) []models.CampaignAllocation {
	sumRounded := 0.0
	heaviest := 0
	for i := range budgets {
		budgets[i] = roundToCent(budgets[i])
		sumRounded += budgets[i]
		if weights[i] > weights[heaviest] {
			heaviest = i
		}
	}
	if leftover := roundToCent(totalBudget - sumRounded); leftover != 0 {
		budgets[heaviest] = roundToCent(budgets[heaviest] + leftover)
	}

	allocations := make([]models.CampaignAllocation, len(campaigns))
	for i, campaign := range campaigns {
		allocations[i] = models.CampaignAllocation{
			CampaignId:     campaign.Id,
			CampaignName:   campaign.Name,
			PreviousBudget: campaign.Budget,
			NewBudget:      budgets[i],
			Delta:          roundToCent(budgets[i] - campaign.Budget),
			Rationale:      rationale,
		}
	}
	return allocations
}

func roundToCent(v float64) float64 {
	return math.Round(v*100) / 100
}

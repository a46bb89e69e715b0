package budget

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

type roiMaximizationStrategy struct{}

func (roiMaximizationStrategy) Name() models.AllocationStrategy {
	return models.StrategyRoiMaximization
}

// Allocate fills the highest-ROI campaigns up to their cap first. Campaigns
// without positive ROI only receive their constraint floor plus an equal
// share of whatever the profitable campaigns could not absorb. When no
// campaign has positive ROI there is nothing to maximize and the split falls
// back to equal distribution.
func (roiMaximizationStrategy) Allocate(
	campaigns []models.Campaign,
	totalBudget float64,
	constraints map[uuid.UUID]models.BudgetConstraint,
) ([]models.CampaignAllocation, error) {
	anyPositiveRoi := false
	for _, campaign := range campaigns {
		if campaign.Metrics.Roi > 0 {
			anyPositiveRoi = true
			break
		}
	}
	if !anyPositiveRoi {
		return equalDistributionStrategy{}.Allocate(campaigns, totalBudget, constraints)
	}

	n := len(campaigns)
	budgets := make([]float64, n)
	remaining := totalBudget

	// Everyone gets their floor up front so constraint minimums hold no
	// matter how the greedy fill goes.
	for i, campaign := range campaigns {
		min, _ := constraintBounds(constraints, campaign.Id, totalBudget)
		budgets[i] = min
		remaining -= min
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return campaigns[order[a]].Metrics.Roi > campaigns[order[b]].Metrics.Roi
	})

	for _, i := range order {
		if remaining <= 0 {
			break
		}
		if campaigns[i].Metrics.Roi <= 0 {
			continue
		}
		_, max := constraintBounds(constraints, campaigns[i].Id, totalBudget)
		give := math.Min(max-budgets[i], remaining)
		if give > 0 {
			budgets[i] += give
			remaining -= give
		}
	}

	// Profitable campaigns all capped out: spread the rest equally over
	// whoever still has headroom.
	for pass := 0; pass < n && remaining > 0; pass++ {
		var open []int
		for i, campaign := range campaigns {
			_, max := constraintBounds(constraints, campaign.Id, totalBudget)
			if budgets[i] < max {
				open = append(open, i)
			}
		}
		if len(open) == 0 {
			break
		}
		share := remaining / float64(len(open))
		for _, i := range open {
			_, max := constraintBounds(constraints, campaigns[i].Id, totalBudget)
			give := math.Min(max-budgets[i], share)
			budgets[i] += give
			remaining -= give
		}
	}

	weights := make([]float64, n)
	for i, campaign := range campaigns {
		weights[i] = math.Max(campaign.Metrics.Roi, weightEpsilon)
	}
	return buildAllocations(campaigns, weights, budgets, totalBudget, "ROI-based allocation"), nil
}

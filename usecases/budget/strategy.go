package budget

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

// Strategy computes a per-campaign split of totalBudget. Implementations are
// pure: same inputs, same split, no I/O.
type Strategy interface {
	Name() models.AllocationStrategy
	Allocate(campaigns []models.Campaign, totalBudget float64,
		constraints map[uuid.UUID]models.BudgetConstraint) ([]models.CampaignAllocation, error)
}

func StrategyFor(name models.AllocationStrategy) (Strategy, error) {
	switch name {
	case models.StrategyRoiMaximization:
		return roiMaximizationStrategy{}, nil
	case models.StrategyEqualDistribution:
		return equalDistributionStrategy{}, nil
	case models.StrategyPerformanceWeighted:
		return performanceWeightedStrategy{}, nil
	case models.StrategyPredictive:
		return predictiveStrategy{}, nil
	default:
		return nil, errors.Wrapf(models.ErrUnknownStrategy, "strategy %q", name)
	}
}

// Allocate validates the request and runs the selected strategy. It either
// returns a split where every campaign lies within its constraints and the
// budgets sum to exactly totalBudget, or a rejection. It never returns a
// best-effort partial split.
func Allocate(
	campaigns []models.Campaign,
	totalBudget float64,
	strategyName models.AllocationStrategy,
	constraints map[uuid.UUID]models.BudgetConstraint,
) (models.BudgetAllocationResult, error) {
	if totalBudget <= 0 {
		return models.BudgetAllocationResult{}, errors.Wrapf(models.ErrInvalidTotalBudget,
			"total budget %.2f must be positive", totalBudget)
	}
	if totalBudget < models.MinCampaignBudget {
		return models.BudgetAllocationResult{}, errors.Wrapf(models.ErrTotalBudgetBelowMinimum,
			"total budget %.2f is below the minimum of %.2f", totalBudget, models.MinCampaignBudget)
	}
	if len(campaigns) == 0 {
		return models.BudgetAllocationResult{}, models.ErrNoEligibleCampaigns
	}
	if err := validateConstraints(campaigns, totalBudget, constraints); err != nil {
		return models.BudgetAllocationResult{}, err
	}

	strategy, err := StrategyFor(strategyName)
	if err != nil {
		return models.BudgetAllocationResult{}, err
	}

	allocations, err := strategy.Allocate(campaigns, totalBudget, constraints)
	if err != nil {
		return models.BudgetAllocationResult{}, err
	}

	return models.BudgetAllocationResult{
		Strategy:    strategyName,
		TotalBudget: totalBudget,
		Allocations: allocations,
	}, nil
}

func validateConstraints(
	campaigns []models.Campaign,
	totalBudget float64,
	constraints map[uuid.UUID]models.BudgetConstraint,
) error {
	sumMin := 0.0
	sumMax := 0.0
	for _, campaign := range campaigns {
		min, max := constraintBounds(constraints, campaign.Id, totalBudget)
		if min > max {
			return errors.Wrapf(models.ErrInfeasibleConstraints,
				"campaign %s has min %.2f above max %.2f", campaign.Id, min, max)
		}
		sumMin += min
		sumMax += max
	}
	if sumMin > totalBudget {
		return errors.Wrapf(models.ErrInfeasibleConstraints,
			"constraint floors sum to %.2f, above the total budget %.2f", sumMin, totalBudget)
	}
	if sumMax < totalBudget {
		return errors.Wrapf(models.ErrInfeasibleConstraints,
			"constraint caps sum to %.2f, below the total budget %.2f", sumMax, totalBudget)
	}
	return nil
}

// constraintBounds resolves a campaign's bounds: min defaults to 0, max to
// the total budget.
func constraintBounds(
	constraints map[uuid.UUID]models.BudgetConstraint,
	campaignId uuid.UUID,
	totalBudget float64,
) (min float64, max float64) {
	min, max = 0, totalBudget
	constraint, ok := constraints[campaignId]
	if !ok {
		return min, max
	}
	if constraint.Min != nil {
		min = *constraint.Min
	}
	if constraint.Max != nil {
		max = *constraint.Max
	}
	return min, max
}

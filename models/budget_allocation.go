package models

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type AllocationStrategy string

const (
	StrategyRoiMaximization     AllocationStrategy = "roi_maximization"
	StrategyEqualDistribution   AllocationStrategy = "equal_distribution"
	StrategyPerformanceWeighted AllocationStrategy = "performance_weighted"
	StrategyPredictive          AllocationStrategy = "predictive"
)

func AllocationStrategyFrom(s string) (AllocationStrategy, error) {
	switch strategy := AllocationStrategy(s); strategy {
	case StrategyRoiMaximization, StrategyEqualDistribution,
		StrategyPerformanceWeighted, StrategyPredictive:
		return strategy, nil
	default:
		return "", errors.Wrapf(ErrUnknownStrategy, "strategy %q", s)
	}
}

// MinCampaignBudget is the smallest total budget accepted by the allocation
// endpoints.
const MinCampaignBudget = 10.0

// BudgetConstraint bounds one campaign's share. Nil means unbounded on that
// side: min defaults to 0, max to the total budget.
type BudgetConstraint struct {
	Min *float64
	Max *float64
}

type BudgetAllocationRequest struct {
	OrganizationId uuid.UUID
	TotalBudget    float64
	Strategy       AllocationStrategy
	Constraints    map[uuid.UUID]BudgetConstraint
	RequestedAt    time.Time
}

// CampaignAllocation is one line of an allocation result.
type CampaignAllocation struct {
	CampaignId     uuid.UUID
	CampaignName   string
	PreviousBudget float64
	NewBudget      float64
	Delta          float64
	Rationale      string
}

type BudgetAllocationResult struct {
	Strategy    AllocationStrategy
	TotalBudget float64
	Allocations []CampaignAllocation
	Simulated   bool
}

// BudgetAllocationLog is the persisted audit line for one applied budget
// change, append-only.
type BudgetAllocationLog struct {
	Id               uuid.UUID
	CampaignId       uuid.UUID
	CampaignName     string
	OldBudget        float64
	NewBudget        float64
	ChangeAmount     float64
	ChangePercentage float64
	Reason           string
	AllocatedAt      time.Time
}

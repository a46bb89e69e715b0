package dto

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/pure_utils"
)

type BudgetConstraintDto struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type BudgetAllocationBody struct {
	TotalBudget float64                        `json:"total_budget" binding:"required"`
	Strategy    string                         `json:"strategy" binding:"required"`
	Constraints map[string]BudgetConstraintDto `json:"constraints"`
}

func AdaptBudgetAllocationRequest(body BudgetAllocationBody, organizationId uuid.UUID) (
	models.BudgetAllocationRequest, error,
) {
	strategy, err := models.AllocationStrategyFrom(body.Strategy)
	if err != nil {
		return models.BudgetAllocationRequest{}, err
	}

	constraints := make(map[uuid.UUID]models.BudgetConstraint, len(body.Constraints))
	for rawCampaignId, constraint := range body.Constraints {
		campaignId, err := uuid.Parse(rawCampaignId)
		if err != nil {
			return models.BudgetAllocationRequest{}, errors.Wrapf(models.BadParameterError,
				"constraint key %q is not a valid campaign id", rawCampaignId)
		}
		constraints[campaignId] = models.BudgetConstraint{
			Min: constraint.Min,
			Max: constraint.Max,
		}
	}

	return models.BudgetAllocationRequest{
		OrganizationId: organizationId,
		TotalBudget:    body.TotalBudget,
		Strategy:       strategy,
		Constraints:    constraints,
		RequestedAt:    time.Now(),
	}, nil
}

type CampaignAllocationDto struct {
	CampaignId     uuid.UUID `json:"campaign_id"`
	CampaignName   string    `json:"campaign_name"`
	PreviousBudget float64   `json:"previous_budget"`
	NewBudget      float64   `json:"new_budget"`
	Delta          float64   `json:"delta"`
	Rationale      string    `json:"rationale"`
}

func AdaptCampaignAllocationDto(allocation models.CampaignAllocation) CampaignAllocationDto {
	return CampaignAllocationDto{
		CampaignId:     allocation.CampaignId,
		CampaignName:   allocation.CampaignName,
		PreviousBudget: allocation.PreviousBudget,
		NewBudget:      allocation.NewBudget,
		Delta:          allocation.Delta,
		Rationale:      allocation.Rationale,
	}
}

type BudgetAllocationResultDto struct {
	Strategy    string                  `json:"strategy"`
	TotalBudget float64                 `json:"total_budget"`
	Allocations []CampaignAllocationDto `json:"allocations"`
	Simulated   bool                    `json:"simulated"`
}

func AdaptBudgetAllocationResultDto(result models.BudgetAllocationResult) BudgetAllocationResultDto {
	return BudgetAllocationResultDto{
		Strategy:    string(result.Strategy),
		TotalBudget: result.TotalBudget,
		Allocations: pure_utils.Map(result.Allocations, AdaptCampaignAllocationDto),
		Simulated:   result.Simulated,
	}
}

type BudgetAllocationLogDto struct {
	Id               uuid.UUID `json:"id"`
	CampaignId       uuid.UUID `json:"campaign_id"`
	CampaignName     string    `json:"campaign_name"`
	OldBudget        float64   `json:"old_budget"`
	NewBudget        float64   `json:"new_budget"`
	ChangeAmount     float64   `json:"change_amount"`
	ChangePercentage float64   `json:"change_percentage"`
	Reason           string    `json:"reason"`
	AllocatedAt      time.Time `json:"allocated_at"`
}

func AdaptBudgetAllocationLogDto(log models.BudgetAllocationLog) BudgetAllocationLogDto {
	return BudgetAllocationLogDto{
		Id:               log.Id,
		CampaignId:       log.CampaignId,
		CampaignName:     log.CampaignName,
		OldBudget:        log.OldBudget,
		NewBudget:        log.NewBudget,
		ChangeAmount:     log.ChangeAmount,
		ChangePercentage: log.ChangePercentage,
		Reason:           log.Reason,
		AllocatedAt:      log.AllocatedAt,
	}
}

package dbmodels

import (
	"time"

	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

type DBBudgetAllocationLog struct {
	Id               uuid.UUID `db:"id"`
	CampaignId       uuid.UUID `db:"campaign_id"`
	CampaignName     string    `db:"campaign_name"`
	OldBudget        float64   `db:"old_budget"`
	NewBudget        float64   `db:"new_budget"`
	ChangeAmount     float64   `db:"change_amount"`
	ChangePercentage float64   `db:"change_percentage"`
	Reason           string    `db:"reason"`
	AllocatedAt      time.Time `db:"allocated_at"`
}

const TABLE_BUDGET_ALLOCATION_LOG = "budget_allocation_log"

var SelectBudgetAllocationLogColumns = []string{
	"log.id",
	"c.name AS campaign_name",
	"log.campaign_id",
	"log.old_budget",
	"log.new_budget",
	"log.change_amount",
	"log.change_percentage",
	"log.reason",
	"log.allocated_at",
}

func AdaptBudgetAllocationLog(db DBBudgetAllocationLog) (models.BudgetAllocationLog, error) {
	return models.BudgetAllocationLog{
		Id:               db.Id,
		CampaignId:       db.CampaignId,
		CampaignName:     db.CampaignName,
		OldBudget:        db.OldBudget,
		NewBudget:        db.NewBudget,
		ChangeAmount:     db.ChangeAmount,
		ChangePercentage: db.ChangePercentage,
		Reason:           db.Reason,
		AllocatedAt:      db.AllocatedAt,
	}, nil
}

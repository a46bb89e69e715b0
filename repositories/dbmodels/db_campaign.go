package dbmodels

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v5"

	"github.com/cmis/automation-backend/models"
)

type DBCampaign struct {
	Id             uuid.UUID `db:"id"`
	OrgId          uuid.UUID `db:"org_id"`
	Name           string    `db:"name"`
	Status         string    `db:"status"`
	Budget         float64   `db:"budget"`
	StartDate      null.Time `db:"start_date"`
	EndDate        null.Time `db:"end_date"`
	Spend          float64   `db:"spend"`
	Revenue        float64   `db:"revenue"`
	Impressions    int64     `db:"impressions"`
	Clicks         int64     `db:"clicks"`
	Conversions    int64     `db:"conversions"`
	Roi            float64   `db:"roi"`
	PreviousRoi    float64   `db:"previous_roi"`
	Roas           float64   `db:"roas"`
	Ctr            float64   `db:"ctr"`
	ConversionRate float64   `db:"conversion_rate"`
	SpendVelocity  float64   `db:"spend_velocity"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

const TABLE_CAMPAIGNS = "campaigns"

var SelectCampaignColumns = []string{
	"id",
	"org_id",
	"name",
	"status",
	"budget",
	"start_date",
	"end_date",
	"spend",
	"revenue",
	"impressions",
	"clicks",
	"conversions",
	"roi",
	"previous_roi",
	"roas",
	"ctr",
	"conversion_rate",
	"spend_velocity",
	"created_at",
	"updated_at",
}

func AdaptCampaign(db DBCampaign) (models.Campaign, error) {
	campaign := models.Campaign{
		Id:             db.Id,
		OrganizationId: db.OrgId,
		Name:           db.Name,
		Status:         models.CampaignStatus(db.Status),
		Budget:         db.Budget,
		Metrics: models.CampaignMetrics{
			Spend:          db.Spend,
			Revenue:        db.Revenue,
			Impressions:    db.Impressions,
			Clicks:         db.Clicks,
			Conversions:    db.Conversions,
			Roi:            db.Roi,
			PreviousRoi:    db.PreviousRoi,
			Roas:           db.Roas,
			Ctr:            db.Ctr,
			ConversionRate: db.ConversionRate,
			SpendVelocity:  db.SpendVelocity,
		},
		CreatedAt: db.CreatedAt,
		UpdatedAt: db.UpdatedAt,
	}
	if db.StartDate.Valid {
		startDate := db.StartDate.Time
		campaign.StartDate = &startDate
	}
	if db.EndDate.Valid {
		endDate := db.EndDate.Time
		campaign.EndDate = &endDate
	}
	return campaign, nil
}

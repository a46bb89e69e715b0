package dbmodels

import (
	"time"

	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

type DBOrganization struct {
	Id        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

const TABLE_ORGANIZATIONS = "organizations"

var SelectOrganizationColumns = []string{
	"id",
	"name",
	"created_at",
}

func AdaptOrganization(db DBOrganization) (models.Organization, error) {
	return models.Organization{
		Id:        db.Id,
		Name:      db.Name,
		CreatedAt: db.CreatedAt,
	}, nil
}

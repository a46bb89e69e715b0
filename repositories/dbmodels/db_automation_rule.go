package dbmodels

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/guregu/null/v5"

	"github.com/cmis/automation-backend/models"
)

type DBAutomationRule struct {
	Id                  uuid.UUID   `db:"id"`
	OrgId               uuid.UUID   `db:"org_id"`
	Name                string      `db:"name"`
	Description         string      `db:"description"`
	RuleType            string      `db:"rule_type"`
	EntityType          string      `db:"entity_type"`
	EntityId            *uuid.UUID  `db:"entity_id"`
	Conditions          []byte      `db:"conditions"`
	ConditionLogic      string      `db:"condition_logic"`
	Actions             []byte      `db:"actions"`
	Priority            int         `db:"priority"`
	Status              string      `db:"status"`
	Enabled             bool        `db:"enabled"`
	MaxExecutionsPerDay int         `db:"max_executions_per_day"`
	CooldownMinutes     int         `db:"cooldown_minutes"`
	ExecutionCount      int         `db:"execution_count"`
	SuccessCount        int         `db:"success_count"`
	FailureCount        int         `db:"failure_count"`
	LastExecutedAt      null.Time   `db:"last_executed_at"`
	CreatedAt           time.Time   `db:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at"`
}

const TABLE_AUTOMATION_RULES = "automation_rules"

var SelectAutomationRuleColumns = []string{
	"id",
	"org_id",
	"name",
	"description",
	"rule_type",
	"entity_type",
	"entity_id",
	"conditions",
	"condition_logic",
	"actions",
	"priority",
	"status",
	"enabled",
	"max_executions_per_day",
	"cooldown_minutes",
	"execution_count",
	"success_count",
	"failure_count",
	"last_executed_at",
	"created_at",
	"updated_at",
}

func AdaptAutomationRule(db DBAutomationRule) (models.AutomationRule, error) {
	var conditions []models.Condition
	if len(db.Conditions) > 0 {
		if err := json.Unmarshal(db.Conditions, &conditions); err != nil {
			return models.AutomationRule{}, errors.Wrap(err, "unable to unmarshal rule conditions")
		}
	}

	var actions []models.Action
	if len(db.Actions) > 0 {
		if err := json.Unmarshal(db.Actions, &actions); err != nil {
			return models.AutomationRule{}, errors.Wrap(err, "unable to unmarshal rule actions")
		}
	}

	rule := models.AutomationRule{
		Id:                  db.Id,
		OrganizationId:      db.OrgId,
		Name:                db.Name,
		Description:         db.Description,
		RuleType:            models.RuleType(db.RuleType),
		EntityType:          models.EntityType(db.EntityType),
		EntityId:            db.EntityId,
		Conditions:          conditions,
		ConditionLogic:      models.ConditionLogic(db.ConditionLogic),
		Actions:             actions,
		Priority:            db.Priority,
		Status:              models.RuleStatus(db.Status),
		Enabled:             db.Enabled,
		MaxExecutionsPerDay: db.MaxExecutionsPerDay,
		CooldownMinutes:     db.CooldownMinutes,
		ExecutionCount:      db.ExecutionCount,
		SuccessCount:        db.SuccessCount,
		FailureCount:        db.FailureCount,
		CreatedAt:           db.CreatedAt,
		UpdatedAt:           db.UpdatedAt,
	}
	if db.LastExecutedAt.Valid {
		lastExecutedAt := db.LastExecutedAt.Time
		rule.LastExecutedAt = &lastExecutedAt
	}
	return rule, nil
}

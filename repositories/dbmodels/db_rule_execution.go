package dbmodels

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

type DBRuleExecution struct {
	Id                uuid.UUID `db:"id"`
	RuleId            uuid.UUID `db:"rule_id"`
	OrgId             uuid.UUID `db:"org_id"`
	Status            string    `db:"status"`
	MatchedConditions []byte    `db:"matched_conditions"`
	ActionsTaken      []byte    `db:"actions_taken"`
	ErrorDetail       string    `db:"error_detail"`
	ElapsedMs         int64     `db:"elapsed_ms"`
	ExecutedAt        time.Time `db:"executed_at"`
}

const TABLE_RULE_EXECUTIONS = "rule_executions"

var SelectRuleExecutionColumns = []string{
	"id",
	"rule_id",
	"org_id",
	"status",
	"matched_conditions",
	"actions_taken",
	"error_detail",
	"elapsed_ms",
	"executed_at",
}

func AdaptRuleExecution(db DBRuleExecution) (models.RuleExecution, error) {
	var matchedConditions []models.Condition
	if len(db.MatchedConditions) > 0 {
		if err := json.Unmarshal(db.MatchedConditions, &matchedConditions); err != nil {
			return models.RuleExecution{}, errors.Wrap(err, "unable to unmarshal matched conditions")
		}
	}

	var actionsTaken []models.ActionOutcome
	if len(db.ActionsTaken) > 0 {
		if err := json.Unmarshal(db.ActionsTaken, &actionsTaken); err != nil {
			return models.RuleExecution{}, errors.Wrap(err, "unable to unmarshal actions taken")
		}
	}

	return models.RuleExecution{
		Id:                db.Id,
		RuleId:            db.RuleId,
		OrganizationId:    db.OrgId,
		Status:            models.ExecutionStatus(db.Status),
		MatchedConditions: matchedConditions,
		ActionsTaken:      actionsTaken,
		ErrorDetail:       db.ErrorDetail,
		ElapsedMs:         db.ElapsedMs,
		ExecutedAt:        db.ExecutedAt,
	}, nil
}

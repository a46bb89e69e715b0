package models

import (
	"github.com/google/uuid"
)

// Job argument types for the task queue. Kind must stay stable: it is stored
// with every queued job.

type AutomationCycleArgs struct {
	OrgId uuid.UUID `json:"org_id"`
}

func (AutomationCycleArgs) Kind() string {
	return "automation_cycle"
}

type RuleNotificationArgs struct {
	OrgId    uuid.UUID      `json:"org_id"`
	RuleId   uuid.UUID      `json:"rule_id"`
	RuleName string         `json:"rule_name"`
	Channels []string       `json:"channels"`
	Payload  map[string]any `json:"payload,omitempty"`
}

func (RuleNotificationArgs) Kind() string {
	return "rule_notification"
}

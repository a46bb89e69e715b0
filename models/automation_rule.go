package models

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type RuleType string

const (
	RuleTypeBudgetOptimization RuleType = "budget_optimization"
	RuleTypeBidAdjustment      RuleType = "bid_adjustment"
	RuleTypeCreativeRotation   RuleType = "creative_rotation"
	RuleTypeSchedulePause      RuleType = "schedule_pause"
	RuleTypeScheduleResume     RuleType = "schedule_resume"
	RuleTypeAlert              RuleType = "alert"
)

func RuleTypeFrom(s string) (RuleType, error) {
	switch t := RuleType(s); t {
	case RuleTypeBudgetOptimization, RuleTypeBidAdjustment, RuleTypeCreativeRotation,
		RuleTypeSchedulePause, RuleTypeScheduleResume, RuleTypeAlert:
		return t, nil
	default:
		return "", errors.Wrapf(BadParameterError, "unknown rule type %q", s)
	}
}

type EntityType string

const (
	EntityTypeCampaign EntityType = "campaign"
	EntityTypeAdSet    EntityType = "ad_set"
	EntityTypeAd       EntityType = "ad"
)

func EntityTypeFrom(s string) (EntityType, error) {
	switch t := EntityType(s); t {
	case EntityTypeCampaign, EntityTypeAdSet, EntityTypeAd:
		return t, nil
	default:
		return "", errors.Wrapf(BadParameterError, "unknown entity type %q", s)
	}
}

type RuleStatus string

const (
	RuleStatusDraft    RuleStatus = "draft"
	RuleStatusActive   RuleStatus = "active"
	RuleStatusPaused   RuleStatus = "paused"
	RuleStatusArchived RuleStatus = "archived"
)

type RuleEvent string

const (
	RuleEventActivate RuleEvent = "activate"
	RuleEventPause    RuleEvent = "pause"
	RuleEventArchive  RuleEvent = "archive"
)

// Transition returns the status resulting from applying event to the current
// status. Legal transitions are draft→active, active↔paused and any→archived;
// archived is terminal.
func (s RuleStatus) Transition(event RuleEvent) (RuleStatus, error) {
	if s == RuleStatusArchived {
		return "", errors.Wrapf(ErrRuleArchived, "cannot apply %q", event)
	}

	switch event {
	case RuleEventArchive:
		return RuleStatusArchived, nil
	case RuleEventActivate:
		if s == RuleStatusDraft || s == RuleStatusPaused {
			return RuleStatusActive, nil
		}
	case RuleEventPause:
		if s == RuleStatusActive {
			return RuleStatusPaused, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidRuleTransition, "%q does not accept %q", s, event)
}

///////////////////////////////
// AutomationRule
///////////////////////////////

type AutomationRule struct {
	Id                  uuid.UUID
	OrganizationId      uuid.UUID
	Name                string
	Description         string
	RuleType            RuleType
	EntityType          EntityType
	EntityId            *uuid.UUID
	Conditions          []Condition
	ConditionLogic      ConditionLogic
	Actions             []Action
	Priority            int
	Status              RuleStatus
	Enabled             bool
	MaxExecutionsPerDay int
	CooldownMinutes     int
	ExecutionCount      int
	SuccessCount        int
	FailureCount        int
	LastExecutedAt      *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Evaluable reports whether the orchestration layer should consider the rule
// at all. Disabled short-circuits regardless of status.
func (r AutomationRule) Evaluable() bool {
	return r.Enabled && r.Status == RuleStatusActive
}

type CreateAutomationRuleInput struct {
	OrganizationId      uuid.UUID
	Name                string
	Description         string
	RuleType            RuleType
	EntityType          EntityType
	EntityId            *uuid.UUID
	Conditions          []Condition
	ConditionLogic      ConditionLogic
	Actions             []Action
	Priority            int
	Enabled             bool
	MaxExecutionsPerDay int
	CooldownMinutes     int
}

func (input CreateAutomationRuleInput) Validate() error {
	if input.Name == "" {
		return errors.Wrap(BadParameterError, "rule name is required")
	}
	if input.Priority < 1 || input.Priority > 100 {
		return errors.Wrap(BadParameterError, "priority must be between 1 and 100")
	}
	for _, condition := range input.Conditions {
		if err := condition.Validate(); err != nil {
			return err
		}
	}
	for _, action := range input.Actions {
		if err := action.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type UpdateAutomationRuleInput struct {
	Id                  uuid.UUID
	Name                *string
	Description         *string
	Conditions          []Condition
	ConditionLogic      *ConditionLogic
	Actions             []Action
	Priority            *int
	Enabled             *bool
	MaxExecutionsPerDay *int
	CooldownMinutes     *int
}

type AutomationRuleFilters struct {
	EntityType *EntityType
	Status     *RuleStatus
	RuleType   *RuleType
}

type BulkRuleAction string

const (
	BulkRuleActionActivate BulkRuleAction = "activate"
	BulkRuleActionPause    BulkRuleAction = "pause"
	BulkRuleActionArchive  BulkRuleAction = "archive"
)

func BulkRuleActionFrom(s string) (RuleEvent, error) {
	switch BulkRuleAction(s) {
	case BulkRuleActionActivate:
		return RuleEventActivate, nil
	case BulkRuleActionPause:
		return RuleEventPause, nil
	case BulkRuleActionArchive:
		return RuleEventArchive, nil
	default:
		return "", errors.Wrapf(BadParameterError, "unknown bulk action %q", s)
	}
}

// RuleAnalytics aggregates rule activity for an organization over a window.
type RuleAnalytics struct {
	TotalRules      int
	ActiveRules     int
	PausedRules     int
	ArchivedRules   int
	DraftRules      int
	TotalExecutions int
	ByType          map[RuleType]int
	TopPerforming   []RulePerformance
}

type RulePerformance struct {
	RuleId         uuid.UUID
	Name           string
	ExecutionCount int
	SuccessCount   int
	FailureCount   int
}

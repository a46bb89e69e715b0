package models

import (
	"time"

	"github.com/google/uuid"
)

type ExecutionStatus string

const (
	ExecutionStatusApplied         ExecutionStatus = "applied"
	ExecutionStatusPartiallyFailed ExecutionStatus = "partially_failed"
	ExecutionStatusFailed          ExecutionStatus = "failed"
	// ExecutionStatusCancelled records a cycle whose actions were all skipped
	// by a cancellation before any of them ran.
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

type ActionOutcomeStatus string

const (
	ActionOutcomeSuccess ActionOutcomeStatus = "success"
	ActionOutcomeFailure ActionOutcomeStatus = "failure"
	ActionOutcomeSkipped ActionOutcomeStatus = "skipped"
)

// ActionOutcome captures the result of dispatching a single fired action.
type ActionOutcome struct {
	Action Action              `json:"action"`
	Status ActionOutcomeStatus `json:"status"`
	Error  string              `json:"error,omitempty"`
}

// RuleExecution is the immutable audit record of one evaluation cycle that
// fired. It is written exactly once and never updated.
type RuleExecution struct {
	Id                uuid.UUID
	RuleId            uuid.UUID
	OrganizationId    uuid.UUID
	Status            ExecutionStatus
	MatchedConditions []Condition
	ActionsTaken      []ActionOutcome
	ErrorDetail       string
	ElapsedMs         int64
	ExecutedAt        time.Time
}

type CreateRuleExecutionInput struct {
	RuleId            uuid.UUID
	OrganizationId    uuid.UUID
	Status            ExecutionStatus
	MatchedConditions []Condition
	ActionsTaken      []ActionOutcome
	ErrorDetail       string
	ElapsedMs         int64
}

type RuleExecutionFilters struct {
	Status *ExecutionStatus
	Limit  int
	Offset int
}

// RuleEvaluation is the pure output of evaluating a rule against an entity
// metrics snapshot. MatchedConditions lists every condition that individually
// evaluated true, even when the rule as a whole did not match.
type RuleEvaluation struct {
	Matched           bool
	MatchedConditions []Condition
	FiredActions      []Action
	// Degraded reports that at least one condition was malformed and treated
	// as false instead of aborting the rule.
	Degraded bool
}

// ExecutionSummary is what one rule contributed to an automation cycle.
type ExecutionSummary struct {
	RuleId      uuid.UUID
	RuleName    string
	Outcome     CycleOutcome
	ExecutionId *uuid.UUID
	Detail      string
}

type CycleOutcome string

const (
	CycleOutcomeNotMatched      CycleOutcome = "not_matched"
	CycleOutcomeApplied         CycleOutcome = "applied"
	CycleOutcomePartiallyFailed CycleOutcome = "partially_failed"
	CycleOutcomeFailed          CycleOutcome = "failed"
	CycleOutcomeCancelled       CycleOutcome = "cancelled"
	CycleOutcomeSkippedLock     CycleOutcome = "skipped_concurrent"
	CycleOutcomeSkippedLimit    CycleOutcome = "skipped_rate_limited"
	CycleOutcomeDegraded        CycleOutcome = "degraded"
)

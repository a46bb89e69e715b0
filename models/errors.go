package models

import (
	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// UnAuthorizedError is rendered with the http status code 401
	UnAuthorizedError = errors.New("unauthorized")

	// ForbiddenError is rendered with the http status code 403
	ForbiddenError = errors.New("forbidden")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")

	// UnprocessableEntityError is rendered with the http status code 422
	UnprocessableEntityError = errors.New("unprocessable entity")
)

// DB related errors
var ErrIgnoreRollBackError = errors.New("ignore rollback error")

// Automation rule related errors
var (
	ErrRuleArchived          = errors.Wrap(BadParameterError, "automation rule is archived")
	ErrInvalidRuleTransition = errors.Wrap(BadParameterError, "invalid automation rule status transition")
	ErrUnknownOperator       = errors.Wrap(BadParameterError, "unknown condition operator")
	ErrUnknownActionType     = errors.Wrap(BadParameterError, "unknown action type")
)

// Budget allocation related errors
var (
	ErrNoEligibleCampaigns     = errors.Wrap(UnprocessableEntityError, "no eligible campaigns for budget allocation")
	ErrInfeasibleConstraints   = errors.Wrap(UnprocessableEntityError, "budget floors exceed the total budget")
	ErrUnknownStrategy         = errors.Wrap(BadParameterError, "unknown allocation strategy")
	ErrInvalidTotalBudget      = errors.Wrap(BadParameterError, "total budget must be positive")
	ErrTotalBudgetBelowMinimum = errors.Wrap(BadParameterError, "total budget is below the minimum allowed")
)

// ErrConcurrentExecutionSkipped is not a failure: the evaluation cycle for the
// rule was skipped because another one is in flight.
var ErrConcurrentExecutionSkipped = errors.New("concurrent rule execution skipped")

// Platform adapter errors. A retryable failure is wrapped with
// ErrPlatformCallRetryable so the dispatcher knows it may back off and retry.
var (
	ErrPlatformCallFailed    = errors.New("platform call failed")
	ErrPlatformCallRetryable = errors.Wrap(ErrPlatformCallFailed, "retryable platform call failure")
)

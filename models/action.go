package models

import (
	"github.com/cockroachdb/errors"
)

type ActionType string

const (
	ActionPauseCampaign    ActionType = "pause_campaign"
	ActionResumeCampaign   ActionType = "resume_campaign"
	ActionAdjustBudget     ActionType = "adjust_budget"
	ActionReallocateBudget ActionType = "reallocate_budget"
	ActionSendNotification ActionType = "send_notification"
)

func ActionTypeFrom(s string) (ActionType, error) {
	switch t := ActionType(s); t {
	case ActionPauseCampaign, ActionResumeCampaign, ActionAdjustBudget,
		ActionReallocateBudget, ActionSendNotification:
		return t, nil
	default:
		return "", errors.Wrapf(ErrUnknownActionType, "action type %q", s)
	}
}

// Action is an effect to run when a rule fires. Params is an opaque bag
// interpreted by the action's handler in the dispatcher.
type Action struct {
	Type   ActionType     `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

func (a Action) Validate() error {
	_, err := ActionTypeFrom(string(a.Type))
	return err
}

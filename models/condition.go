package models

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

type ConditionOperator string

const (
	OperatorGreater        ConditionOperator = ">"
	OperatorGreaterOrEqual ConditionOperator = ">="
	OperatorLess           ConditionOperator = "<"
	OperatorLessOrEqual    ConditionOperator = "<="
	OperatorEqual          ConditionOperator = "="
	OperatorNotEqual       ConditionOperator = "!="
	OperatorContains       ConditionOperator = "contains"
	OperatorBetween        ConditionOperator = "between"
)

func ConditionOperatorFrom(s string) (ConditionOperator, error) {
	switch op := ConditionOperator(s); op {
	case OperatorGreater, OperatorGreaterOrEqual, OperatorLess, OperatorLessOrEqual,
		OperatorEqual, OperatorNotEqual, OperatorContains, OperatorBetween:
		return op, nil
	default:
		return "", errors.Wrapf(ErrUnknownOperator, "operator %q", s)
	}
}

// ConditionValue is the right-hand operand of a condition: either a scalar
// (number, string, bool, list) or an inclusive numeric range for "between".
// The two shapes are distinguished at decode time so that a malformed range
// is rejected when the rule is stored, not when it is evaluated.
type ConditionValue struct {
	Scalar any
	Range  *ConditionRange
}

type ConditionRange struct {
	Min float64
	Max float64
}

func NewScalarValue(v any) ConditionValue {
	return ConditionValue{Scalar: v}
}

func NewRangeValue(min, max float64) ConditionValue {
	return ConditionValue{Range: &ConditionRange{Min: min, Max: max}}
}

func (v ConditionValue) IsRange() bool {
	return v.Range != nil
}

func (v ConditionValue) MarshalJSON() ([]byte, error) {
	if v.Range != nil {
		return json.Marshal([2]float64{v.Range.Min, v.Range.Max})
	}
	return json.Marshal(v.Scalar)
}

// UnmarshalJSON accepts a scalar, a two-element numeric array, or the
// {"min": x, "max": y} object form used by older rule definitions.
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err == nil {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err == nil && len(raw) == 2 {
			*v = NewRangeValue(pair[0], pair[1])
			return nil
		}
	}

	var obj struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Min != nil && obj.Max != nil {
		*v = NewRangeValue(*obj.Min, *obj.Max)
		return nil
	}

	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return errors.Wrap(BadParameterError, "condition value is not valid JSON")
	}
	*v = NewScalarValue(scalar)
	return nil
}

// Condition is a single predicate over an entity metrics snapshot. Field is a
// dot path into the snapshot.
type Condition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    ConditionValue    `json:"value"`
}

func (c Condition) Validate() error {
	if c.Field == "" {
		return errors.Wrap(BadParameterError, "condition field is required")
	}
	if _, err := ConditionOperatorFrom(string(c.Operator)); err != nil {
		return err
	}
	if c.Operator == OperatorBetween && !c.Value.IsRange() {
		return errors.Wrap(BadParameterError, "between operator requires a [min, max] range value")
	}
	if c.Operator != OperatorBetween && c.Value.IsRange() {
		return errors.Wrapf(BadParameterError, "operator %q does not accept a range value", c.Operator)
	}
	return nil
}

type ConditionLogic string

const (
	ConditionLogicAnd ConditionLogic = "and"
	ConditionLogicOr  ConditionLogic = "or"
)

func ConditionLogicFrom(s string) (ConditionLogic, error) {
	switch logic := ConditionLogic(s); logic {
	case ConditionLogicAnd, ConditionLogicOr:
		return logic, nil
	default:
		return "", errors.Wrapf(BadParameterError, "unknown condition logic %q", s)
	}
}

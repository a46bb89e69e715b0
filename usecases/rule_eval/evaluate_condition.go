package rule_eval

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cmis/automation-backend/models"
)

// ResolveField walks a dot path into the entity metrics snapshot. A missing
// segment resolves to (nil, false), never an error.
func ResolveField(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	segments := strings.Split(path, ".")
	var current any = data
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// EvaluateCondition applies one predicate to the snapshot. Malformed
// conditions and type mismatches evaluate to false so one bad condition never
// blocks the rest of the rule. The second return reports whether the
// condition definition itself was usable.
func EvaluateCondition(condition models.Condition, data map[string]any) (matched bool, wellFormed bool) {
	if condition.Field == "" {
		return false, false
	}
	if _, err := models.ConditionOperatorFrom(string(condition.Operator)); err != nil {
		return false, false
	}

	fieldValue, found := ResolveField(data, condition.Field)
	if !found {
		return false, true
	}

	switch condition.Operator {
	case models.OperatorGreater, models.OperatorGreaterOrEqual,
		models.OperatorLess, models.OperatorLessOrEqual:
		return evaluateNumericComparison(condition.Operator, fieldValue, condition.Value), true
	case models.OperatorEqual:
		return valuesEqual(fieldValue, condition.Value.Scalar), true
	case models.OperatorNotEqual:
		return !valuesEqual(fieldValue, condition.Value.Scalar), true
	case models.OperatorContains:
		return evaluateContains(fieldValue, condition.Value.Scalar), true
	case models.OperatorBetween:
		if condition.Value.Range == nil {
			return false, false
		}
		fieldNum, ok := toFloat(fieldValue)
		if !ok {
			return false, true
		}
		return fieldNum >= condition.Value.Range.Min && fieldNum <= condition.Value.Range.Max, true
	}
	return false, false
}

func evaluateNumericComparison(operator models.ConditionOperator, fieldValue any, conditionValue models.ConditionValue) bool {
	left, ok := toFloat(fieldValue)
	if !ok {
		return false
	}
	right, ok := toFloat(conditionValue.Scalar)
	if !ok {
		return false
	}

	switch operator {
	case models.OperatorGreater:
		return left > right
	case models.OperatorGreaterOrEqual:
		return left >= right
	case models.OperatorLess:
		return left < right
	case models.OperatorLessOrEqual:
		return left <= right
	}
	return false
}

// valuesEqual compares numerically when both sides are numeric (so "1.5" and
// 1.5 are equal), by plain equality otherwise.
func valuesEqual(a, b any) bool {
	aNum, aOk := toFloat(a)
	bNum, bOk := toFloat(b)
	if aOk && bOk {
		return aNum == bNum
	}
	if aOk != bOk {
		return false
	}
	return a == b
}

func evaluateContains(fieldValue, conditionValue any) bool {
	switch field := fieldValue.(type) {
	case string:
		needle, ok := conditionValue.(string)
		if !ok {
			return false
		}
		return strings.Contains(field, needle)
	case []any:
		for _, item := range field {
			if valuesEqual(item, conditionValue) {
				return true
			}
		}
		return false
	case []string:
		needle, ok := conditionValue.(string)
		if !ok {
			return false
		}
		for _, item := range field {
			if item == needle {
				return true
			}
		}
		return false
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int32:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(value, 64)
		return f, err == nil
	}
	return 0, false
}

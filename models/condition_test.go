package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionValueDecoding(t *testing.T) {
	t.Run("scalar number", func(t *testing.T) {
		var v ConditionValue
		require.NoError(t, json.Unmarshal([]byte(`1.5`), &v))
		assert.False(t, v.IsRange())
		assert.Equal(t, 1.5, v.Scalar)
	})

	t.Run("scalar string", func(t *testing.T) {
		var v ConditionValue
		require.NoError(t, json.Unmarshal([]byte(`"summer"`), &v))
		assert.False(t, v.IsRange())
		assert.Equal(t, "summer", v.Scalar)
	})

	t.Run("pair form", func(t *testing.T) {
		var v ConditionValue
		require.NoError(t, json.Unmarshal([]byte(`[10, 100]`), &v))
		require.True(t, v.IsRange())
		assert.Equal(t, 10.0, v.Range.Min)
		assert.Equal(t, 100.0, v.Range.Max)
	})

	t.Run("min max object form", func(t *testing.T) {
		var v ConditionValue
		require.NoError(t, json.Unmarshal([]byte(`{"min": 10, "max": 100}`), &v))
		require.True(t, v.IsRange())
		assert.Equal(t, 10.0, v.Range.Min)
		assert.Equal(t, 100.0, v.Range.Max)
	})

	t.Run("list stays scalar", func(t *testing.T) {
		var v ConditionValue
		require.NoError(t, json.Unmarshal([]byte(`["a", "b"]`), &v))
		assert.False(t, v.IsRange())
	})
}

func TestConditionValidate(t *testing.T) {
	ok := Condition{Field: "spend", Operator: OperatorGreater, Value: NewScalarValue(100.0)}
	assert.NoError(t, ok.Validate())

	missingField := Condition{Operator: OperatorGreater, Value: NewScalarValue(100.0)}
	assert.Error(t, missingField.Validate())

	rangeOnEquality := Condition{Field: "spend", Operator: OperatorEqual, Value: NewRangeValue(1, 2)}
	assert.Error(t, rangeOnEquality.Validate())

	between := Condition{Field: "spend", Operator: OperatorBetween, Value: NewRangeValue(1, 2)}
	assert.NoError(t, between.Validate())
}

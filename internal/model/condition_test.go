package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Condition
		wantErr  bool
	}{
		{name: "simple", text: "payee contains gas", expected: NewCondition(FieldPayee, OperatorContains, "gas")},
		{name: "value keeps inner spaces", text: "memo equals  monthly  fee ", expected: NewCondition(FieldMemo, OperatorEquals, "monthly  fee")},
		{name: "case-insensitive names", text: "Withdrawal BEGINS-WITH Assets", expected: NewCondition(FieldWithdrawal, OperatorBeginsWith, "Assets")},
		{name: "empty value", text: "memo equals", expected: NewCondition(FieldMemo, OperatorEquals, "")},
		{name: "unknown field", text: "colour equals red", wantErr: true},
		{name: "unknown operator", text: "payee like gas", wantErr: true},
		{name: "too short", text: "payee", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCondition(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCondition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestCondition_WithersCopy(t *testing.T) {
	original := NewCondition(FieldPayee, OperatorContains, "gas")

	changed := original.WithField(FieldMemo).WithOperator(OperatorEndsWith).WithValue("fee")

	assert.Equal(t, NewCondition(FieldMemo, OperatorEndsWith, "fee"), changed)
	assert.Equal(t, NewCondition(FieldPayee, OperatorContains, "gas"), original)
	assert.Equal(t, "payee contains gas", original.String())
}

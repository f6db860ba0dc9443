package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCondition is returned when condition text cannot be parsed.
var ErrInvalidCondition = errors.New("invalid condition")

// Field names the transaction attribute a condition inspects.
type Field string

// Transaction fields available to conditions.
const (
	FieldNone       Field = "none"
	FieldDate       Field = "date"
	FieldValue      Field = "value"
	FieldMemo       Field = "memo"
	FieldPayee      Field = "payee"
	FieldWithdrawal Field = "withdrawal"
	FieldDeposit    Field = "deposit"
	FieldType       Field = "type"
	FieldAny        Field = "any"
)

// Fields lists every field in display order.
var Fields = []Field{
	FieldNone, FieldDate, FieldValue, FieldMemo, FieldPayee,
	FieldWithdrawal, FieldDeposit, FieldType, FieldAny,
}

// Operator is the comparison a condition applies.
type Operator string

// Comparison operators.
const (
	OperatorNone                Operator = "none"
	OperatorEquals              Operator = "equals"
	OperatorEqualsCaseSensitive Operator = "equals-case"
	OperatorContains            Operator = "contains"
	OperatorBeginsWith          Operator = "begins-with"
	OperatorEndsWith            Operator = "ends-with"
)

// Operators lists every operator in display order.
var Operators = []Operator{
	OperatorNone, OperatorEquals, OperatorEqualsCaseSensitive,
	OperatorContains, OperatorBeginsWith, OperatorEndsWith,
}

// ParseField resolves a field name, ignoring case.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return FieldNone, fmt.Errorf("%w: unknown field %q", ErrInvalidCondition, s)
}

// ParseOperator resolves an operator name, ignoring case.
func ParseOperator(s string) (Operator, error) {
	for _, op := range Operators {
		if strings.EqualFold(string(op), s) {
			return op, nil
		}
	}
	return OperatorNone, fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, s)
}

// Condition is a single field/operator/value test. Conditions are values:
// the With* methods return modified copies and never change the receiver.
type Condition struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// NewCondition creates a condition.
func NewCondition(field Field, op Operator, value string) Condition {
	return Condition{Field: field, Operator: op, Value: value}
}

// WithField returns a copy of the condition inspecting a different field.
func (c Condition) WithField(field Field) Condition {
	c.Field = field
	return c
}

// WithOperator returns a copy of the condition using a different operator.
func (c Condition) WithOperator(op Operator) Condition {
	c.Operator = op
	return c
}

// WithValue returns a copy of the condition comparing against a different value.
func (c Condition) WithValue(value string) Condition {
	c.Value = value
	return c
}

// ParseCondition parses "<field> <operator> <value>", e.g. "payee contains gas station".
// The value keeps its inner spacing and may be empty.
func ParseCondition(text string) (Condition, error) {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 3)
	if len(parts) < 2 {
		return Condition{}, fmt.Errorf("%w: expected \"<field> <operator> <value>\", got %q", ErrInvalidCondition, text)
	}

	field, err := ParseField(parts[0])
	if err != nil {
		return Condition{}, err
	}
	op, err := ParseOperator(parts[1])
	if err != nil {
		return Condition{}, err
	}

	value := ""
	if len(parts) == 3 {
		value = strings.TrimSpace(parts[2])
	}
	return NewCondition(field, op, value), nil
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, c.Value)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccount(t *testing.T) {
	expenses := NewAccount("Expenses", nil)
	fuel := NewAccount("Fuel", NewAccount("Auto", expenses))

	assert.Equal(t, []string{"Expenses", "Auto", "Fuel"}, fuel.Path())
	assert.Equal(t, "Expenses:Auto:Fuel", fuel.FullName())
	assert.Equal(t, "Expenses:Auto:Fuel", fuel.String())

	parsed := ParseAccount("Expenses:Auto:Fuel")
	assert.True(t, parsed.Equal(fuel))
	assert.Equal(t, "Auto", parsed.Parent.Name)
	assert.False(t, parsed.Equal(expenses))
}

func TestAccount_Nil(t *testing.T) {
	var none *Account

	assert.Equal(t, "", none.FullName())
	assert.Nil(t, none.Path())
	assert.True(t, none.Equal(nil))
	assert.False(t, none.Equal(ParseAccount("Assets")))
	assert.False(t, ParseAccount("Assets").Equal(none))
}

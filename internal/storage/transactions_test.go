package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveTransactions(t *testing.T) {
	tests := []struct {
		name         string
		transactions []model.Transaction
		wantErr      error
		wantInserted int
	}{
		{
			name:         "save new transactions",
			transactions: createTestTransactions(3),
			wantInserted: 3,
		},
		{
			name:         "duplicates within a batch are ignored",
			transactions: append(createTestTransactions(2), createTestTransactions(2)...),
			wantInserted: 2,
		},
		{
			name:         "empty slice",
			transactions: []model.Transaction{},
			wantErr:      ErrEmptySlice,
		},
		{
			name:         "nil slice",
			transactions: nil,
			wantErr:      ErrNilParameter,
		},
		{
			name:         "missing date",
			transactions: []model.Transaction{{Payee: "x"}},
			wantErr:      ErrInvalidTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()

			inserted, err := store.SaveTransactions(context.Background(), tt.transactions)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInserted, inserted)
		})
	}
}

func TestSQLiteStorage_ReimportIsDeduplicated(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	inserted, err := store.SaveTransactions(ctx, createTestTransactions(3))
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	inserted, err = store.SaveTransactions(ctx, createTestTransactions(5))
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestSQLiteStorage_GetTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	saved := createTestTransactions(5)
	saved = append(saved, model.NewTransaction(
		time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC), "April", "note",
		decimal.RequireFromString("7.25"), nil, model.ParseAccount("Assets:Checking"),
	))
	// insertion order differs from date order
	saved[0], saved[4] = saved[4], saved[0]

	_, err := store.SaveTransactions(ctx, saved)
	require.NoError(t, err)

	all, err := store.GetTransactions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Date.Before(all[i-1].Date))
	}

	april := all[5]
	assert.Equal(t, "April", april.Payee)
	assert.Equal(t, "note", april.Memo)
	assert.Nil(t, april.Withdrawal)
	assert.Equal(t, "Assets:Checking", april.Deposit.FullName())
	assert.Equal(t, "7.25", april.FormattedAmount())

	window := model.CustomPeriod{
		From: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
	}
	inWindow, err := store.GetTransactions(ctx, window)
	require.NoError(t, err)
	require.Len(t, inWindow, 3)
	assert.Equal(t, "Merchant B", inWindow[0].Payee)
	assert.Equal(t, "21.00", inWindow[0].FormattedAmount())

	for _, txn := range inWindow {
		original := findByPayee(saved, txn.Payee)
		assert.True(t, original.Equal(txn), "%s != %s", original, txn)
	}
}

func TestSQLiteStorage_DeleteTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.SaveTransactions(ctx, createTestTransactions(5))
	require.NoError(t, err)

	removed, err := store.DeleteTransactions(ctx, model.CustomPeriod{
		From: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = store.DeleteTransactions(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)
}

func findByPayee(transactions []model.Transaction, payee string) model.Transaction {
	for _, txn := range transactions {
		if txn.Payee == payee {
			return txn
		}
	}
	return model.Transaction{}
}

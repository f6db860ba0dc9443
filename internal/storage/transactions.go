package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/estimate-flow/internal/model"
	"github.com/shopspring/decimal"
)

// SaveTransactions stores transactions, ignoring any already present with the
// same hash. It returns how many were new.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	var inserted int
	err := s.withBusyRetry(ctx, func() error {
		var saveErr error
		inserted, saveErr = s.saveTransactions(ctx, transactions)
		return saveErr
	})
	return inserted, err
}

func (s *SQLiteStorage) saveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			hash, date, payee, memo, amount, withdrawal, deposit
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		result, execErr := stmt.ExecContext(ctx,
			txn.GenerateHash(),
			txn.Date.Format(model.DateLayout),
			txn.Payee,
			txn.Memo,
			txn.Amount.String(),
			txn.Withdrawal.FullName(),
			txn.Deposit.FullName(),
		)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn, execErr)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transactions: %w", err)
	}
	return inserted, nil
}

// GetTransactions returns stored transactions within period, oldest first.
// A nil period returns everything.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, period model.Period) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT date, payee, memo, amount, withdrawal, deposit FROM transactions`
	var args []any
	if period != nil {
		query += ` WHERE date >= ? AND date <= ?`
		args = append(args, period.Start().Format(model.DateLayout), period.End().Format(model.DateLayout))
	}
	query += ` ORDER BY date, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// CountTransactions returns the number of stored transactions.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// DeleteTransactions removes stored transactions within period and returns how many were removed.
func (s *SQLiteStorage) DeleteTransactions(ctx context.Context, period model.Period) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if period == nil {
		return 0, fmt.Errorf("%w: period", ErrNilParameter)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE date >= ? AND date <= ?`,
		period.Start().Format(model.DateLayout), period.End().Format(model.DateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted transactions: %w", err)
	}
	return int(n), nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var (
			dateStr, payee, memo, amountStr string
			withdrawal, deposit             string
		)
		if err := rows.Scan(&dateStr, &payee, &memo, &amountStr, &withdrawal, &deposit); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		date, err := time.Parse(model.DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored date %q: %w", dateStr, err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored amount %q: %w", amountStr, err)
		}

		transactions = append(transactions, model.NewTransaction(
			date, payee, memo, amount, accountOrNil(withdrawal), accountOrNil(deposit),
		))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func accountOrNil(fullName string) *model.Account {
	if fullName == "" {
		return nil
	}
	return model.ParseAccount(fullName)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const expenseColumns = `id, group_id, description, amount, currency, payer_id, added_by, receipt_url, created_at, updated_at`

// CreateExpense persists a new expense together with its owed-by list.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Currency,
			expense.PayerID, expense.AddedBy, expense.ReceiptURL, expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertShares(ctx, tx, expense)
	})
}

// GetExpense retrieves an expense by ID, including its owed-by list.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`,
		expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	shares, err := listShares(ctx, s.db, []string{expense.ID})
	if err != nil {
		return nil, err
	}
	expense.OwedBy = shares[expense.ID]
	return expense, nil
}

// UpdateExpense overwrites an expense and replaces its owed-by list.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE expenses
			 SET description = ?, amount = ?, currency = ?, payer_id = ?, receipt_url = ?, updated_at = ?
			 WHERE id = ?`,
			expense.Description, expense.Amount, expense.Currency, expense.PayerID,
			expense.ReceiptURL, expense.UpdatedAt, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if err := expectAffected(result, "expense", expense.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear shares: %w", err)
		}
		return insertShares(ctx, tx, expense)
	})
}

// DeleteExpense removes an expense by ID. Shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectAffected(result, "expense", expenseID)
}

// ListExpensesByGroup retrieves all expenses of a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return listExpenses(ctx, s.db, groupID)
}

func listExpenses(ctx context.Context, q queryer, groupID string) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ? ORDER BY created_at DESC, rowid DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	shares, err := listShares(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.OwedBy = shares[e.ID]
	}
	return expenses, nil
}

func insertShares(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, share := range expense.OwedBy {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, position, member_id, amount) VALUES (?, ?, ?, ?)",
			expense.ID, i, share.MemberID, share.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return nil
}

// listShares returns the owed-by lists of the given expenses, keyed by expense ID.
func listShares(ctx context.Context, q queryer, expenseIDs []string) (map[string][]models.OwedShare, error) {
	shares := make(map[string][]models.OwedShare, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return shares, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT expense_id, member_id, amount FROM expense_shares
		 WHERE expense_id IN (`+placeholders(len(expenseIDs))+`)
		 ORDER BY expense_id, position`,
		stringArgs(expenseIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var share models.OwedShare
		if err := rows.Scan(&expenseID, &share.MemberID, &share.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares[expenseID] = append(shares[expenseID], share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return shares, nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	err := row.Scan(
		&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.Currency,
		&e.PayerID, &e.AddedBy, &e.ReceiptURL, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrv/tripledger/internal/models"
	"github.com/mkrv/tripledger/internal/storage"
)

// CreateExpense persists a new expense and its cost assignments in one
// transaction. The caller is responsible for having called Normalize; the
// store writes the derived fields as given.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = expense.CreatedAt
	if expense.Status == "" {
		expense.Status = models.ExpenseOpen
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, trip_id, description, category_id, amount, currency, fx_rate, normalized_amount, date, status, paid_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.TripID, nullableString(expense.Description), nullableString(expense.CategoryID),
			expense.Amount, expense.Currency, expense.FxRate, expense.NormalizedAmount,
			expense.Date.Unix(), expense.Status, expense.PaidByID, expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertAssignments(ctx, tx, expense)
	})
}

// UpdateExpense replaces an expense's fields and assignments. Assignments
// are deleted and reinserted rather than diffed.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET description = ?, category_id = ?, amount = ?, currency = ?, fx_rate = ?, normalized_amount = ?, date = ?, status = ?, paid_by = ?, updated_at = ?
			 WHERE id = ? AND deleted_at = 0`,
			nullableString(expense.Description), nullableString(expense.CategoryID),
			expense.Amount, expense.Currency, expense.FxRate, expense.NormalizedAmount,
			expense.Date.Unix(), expense.Status, expense.PaidByID, expense.UpdatedAt,
			expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if err := requireRow(res, expense.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM cost_assignments WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}
		return insertAssignments(ctx, tx, expense)
	})
}

func insertAssignments(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Assignments {
		a := &expense.Assignments[i]
		a.ExpenseID = expense.ID
		if a.SplitType == "" {
			a.SplitType = models.SplitExact
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cost_assignments (expense_id, user_id, share_amount, normalized_share_amount, split_type)
			 VALUES (?, ?, ?, ?, ?)`,
			a.ExpenseID, a.UserID, a.ShareAmount, a.NormalizedShareAmount, a.SplitType,
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves a live expense with assignments and payer display
// fields.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := s.queryExpenses(ctx,
		`SELECT e.id, e.trip_id, e.description, e.category_id, e.amount, e.currency, e.fx_rate, e.normalized_amount, e.date, e.status, e.paid_by,
		        e.created_at, e.updated_at, u.display_name, u.email, u.photo_url
		 FROM expenses e
		 JOIN users u ON u.id = e.paid_by
		 WHERE e.id = ? AND e.deleted_at = 0`,
		expenseID,
	)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return expenses[0], nil
}

// ListExpensesByTrip returns all live expenses on a trip, any status, with
// assignments and payer display fields joined in. This is the settlement
// engine's input snapshot.
func (s *SQLiteStore) ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT e.id, e.trip_id, e.description, e.category_id, e.amount, e.currency, e.fx_rate, e.normalized_amount, e.date, e.status, e.paid_by,
		        e.created_at, e.updated_at, u.display_name, u.email, u.photo_url
		 FROM expenses e
		 JOIN users u ON u.id = e.paid_by
		 WHERE e.trip_id = ? AND e.deleted_at = 0
		 ORDER BY e.date, e.created_at`,
		tripID,
	)
}

func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...interface{}) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		payer := &models.User{}
		var description, categoryID, photoURL sql.NullString
		var date int64
		if err := rows.Scan(&e.ID, &e.TripID, &description, &categoryID,
			&e.Amount, &e.Currency, &e.FxRate, &e.NormalizedAmount, &date, &e.Status, &e.PaidByID,
			&e.CreatedAt, &e.UpdatedAt, &payer.DisplayName, &payer.Email, &photoURL); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Description = description.String
		e.CategoryID = categoryID.String
		e.Date = time.Unix(date, 0).UTC()
		payer.ID = e.PaidByID
		payer.PhotoURL = photoURL.String
		e.PaidBy = payer
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]string, 0, len(expenses))
	args = args[:0]
	for _, e := range expenses {
		ids = append(ids, e.ID)
		args = append(args, e.ID)
	}

	assignRows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, share_amount, normalized_share_amount, split_type
		 FROM cost_assignments
		 WHERE expense_id IN (?`+repeatPlaceholder(len(ids)-1)+`)
		 ORDER BY expense_id, user_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var a models.CostAssignment
		if err := assignRows.Scan(&a.ExpenseID, &a.UserID, &a.ShareAmount, &a.NormalizedShareAmount, &a.SplitType); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if e, ok := byID[a.ExpenseID]; ok {
			e.Assignments = append(e.Assignments, a)
		}
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return expenses, nil
}

// DeleteExpense soft-deletes an expense. Its assignments stay in place but
// are unreachable since every expense query filters deleted rows.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET deleted_at = ? WHERE id = ? AND deleted_at = 0",
		time.Now().Unix(), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireRow(res, expenseID)
}

// SetExpenseStatus flips an expense's lifecycle status.
func (s *SQLiteStore) SetExpenseStatus(ctx context.Context, expenseID string, status models.ExpenseStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET status = ?, updated_at = ? WHERE id = ? AND deleted_at = 0",
		status, time.Now().Unix(), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to set expense status: %w", err)
	}
	return requireRow(res, expenseID)
}

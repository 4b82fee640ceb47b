package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"expense-dashboard/internal/apperr"
	"expense-dashboard/internal/models"
)

const expenseColumns = "id, user_email, amount, category, description, date"

// CreateExpense inserts e and sets its ID.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.Date.IsZero() {
		return apperr.Validation("date is required")
	}
	res, err := db.conn.ExecContext(ctx,
		"INSERT INTO expenses (user_email, amount, category, description, date) VALUES (?, ?, ?, ?, ?)",
		e.UserEmail, e.Amount, e.Category, e.Description, e.Date.Format(models.DateLayout),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			return apperr.NotFound("user %s", e.UserEmail)
		}
		return fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("expense last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// GetExpense retrieves a single expense by ID.
func (db *DB) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		id,
	)
	e, err := db.scanExpense(row)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("expense %d", id))
	}
	return e, nil
}

// UpdateExpense overwrites the mutable fields of an existing expense.
func (db *DB) UpdateExpense(ctx context.Context, e *models.Expense) error {
	date := ""
	if !e.Date.IsZero() {
		date = e.Date.Format(models.DateLayout)
	}
	res, err := db.conn.ExecContext(ctx,
		"UPDATE expenses SET amount = ?, category = ?, description = ?, date = COALESCE(NULLIF(?, ''), date) WHERE id = ?",
		e.Amount, e.Category, e.Description, date, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("expense %d", e.ID)
	}
	return nil
}

// DeleteExpense removes an expense by ID. Deleting a missing row is not an error.
func (db *DB) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ListExpensesByUser returns every expense owned by email, newest date first.
// Expenses sharing a date keep insertion order.
func (db *DB) ListExpensesByUser(ctx context.Context, email string) ([]models.Expense, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_email = ? ORDER BY date DESC, id ASC",
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := db.scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}

	return expenses, rows.Err()
}

// CountExpenses returns the number of stored expenses across all users.
func (db *DB) CountExpenses(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses").Scan(&count)
	return count, err
}

func (db *DB) scanExpense(row scanner) (*models.Expense, error) {
	var (
		e           models.Expense
		amount      any
		category    sql.NullString
		description sql.NullString
		date        sql.NullString
	)
	if err := row.Scan(&e.ID, &e.UserEmail, &amount, &category, &description, &date); err != nil {
		return nil, err
	}
	e.Amount = amountValue(amount)
	e.Category = category.String
	e.Description = description.String

	if d, err := time.Parse(models.DateLayout, strings.TrimSpace(date.String)); err == nil {
		e.Date = d
	} else {
		db.log.WithFields(logrus.Fields{"expense_id": e.ID, "date": date.String}).Warn("unreadable expense date")
	}
	return &e, nil
}

// amountValue reads a stored amount leniently: anything non-numeric or non-finite counts as 0.
func amountValue(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	case []byte:
		f, _ = strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	case string:
		f, _ = strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

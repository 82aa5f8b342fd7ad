package expense

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ykuznetsov/settleup/internal/expense/split"
	"github.com/ykuznetsov/settleup/internal/settlement"
)

// Repository persists expenses and their shares in PostgreSQL. It is the
// single source of transaction snapshots for the settlement service.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const expenseColumns = "id, group_id, payer_id, description, amount, split_type, date, created_at"

// Create inserts the expense and all its shares in one transaction.
func (r *Repository) Create(ctx context.Context, e *Expense, shares []split.Share) (*WithShares, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, group_id, payer_id, description, amount, split_type, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.GroupID, e.PayerID, e.Description, e.Amount, e.SplitType, e.Date, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	out := &WithShares{Expense: e, Shares: make([]*Share, 0, len(shares))}
	for _, sh := range shares {
		row := &Share{
			ID:            uuid.NewString(),
			ExpenseID:     e.ID,
			ParticipantID: sh.ParticipantID,
			Amount:        sh.Amount,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expense_shares (id, expense_id, participant_id, amount)
			VALUES ($1, $2, $3, $4)`,
			row.ID, row.ExpenseID, row.ParticipantID, row.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("insert share: %w", err)
		}
		out.Shares = append(out.Shares, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*WithShares, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE id = $1 AND is_deleted = FALSE`, id)

	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}

	shares, err := r.sharesFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return &WithShares{Expense: e, Shares: shares[id]}, nil
}

// Update rewrites the expense row. When shares is non-nil the old shares
// are replaced with the recomputed set, all within one transaction.
func (r *Repository) Update(ctx context.Context, e *Expense, shares []split.Share) (*WithShares, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE expenses
		SET description = $2, amount = $3, split_type = $4, date = $5
		WHERE id = $1 AND is_deleted = FALSE`,
		e.ID, e.Description, e.Amount, e.SplitType, e.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrExpenseNotFound
	}

	if shares != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_shares WHERE expense_id = $1`, e.ID); err != nil {
			return nil, fmt.Errorf("clear shares: %w", err)
		}
		for _, sh := range shares {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO expense_shares (id, expense_id, participant_id, amount)
				VALUES ($1, $2, $3, $4)`,
				uuid.NewString(), e.ID, sh.ParticipantID, sh.Amount,
			)
			if err != nil {
				return nil, fmt.Errorf("insert share: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return r.GetByID(ctx, e.ID)
}

func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET is_deleted = TRUE
		WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// List returns a page of expenses matching the filter, newest first, plus
// the total match count for pagination metadata.
func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*WithShares, int, error) {
	where := []string{"e.is_deleted = FALSE"}
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		p := arg(filter.UserID)
		where = append(where, fmt.Sprintf(
			"(e.payer_id = %s OR EXISTS (SELECT 1 FROM expense_shares s WHERE s.expense_id = e.id AND s.participant_id = %s))", p, p))
	}
	if filter.GroupID != "" {
		where = append(where, "e.group_id = "+arg(filter.GroupID))
	}
	if filter.StartDate != nil {
		where = append(where, "e.date >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "e.date <= "+arg(*filter.EndDate))
	}
	cond := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses e WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM expenses e
		WHERE %s
		ORDER BY e.date DESC, e.created_at DESC
		LIMIT %s OFFSET %s`,
		qualify(expenseColumns, "e"), cond, arg(limit), arg(offset))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var (
		expenses []*Expense
		ids      []string
	)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	shareMap, err := r.sharesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*WithShares, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, &WithShares{Expense: e, Shares: shareMap[e.ID]})
	}
	return out, total, nil
}

// ListTransactions returns the settlement snapshot of every non-deleted
// expense the participant paid or shared in. An empty participantID returns
// all expenses.
func (r *Repository) ListTransactions(ctx context.Context, participantID string) ([]settlement.Transaction, error) {
	query := `
		SELECT id, payer_id, amount FROM expenses
		WHERE is_deleted = FALSE`
	args := []interface{}{}
	if participantID != "" {
		query += ` AND (payer_id = $1 OR EXISTS (
			SELECT 1 FROM expense_shares s WHERE s.expense_id = expenses.id AND s.participant_id = $1))`
		args = append(args, participantID)
	}
	query += ` ORDER BY created_at, id`
	return r.transactions(ctx, query, args...)
}

// ListGroupTransactions returns the settlement snapshot restricted to one
// group's expenses.
func (r *Repository) ListGroupTransactions(ctx context.Context, groupID string) ([]settlement.Transaction, error) {
	return r.transactions(ctx, `
		SELECT id, payer_id, amount FROM expenses
		WHERE is_deleted = FALSE AND group_id = $1
		ORDER BY created_at, id`, groupID)
}

func (r *Repository) transactions(ctx context.Context, query string, args ...interface{}) ([]settlement.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var (
		txns []settlement.Transaction
		ids  []string
	)
	index := make(map[string]int)
	for rows.Next() {
		var (
			id  string
			txn settlement.Transaction
		)
		if err := rows.Scan(&id, &txn.PayerID, &txn.Amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		index[id] = len(txns)
		txns = append(txns, txn)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shareMap, err := r.sharesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, i := range index {
		for _, sh := range shareMap[id] {
			txns[i].Shares = append(txns[i].Shares, split.Share{
				ParticipantID: sh.ParticipantID,
				Amount:        sh.Amount,
			})
		}
	}
	return txns, nil
}

// sharesFor loads the shares of the given expenses in one query, keyed by
// expense ID.
func (r *Repository) sharesFor(ctx context.Context, expenseIDs []string) (map[string][]*Share, error) {
	out := make(map[string][]*Share, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, expense_id, participant_id, amount
		FROM expense_shares
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, id`, pq.Array(expenseIDs))
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s Share
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.ParticipantID, &s.Amount); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		out[s.ExpenseID] = append(out[s.ExpenseID], &s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.Amount, &e.SplitType, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func qualify(columns, alias string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}

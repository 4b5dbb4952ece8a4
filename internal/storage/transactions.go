package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hearth/internal/core"
)

const transactionColumns = `id, connection_id, date, name, amount, category_kind, category_target, income_month, is_split`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t              core.Transaction
		connectionID   sql.NullString
		date, amount   string
		kind, target   sql.NullString
		incomeMonth    sql.NullString
	)
	if err := row.Scan(&t.ID, &connectionID, &date, &t.Name, &amount, &kind, &target, &incomeMonth, &t.IsSplit); err != nil {
		return core.Transaction{}, err
	}
	t.ConnectionID = connectionID.String
	t.Category = scanCategory(kind, target)

	var err error
	if t.Date, err = parseDate(date); err != nil {
		return core.Transaction{}, err
	}
	if t.Amount, err = parseAmountColumn(amount); err != nil {
		return core.Transaction{}, err
	}
	if t.IncomeMonth, err = nullMonth(incomeMonth); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func scanSplit(row interface{ Scan(...any) error }) (core.TransactionSplit, error) {
	var (
		sp           core.TransactionSplit
		label        sql.NullString
		amount, date string
		kind, target sql.NullString
		incomeMonth  sql.NullString
	)
	if err := row.Scan(&sp.ID, &sp.TransactionID, &label, &amount, &date, &kind, &target, &incomeMonth); err != nil {
		return core.TransactionSplit{}, err
	}
	sp.Label = label.String
	sp.Category = scanCategory(kind, target)

	var err error
	if sp.Amount, err = parseAmountColumn(amount); err != nil {
		return core.TransactionSplit{}, err
	}
	if sp.Date, err = parseDate(date); err != nil {
		return core.TransactionSplit{}, err
	}
	if sp.IncomeMonth, err = nullMonth(incomeMonth); err != nil {
		return core.TransactionSplit{}, err
	}
	return sp, nil
}

// InsertTransactionIfAbsent inserts an imported transaction unless a row
// with the same id already exists. It reports whether a row was written,
// which makes repeat imports of the same bank feed idempotent.
func (s *Store) InsertTransactionIfAbsent(ctx context.Context, tx *sql.Tx, t core.Transaction) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}
	var q querier = s.db
	if tx != nil {
		q = tx
	}
	kind, target := categoryColumns(t.Category)
	res, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO transactions (id, connection_id, date, name, amount, category_kind, category_target, income_month, is_split)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		t.ID, t.ConnectionID, formatDate(t.Date), t.Name, core.FormatAmount(t.Amount), kind, target, monthParam(t.IncomeMonth))
	if err != nil {
		return false, fmt.Errorf("insert transaction %s: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CreateManualTransaction records a hand-entered transaction against the
// synthetic manual connection and returns its generated id.
func (s *Store) CreateManualTransaction(ctx context.Context, t core.Transaction) (string, error) {
	t.ID = uuid.NewString()
	t.ConnectionID = core.ManualConnectionID
	if !t.Category.IsAssigned() {
		t.Category = core.Uncategorized()
	}
	if err := t.Validate(); err != nil {
		return "", err
	}
	if err := s.EnsureManualConnection(ctx); err != nil {
		return "", err
	}
	kind, target := categoryColumns(t.Category)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, connection_id, date, name, amount, category_kind, category_target, income_month, is_split)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		t.ID, t.ConnectionID, formatDate(t.Date), t.Name, core.FormatAmount(t.Amount), kind, target, monthParam(t.IncomeMonth))
	if err != nil {
		return "", fmt.Errorf("insert manual transaction: %w", err)
	}
	return t.ID, nil
}

// Transaction fetches a single transaction with its splits attached.
func (s *Store) Transaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("query transaction %s: %w", id, err)
	}
	if t.IsSplit {
		if t.Splits, err = s.splitsFor(ctx, t.ID); err != nil {
			return core.Transaction{}, err
		}
	}
	return t, nil
}

func (s *Store) splitsFor(ctx context.Context, transactionID string) ([]core.TransactionSplit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, label, amount, date, category_kind, category_target, income_month
		FROM transaction_splits WHERE transaction_id = ? ORDER BY date, id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("query splits for %s: %w", transactionID, err)
	}
	defer rows.Close()

	var splits []core.TransactionSplit
	for rows.Next() {
		sp, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		splits = append(splits, sp)
	}
	return splits, rows.Err()
}

// OnBudgetTransactions returns every transaction belonging to an on-budget
// connection, splits attached, ordered by date descending. This is the raw
// material for all monthly aggregation.
func (s *Store) OnBudgetTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.connection_id, t.date, t.name, t.amount, t.category_kind, t.category_target, t.income_month, t.is_split
		FROM transactions t
		JOIN connections c ON c.id = t.connection_id
		WHERE c.is_on_budget = 1
		ORDER BY t.date DESC, t.id`)
	if err != nil {
		return nil, fmt.Errorf("query on-budget transactions: %w", err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	return s.attachSplits(ctx, txns)
}

// ConnectionTransactions returns the transactions of a single connection,
// newest first.
func (s *Store) ConnectionTransactions(ctx context.Context, connectionID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE connection_id = ? ORDER BY date DESC, id`, connectionID)
	if err != nil {
		return nil, fmt.Errorf("query connection transactions: %w", err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}
	return s.attachSplits(ctx, txns)
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// attachSplits fills in Splits for every split parent in one query.
func (s *Store) attachSplits(ctx context.Context, txns []core.Transaction) ([]core.Transaction, error) {
	hasSplits := false
	for _, t := range txns {
		if t.IsSplit {
			hasSplits = true
			break
		}
	}
	if !hasSplits {
		return txns, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, label, amount, date, category_kind, category_target, income_month
		FROM transaction_splits ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query splits: %w", err)
	}
	defer rows.Close()

	byParent := make(map[string][]core.TransactionSplit)
	for rows.Next() {
		sp, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		byParent[sp.TransactionID] = append(byParent[sp.TransactionID], sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range txns {
		if txns[i].IsSplit {
			txns[i].Splits = byParent[txns[i].ID]
		}
	}
	return txns, nil
}

// AssignCategory sets the category of a non-split transaction. The income
// month is persisted only for income; assigning any other kind clears it.
func (s *Store) AssignCategory(ctx context.Context, id string, c core.Category, incomeMonth core.Month) error {
	if c.Kind == core.KindIncome && incomeMonth.IsZero() {
		return core.ErrMissingIncomeMonth
	}
	if c.Kind != core.KindIncome {
		incomeMonth = core.Month{}
	}
	kind, target := categoryColumns(c)
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET category_kind = ?, category_target = ?, income_month = ?
		WHERE id = ? AND is_split = 0`,
		kind, target, monthParam(incomeMonth), id)
	if err != nil {
		return fmt.Errorf("assign category on %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// ReplaceSplits swaps the full split set of a transaction in one
// transaction. Existing splits are discarded and the given ones inserted
// with fresh ids. Fewer than two splits collapses the parent back to a
// plain uncategorized transaction.
func (s *Store) ReplaceSplits(ctx context.Context, id string, splits []core.TransactionSplit) error {
	parent, err := s.Transaction(ctx, id)
	if err != nil {
		return err
	}
	if err := parent.ValidateSplits(splits); err != nil {
		return err
	}

	return s.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM transaction_splits WHERE transaction_id = ?`, id); err != nil {
			return fmt.Errorf("clear splits: %w", err)
		}

		if len(splits) < 2 {
			return unsplitTx(ctx, tx, id)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE transactions SET is_split = 1, category_kind = NULL, category_target = NULL, income_month = NULL
			WHERE id = ?`, id); err != nil {
			return fmt.Errorf("mark split: %w", err)
		}

		for _, sp := range splits {
			kind, target := categoryColumns(sp.Category)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO transaction_splits (id, transaction_id, label, amount, date, category_kind, category_target, income_month)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), id, sp.Label, core.FormatAmount(sp.Amount.Abs()), formatDate(sp.Date),
				kind, target, monthParam(sp.IncomeMonth)); err != nil {
				return fmt.Errorf("insert split: %w", err)
			}
		}
		return nil
	})
}

// Unsplit removes every split and returns the transaction to the
// uncategorized state.
func (s *Store) Unsplit(ctx context.Context, id string) error {
	return s.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM transaction_splits WHERE transaction_id = ?`, id); err != nil {
			return fmt.Errorf("clear splits: %w", err)
		}
		return unsplitTx(ctx, tx, id)
	})
}

func unsplitTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions SET is_split = 0, category_kind = ?, category_target = NULL, income_month = NULL
		WHERE id = ?`, string(core.KindUncategorized), id)
	if err != nil {
		return fmt.Errorf("unsplit %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// DeleteTransaction removes a transaction and its splits via the cascade.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// Package store provides the transaction store consumed by the import
// pipeline: duplicate lookups and creation of canonical transactions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// TransactionStore is the collaborator interface the importer depends on.
type TransactionStore interface {
	// FindPotentialDuplicates returns stored transactions of the same user
	// with the same amount and description whose date falls inside
	// [start, end].
	FindPotentialDuplicates(ctx context.Context, userID string, amount decimal.Decimal, description string, start, end time.Time) ([]models.Transaction, error)

	// Create persists a transaction candidate and returns the stored
	// representation with its id filled in.
	Create(ctx context.Context, tx models.Transaction) (models.Transaction, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          TEXT NOT NULL,
	date_unix        INTEGER NOT NULL,
	date_iso         TEXT NOT NULL,
	description      TEXT NOT NULL,
	amount           TEXT NOT NULL,
	type             TEXT NOT NULL,
	subtype          TEXT NOT NULL DEFAULT '',
	source           TEXT NOT NULL DEFAULT '',
	category_id      TEXT NOT NULL,
	subcategory_id   TEXT NOT NULL DEFAULT '',
	counterparty_id  TEXT NOT NULL DEFAULT '',
	external_id      TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date_unix);
CREATE INDEX IF NOT EXISTS idx_transactions_user_desc ON transactions(user_id, description);
`

// SQLiteStore is the sqlite-backed TransactionStore.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenSQLite opens (creating if needed) the sqlite database at path and
// bootstraps the schema.
func OpenSQLite(path string, logger logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	logger.Debug("Opened transaction store", logging.Field{Key: logging.FieldFile, Value: path})
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindPotentialDuplicates queries by user, description and date window, then
// compares amounts numerically in Go since decimals are stored as text.
func (s *SQLiteStore) FindPotentialDuplicates(ctx context.Context, userID string, amount decimal.Decimal, description string, start, end time.Time) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date_unix, description, amount, type, subtype, source,
		       category_id, subcategory_id, counterparty_id, external_id
		FROM transactions
		WHERE user_id = ? AND description = ? AND date_unix BETWEEN ? AND ?`,
		userID, description, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("error querying duplicates: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close rows")
		}
	}()

	var matches []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		if tx.Amount.Equal(amount) {
			matches = append(matches, tx)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading duplicate rows: %w", err)
	}
	return matches, nil
}

// Create inserts the candidate and returns it with the assigned id.
func (s *SQLiteStore) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
			(user_id, date_unix, date_iso, description, amount, type, subtype, source,
			 category_id, subcategory_id, counterparty_id, external_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Date.UnixNano(), tx.Date.UTC().Format(time.RFC3339),
		tx.Description, tx.Amount.String(), string(tx.Type), tx.Subtype, tx.Source,
		tx.CategoryID, tx.SubcategoryID, tx.CounterpartyID, tx.ExternalID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("error creating transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("error reading created id: %w", err)
	}
	tx.ID = strconv.FormatInt(id, 10)
	tx.SyncDateText()
	return tx, nil
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var tx models.Transaction
	var id int64
	var dateUnix int64
	var amountText, txType string
	if err := rows.Scan(&id, &tx.UserID, &dateUnix, &tx.Description, &amountText,
		&txType, &tx.Subtype, &tx.Source, &tx.CategoryID, &tx.SubcategoryID,
		&tx.CounterpartyID, &tx.ExternalID); err != nil {
		return models.Transaction{}, fmt.Errorf("error scanning transaction: %w", err)
	}

	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("error parsing stored amount %q: %w", amountText, err)
	}

	tx.ID = strconv.FormatInt(id, 10)
	tx.Date = time.Unix(0, dateUnix).UTC()
	tx.Amount = amount
	tx.Type = models.TransactionType(txType)
	tx.SyncDateText()
	return tx, nil
}

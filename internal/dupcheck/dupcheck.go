// Package dupcheck decides whether a transaction candidate duplicates an
// already stored transaction.
package dupcheck

import (
	"context"

	"ledgerline/bankimport/internal/dateutils"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/store"
)

// Detector looks up potential duplicates in the transaction store.
type Detector struct {
	store  store.TransactionStore
	logger logging.Logger
}

// NewDetector creates a Detector backed by the given store.
func NewDetector(s store.TransactionStore, logger logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Detector{store: s, logger: logger}
}

// IsDuplicate reports whether a stored transaction of the same user with the
// same amount and description exists within the candidate's calendar day.
// The window is computed in the candidate date's own location, matching how
// the dates were parsed and stored. A candidate without a date is never
// treated as a duplicate.
func (d *Detector) IsDuplicate(ctx context.Context, tx models.Transaction) (bool, error) {
	if tx.Date.IsZero() {
		d.logger.Debug("Skipping duplicate detection for dateless candidate",
			logging.Field{Key: logging.FieldUser, Value: tx.UserID})
		return false, nil
	}

	start := dateutils.StartOfDay(tx.Date)
	end := dateutils.EndOfDay(tx.Date)

	matches, err := d.store.FindPotentialDuplicates(ctx, tx.UserID, tx.Amount, tx.Description, start, end)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"ledgerline/bankimport/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory TransactionStore used by tests and dry runs.
type MemoryStore struct {
	mu           sync.Mutex
	Transactions []models.Transaction
	nextID       int

	// Error injection for testing error conditions.
	FindError   error
	CreateError error
}

// NewMemoryStore creates an empty MemoryStore, optionally pre-seeded.
func NewMemoryStore(seed ...models.Transaction) *MemoryStore {
	s := &MemoryStore{}
	for _, tx := range seed {
		s.nextID++
		tx.ID = strconv.Itoa(s.nextID)
		s.Transactions = append(s.Transactions, tx)
	}
	return s
}

// FindPotentialDuplicates filters the stored transactions the same way the
// sqlite implementation queries them.
func (s *MemoryStore) FindPotentialDuplicates(_ context.Context, userID string, amount decimal.Decimal, description string, start, end time.Time) ([]models.Transaction, error) {
	if s.FindError != nil {
		return nil, s.FindError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []models.Transaction
	for _, tx := range s.Transactions {
		if tx.UserID != userID || tx.Description != description || !tx.Amount.Equal(amount) {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		matches = append(matches, tx)
	}
	return matches, nil
}

// Create appends the candidate and assigns it the next id.
func (s *MemoryStore) Create(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	if s.CreateError != nil {
		return models.Transaction{}, s.CreateError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	tx.ID = strconv.Itoa(s.nextID)
	tx.SyncDateText()
	s.Transactions = append(s.Transactions, tx)
	return tx, nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a fully classified transaction. Before persistence it acts
// as the candidate handed to the duplicate detector and the store; after
// persistence the store fills ID.
//
// Amount is an unsigned magnitude; the direction lives in Type.
type Transaction struct {
	ID             string          `csv:"Id" json:"id,omitempty"`
	UserID         string          `csv:"UserId" json:"userId"`
	Date           time.Time       `csv:"-" json:"date"`
	Description    string          `csv:"Description" json:"description"`
	Amount         decimal.Decimal `csv:"Amount" json:"amount"`
	Type           TransactionType `csv:"Type" json:"type"`
	Subtype        string          `csv:"Subtype" json:"subtype,omitempty"`
	Source         string          `csv:"Source" json:"source,omitempty"`
	CategoryID     string          `csv:"CategoryId" json:"categoryId"`
	SubcategoryID  string          `csv:"SubcategoryId" json:"subcategoryId,omitempty"`
	CounterpartyID string          `csv:"CounterpartyId" json:"counterpartyId,omitempty"`
	ExternalID     string          `csv:"ExternalId" json:"externalId,omitempty"`

	// DateText mirrors Date in ISO form for the CSV export.
	DateText string `csv:"Date" json:"-"`
}

// IsExpense returns true for money leaving the account.
func (t *Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// IsIncome returns true for money entering the account.
func (t *Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// SyncDateText refreshes the exported date string from Date.
func (t *Transaction) SyncDateText() {
	if t.Date.IsZero() {
		t.DateText = ""
		return
	}
	t.DateText = t.Date.Format("2006-01-02")
}

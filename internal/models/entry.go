package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawEntry is one statement record after parsing, before classification.
// Parsers create RawEntry values; the importer consumes each exactly once.
//
// Amount carries the debit-negative sign convention: money leaving the
// account is negative regardless of how the source file encoded it.
type RawEntry struct {
	// Line is the 1-based index of the record, counted from the first data
	// record of the file.
	Line       int
	ExternalID string

	Date        time.Time
	Description string
	Amount      decimal.Decimal

	// Detected classification values. Only the OFX parser fills these, since
	// its grammar encodes them directly.
	DetectedType    TransactionType
	DetectedSubtype string
	DetectedSource  string

	// Raw free-text classification values. Only the CSV parser fills these,
	// from the user-mapped columns. They carry no meaning until the mapping
	// dictionaries resolve them.
	RawType         string
	RawSubtype      string
	RawSource       string
	RawCategory     string
	RawSubcategory  string
	RawCounterparty string
}

// Issue is a per-record diagnostic explaining why a record was skipped,
// rejected, or failed, without aborting the rest of the import.
type Issue struct {
	Line       int       `json:"line"`
	ExternalID string    `json:"externalId,omitempty"`
	Message    string    `json:"message"`
	Kind       IssueKind `json:"kind"`
}

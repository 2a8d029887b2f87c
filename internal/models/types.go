// Package models provides the data structures shared across the import
// pipeline.
package models

// Format identifies a supported statement file format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatOFX  Format = "ofx"
)

// TransactionType is the top-level classification of a transaction.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// DuplicatePolicy controls what happens when a candidate matches an already
// stored transaction.
type DuplicatePolicy string

const (
	DuplicateSkip  DuplicatePolicy = "skip"
	DuplicateAllow DuplicatePolicy = "allow"
)

// IssueKind classifies a per-record import issue.
type IssueKind string

const (
	IssueParsing   IssueKind = "parsing-error"
	IssueDuplicate IssueKind = "duplicate-skipped"
	IssueRejected  IssueKind = "configuration-rejected"
)

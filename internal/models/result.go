package models

// ImportResult is the outcome of one import invocation.
//
// TotalEntries counts every non-header, non-blank record seen by the parser,
// including records that failed to parse. ProcessedEntries counts the records
// that reached classification: parsed successfully and not suppressed by the
// ignored-description filter. IgnoredEntries is the remainder, so
// TotalEntries == ProcessedEntries + IgnoredEntries and
// ProcessedEntries == CreatedCount + DuplicateCount + number of
// classification/persistence issues among processed records.
// During a dry run CreatedCount counts would-be creations while Created
// stays empty.
type ImportResult struct {
	DryRun           bool          `json:"dryRun"`
	TotalEntries     int           `json:"totalEntries"`
	ProcessedEntries int           `json:"processedEntries"`
	IgnoredEntries   int           `json:"ignoredEntries"`
	CreatedCount     int           `json:"createdCount"`
	DuplicateCount   int           `json:"duplicateCount"`
	Created          []Transaction `json:"created"`
	Issues           []Issue       `json:"issues"`
}

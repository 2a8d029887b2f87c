// Package csvparser reads header-described delimited-text statement files
// into raw entries, using the column mapping, separators, encoding and date
// patterns from the import profile.
package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/dateutils"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Adapter parses delimited-text statement files.
type Adapter struct {
	logger logging.Logger
}

// NewAdapter creates a CSV parser adapter with the given logger.
func NewAdapter(logger logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Adapter{logger: logger}
}

// columns holds the resolved header positions. Optional columns that are not
// present in the header are -1.
type columns struct {
	date         int
	description  int
	amount       int
	txType       int
	subtype      int
	source       int
	category     int
	subcategory  int
	counterparty int
	externalID   int
}

// Parse reads the file into raw entries plus per-record parsing issues.
// A missing required header column or an undecodable encoding is returned as
// an error and aborts the import; everything else is a per-record issue.
func (a *Adapter) Parse(data []byte, profile *config.ImportProfile) ([]models.RawEntry, []models.Issue, error) {
	opts := profile.CSV
	if opts == nil {
		return nil, nil, &parsererror.ConfigError{Option: "csv", Reason: "csv options are required for delimited-text imports"}
	}

	loc, err := opts.Location()
	if err != nil {
		return nil, nil, &parsererror.ConfigError{Option: "csv.time_zone", Reason: err.Error()}
	}

	reader, err := decode(data, opts.Encoding)
	if err != nil {
		return nil, nil, err
	}

	r := csv.NewReader(reader)
	r.Comma = opts.DelimiterRune()
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			a.logger.Warn("CSV file is empty")
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	cols, err := resolveColumns(header, opts.Columns)
	if err != nil {
		return nil, nil, err
	}

	var entries []models.RawEntry
	var issues []models.Issue
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line++
			issues = append(issues, models.Issue{
				Line:    line,
				Message: fmt.Sprintf("malformed record: %v", err),
				Kind:    models.IssueParsing,
			})
			continue
		}
		if isBlank(record) {
			continue
		}
		line++

		entry, err := a.buildEntry(line, record, cols, opts, loc)
		if err != nil {
			issues = append(issues, models.Issue{
				Line:       line,
				ExternalID: field(record, cols.externalID),
				Message:    err.Error(),
				Kind:       models.IssueParsing,
			})
			continue
		}
		entries = append(entries, entry)
	}

	a.logger.Info("Parsed delimited-text statement",
		logging.Field{Key: logging.FieldCount, Value: len(entries)},
		logging.Field{Key: "issues", Value: len(issues)})
	return entries, issues, nil
}

// buildEntry converts one data record into a RawEntry. Any failure rejects
// only this record; the caller records the issue and keeps going.
func (a *Adapter) buildEntry(line int, record []string, cols columns, opts *config.CSVOptions, loc *time.Location) (models.RawEntry, error) {
	description := strings.TrimSpace(field(record, cols.description))
	if description == "" {
		return models.RawEntry{}, fmt.Errorf("description is blank")
	}

	amount, err := ParseAmount(field(record, cols.amount), opts.DecimalSeparator, opts.GroupingSeparator)
	if err != nil {
		return models.RawEntry{}, &parsererror.ParseError{
			Parser: "csv", Field: "amount", Value: field(record, cols.amount), Err: err,
		}
	}

	date, err := dateutils.ParseWithPatterns(field(record, cols.date), opts.DatePatterns, loc)
	if err != nil {
		return models.RawEntry{}, &parsererror.ParseError{
			Parser: "csv", Field: "date", Value: field(record, cols.date), Err: err,
		}
	}

	return models.RawEntry{
		Line:            line,
		ExternalID:      strings.TrimSpace(field(record, cols.externalID)),
		Date:            date,
		Description:     description,
		Amount:          amount,
		RawType:         strings.TrimSpace(field(record, cols.txType)),
		RawSubtype:      strings.TrimSpace(field(record, cols.subtype)),
		RawSource:       strings.TrimSpace(field(record, cols.source)),
		RawCategory:     strings.TrimSpace(field(record, cols.category)),
		RawSubcategory:  strings.TrimSpace(field(record, cols.subcategory)),
		RawCounterparty: strings.TrimSpace(field(record, cols.counterparty)),
	}, nil
}

// decode wraps the raw bytes in a reader that converts the configured
// character encoding to UTF-8. Encodings are looked up by IANA label.
func decode(data []byte, encoding string) (io.Reader, error) {
	reader := io.Reader(bytes.NewReader(data))
	label := strings.ToLower(strings.TrimSpace(encoding))
	if label == "" || label == "utf-8" || label == "utf8" {
		return reader, nil
	}
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, &parsererror.ConfigError{
			Option: "csv.encoding",
			Reason: fmt.Sprintf("unsupported character encoding %q", encoding),
		}
	}
	return transform.NewReader(reader, enc.NewDecoder()), nil
}

// resolveColumns builds the case-insensitive header lookup and resolves every
// configured column name to its position. A missing required column is fatal.
func resolveColumns(header []string, mapping config.ColumnMapping) (columns, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if pos, ok := positions[strings.ToLower(strings.TrimSpace(name))]; ok {
			return pos
		}
		return -1
	}

	cols := columns{
		date:         lookup(mapping.Date),
		description:  lookup(mapping.Description),
		amount:       lookup(mapping.Amount),
		txType:       lookup(mapping.Type),
		subtype:      lookup(mapping.Subtype),
		source:       lookup(mapping.Source),
		category:     lookup(mapping.Category),
		subcategory:  lookup(mapping.Subcategory),
		counterparty: lookup(mapping.Counterparty),
		externalID:   lookup(mapping.ExternalID),
	}

	for _, required := range []struct {
		name string
		pos  int
	}{
		{mapping.Date, cols.date},
		{mapping.Description, cols.description},
		{mapping.Amount, cols.amount},
	} {
		if required.pos < 0 {
			return columns{}, &parsererror.ConfigError{
				Option: "csv.columns",
				Reason: fmt.Sprintf("required column %q not found in header", required.name),
			}
		}
	}

	return cols, nil
}

// field returns record[idx] or empty when the column is absent or the record
// is short.
func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParseAmount parses a statement amount using the configured decimal and
// grouping separators. A parenthesized value and a trailing minus both mean
// negative; the result keeps the debit-negative sign convention.
func ParseAmount(raw, decimalSep, groupingSep string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is blank")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if groupingSep != "" {
		s = strings.ReplaceAll(s, groupingSep, "")
	}
	if decimalSep != "" && decimalSep != "." {
		s = strings.ReplaceAll(s, decimalSep, ".")
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(s, "+")
	if strings.HasSuffix(s, "-") {
		s = "-" + strings.TrimSuffix(s, "-")
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative || value.IsNegative() {
		return value.Abs().Neg(), nil
	}
	return value, nil
}

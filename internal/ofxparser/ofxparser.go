// Package ofxparser reads OFX/QFX statement files into raw entries. The
// format is the SGML dialect banks export: tag-per-line records inside
// <STMTTRN> blocks, with values terminated by the next tag or end of line.
package ofxparser

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"time"

	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"

	"github.com/shopspring/decimal"
)

// Adapter parses OFX statement files.
type Adapter struct {
	logger logging.Logger
}

// NewAdapter creates an OFX parser adapter with the given logger.
func NewAdapter(logger logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Adapter{logger: logger}
}

// trnTypes maps OFX TRNTYPE codes onto detected classification values. The
// transaction type is encoded directly in the record, which is why this
// parser can fill detected values the CSV parser cannot.
var trnTypes = map[string]struct {
	txType models.TransactionType
	source string
}{
	"CREDIT":      {models.TypeIncome, ""},
	"DEP":         {models.TypeIncome, ""},
	"DIRECTDEP":   {models.TypeIncome, ""},
	"INT":         {models.TypeIncome, ""},
	"DIV":         {models.TypeIncome, ""},
	"DEBIT":       {models.TypeExpense, ""},
	"PAYMENT":     {models.TypeExpense, ""},
	"FEE":         {models.TypeExpense, ""},
	"SRVCHG":      {models.TypeExpense, ""},
	"POS":         {models.TypeExpense, "card"},
	"ATM":         {models.TypeExpense, "cash"},
	"CHECK":       {models.TypeExpense, "check"},
	"XFER":        {"", "transfer"},
	"DIRECTDEBIT": {models.TypeExpense, "transfer"},
	"REPEATPMT":   {models.TypeExpense, "transfer"},
}

// dtPostedLayouts are the DTPOSTED forms seen in the wild, most specific
// first. Fractional seconds and bracketed zone offsets are stripped before
// matching.
var dtPostedLayouts = []string{
	"20060102150405",
	"200601021504",
	"20060102",
}

// Parse reads OFX data into raw entries plus per-record issues. Records are
// indexed 1-based in block order. A file with no <STMTTRN> blocks at all is
// an error; a malformed block is an issue for that record only.
func (a *Adapter) Parse(data []byte, profile *config.ImportProfile) ([]models.RawEntry, []models.Issue, error) {
	blocks := splitBlocks(data)
	if len(blocks) == 0 {
		return nil, nil, &parsererror.ParseError{
			Parser: "ofx",
			Field:  "STMTTRN",
			Value:  "",
			Err:    fmt.Errorf("no transaction blocks found"),
		}
	}

	var entries []models.RawEntry
	var issues []models.Issue
	for i, block := range blocks {
		line := i + 1
		entry, err := a.buildEntry(line, block)
		if err != nil {
			issues = append(issues, models.Issue{
				Line:       line,
				ExternalID: block["FITID"],
				Message:    err.Error(),
				Kind:       models.IssueParsing,
			})
			continue
		}
		entries = append(entries, entry)
	}

	a.logger.Info("Parsed OFX statement",
		logging.Field{Key: logging.FieldCount, Value: len(entries)},
		logging.Field{Key: "issues", Value: len(issues)})
	return entries, issues, nil
}

// buildEntry converts one STMTTRN block into a RawEntry.
func (a *Adapter) buildEntry(line int, block map[string]string) (models.RawEntry, error) {
	description := strings.TrimSpace(block["NAME"])
	if description == "" {
		description = strings.TrimSpace(block["MEMO"])
	} else if memo := strings.TrimSpace(block["MEMO"]); memo != "" && memo != description {
		description = description + " " + memo
	}
	if description == "" {
		return models.RawEntry{}, fmt.Errorf("transaction has no NAME or MEMO")
	}

	amount, err := parseAmount(block["TRNAMT"])
	if err != nil {
		return models.RawEntry{}, &parsererror.ParseError{
			Parser: "ofx", Field: "TRNAMT", Value: block["TRNAMT"], Err: err,
		}
	}

	date, err := parseDate(block["DTPOSTED"])
	if err != nil {
		return models.RawEntry{}, &parsererror.ParseError{
			Parser: "ofx", Field: "DTPOSTED", Value: block["DTPOSTED"], Err: err,
		}
	}

	entry := models.RawEntry{
		Line:        line,
		ExternalID:  strings.TrimSpace(block["FITID"]),
		Date:        date,
		Description: description,
		Amount:      amount,
	}

	if mapped, ok := trnTypes[strings.ToUpper(strings.TrimSpace(block["TRNTYPE"]))]; ok {
		entry.DetectedType = mapped.txType
		entry.DetectedSource = mapped.source
	}

	return entry, nil
}

// splitBlocks extracts the tag-value pairs of every <STMTTRN> block. Closing
// tags are optional in SGML OFX, so a new opening tag also ends the current
// block.
func splitBlocks(data []byte) []map[string]string {
	var blocks []map[string]string
	var current map[string]string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.EqualFold(line, "<STMTTRN>"):
			if current != nil {
				blocks = append(blocks, current)
			}
			current = make(map[string]string)
		case strings.EqualFold(line, "</STMTTRN>"):
			if current != nil {
				blocks = append(blocks, current)
				current = nil
			}
		case current != nil && strings.HasPrefix(line, "<"):
			tag, value, ok := splitTagLine(line)
			if ok {
				current[tag] = value
			}
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

// splitTagLine parses "<TAG>value" into its parts. Lines holding only an
// opening aggregate tag ("<BANKTRANLIST>") are not tag-value pairs.
func splitTagLine(line string) (string, string, bool) {
	end := strings.IndexByte(line, '>')
	if end <= 1 {
		return "", "", false
	}
	tag := strings.ToUpper(line[1:end])
	if strings.HasPrefix(tag, "/") {
		return "", "", false
	}
	value := strings.TrimSpace(line[end+1:])
	// A value may be terminated by a stray closing tag on the same line.
	if idx := strings.IndexByte(value, '<'); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	if value == "" {
		return "", "", false
	}
	return tag, value, true
}

// parseAmount reads a TRNAMT value. OFX always uses a dot decimal separator
// and a leading sign, with debits negative already.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is missing")
	}
	s = strings.TrimPrefix(s, "+")
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return value, nil
}

// parseDate reads a DTPOSTED value such as 20240105, 20240105103000.500 or
// 20240105103000[-5:EST]. The bracketed zone suffix and fractional seconds
// are dropped; OFX dates are interpreted as UTC.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is missing")
	}
	if idx := strings.IndexByte(s, '['); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	for _, layout := range dtPostedLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

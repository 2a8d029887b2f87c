package config

import (
	"fmt"
	"os"
	"time"

	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// ColumnMapping names the CSV header columns carrying each field. Date,
// Description and Amount are required; the rest are optional and treated as
// absent when empty.
type ColumnMapping struct {
	Date         string `yaml:"date"`
	Description  string `yaml:"description"`
	Amount       string `yaml:"amount"`
	Type         string `yaml:"type,omitempty"`
	Subtype      string `yaml:"subtype,omitempty"`
	Source       string `yaml:"source,omitempty"`
	Category     string `yaml:"category,omitempty"`
	Subcategory  string `yaml:"subcategory,omitempty"`
	Counterparty string `yaml:"counterparty,omitempty"`
	ExternalID   string `yaml:"external_id,omitempty"`
}

// CSVOptions describes how a delimited-text statement file is laid out.
type CSVOptions struct {
	Columns           ColumnMapping `yaml:"columns"`
	Encoding          string        `yaml:"encoding,omitempty"`
	Delimiter         string        `yaml:"delimiter,omitempty"`
	DecimalSeparator  string        `yaml:"decimal_separator,omitempty"`
	GroupingSeparator string        `yaml:"grouping_separator,omitempty"`
	DatePatterns      []string      `yaml:"date_patterns,omitempty"`
	TimeZone          string        `yaml:"time_zone,omitempty"`
}

// DelimiterRune returns the configured field delimiter, defaulting to comma.
func (o *CSVOptions) DelimiterRune() rune {
	if o == nil || o.Delimiter == "" {
		return ','
	}
	return []rune(o.Delimiter)[0]
}

// Location resolves the configured time zone, defaulting to UTC.
func (o *CSVOptions) Location() (*time.Location, error) {
	if o == nil || o.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(o.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", o.TimeZone, err)
	}
	return loc, nil
}

// Mappings are the raw-text-to-canonical dictionaries. Keys are compared
// case-insensitively after trimming; normalization happens once per import.
type Mappings struct {
	Category     map[string]string `yaml:"category,omitempty"`
	Subcategory  map[string]string `yaml:"subcategory,omitempty"`
	Counterparty map[string]string `yaml:"counterparty,omitempty"`
	Type         map[string]string `yaml:"type,omitempty"`
	Subtype      map[string]string `yaml:"subtype,omitempty"`
	Source       map[string]string `yaml:"source,omitempty"`
}

// Defaults are the fallback classification values applied when no dictionary
// entry matches. CategoryID is the only mandatory fallback axis.
type Defaults struct {
	CategoryID     string `yaml:"category_id,omitempty"`
	SubcategoryID  string `yaml:"subcategory_id,omitempty"`
	CounterpartyID string `yaml:"counterparty_id,omitempty"`
	Type           string `yaml:"type,omitempty"`
	Subtype        string `yaml:"subtype,omitempty"`
	Source         string `yaml:"source,omitempty"`
}

// ImportProfile is the caller-supplied configuration for one import request.
type ImportProfile struct {
	Format              string      `yaml:"format,omitempty"`
	CSV                 *CSVOptions `yaml:"csv,omitempty"`
	Mappings            Mappings    `yaml:"mappings,omitempty"`
	Defaults            Defaults    `yaml:"defaults,omitempty"`
	IgnoredDescriptions []string    `yaml:"ignored_descriptions,omitempty"`
	DuplicatePolicy     string      `yaml:"duplicate_policy,omitempty"`
	DryRun              bool        `yaml:"dry_run,omitempty"`
}

// LoadProfile reads an ImportProfile from a YAML file.
func LoadProfile(path string) (*ImportProfile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("error reading profile file: %w", err)
	}
	var profile ImportProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("error parsing profile file: %w", err)
	}
	return &profile, nil
}

// FormatHint returns the declared format, defaulting to auto.
func (p *ImportProfile) FormatHint() models.Format {
	if p.Format == "" {
		return models.FormatAuto
	}
	return models.Format(p.Format)
}

// Policy returns the duplicate policy, defaulting to skip.
func (p *ImportProfile) Policy() models.DuplicatePolicy {
	if p.DuplicatePolicy == "" {
		return models.DuplicateSkip
	}
	return models.DuplicatePolicy(p.DuplicatePolicy)
}

// Validate checks the profile against the resolved format. Failures here are
// fatal for the whole import.
func (p *ImportProfile) Validate(format models.Format) error {
	switch p.FormatHint() {
	case models.FormatAuto, models.FormatCSV, models.FormatOFX:
	default:
		return &parsererror.ConfigError{Option: "format", Reason: fmt.Sprintf("unknown format %q", p.Format)}
	}

	switch p.Policy() {
	case models.DuplicateSkip, models.DuplicateAllow:
	default:
		return &parsererror.ConfigError{Option: "duplicate_policy", Reason: fmt.Sprintf("unknown policy %q", p.DuplicatePolicy)}
	}

	if format == models.FormatCSV {
		if p.CSV == nil {
			return &parsererror.ConfigError{Option: "csv", Reason: "csv options are required for delimited-text imports"}
		}
		cols := p.CSV.Columns
		if cols.Date == "" || cols.Description == "" || cols.Amount == "" {
			return &parsererror.ConfigError{Option: "csv.columns", Reason: "date, description and amount columns must be named"}
		}
		if p.CSV.Delimiter != "" && len([]rune(p.CSV.Delimiter)) != 1 {
			return &parsererror.ConfigError{Option: "csv.delimiter", Reason: "delimiter must be a single character"}
		}
		if _, err := p.CSV.Location(); err != nil {
			return &parsererror.ConfigError{Option: "csv.time_zone", Reason: err.Error()}
		}
	}

	// Category is the only classification axis without a sign-based fallback,
	// so a resolution path must exist before any record is processed.
	if p.Defaults.CategoryID == "" && len(p.Mappings.Category) == 0 {
		return &parsererror.ConfigError{
			Option: "defaults.category_id",
			Reason: "a default category id or a category mapping is required",
		}
	}

	return nil
}

// Package mapping turns the raw string values of a parsed statement record
// into canonical identifiers and enumerated values, using the case-insensitive
// dictionaries and fallback order from the import profile.
package mapping

import (
	"fmt"
	"strings"

	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"
)

// Normalize is the canonical key form used on both sides of every dictionary
// lookup: trimmed and lowercased.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Dictionary is a case-insensitive lookup from raw statement text to a
// canonical value. Keys are stored normalized so lookups are symmetric with
// construction.
type Dictionary map[string]string

// NewDictionary builds a Dictionary from profile-supplied mappings,
// normalizing every key once.
func NewDictionary(raw map[string]string) Dictionary {
	d := make(Dictionary, len(raw))
	for key, value := range raw {
		d[Normalize(key)] = value
	}
	return d
}

// Lookup resolves a raw value against the dictionary.
func (d Dictionary) Lookup(raw string) (string, bool) {
	if d == nil {
		return "", false
	}
	value, ok := d[Normalize(raw)]
	return value, ok
}

// NewSet normalizes a list of descriptions into a membership set.
func NewSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[Normalize(v)] = struct{}{}
	}
	return set
}

// Engine resolves classification values for raw entries. It is built once
// per import so the dictionaries are normalized exactly once.
type Engine struct {
	category     Dictionary
	subcategory  Dictionary
	counterparty Dictionary
	txType       Dictionary
	subtype      Dictionary
	source       Dictionary
	defaults     config.Defaults
}

// NewEngine builds an Engine from the import profile.
func NewEngine(profile *config.ImportProfile) *Engine {
	return &Engine{
		category:     NewDictionary(profile.Mappings.Category),
		subcategory:  NewDictionary(profile.Mappings.Subcategory),
		counterparty: NewDictionary(profile.Mappings.Counterparty),
		txType:       NewDictionary(profile.Mappings.Type),
		subtype:      NewDictionary(profile.Mappings.Subtype),
		source:       NewDictionary(profile.Mappings.Source),
		defaults:     profile.Defaults,
	}
}

// resolver is one step of a fallback chain. The chain is evaluated in order
// until a step returns ok.
type resolver func() (string, bool)

func first(resolvers ...resolver) (string, bool) {
	for _, r := range resolvers {
		if value, ok := r(); ok {
			return value, ok
		}
	}
	return "", false
}

func fromDictionary(d Dictionary, raw string) resolver {
	return func() (string, bool) {
		if strings.TrimSpace(raw) == "" {
			return "", false
		}
		return d.Lookup(raw)
	}
}

func fromValue(value string) resolver {
	return func() (string, bool) {
		return value, value != ""
	}
}

// ResolveCategory maps a raw category value to a canonical id, falling back
// to the default category. Category is the only axis with no sign-based
// fallback, so exhausting the chain is an error.
func (e *Engine) ResolveCategory(entry models.RawEntry) (string, error) {
	id, ok := first(
		fromDictionary(e.category, entry.RawCategory),
		fromValue(e.defaults.CategoryID),
	)
	if !ok {
		return "", &parsererror.ClassificationError{
			Axis: "category", Line: entry.Line,
			Reason: fmt.Sprintf("no mapping for %q and no default category", entry.RawCategory),
		}
	}
	return id, nil
}

// ResolveType resolves the transaction type: parser-detected value first,
// then the type dictionary, then the amount sign, then the configured
// default. A zero amount carries no sign information, so sign inference is
// skipped for it.
func (e *Engine) ResolveType(entry models.RawEntry) (models.TransactionType, error) {
	value, ok := first(
		fromValue(string(entry.DetectedType)),
		fromDictionary(e.txType, entry.RawType),
		fromDictionary(e.txType, entry.RawCategory),
		func() (string, bool) {
			if entry.Amount.IsZero() {
				return "", false
			}
			if entry.Amount.IsNegative() {
				return string(models.TypeExpense), true
			}
			return string(models.TypeIncome), true
		},
		fromValue(e.defaults.Type),
	)
	if !ok {
		return "", &parsererror.ClassificationError{
			Axis: "type", Line: entry.Line,
			Reason: "no detected type, no mapping, no amount sign, no default",
		}
	}

	txType := models.TransactionType(Normalize(value))
	if txType != models.TypeExpense && txType != models.TypeIncome {
		return "", &parsererror.ClassificationError{
			Axis: "type", Line: entry.Line,
			Reason: fmt.Sprintf("resolved type %q is not expense or income", value),
		}
	}
	return txType, nil
}

// ResolveSubtype resolves the subtype with the same precedence as the type
// axis but without sign inference. It may legitimately stay empty.
func (e *Engine) ResolveSubtype(entry models.RawEntry) string {
	value, _ := first(
		fromValue(entry.DetectedSubtype),
		fromDictionary(e.subtype, entry.RawSubtype),
		fromValue(e.defaults.Subtype),
	)
	return value
}

// ResolveSource resolves the funding source; like subtype it may stay empty.
func (e *Engine) ResolveSource(entry models.RawEntry) string {
	value, _ := first(
		fromValue(entry.DetectedSource),
		fromDictionary(e.source, entry.RawSource),
		fromValue(e.defaults.Source),
	)
	return value
}

// ResolveSubcategory maps the raw subcategory, falling back to the default;
// empty is allowed.
func (e *Engine) ResolveSubcategory(entry models.RawEntry) string {
	value, _ := first(
		fromDictionary(e.subcategory, entry.RawSubcategory),
		fromValue(e.defaults.SubcategoryID),
	)
	return value
}

// ResolveCounterparty maps the raw counterparty, falling back to the default;
// empty is allowed.
func (e *Engine) ResolveCounterparty(entry models.RawEntry) string {
	value, _ := first(
		fromDictionary(e.counterparty, entry.RawCounterparty),
		fromValue(e.defaults.CounterpartyID),
	)
	return value
}

// Classify builds the canonical transaction candidate for a raw entry. The
// signed parser amount becomes an unsigned magnitude plus the resolved type.
func (e *Engine) Classify(entry models.RawEntry, userID string) (models.Transaction, error) {
	txType, err := e.ResolveType(entry)
	if err != nil {
		return models.Transaction{}, err
	}
	categoryID, err := e.ResolveCategory(entry)
	if err != nil {
		return models.Transaction{}, err
	}

	tx := models.Transaction{
		UserID:         userID,
		Date:           entry.Date,
		Description:    entry.Description,
		Amount:         entry.Amount.Abs(),
		Type:           txType,
		Subtype:        e.ResolveSubtype(entry),
		Source:         e.ResolveSource(entry),
		CategoryID:     categoryID,
		SubcategoryID:  e.ResolveSubcategory(entry),
		CounterpartyID: e.ResolveCounterparty(entry),
		ExternalID:     entry.ExternalID,
	}
	tx.SyncDateText()
	return tx, nil
}

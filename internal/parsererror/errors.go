// Package parsererror defines the typed errors shared by the statement
// parsers and the import pipeline.
package parsererror

import "fmt"

// ParseError represents a failure to parse a single field of a record.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents a request-level configuration problem. Unlike
// per-record issues, a ConfigError aborts the whole import before any record
// is processed.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid import configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid import configuration (%s): %s", e.Option, e.Reason)
}

// ClassificationError represents a failure to resolve the classification of a
// single record through the configured fallback chain.
type ClassificationError struct {
	Axis   string
	Line   int
	Reason string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("record %d: cannot resolve %s: %s", e.Line, e.Axis, e.Reason)
}

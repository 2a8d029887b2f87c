// Package importer orchestrates a statement import: format resolution,
// parsing, classification, duplicate handling, persistence and result
// assembly.
package importer

import (
	"context"
	"fmt"
	"sort"

	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/csvparser"
	"ledgerline/bankimport/internal/dupcheck"
	"ledgerline/bankimport/internal/formats"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/mapping"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/ofxparser"
	"ledgerline/bankimport/internal/store"
)

// Request carries everything one import invocation needs.
type Request struct {
	UserID      string
	FileName    string
	ContentType string
	Data        []byte
	Profile     *config.ImportProfile
}

// Importer runs statement imports against a transaction store. It holds no
// state between invocations, so concurrent imports are safe as long as the
// store provides per-record atomicity.
type Importer struct {
	store    store.TransactionStore
	detector *dupcheck.Detector
	logger   logging.Logger
}

// New creates an Importer backed by the given store.
func New(s store.TransactionStore, logger logging.Logger) *Importer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Importer{
		store:    s,
		detector: dupcheck.NewDetector(s, logger),
		logger:   logger,
	}
}

// Import processes one statement file. Format resolution and profile
// validation failures abort the whole request; every other failure becomes a
// per-record issue and processing continues to the end of the file.
func (i *Importer) Import(ctx context.Context, req Request) (*models.ImportResult, error) {
	if req.Profile == nil {
		req.Profile = &config.ImportProfile{}
	}
	profile := req.Profile

	format, err := formats.Resolve(profile.FormatHint(), req.FileName, req.ContentType)
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(format); err != nil {
		return nil, err
	}

	log := i.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: req.FileName},
		logging.Field{Key: logging.FieldFormat, Value: string(format)},
		logging.Field{Key: logging.FieldUser, Value: req.UserID},
	)
	log.Info("Starting statement import",
		logging.Field{Key: logging.FieldDryRun, Value: profile.DryRun})

	// Dictionaries and the ignored-description set are normalized once here;
	// lookups stay symmetric with that normalization.
	engine := mapping.NewEngine(profile)
	ignored := mapping.NewSet(profile.IgnoredDescriptions)

	entries, issues, err := i.parse(format, req.Data, profile)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{
		DryRun:       profile.DryRun,
		TotalEntries: len(entries) + len(issues),
		Issues:       issues,
	}

	policy := profile.Policy()
	filtered := 0
	for _, entry := range entries {
		if _, skip := ignored[mapping.Normalize(entry.Description)]; skip {
			filtered++
			result.Issues = append(result.Issues, models.Issue{
				Line:       entry.Line,
				ExternalID: entry.ExternalID,
				Message:    fmt.Sprintf("description %q ignored by configuration", entry.Description),
				Kind:       models.IssueRejected,
			})
			continue
		}

		candidate, err := engine.Classify(entry, req.UserID)
		if err != nil {
			result.Issues = append(result.Issues, i.recordIssue(entry, err))
			continue
		}

		duplicate, err := i.detector.IsDuplicate(ctx, candidate)
		if err != nil {
			result.Issues = append(result.Issues, i.recordIssue(entry, err))
			continue
		}
		if duplicate && policy == models.DuplicateSkip {
			result.DuplicateCount++
			result.Issues = append(result.Issues, models.Issue{
				Line:       entry.Line,
				ExternalID: entry.ExternalID,
				Message:    "transaction already exists for this user, amount, description and day",
				Kind:       models.IssueDuplicate,
			})
			continue
		}

		if profile.DryRun {
			result.CreatedCount++
			continue
		}

		created, err := i.store.Create(ctx, candidate)
		if err != nil {
			result.Issues = append(result.Issues, i.recordIssue(entry, err))
			continue
		}
		result.CreatedCount++
		result.Created = append(result.Created, created)
	}

	result.ProcessedEntries = len(entries) - filtered
	result.IgnoredEntries = result.TotalEntries - result.ProcessedEntries
	sort.SliceStable(result.Issues, func(a, b int) bool {
		return result.Issues[a].Line < result.Issues[b].Line
	})

	log.Info("Statement import finished",
		logging.Field{Key: logging.FieldCount, Value: result.TotalEntries},
		logging.Field{Key: logging.FieldCreated, Value: result.CreatedCount},
		logging.Field{Key: logging.FieldSkipped, Value: result.DuplicateCount},
		logging.Field{Key: "issues", Value: len(result.Issues)})
	return result, nil
}

// parse dispatches to the parser matching the resolved format.
func (i *Importer) parse(format models.Format, data []byte, profile *config.ImportProfile) ([]models.RawEntry, []models.Issue, error) {
	switch format {
	case models.FormatCSV:
		return csvparser.NewAdapter(i.logger).Parse(data, profile)
	case models.FormatOFX:
		return ofxparser.NewAdapter(i.logger).Parse(data, profile)
	default:
		return nil, nil, fmt.Errorf("no parser for format %q", format)
	}
}

func (i *Importer) recordIssue(entry models.RawEntry, err error) models.Issue {
	i.logger.WithError(err).Debug("Record rejected",
		logging.Field{Key: logging.FieldLine, Value: entry.Line})
	return models.Issue{
		Line:       entry.Line,
		ExternalID: entry.ExternalID,
		Message:    err.Error(),
		Kind:       models.IssueParsing,
	}
}

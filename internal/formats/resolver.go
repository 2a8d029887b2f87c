// Package formats decides which statement parser handles an uploaded file.
package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"
)

// Resolve determines the concrete file format from the declared hint, the
// file name suffix, or the declared content type, in that order. An
// unresolvable format is a fatal configuration error: no partial processing
// happens without a format.
func Resolve(hint models.Format, fileName, contentType string) (models.Format, error) {
	switch hint {
	case models.FormatCSV, models.FormatOFX:
		return hint, nil
	case models.FormatAuto, "":
	default:
		return "", &parsererror.ConfigError{
			Option: "format",
			Reason: fmt.Sprintf("unknown format %q", hint),
		}
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return models.FormatCSV, nil
	case ".ofx", ".qfx":
		return models.FormatOFX, nil
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "csv"):
		return models.FormatCSV, nil
	case strings.Contains(ct, "ofx"):
		return models.FormatOFX, nil
	}

	return "", &parsererror.ConfigError{
		Option: "format",
		Reason: fmt.Sprintf("cannot determine format of %q (content type %q)", fileName, contentType),
	}
}

// Package validation checks caller-supplied values before they reach the
// loan math.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/home-affordability/pkg/constants"
)

var outputFormats = []string{constants.OutputFormatPretty, constants.OutputFormatCSV}

// ResolveOutputFormat picks the first non-blank of the CLI override and the
// configured format, falling back to pretty. Case and surrounding space are
// ignored.
func ResolveOutputFormat(override, configured string) (string, error) {
	format := constants.OutputFormatPretty
	for _, candidate := range []string{override, configured} {
		if c := strings.ToLower(strings.TrimSpace(candidate)); c != "" {
			format = c
			break
		}
	}

	for _, supported := range outputFormats {
		if format == supported {
			return format, nil
		}
	}
	return "", fmt.Errorf("expected output format of %s, got %q",
		strings.Join(outputFormats, " or "), format)
}

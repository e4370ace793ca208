package output

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned for a format name no formatter answers to.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Formatter renders a report. Format must not write anywhere itself.
type Formatter interface {
	Format(report *Report) ([]byte, error)
	// Name is the canonical format name accepted by --format.
	Name() string
	// Extension is used when the output is saved to a file.
	Extension() string
}

// WriteFormatted runs a formatter and writes output to a timestamped file in dir.
func WriteFormatted(f Formatter, report *Report, dir string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	stamp := report.GeneratedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	name := fmt.Sprintf("statutory_%s_%s.%s", safeFileToken(report.EmployeeID()), stamp.Format("20060102_150405"), f.Extension())
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

func safeFileToken(s string) string {
	if s == "" {
		return "employee"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// formatters holds the built-in formatters by canonical name.
var formatters = func() map[string]Formatter {
	m := make(map[string]Formatter)
	for _, f := range []Formatter{ConsoleFormatter{}, CSVSummarizer{}, CSVDetailedExporter{}, JSONFormatter{}} {
		m[f.Name()] = f
	}
	return m
}()

// formatAliases maps alternative spellings to canonical names.
var formatAliases = map[string]string{
	"text":         "console",
	"table":        "console",
	"csv-detailed": "detailed-csv",
	"csv-summary":  "csv",
	"json-pretty":  "json",
}

// GetFormatterByName returns the formatter for name or one of its aliases, or
// nil when there is none.
func GetFormatterByName(name string) Formatter {
	return formatters[NormalizeFormatName(name)]
}

// NormalizeFormatName trims and lower-cases name and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := formatAliases[n]; ok {
		return canonical
	}
	return n
}

// AvailableFormatterNames lists canonical names, sorted.
func AvailableFormatterNames() []string { return slices.Sorted(maps.Keys(formatters)) }

// AvailableFormatAliases lists alias names, sorted.
func AvailableFormatAliases() []string { return slices.Sorted(maps.Keys(formatAliases)) }

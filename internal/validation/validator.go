package validation

import (
	"fmt"
	"slices"
	"strings"

	"audiopilot/internal/naming"
)

// Result is the outcome of validating one filename.
type Result struct {
	Filename              string   `json:"filename"`
	IsValid               bool     `json:"isValid"`
	Violations            []string `json:"violations"`
	Severity              Severity `json:"severity"`
	ExpectedCanonicalName string   `json:"expectedCanonicalName,omitempty"`
}

func (r *Result) add(severity Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if severity == SeverityCritical {
		msg = "CRITICAL: " + msg
	}
	r.Violations = append(r.Violations, msg)
	r.Severity = escalate(r.Severity, severity)
	r.IsValid = false
}

var leadingQuotes = []string{"'", "\"", "‘", "’", "“", "”", "`"}

func hasLeadingQuote(filename string) bool {
	for _, q := range leadingQuotes {
		if strings.HasPrefix(filename, q) {
			return true
		}
	}
	return false
}

func trimQuotes(filename string) string {
	for hasLeadingQuote(filename) {
		for _, q := range leadingQuotes {
			filename = strings.TrimPrefix(filename, q)
		}
	}
	return filename
}

func allowedRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.'
}

// Validate checks a filename against the structural naming rules. It knows
// nothing about rooms or entries.
func Validate(filename string) Result {
	res := Result{Filename: filename, IsValid: true, Violations: []string{}}
	trimmed := strings.TrimSpace(filename)

	if hasLeadingQuote(trimmed) {
		res.add(SeverityCritical, "leading quote character indicates a corrupted name")
	}
	lower := strings.ToLower(trimmed)
	if !strings.HasSuffix(lower, ".mp3") {
		res.add(SeverityCritical, "extension must be .mp3")
	}
	if trimmed != lower {
		res.add(SeverityWarning, "must be all lowercase")
	}
	if strings.ContainsAny(trimmed, " \t") {
		res.add(SeverityWarning, "must not contain spaces")
	}
	if strings.Contains(trimmed, "_") {
		res.add(SeverityWarning, "use hyphens instead of underscores")
	}
	if !strings.HasSuffix(lower, "-en.mp3") && !strings.HasSuffix(lower, "-vi.mp3") {
		res.add(SeverityCritical, "must end with -en.mp3 or -vi.mp3")
	}
	if bad := invalidRunes(trimQuotes(lower)); len(bad) > 0 {
		res.add(SeverityWarning, "contains invalid characters: %s", strings.Join(bad, " "))
	}

	if res.IsValid {
		res.ExpectedCanonicalName = trimmed
	} else {
		res.ExpectedCanonicalName = suggestName(trimmed)
	}
	return res
}

// invalidRunes lists distinct characters outside [a-z0-9-.], ignoring the
// separators and quotes that have their own rules.
func invalidRunes(lower string) []string {
	var bad []string
	for _, r := range lower {
		if allowedRune(r) || r == ' ' || r == '\t' || r == '_' {
			continue
		}
		s := string(r)
		if !slices.Contains(bad, s) {
			bad = append(bad, s)
		}
	}
	return bad
}

// suggestName normalizes a filename when its language can be recovered.
func suggestName(filename string) string {
	cleaned := trimQuotes(filename)
	lang, ok := naming.ExtractLanguage(cleaned)
	if !ok {
		return ""
	}
	stem, _ := naming.StripLanguageSuffix(cleaned)
	stem = naming.NormalizeFilename(stem)
	if stem == "" {
		return ""
	}
	return stem + "-" + string(lang) + ".mp3"
}

// BatchSummary counts results by outcome.
type BatchSummary struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Warnings int `json:"warnings"`
	Critical int `json:"critical"`
}

// Batch is the output of BatchValidate.
type Batch struct {
	Results []Result     `json:"results"`
	Summary BatchSummary `json:"summary"`
}

// BatchValidate validates every filename and tallies severities.
func BatchValidate(filenames []string) Batch {
	batch := Batch{Results: make([]Result, 0, len(filenames))}
	for _, name := range filenames {
		res := Validate(name)
		batch.Results = append(batch.Results, res)
		batch.Summary.Total++
		switch res.Severity {
		case SeverityOK:
			batch.Summary.Valid++
		case SeverityWarning:
			batch.Summary.Warnings++
		case SeverityCritical:
			batch.Summary.Critical++
		}
	}
	return batch
}

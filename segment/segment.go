// Package segment turns raw Japanese text into ordered display units by
// running it through a morphological analyzer.
package segment

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Mode selects the granularity of display units.
type Mode string

const (
	// ModeBunsetu groups tokens into clause segments (文節).
	ModeBunsetu Mode = "bunsetu"
	// ModeToken uses the analyzer's tokens as they are.
	ModeToken Mode = "token"
)

// ParseMode validates a span type given on the command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeBunsetu:
		return ModeBunsetu, nil
	case ModeToken:
		return ModeToken, nil
	default:
		return "", fmt.Errorf("span_type 只支持 bunsetu 或 token: %q", s)
	}
}

// Token is one morpheme reported by the analyzer.
// POS holds the part-of-speech hierarchy, most general first (IPA tag set).
// BaseForm is the dictionary form, empty when the analyzer does not know it.
type Token struct {
	Surface  string
	POS      []string
	BaseForm string
}

// Analyzer is the linguistic engine. Analyze returns the tokens of text in
// reading order; concatenating their surfaces reproduces the input.
//
//go:generate mockgen -destination=../mock_analyzer_test.go -package=main github.com/ByLCY/anchorgif/segment Analyzer
type Analyzer interface {
	Analyze(text string) []Token
}

// Split calls a exactly once and returns the display units of text.
// Line breaks are stripped from every span and spans left empty are dropped;
// an empty result is not an error.
func Split(a Analyzer, text string, mode Mode) []string {
	tokens := a.Analyze(norm.NFC.String(text))

	var spans []string
	switch mode {
	case ModeToken:
		spans = make([]string, 0, len(tokens))
		for _, tok := range tokens {
			spans = append(spans, tok.Surface)
		}
	default:
		spans = Bunsetu(tokens)
	}

	units := make([]string, 0, len(spans))
	for _, span := range spans {
		clean := stripLineBreaks(span)
		if clean != "" {
			units = append(units, clean)
		}
	}
	return units
}

var lineBreaks = strings.NewReplacer("\n", "", "\r", "")

func stripLineBreaks(s string) string { return lineBreaks.Replace(s) }

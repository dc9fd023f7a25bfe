// Package geneid extracts gene identifiers from protein descriptions using a
// configurable regular expression.
//
// Patterns use .NET regular expression syntax, including lookbehind,
// lookahead and repeated captures.
package geneid

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultPattern extracts the gene token from UniProt/SwissProt style names,
// e.g. KR2A from "sp|P02438|KR2A_SHEEP". The sp|/tr| block is optional; without
// it the token must start the string.
const DefaultPattern = `(?<=(?:(?:sp|tr)\|[0-9a-zA-Z\-]{6,}\|)|^)([A-Z0-9]{2,})(?=_[A-Z0-9]{2,})`

// MatchTimeout bounds a single match so a backtracking pattern cannot stall
// a batch.
const MatchTimeout = 5 * time.Second

// ErrInvalidPattern is returned when a gene ID pattern does not compile.
var ErrInvalidPattern = errors.New("geneid: invalid pattern")

// Extractor applies a compiled pattern to protein descriptions.
type Extractor struct {
	re *regexp2.Regexp
}

// New compiles pattern. Matching is case-insensitive unless caseSensitive is set.
func New(pattern string, caseSensitive bool) (*Extractor, error) {
	opts := regexp2.RegexOptions(regexp2.IgnoreCase)
	if caseSensitive {
		opts = regexp2.None
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}
	re.MatchTimeout = MatchTimeout
	return &Extractor{re: re}, nil
}

// Extract applies the pattern to text and resolves the match to one value:
//   - more than one group (group 0 is the whole match): the last group
//   - otherwise, when captures were recorded: the first capture
//   - otherwise the whole match
//
// A match that errors, including one that exceeds MatchTimeout, is reported
// as no match.
func (e *Extractor) Extract(text string) (string, bool) {
	m, err := e.re.FindStringMatch(text)
	if err != nil || m == nil {
		return "", false
	}

	groups := m.Groups()
	if len(groups) > 1 {
		return groups[len(groups)-1].String(), true
	}
	if len(m.Captures) > 0 {
		return m.Captures[0].String(), true
	}
	return m.String(), true
}

// Package filter provides score threshold filtering for identifications
package filter

import (
	"fmt"

	"github.com/PNNL-Comp-Mass-Spec/Mzid-To-Tsv-Converter/pkg/core"
)

// Config holds filtering configuration. A zero threshold disables its filter.
type Config struct {
	MaxSpecEValue float64 // Reject when SpecEValue exceeds this (active only within (0, 1))
	MaxEValue     float64 // Reject when EValue exceeds this (active when > 0)
	MaxQValue     float64 // Reject when QValue exceeds this (active only within (0, 1))
}

// BoundedActive reports whether a threshold for a score bounded to [0, 1]
// (SpecEValue, QValue) should be applied.
func BoundedActive(threshold float64) bool {
	return threshold > 0 && threshold < 1
}

// UnboundedActive reports whether a threshold for an unbounded score
// (EValue) should be applied.
func UnboundedActive(threshold float64) bool {
	return threshold > 0
}

// Passes reports whether score is acceptable under an active threshold.
func Passes(score, threshold float64) bool {
	return score <= threshold
}

// Active reports whether any filter is enabled.
func (c *Config) Active() bool {
	return BoundedActive(c.MaxSpecEValue) || UnboundedActive(c.MaxEValue) || BoundedActive(c.MaxQValue)
}

// Accept reports whether an identification passes all configured filters.
func (c *Config) Accept(id *core.Identification) bool {
	if BoundedActive(c.MaxSpecEValue) && !Passes(id.SpecEValue, c.MaxSpecEValue) {
		return false
	}
	if UnboundedActive(c.MaxEValue) && !Passes(id.EValue, c.MaxEValue) {
		return false
	}
	if BoundedActive(c.MaxQValue) && !Passes(id.QValue, c.MaxQValue) {
		return false
	}
	return true
}

// String describes the active filters for log output.
func (c *Config) String() string {
	if !c.Active() {
		return "none"
	}
	s := ""
	add := func(part string) {
		if s != "" {
			s += ", "
		}
		s += part
	}
	if BoundedActive(c.MaxSpecEValue) {
		add(fmt.Sprintf("SpecEValue <= %g", c.MaxSpecEValue))
	}
	if UnboundedActive(c.MaxEValue) {
		add(fmt.Sprintf("EValue <= %g", c.MaxEValue))
	}
	if BoundedActive(c.MaxQValue) {
		add(fmt.Sprintf("QValue <= %g", c.MaxQValue))
	}
	return s
}

// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package bhav

import "fmt"

// Severity classifies a diagnostic. Only SeverityError is meant to
// block a caller's commit decision; warnings and infos are advisory.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalJSON renders the severity as its lowercase name so stored
// reports stay readable without this package's enum values.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON accepts the lowercase names MarshalJSON produces.
func (s *Severity) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"info"`:
		*s = SeverityInfo
	case `"warning"`:
		*s = SeverityWarning
	case `"error"`:
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %s", data)
	}
	return nil
}

// GraphLevel is the Position value for diagnostics that apply to the
// whole graph rather than one instruction.
const GraphLevel = -1

// Diagnostic is one finding from the validator, analyzer, or rewiring
// engine post-condition check.
type Diagnostic struct {
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Position int      `json:"position"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Position == GraphLevel {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Category, d.Message)
	}
	return fmt.Sprintf("%s [%s] at %d: %s", d.Severity, d.Category, d.Position, d.Message)
}

// HasErrors reports whether any diagnostic carries error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

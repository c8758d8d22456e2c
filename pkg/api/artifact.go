package api

import (
	"fmt"
	"sort"
	"strings"
)

// OriginSystem is the origin recorded on the synthetic artifact that seeds a
// flow before any step has run.
const OriginSystem = "system"

// Artifact is the data carrier passed between steps. It records provenance
// (the step that produced it), an optional routing hint (the step it is
// destined for), and the payload itself.
//
// An Artifact is immutable once constructed: every step completion creates a
// new Artifact rather than mutating the previous one, so history entries
// remain valid snapshots. It is safe to share across goroutines.
type Artifact struct {
	origin      string
	destination string
	payload     any
}

// NewArtifact creates an Artifact produced by the named step.
//
// The payload keeps its native shape: strings, maps and slices are carried
// through as-is and are never coerced to text until Text is called.
func NewArtifact(origin string, payload any) *Artifact {
	return &Artifact{origin: origin, payload: payload}
}

// WithDestination returns a copy of the artifact carrying an explicit routing
// hint. The receiver is left unchanged.
func (a *Artifact) WithDestination(step string) *Artifact {
	c := *a
	c.destination = step
	return &c
}

// Origin returns the name of the step that produced this artifact, or
// OriginSystem for the initial artifact.
func (a *Artifact) Origin() string { return a.origin }

// Destination returns the explicit routing hint, or "" when unset.
func (a *Artifact) Destination() string { return a.destination }

// Payload returns the payload verbatim, preserving its native type.
func (a *Artifact) Payload() any { return a.payload }

// Text renders the payload as text for feeding an executor that expects a
// prompt. The rendering is deterministic:
//
//   - strings are returned verbatim
//   - mappings become one "key: value" line per entry, sorted by key
//   - sequences become one "- item" line per element, in order
//
// Nested values are rendered inline with RenderText.
func (a *Artifact) Text() string {
	return RenderText(a.payload)
}

// RenderText converts an arbitrary payload value to its canonical text form.
// Repeated calls with the same value produce byte-identical output.
func RenderText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, k+": "+renderInline(val[k]))
		}
		return strings.Join(lines, "\n")
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, k+": "+val[k])
		}
		return strings.Join(lines, "\n")
	case []any:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			lines = append(lines, "- "+renderInline(item))
		}
		return strings.Join(lines, "\n")
	case []string:
		lines := make([]string, 0, len(val))
		for _, item := range val {
			lines = append(lines, "- "+item)
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// renderInline renders nested values on a single line so that map and
// sequence renderings stay one entry per line.
func renderInline(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+renderInline(val[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, renderInline(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

package api

import (
	"fmt"
	"strings"
)

// FeedbackKind distinguishes where a feedback entry came from.
type FeedbackKind string

const (
	// FeedbackUser is free-text feedback typed by the human reviewer.
	FeedbackUser FeedbackKind = "user_feedback"
	// FeedbackValidation is the reason reported by a failed retry guard.
	FeedbackValidation FeedbackKind = "validation_error"
)

// FeedbackEntry is one recorded piece of user or validator input attached to
// a step's current retry sequence. Seq is monotonic within one step's
// attempts and resets when the step is entered afresh.
type FeedbackEntry struct {
	Kind FeedbackKind
	Text string
	Seq  int
}

// Templates used by BuildContext. They are exported so that callers can
// recognize the sections in rendered output.
const (
	FeedbackHeader      = "=== USER FEEDBACK ==="
	FeedbackExplanation = "(User feedback represents additional requirements or clarifications from the human user)"

	ValidationHeader      = "=== VALIDATION ERRORS ==="
	ValidationExplanation = "(Validation errors are system-level checks that failed. These are automated quality gates\n" +
		"that verify your output meets specific criteria, constraints, or format requirements.)"

	instructionsHeader       = "\n=== INSTRUCTIONS ===\nPlease fulfill ALL requirements above:\n1. Complete the original request\n"
	instructionFixFeedback   = "2. Address all user feedback (additional requirements from human)\n"
	instructionFixValidation = "3. Fix all validation errors (system quality checks that failed)\n"
)

// BuildContext renders the combined instruction block fed to an executor on
// retry attempts: the original request, then the accumulated feedback in
// chronological order under a header per kind, then a fixed instruction
// trailer demanding that every item be addressed.
//
// The rendering is deterministic: the same request and feedback sequence
// always produce byte-identical output.
func BuildContext(original string, entries []FeedbackEntry) string {
	var user, validation []FeedbackEntry
	for _, e := range entries {
		switch e.Kind {
		case FeedbackValidation:
			validation = append(validation, e)
		default:
			user = append(user, e)
		}
	}

	var b strings.Builder
	b.WriteString(original)

	if len(user) > 0 {
		b.WriteString("\n\n")
		b.WriteString(FeedbackHeader)
		b.WriteString("\n")
		b.WriteString(FeedbackExplanation)
		b.WriteString("\n")
		for i, e := range user {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e.Text)
		}
	}

	if len(validation) > 0 {
		b.WriteString("\n")
		b.WriteString(ValidationHeader)
		b.WriteString("\n")
		b.WriteString(ValidationExplanation)
		b.WriteString("\n")
		for i, e := range validation {
			fmt.Fprintf(&b, "%d. %s\n", i+1, e.Text)
		}
	}

	b.WriteString(instructionsHeader)
	if len(user) > 0 {
		b.WriteString(instructionFixFeedback)
	}
	if len(validation) > 0 {
		b.WriteString(instructionFixValidation)
	}

	return b.String()
}

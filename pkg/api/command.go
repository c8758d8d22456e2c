package api

import "strings"

// CommandKind classifies a parsed user answer.
type CommandKind string

const (
	// CommandApprove accepts the step output and lets the flow advance.
	CommandApprove CommandKind = "approve"
	// CommandRetry re-runs the current step, optionally with feedback text.
	CommandRetry CommandKind = "retry"
	// CommandRollback unwinds the flow one history level.
	CommandRollback CommandKind = "rollback"
	// CommandExit terminates the flow.
	CommandExit CommandKind = "exit"
)

// Command is the interpreted form of a raw user answer.
type Command struct {
	Kind CommandKind
	// Text carries retry feedback or a rollback reason. Empty for approve
	// and exit.
	Text string
}

// affirmative answers that count as an approval. Matching is done on the
// lower-cased, trimmed input.
var affirmatives = map[string]bool{
	"y":        true,
	"yes":      true,
	"ok":       true,
	"okay":     true,
	"approve":  true,
	"approved": true,
}

// ParseCommand interprets a raw user answer.
//
// Recognized commands are "/retry [feedback]", "/rollback [reason]" and
// "/exit"; the command token is matched case-insensitively. Empty input and
// plain affirmative answers ("y", "yes", "ok", ...) approve. Everything
// else, including a leading "/" token that is not a known command, is
// treated as literal retry feedback so that user input is never silently
// dropped.
func ParseCommand(raw string) Command {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || affirmatives[strings.ToLower(trimmed)] {
		return Command{Kind: CommandApprove}
	}

	if strings.HasPrefix(trimmed, "/") {
		token := trimmed
		rest := ""
		if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
			token = trimmed[:i]
			rest = strings.TrimSpace(trimmed[i+1:])
		}
		switch strings.ToLower(token) {
		case "/exit":
			return Command{Kind: CommandExit}
		case "/rollback":
			return Command{Kind: CommandRollback, Text: rest}
		case "/retry":
			return Command{Kind: CommandRetry, Text: rest}
		}
		// Unknown slash token: keep it as literal feedback.
	}

	return Command{Kind: CommandRetry, Text: trimmed}
}

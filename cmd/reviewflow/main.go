// Command reviewflow runs a small interactive demo flow on the terminal.
// It exists to exercise the library end to end: type feedback to retry a
// step, press Enter to approve, or use /retry, /rollback and /exit.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkallio/reviewflow"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	journalPath string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "reviewflow",
		Short:         "Human-in-the-loop flow controller demos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&opts.journalPath, "journal", "", "SQLite file for the session journal")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newDemoCmd(opts))
	return root
}

func newDemoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo [topic]",
		Short: "Run a two-step drafting flow with interactive review",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var initial any
			if len(args) == 1 {
				initial = args[0]
			}
			return runDemo(cmd.Context(), opts, initial)
		},
	}
}

func runDemo(ctx context.Context, opts *options, initial any) error {
	cfg, err := reviewflow.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.journalPath != "" {
		cfg.JournalPath = opts.journalPath
	}

	level := slog.LevelInfo
	if opts.verbose || cfg.DebugStep {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	flowOpts := []reviewflow.FlowOption{
		reviewflow.WithObserver(&reviewflow.LoggingObserver{
			Logger:          logger,
			IncludePayloads: cfg.DebugArtifact,
		}),
	}
	if cfg.JournalPath != "" {
		j, err := reviewflow.OpenSQLiteJournal(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		flowOpts = append(flowOpts, reviewflow.WithJournal(j.Store()))
	}

	h := reviewflow.NewHub(stdinInput(), reviewflow.WithOutput(func(text string) {
		fmt.Println(text)
	}))

	flow, err := reviewflow.New("demo").
		Prompt("outline", outline).
		Prompt("draft", draft, reviewflow.WithGuard(reviewflow.GuardFunc(minLength))).
		Build(h, flowOpts...)
	if err != nil {
		return err
	}

	out, err := flow.Run(ctx, initial)
	switch {
	case reviewflow.IsExit(err):
		fmt.Println("Exited.")
		return nil
	case err != nil:
		return err
	}

	fmt.Println("\nFinal result:")
	fmt.Println(out.Text())
	return nil
}

// stdinInput reads one line per question from standard input.
func stdinInput() reviewflow.InputFunc {
	reader := bufio.NewReader(os.Stdin)
	return func(ctx context.Context, question string) (string, error) {
		fmt.Println()
		fmt.Println(question)
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// outline stands in for an agent call: it derives a three-point outline
// from the prompt, echoing any feedback it was given.
func outline(ctx context.Context, prompt string) (any, error) {
	topic := firstLine(prompt)
	return fmt.Sprintf("Outline for %q:\n  1. Background\n  2. Findings\n  3. Recommendations", topic), nil
}

func draft(ctx context.Context, prompt string) (any, error) {
	return "Draft based on:\n" + prompt, nil
}

func minLength(ctx context.Context, result any) (bool, string) {
	s, ok := result.(string)
	if !ok {
		return true, "draft must be text"
	}
	if len(s) < 20 {
		return true, "draft is too short"
	}
	return false, ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

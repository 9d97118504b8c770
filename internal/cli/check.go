package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/lamphost/internal/lifecycle"
	"github.com/vk/lamphost/internal/relay"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Analyse plugin dependencies without running any plugin",
		Long: `Discover every plugin and report duplicate names, missing hard
dependencies, self references and dependency cycles. Exits 1 when any
warning or error is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			diags := a.Check(cmd.Context())

			if opts.jsonOut {
				payload := make([]map[string]any, 0, len(diags))
				for _, d := range diags {
					payload = append(payload, relay.Payload(d))
				}
				if err := writeJSON(opts.stdout, payload); err != nil {
					return err
				}
			} else {
				renderDiagnostics(opts.stdout, diags)
			}

			if n := countAtLeast(diags, slog.LevelWarn); n > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d plugin problem(s) found", n)}
			}
			return nil
		},
	}
}

func renderDiagnostics(w io.Writer, diags []lifecycle.Diagnostic) {
	if len(diags) == 0 {
		successColor.Fprintln(w, "No problems found")
		return
	}
	for _, d := range diags {
		c := mutedColor
		switch {
		case d.Level >= slog.LevelError:
			c = errorColor
		case d.Level >= slog.LevelWarn:
			c = warningColor
		}
		c.Fprintf(w, "%-5s ", strings.ToUpper(d.Level.String()))
		fmt.Fprintf(w, "[%s] %s\n", d.Kind, d.Message)
	}
}

func countAtLeast(diags []lifecycle.Diagnostic, level slog.Level) int {
	n := 0
	for _, d := range diags {
		if d.Level >= level {
			n++
		}
	}
	return n
}

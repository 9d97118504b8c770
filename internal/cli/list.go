package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vk/lamphost/internal/lifecycle"
	"github.com/vk/lamphost/internal/plugin"
)

var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.Faint)
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Discover plugins and show their states",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			statuses := a.List(cmd.Context())
			if opts.jsonOut {
				return writeJSON(opts.stdout, statuses)
			}
			renderStatusTable(opts.stdout, statuses)
			return nil
		},
	}
}

func renderStatusTable(w io.Writer, statuses []lifecycle.Status) {
	if len(statuses) == 0 {
		warningColor.Fprintln(w, "No plugins found")
		return
	}

	headerColor.Fprintf(w, "%-20s %-10s %-10s %-12s %s\n", "NAME", "VERSION", "MANAGER", "STATE", "DEPENDS")
	for _, s := range statuses {
		deps := strings.Join(s.Depend, ",")
		if len(s.SoftDepend) > 0 {
			if deps != "" {
				deps += " "
			}
			deps += "(" + strings.Join(s.SoftDepend, ",") + ")"
		}
		fmt.Fprintf(w, "%-20s %-10s %-10s %s %s\n",
			s.Name, s.Version, s.Manager, stateColor(s.State).Sprintf("%-12s", s.State), deps)
	}
}

func stateColor(s plugin.State) *color.Color {
	switch s {
	case plugin.Enabled:
		return successColor
	case plugin.Disabled:
		return warningColor
	case plugin.Unloaded:
		return errorColor
	default:
		return mutedColor
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

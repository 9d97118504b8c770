package cli

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vk/lamphost/internal/app"
	"github.com/vk/lamphost/internal/config"
	"github.com/vk/lamphost/internal/plugin"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// options is the state shared by every command.
type options struct {
	stdout   io.Writer
	stderr   io.Writer
	jsonOut  bool
	noColor  bool
	managers []plugin.Manager
}

// NewRootCmd builds the lamphost command tree. Command output goes to stdout,
// logs go to stderr. managers replaces the default plugin managers, which is
// how tests inject fakes.
func NewRootCmd(stdout, stderr io.Writer, managers ...plugin.Manager) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr, managers: managers}

	root := &cobra.Command{
		Use:   "lamphost",
		Short: "Plugin lifecycle host",
		Long: `lamphost loads plugins from compiled-in definitions and plugin.hcl manifests,
orders them by their hard and soft dependencies, and drives them through
initialize, enable and disable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newCheckCmd(opts))

	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, managers ...plugin.Manager) error {
	root := NewRootCmd(stdout, stderr, managers...)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newApp loads the configuration from the command's flags and builds the app.
func (o *options) newApp(cmd *cobra.Command) (*app.App, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return app.New(o.stderr, cfg, o.managers...), nil
}

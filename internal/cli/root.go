// Package cli implements the casedesk command-line client: list, create, edit
// and delete records on a casedesk server.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errReported marks an error whose message was already printed as a
// notification.
var errReported = errors.New("reported")

type globalOptions struct {
	configPath string
	server     string
	token      string
}

// NewRootCommand builds the casedesk command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "casedesk",
		Short: "Manage case records on a casedesk server",
		Long: `casedesk lists and edits the records served by a casedesk server.

Record kinds are named "<domain>/<resource>" (for example education/students)
or by resource alone. Run "casedesk kinds" to see them with their fields.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "client config file (YAML)")
	flags.StringVar(&opts.server, "server", "", "server base URL, overrides the config")
	flags.StringVar(&opts.token, "token", "", "bearer token, overrides the config")

	root.AddCommand(
		newKindsCommand(),
		newListCommand(opts),
		newCreateCommand(opts),
		newEditCommand(opts),
		newDeleteCommand(opts),
		newLoginCommand(opts),
		newHashSecretCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(root.ErrOrStderr(), errorStyle.Render("Error: "+err.Error()))
		}
		return 1
	}
	return 0
}

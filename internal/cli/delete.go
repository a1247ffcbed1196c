package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newDeleteCommand(g *globalOptions) *cobra.Command {
	var (
		yes    bool
		search string
	)

	cmd := &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a record",
		Example: `  casedesk delete students 12
  casedesk delete students 12 --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, g, args[0], args[1], search, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	cmd.Flags().StringVarP(&search, "search", "s", "", "narrow the lookup of the record")
	return cmd
}

func runDelete(cmd *cobra.Command, g *globalOptions, kindName, id, search string, yes bool) error {
	k, err := resolveKind(kindName)
	if err != nil {
		return err
	}

	r, err := newRuntime(cmd, g)
	if err != nil {
		return err
	}
	defer r.close()

	ctx := cmd.Context()
	if err := r.connect(ctx); err != nil {
		return err
	}

	s := r.session(k, maxLimit)
	if err := locate(ctx, s, k, id, search); err != nil {
		return r.done(err)
	}
	if err := s.RequestRemove(id); err != nil {
		return err
	}

	if !yes {
		ok, err := confirm(cmd.InOrStdin(), r.errOut, fmt.Sprintf("Delete %s %s? [y/N] ", k.Name(), id))
		if err != nil {
			s.CancelRemove()
			return err
		}
		if !ok {
			s.CancelRemove()
			fmt.Fprintln(r.errOut, "cancelled")
			return nil
		}
	}
	return r.done(s.ConfirmRemove(ctx))
}

// confirm asks prompt and reads one answer. Anything but y or yes, including
// end of input, declines.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	reply, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	reply = strings.ToLower(strings.TrimSpace(reply))
	return reply == "y" || reply == "yes", nil
}

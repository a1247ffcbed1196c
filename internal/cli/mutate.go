package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/simp-lee/casedesk/internal/listctl"
)

func newCreateCommand(g *globalOptions) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "create <kind>",
		Short: "Create a record",
		Long: `Create a record from the kind's defaults overlaid with --set values.
The draft is validated before anything is sent.`,
		Example: `  casedesk create students --set full_name="Amina Haddad" --set gender=female \
    --set birth_date=2011-05-02 --set school="North High" --set grade=7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, g, args[0], "", "", sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as field=value, repeatable")
	return cmd
}

func newEditCommand(g *globalOptions) *cobra.Command {
	var (
		sets   []string
		search string
	)

	cmd := &cobra.Command{
		Use:   "edit <kind> <id>",
		Short: "Change fields of a record",
		Example: `  casedesk edit students 12 --set status=at_risk
  casedesk edit addiction-cases 40 --search haddad --set status=recovery`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 {
				return errors.New("nothing to change: pass --set field=value")
			}
			return runSubmit(cmd, g, args[0], args[1], search, sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as field=value, repeatable")
	cmd.Flags().StringVarP(&search, "search", "s", "", "narrow the lookup of the record")
	return cmd
}

// runSubmit opens the create modal, or the edit modal on id, applies sets and
// submits.
func runSubmit(cmd *cobra.Command, g *globalOptions, kindName, id, search string, sets []string) error {
	k, err := resolveKind(kindName)
	if err != nil {
		return err
	}
	fields, err := parseAssignments(sets)
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

	var s listctl.Session
	if id == "" {
		s = r.session(k, r.cfg.Limit)
		err = s.OpenCreate()
	} else {
		s = r.session(k, maxLimit)
		if err := locate(ctx, s, k, id, search); err != nil {
			return r.done(err)
		}
		err = s.OpenEdit(id)
	}
	if err != nil {
		return err
	}

	for _, f := range fields {
		if err := s.SetField(f.key, f.value); err != nil {
			return err
		}
	}
	return r.done(s.Submit(ctx))
}

package cli

import (
	"errors"
	"fmt"
	"maps"

	"github.com/spf13/cobra"

	"github.com/simp-lee/casedesk/internal/listctl"
)

type listOptions struct {
	search  string
	filters []string
	page    int
	limit   int
	output  string
}

type listOutput struct {
	Items      []map[string]string `json:"items"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	Total      int64               `json:"total"`
	TotalPages int                 `json:"totalPages"`
}

func newListCommand(g *globalOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List one page of records",
		Example: `  casedesk list students
  casedesk list education/students --search amina --filter status=at_risk
  casedesk list elderly-beneficiaries --page 2 --limit 50 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, g, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.search, "search", "s", "", "search term matched against the searchable fields")
	flags.StringArrayVarP(&opts.filters, "filter", "f", nil, "filter as field=value, repeatable")
	flags.IntVarP(&opts.page, "page", "p", 1, "page number")
	flags.IntVarP(&opts.limit, "limit", "l", 0, "records per page (default from config)")
	flags.StringVarP(&opts.output, "output", "o", "table", "output format: table or json")

	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runList(cmd *cobra.Command, g *globalOptions, opts *listOptions, kindName string) error {
	if opts.output != "table" && opts.output != "json" {
		return fmt.Errorf("invalid output %q: must be table or json", opts.output)
	}
	if opts.limit < 0 || opts.limit > maxLimit {
		return fmt.Errorf("invalid limit %d: must be between 1 and %d", opts.limit, maxLimit)
	}
	k, err := resolveKind(kindName)
	if err != nil {
		return err
	}
	filters, err := parseAssignments(opts.filters)
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

	limit := opts.limit
	if limit == 0 {
		limit = r.cfg.Limit
	}
	s := r.session(k, limit)

	fetched := false
	if opts.search != "" {
		if err := s.SetSearch(ctx, opts.search); err != nil {
			return r.done(err)
		}
		fetched = true
	}
	for _, f := range filters {
		if err := s.SetFilter(ctx, f.key, f.value); err != nil {
			return r.done(err)
		}
		fetched = true
	}
	if !fetched {
		if err := s.Refetch(ctx); err != nil {
			return r.done(err)
		}
	}
	if opts.page > 1 {
		if err := s.GotoPage(ctx, opts.page); err != nil {
			if errors.Is(err, listctl.ErrPageOutOfRange) {
				return fmt.Errorf("page %d is out of range: %d pages", opts.page, s.Info().TotalPages)
			}
			return r.done(err)
		}
	}

	rows, err := s.Rows()
	if err != nil {
		return err
	}
	info := s.Info()

	if opts.output == "json" {
		out := listOutput{
			Items:      make([]map[string]string, 0, len(rows)),
			Page:       info.DisplayedPage,
			Limit:      info.Limit,
			Total:      info.Total,
			TotalPages: info.TotalPages,
		}
		for _, row := range rows {
			item := maps.Clone(row.Values)
			item["id"] = row.ID
			out.Items = append(out.Items, item)
		}
		return writeJSON(r.out, out)
	}

	if info.Total == 0 {
		fmt.Fprintln(r.out, footerStyle.Render("no records"))
		return nil
	}
	sch := s.Schema()
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, append([]string{row.ID}, sch.Row(row.Values)...))
	}
	fmt.Fprintln(r.out, renderTable(append([]string{"ID"}, sch.Headers()...), cells))
	fmt.Fprintln(r.out, footerStyle.Render(fmt.Sprintf("page %d of %d, %d records", info.DisplayedPage, info.TotalPages, info.Total)))
	return nil
}

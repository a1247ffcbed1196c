package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simp-lee/casedesk/internal/catalog"
)

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the record kinds and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(catalog.All()))
			for _, k := range catalog.All() {
				s := k.Schema
				rows = append(rows, []string{
					k.Name(),
					k.Title,
					strings.Join(s.Columns(), ", "),
					strings.Join(s.FilterKeys(), ", "),
					strings.Join(s.SearchKeys(), ", "),
				})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Kind", "Title", "Fields", "Filters", "Search"}, rows))
			return err
		},
	}
}

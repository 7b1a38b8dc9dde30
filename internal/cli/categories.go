package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with their document counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, rootOpts.Log)

			counts, err := st.GetCategories(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list categories", err)
			}
			return rootOpts.formatter(cmd).Render(counts, func(w io.Writer) error {
				return writeCategories(w, counts)
			})
		},
	}
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/medivault/internal/analysis"
	"github.com/roach88/medivault/internal/record"
)

// NewDocsCommand creates the docs command group.
func NewDocsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage stored documents",
	}

	cmd.AddCommand(newDocsListCommand(rootOpts))
	cmd.AddCommand(newDocsShowCommand(rootOpts))
	cmd.AddCommand(newDocsAddCommand(rootOpts))
	cmd.AddCommand(newDocsDeleteCommand(rootOpts))

	return cmd
}

func newDocsListCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, rootOpts.Log)

			var docs []record.Document
			if cmd.Flags().Changed("category") {
				docs, err = st.GetDocumentsByCategory(ctx, analysis.NormalizeLabel(category))
			} else {
				docs, err = st.GetDocuments(ctx)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list documents", err)
			}
			return rootOpts.formatter(cmd).Render(docs, func(w io.Writer) error {
				return writeDocuments(w, docs)
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only documents in this category")

	return cmd
}

func newDocsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one document with its summary and extracted text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, rootOpts.Log)

			d, err := st.GetDocument(ctx, args[0])
			if err != nil {
				return notFoundOr(err, "document", args[0])
			}
			return rootOpts.formatter(cmd).Render(d, func(w io.Writer) error {
				return writeDocument(w, d)
			})
		},
	}
}

// DocumentOptions holds flags for docs add.
type DocumentOptions struct {
	*RootOptions
	URI      string
	Name     string
	Category string
	Summary  string
	Context  string
	Status   string
}

func newDocsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a document without analysis",
		Long: `Register a document reference without calling the analysis service.
The file behind --uri is not read or copied.

Example:
  medivault docs add --uri file:///scans/rx.jpg --name "Prescription" --category Prescriptions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.URI, "uri", "", "location of the image")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category label")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "short summary")
	cmd.Flags().StringVar(&opts.Context, "context", "", "extracted text")
	cmd.Flags().StringVar(&opts.Status, "status", string(record.DocumentCompleted), "processing|completed|failed")
	_ = cmd.MarkFlagRequired("uri")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runDocsAdd(opts *DocumentOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	d := record.Document{
		ID:         opts.idGenerator().NewID(),
		URI:        opts.URI,
		Name:       opts.Name,
		UploadDate: opts.now().UTC(),
		Status:     record.DocumentStatus(opts.Status),
		Summary:    opts.Summary,
		Category:   analysis.NormalizeLabel(opts.Category),
		Context:    opts.Context,
		Embedding:  []float64{},
	}

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st, opts.Log)

	if err := st.AddDocument(ctx, d); err != nil {
		return WrapExitError(ExitCommandError, "failed to add document", err)
	}
	opts.Log.Info().Str("document_id", d.ID).Str("category", d.Category).Msg("document added")

	return opts.formatter(cmd).Render(d, func(w io.Writer) error {
		return writeDocument(w, d)
	})
}

func newDocsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document and its category tags",
		Long:  "Delete a document and its category tags. The image file is left untouched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := rootOpts.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, rootOpts.Log)

			if err := st.DeleteDocument(ctx, args[0]); err != nil {
				return WrapExitError(ExitCommandError, "failed to delete document", err)
			}
			result := DeleteResult{ID: args[0], Deleted: true}
			return rootOpts.formatter(cmd).Render(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted document %s\n", result.ID)
				return err
			})
		},
	}
}

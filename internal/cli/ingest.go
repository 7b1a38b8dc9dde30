package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/medivault/internal/analysis"
	"github.com/roach88/medivault/internal/ingest"
	"github.com/roach88/medivault/internal/record"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Name        string
	Yes         bool
	No          bool
	AnalysisURL string
}

// IngestResult is the output of the ingest command.
type IngestResult struct {
	State      ingest.State              `json:"state"`
	Document   *record.Document          `json:"document,omitempty"`
	Candidates []analysis.EventCandidate `json:"candidates"`
	Report     *ingest.Report            `json:"report,omitempty"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest <image>",
		Short: "Analyze a scan and store it",
		Long: `Send an image to the analysis service, store the resulting document and
offer any extracted events for confirmation.

Without --yes or --no the command asks on stdin before saving events.
Exit code 1 means the analysis failed or some confirmed events were not saved.

Examples:
  medivault ingest ./scans/lab.jpg
  medivault ingest ./scans/rx.png --yes --name "Statin prescription"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", `document name (default "Upload_<HH:MM:SS>")`)
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "save extracted events without asking")
	cmd.Flags().BoolVar(&opts.No, "no", false, "discard extracted events without asking")
	cmd.Flags().StringVar(&opts.AnalysisURL, "analysis-url", "", "analysis service base URL (overrides config)")
	cmd.MarkFlagsMutuallyExclusive("yes", "no")

	return cmd
}

func runIngest(opts *IngestOptions, image string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := opts.Config

	uri, err := imageURI(image)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid image path", err)
	}

	analyzer := opts.Analyzer
	if analyzer == nil {
		baseURL := cfg.AnalysisURL
		if opts.AnalysisURL != "" {
			baseURL = opts.AnalysisURL
		}
		analyzer = analysis.NewHTTPAnalyzer(baseURL, cfg.AnalysisTimeout, opts.Log)
	}

	// Opened by the document write, after analysis returns.
	st := opts.newStore()
	defer closeStore(st, opts.Log)

	pipeline := ingest.New(st, analyzer,
		ingest.WithIDs(opts.idGenerator()),
		ingest.WithClock(opts.now),
		ingest.WithLogger(opts.Log),
		ingest.WithCategories(cfg.Categories, cfg.AllowNewCategories),
	)

	attempt, err := pipeline.Run(ctx, ingest.Request{ImageURI: uri, Name: opts.Name}, opts.confirmer(cmd.ErrOrStderr()))
	if errors.Is(err, ingest.ErrAnalysisFailed) {
		return WrapExitError(ExitFailure, "ingest failed", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "ingest failed", err)
	}

	result := IngestResult{
		State:      attempt.State(),
		Candidates: attempt.Candidates(),
		Report:     attempt.Report(),
	}
	doc := attempt.Document()
	result.Document = &doc
	if result.Candidates == nil {
		result.Candidates = []analysis.EventCandidate{}
	}

	if err := opts.formatter(cmd).Render(result, func(w io.Writer) error {
		return writeIngestResult(w, result)
	}); err != nil {
		return err
	}

	if r := result.Report; r != nil && r.Failed() > 0 {
		return WrapExitError(ExitFailure,
			fmt.Sprintf("%d of %d events saved", r.Succeeded(), r.Succeeded()+r.Failed()), errPartialFailure)
	}
	return nil
}

// confirmer answers from --yes/--no or asks on the prompt writer.
func (o *IngestOptions) confirmer(prompt io.Writer) ingest.Confirmer {
	return ingest.ConfirmFunc(func(ctx context.Context, doc record.Document, candidates []analysis.EventCandidate) (bool, error) {
		switch {
		case o.Yes:
			return true, nil
		case o.No:
			return false, nil
		}

		fmt.Fprintf(prompt, "Found %d event(s) in %s:\n", len(candidates), doc.Name)
		for i, c := range candidates {
			fmt.Fprintf(prompt, "  %d. %s\n", i+1, describeCandidate(c))
		}
		fmt.Fprint(prompt, "Save these events? [y/N] ")

		answer, err := readLine(ctx, o.stdin())
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	})
}

// readLine reads one line, giving up when ctx is done. EOF without input
// counts as an empty answer.
func readLine(ctx context.Context, r io.Reader) (string, error) {
	type line struct {
		text string
		err  error
	}
	ch := make(chan line, 1)
	go func() {
		text, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		ch <- line{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-ch:
		return l.text, l.err
	}
}

func describeCandidate(c analysis.EventCandidate) string {
	date := c.RawDate
	if !c.Date.IsZero() {
		date = formatDate(c.Date)
	}
	s := fmt.Sprintf("[%s] %s - %s", c.Type, date, c.Title)
	if c.Location != "" {
		s += " @ " + c.Location
	}
	return s
}

func writeIngestResult(w io.Writer, r IngestResult) error {
	d := r.Document
	fmt.Fprintf(w, "Saved document %s %q (%s)\n", d.ID, d.Name, orDash(d.Category))
	if d.Summary != "" {
		fmt.Fprintf(w, "Summary: %s\n", d.Summary)
	}

	switch r.State {
	case ingest.StateNoEventsFound:
		fmt.Fprintln(w, "No events found.")
	case ingest.StateEventsDeclined:
		fmt.Fprintf(w, "Discarded %d event(s).\n", len(r.Candidates))
	case ingest.StateEventsPersisted:
		fmt.Fprintf(w, "Saved %d of %d event(s).\n", r.Report.Succeeded(), len(r.Candidates))
		for _, f := range r.Report.Failures {
			fmt.Fprintf(w, "  not saved: %q: %s\n", f.Title, f.Message)
		}
	}
	return nil
}

// imageURI turns a local path into an absolute file:// URI and passes
// anything with a scheme through.
func imageURI(image string) (string, error) {
	if strings.Contains(image, "://") {
		return image, nil
	}
	abs, err := filepath.Abs(image)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

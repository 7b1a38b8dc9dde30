package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roach88/medivault/internal/record"
)

const displayTime = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeEvents(w io.Writer, events []record.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tSTATUS\tTITLE")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, formatDate(e.Date), e.Type, e.Status, e.Title)
	}
	return tw.Flush()
}

func writeEvent(w io.Writer, e record.Event) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", e.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", e.Title)
	fmt.Fprintf(tw, "Date:\t%s\n", formatDate(e.Date))
	fmt.Fprintf(tw, "Type:\t%s\n", e.Type)
	fmt.Fprintf(tw, "Status:\t%s\n", e.Status)
	if e.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", e.Description)
	}
	if e.Location != "" {
		fmt.Fprintf(tw, "Location:\t%s\n", e.Location)
	}
	return tw.Flush()
}

func writeDocuments(w io.Writer, docs []record.Document) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "No documents.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tUPLOADED\tSTATUS\tCATEGORY\tNAME")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, formatDate(d.UploadDate), d.Status, orDash(d.Category), d.Name)
	}
	return tw.Flush()
}

func writeDocument(w io.Writer, d record.Document) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", d.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", d.Name)
	fmt.Fprintf(tw, "URI:\t%s\n", d.URI)
	fmt.Fprintf(tw, "Uploaded:\t%s\n", formatDate(d.UploadDate))
	fmt.Fprintf(tw, "Status:\t%s\n", d.Status)
	fmt.Fprintf(tw, "Category:\t%s\n", orDash(d.Category))
	fmt.Fprintf(tw, "Summary:\t%s\n", orDash(d.Summary))
	fmt.Fprintf(tw, "Embedding:\t%d values\n", len(d.Embedding))
	if err := tw.Flush(); err != nil {
		return err
	}
	if d.Context != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(d.Context))
	}
	return nil
}

func writeCategories(w io.Writer, counts []record.CategoryCount) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No categories.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tDOCUMENTS")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Count)
	}
	return tw.Flush()
}

func formatDate(t time.Time) string {
	return t.UTC().Format(displayTime)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/ad/go-contest-stats/internal/services"
)

// TextRenderer prints a report as one table per statistic.
type TextRenderer struct {
	w        io.Writer
	heading  *color.Color
	section  *color.Color
	subtitle *color.Color
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{
		w:        w,
		heading:  color.New(color.FgCyan, color.Bold),
		section:  color.New(color.FgYellow),
		subtitle: color.New(color.Faint),
	}
}

func (r *TextRenderer) Render(report *services.FullReport) error {
	r.heading.Fprintf(r.w, "=== Submission statistics ===\n")
	r.subtitle.Fprintf(r.w, "run %s, generated %s\n", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	for _, pr := range report.Problems {
		if err := r.RenderProblem(pr, report.UserLabel); err != nil {
			return err
		}
	}

	if len(report.CrossProblem) > 0 {
		r.heading.Fprintf(r.w, "\n=== All problems ===\n")
		for _, res := range report.CrossProblem {
			r.renderResult(res, report.UserLabel)
		}
	}
	return nil
}

func (r *TextRenderer) RenderProblem(pr *services.ProblemReport, users UserLabeler) error {
	if _, err := fmt.Fprintln(r.w); err != nil {
		return err
	}
	r.heading.Fprintf(r.w, "=== %s ===\n", pr.Title())
	for _, res := range pr.Results() {
		r.renderResult(res, users)
	}
	return nil
}

func (r *TextRenderer) renderResult(res services.Result, users UserLabeler) {
	r.section.Fprintf(r.w, "\n%s\n", res.Title())

	table := tablewriter.NewWriter(r.w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, f := range res.Fields() {
		table.Append([]string{f.Label, FormatValue(f.Value, users)})
	}
	table.Render()
}

// Package report renders analysis results as markdown documents and
// converts them to HTML for the API surface.
package report

import (
	"bytes"
	"fmt"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"

	"goadmit/domain/core"
	"goadmit/internal/spectral"
)

// RunMarkdown renders one analysis run as a markdown document.
func RunMarkdown(run *core.AnalysisRun) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Analysis Run %s\n\n", run.ID)
	fmt.Fprintf(&buf, "- **Kind**: %s\n", run.Kind)
	fmt.Fprintf(&buf, "- **Status**: %s\n", run.Status)
	fmt.Fprintf(&buf, "- **Created**: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if run.Error != "" {
		fmt.Fprintf(&buf, "- **Error**: %s\n", run.Error)
	}
	fmt.Fprintf(&buf, "\n## Input\n\n```json\n%s\n```\n", run.Input)
	if len(run.Output) > 0 {
		fmt.Fprintf(&buf, "\n## Output\n\n```json\n%s\n```\n", run.Output)
	}
	return buf.Bytes()
}

// ClassificationMarkdown renders spectral classifications with summary
// statistics of each spectrum.
func ClassificationMarkdown(cls []spectral.Classification) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# Spectral Classification\n\n")
	buf.WriteString("| Interface | Min λ | Median λ | Max λ | Trace | ρ |\n")
	buf.WriteString("|-----------|-------|----------|-------|-------|---|\n")
	for _, c := range cls {
		min, err := stats.Min(c.Spectrum)
		if err != nil {
			return nil, fmt.Errorf("spectrum summary for %s: %w", c.Interface, err)
		}
		median, err := stats.Median(c.Spectrum)
		if err != nil {
			return nil, fmt.Errorf("spectrum summary for %s: %w", c.Interface, err)
		}
		max, err := stats.Max(c.Spectrum)
		if err != nil {
			return nil, fmt.Errorf("spectrum summary for %s: %w", c.Interface, err)
		}
		fmt.Fprintf(&buf, "| %s | %.6g | %.6g | %.6g | %.6g | %.6g |\n",
			c.Interface, min, median, max, c.Trace, c.Rho)
	}
	return buf.Bytes(), nil
}

// ToHTML renders a markdown document to an HTML fragment.
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.Tables)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

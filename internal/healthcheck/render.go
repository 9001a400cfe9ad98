package healthcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

// WriteJSON writes the report as indented JSON.
func (rep *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteYAML writes the report as YAML.
func (rep *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(rep)
}

// WriteText writes the report as human-readable text: a summary block
// followed by one line per result.
func (rep *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Parse Health Report\n")
	fmt.Fprintf(w, "===================\n\n")
	fmt.Fprintf(w, "Summary: %d total, %d ok, %d warn, %d fail\n\n", rep.Summary.Total, rep.Summary.OK, rep.Summary.Warn, rep.Summary.Fail)

	for _, res := range rep.Results {
		symbol := "[ok]  "
		switch res.Status {
		case StatusWarn:
			symbol = "[warn]"
		case StatusFail:
			symbol = "[fail]"
		}
		fmt.Fprintf(w, "%s %s: %s\n", symbol, res.ID, res.Message)
		if res.Details != nil {
			fmt.Fprintf(w, "       details: %v\n", res.Details)
		}
	}
	return nil
}

// markdownSource renders the report as a Markdown document: a summary
// table followed by one bullet per check. It's built as plain text
// first (the same shape any Markdown renderer expects as input) and
// then run through gomarkdown so the parse tree is validated before
// being handed to a caller as HTML.
func (rep *Report) markdownSource() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Parse Health Report\n\n")
	fmt.Fprintf(&b, "| total | ok | warn | fail |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n\n", rep.Summary.Total, rep.Summary.OK, rep.Summary.Warn, rep.Summary.Fail)

	for _, res := range rep.Results {
		fmt.Fprintf(&b, "- **%s** (`%s`): %s\n", res.ID, res.Status, res.Message)
	}
	return b.String()
}

// WriteMarkdown renders the report to Markdown source (not HTML) —
// the format a caller piping into a docs pipeline or a PR comment
// wants.
func (rep *Report) WriteMarkdown(w io.Writer) error {
	_, err := io.WriteString(w, rep.markdownSource())
	return err
}

// RenderHTML converts the report's Markdown form to HTML via
// gomarkdown, for callers that want a rendered preview rather than
// raw Markdown source.
func (rep *Report) RenderHTML() []byte {
	extensions := parser.CommonExtensions | parser.Tables
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(rep.markdownSource()))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"html"
	"os"

	"github.com/etnz/ledger/renderer"
	"github.com/google/subcommands"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type reportCmd struct {
	output string
	title  string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "write the full P/L report as an HTML page" }
func (*reportCmd) Usage() string {
	return `report [-o <file.html>] [-title <title>]

  Writes the summary, the positions, one section per ticker and every
  realized record to a standalone HTML page.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "report.html", "Output file, - for stdout")
	f.StringVar(&c.title, "title", "P/L Report", "Page title")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		md := renderer.Report(a.store.Recompute(), a.store.Instruments(), a.cfg.Currency)
		page, err := htmlPage(c.title, md)
		if err != nil {
			return err
		}
		if c.output == "-" {
			_, err := os.Stdout.Write(page)
			return err
		}
		if err := os.WriteFile(c.output, page, 0o644); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", c.output)
		return nil
	})
}

// htmlPage converts markdown, with GitHub flavored tables, into an HTML page.
func htmlPage(title, md string) ([]byte, error) {
	var body bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("cannot convert report: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: auto; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 0.2em 0.6em; }
</style>
</head>
<body>
`, html.EscapeString(title))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

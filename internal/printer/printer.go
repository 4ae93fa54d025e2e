// Package printer renders allocator diagnostics as text or JSON.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/slabkit/selftest"
	"github.com/joshuapare/slabkit/slab"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the human-readable table, one line per cache.
	FormatText Format = "text"

	// FormatJSON outputs JSON.
	FormatJSON Format = "json"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("printer: unknown format %q", s)
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// Totals appends a summary line over all caches (text format only).
	// Default: true
	Totals bool

	// Language selects digit grouping for totals.
	// Default: language.English
	Language language.Tag

	// Indent is the JSON indent string. Empty means compact output.
	// Default: "  "
	Indent string
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:   FormatText,
		Totals:   true,
		Language: language.English,
		Indent:   "  ",
	}
}

// Printer writes diagnostics to an io.Writer.
type Printer struct {
	opts   Options
	writer io.Writer
	num    *message.Printer
}

// New creates a new Printer.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintStats(alloc.Stats())
func New(w io.Writer, opts Options) *Printer {
	return &Printer{
		opts:   opts,
		writer: w,
		num:    message.NewPrinter(opts.Language),
	}
}

// PrintStats prints one entry per cache.
func (p *Printer) PrintStats(stats []slab.Stats) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printStatsJSON(stats)
	default:
		return p.printStatsText(stats)
	}
}

// PrintReport prints a self-test summary.
func (p *Printer) PrintReport(rep selftest.Report) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(rep)
	default:
		return p.printReportText(rep)
	}
}

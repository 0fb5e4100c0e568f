// Package output renders command results for the ecfs command line tools.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format selects how a result is rendered.
type Format string

const (
	// FormatText is the plain line-oriented output scripts parse.
	FormatText Format = "text"
	// FormatTable renders an aligned table.
	FormatTable Format = "table"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. The empty string selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: text, table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// TextRenderer is implemented by results that have a plain text form.
type TextRenderer interface {
	RenderText(w io.Writer) error
}

// Printer writes results in one format.
type Printer struct {
	out    io.Writer
	format Format
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, format Format) *Printer {
	return &Printer{out: out, format: format}
}

// Print renders data. Text and table formats need data to implement
// TextRenderer and TableRenderer respectively; anything else is encoded
// as JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatText, "":
		if r, ok := data.(TextRenderer); ok {
			return r.RenderText(p.out)
		}
		return PrintJSON(p.out, data)
	case FormatTable:
		if r, ok := data.(TableRenderer); ok {
			return PrintTable(p.out, r)
		}
		return PrintJSON(p.out, data)
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

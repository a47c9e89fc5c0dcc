package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Format is an output format for an analysis report.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJUnit    Format = "junit"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML, FormatJUnit}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	if s == "md" {
		return FormatMarkdown, nil
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q (valid: %s)", s, strings.Join(names, ", "))
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *analysis.Report, format Format) error {
	switch format {
	case FormatTable:
		return WriteTable(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		data, err := HTML(r)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatJUnit:
		return WriteJUnit(w, r)
	}
	return fmt.Errorf("unknown format %q", format)
}

var printer = message.NewPrinter(language.English)

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func formatFloat(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

func formatPtr(v *float64, prec int) string {
	if v == nil {
		return "n/a"
	}
	return formatFloat(*v, prec)
}

func formatPct(rate float64) string {
	return formatFloat(rate*100, 1) + "%"
}

func formatP(p float64) string {
	if p < 0.0001 {
		return "<0.0001"
	}
	return formatFloat(p, 4)
}

func formatSigned(v float64, prec int) string {
	if v > 0 {
		return "+" + formatFloat(v, prec)
	}
	return formatFloat(v, prec)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

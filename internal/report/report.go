// Package report renders census results for the terminal or for other tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/census-cli/pkg/census"
)

// Format is an output format.
type Format string

// Supported output formats.
const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat validates an output format name. GeoJSON is only accepted when
// allowGeo is set.
func ParseFormat(s string, allowGeo bool) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case FormatGeoJSON:
		if allowGeo {
			return f, nil
		}
	case "":
		return FormatText, nil
	}
	return "", eris.Wrapf(census.ErrValidation, "unsupported output format %q", s)
}

var printer = message.NewPrinter(language.AmericanEnglish)

// Population writes a population result in the given format. With breakdown
// set, the text format lists every counted block group.
func Population(w io.Writer, f Format, res *census.PopulationResult, breakdown bool) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatYAML:
		return writeYAML(w, res)
	case FormatGeoJSON:
		data, err := PopulationGeoJSON(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return eris.Wrap(err, "report: write geojson")
	}

	var b strings.Builder
	printer.Fprintf(&b, "Population within %s of (%.6f, %.6f): %d\n",
		FormatDistance(res.RadiusMeters), res.Latitude, res.Longitude, res.Population)
	if res.Name != "" {
		fmt.Fprintf(&b, "Containing block group: %s (%s)\n", res.Geography, res.Name)
	} else {
		fmt.Fprintf(&b, "Containing block group: %s\n", res.Geography)
	}
	fmt.Fprintf(&b, "Block groups counted: %d (%s, %s)\n", len(res.BlockGroups), res.Dataset, res.Variable)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "report: write population")
	}

	if !breakdown {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "GEOID\tDISTANCE\tPOPULATION\t")
	for _, bg := range res.BlockGroups {
		printer.Fprintf(tw, "%s\t%s\t%d\t\n", bg.GEOID, FormatDistance(bg.DistanceMeters), bg.Population)
	}
	return eris.Wrap(tw.Flush(), "report: write breakdown")
}

// Table writes a Data API table in the given format.
func Table(w io.Writer, f Format, t *census.Table) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, t.Records())
	case FormatYAML:
		return writeYAML(w, tableNode(t))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return eris.Wrap(tw.Flush(), "report: write table")
}

// FormatDistance renders meters as "850 m" or "4.20 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

// tableNode builds a YAML sequence of mappings that keeps header order.
func tableNode(t *census.Table) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, h := range t.Header {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row[i]},
			)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "report: encode json")
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	return eris.Wrap(enc.Close(), "report: close yaml encoder")
}

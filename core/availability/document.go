package availability

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/shiftboard/core/model"
)

// DayRanges maps a category to its "HH:MM-HH:MM" ranges for one day.
type DayRanges map[model.Category][]string

// Document is the persisted availability of one employee, keyed by day name:
//
//	{"Monday": {"unavailable": ["08:00-09:30"], "preferred": ["14:00-15:00"]}}
//
// Day keys stay strings so one bad key only rejects that key.
type Document map[string]DayRanges

// Ranges parses the textual ranges of the document. Days that fail to parse
// are reported in the returned *DocumentError and contribute no ranges.
// Lists under the baseline category carry no information and are skipped.
func (d Document) Ranges() ([]model.Range, error) {
	derr := &DocumentError{}
	var out []model.Range
	for _, key := range slices.Sorted(maps.Keys(d)) {
		day, err := model.ParseDay(key)
		if err != nil {
			derr.add(key, err)
			continue
		}
		rs, err := parseDay(day, d[key])
		if err != nil {
			derr.add(key, err)
			continue
		}
		out = append(out, rs...)
	}
	return out, derr.orNil()
}

func parseDay(day model.Day, dr DayRanges) ([]model.Range, error) {
	var out []model.Range
	for _, cat := range slices.Sorted(maps.Keys(dr)) {
		if cat.IsBaseline() {
			continue
		}
		for _, text := range dr[cat] {
			r, err := model.ParseRange(day, cat, text)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// DecodeDocument turns a document into a grid. Each day is decoded on its
// own: invalid or overlapping ranges reject that day only. The grid holds
// every day that decoded cleanly; a non-nil error is a *DocumentError.
func DecodeDocument(doc Document, slot time.Duration) (*Grid, error) {
	ranges, perr := doc.Ranges()
	g, err := Decode(ranges, slot)
	if g == nil {
		return nil, err
	}
	rejected := &DocumentError{}
	var de *DocumentError
	for _, e := range []error{perr, err} {
		if e == nil {
			continue
		}
		if errors.As(e, &de) {
			for k, v := range de.Days {
				rejected.add(k, v)
			}
		}
	}
	// A day can be spelled twice ("Mon" and "Monday"); if either spelling
	// failed to parse, drop whatever the other contributed.
	for key := range rejected.Days {
		if day, err := model.ParseDay(key); err == nil {
			g.ClearDay(day)
		}
	}
	return g, rejected.orNil()
}

// EncodeDocument renders a grid as a document. Every day holding at least one
// non-baseline cell is listed with each of categories (possibly empty) plus any
// other category found on it.
func EncodeDocument(g *Grid, categories []model.Category) Document {
	doc := Document{}
	for _, day := range g.Days() {
		dr := DayRanges{}
		for _, c := range categories {
			if !c.IsBaseline() {
				dr[c] = []string{}
			}
		}
		for c, rs := range EncodeDay(g, day) {
			texts := make([]string, 0, len(rs))
			for _, r := range rs {
				texts = append(texts, r.String())
			}
			dr[c] = texts
		}
		doc[day.String()] = dr
	}
	return doc
}

// Normalize decodes then re-encodes a document, merging adjacent ranges and
// canonicalizing day names. Any rejected day fails the whole call.
func Normalize(doc Document, slot time.Duration, categories []model.Category) (Document, error) {
	g, err := DecodeDocument(doc, slot)
	if err != nil {
		return nil, err
	}
	return EncodeDocument(g, categories), nil
}

// ReadDocument decodes a document in "json" or "yaml" format.
func ReadDocument(r io.Reader, format string) (Document, error) {
	var doc Document
	switch strings.ToLower(format) {
	case "json":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// WriteDocument encodes a document in "json" or "yaml" format.
func WriteDocument(w io.Writer, doc Document, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

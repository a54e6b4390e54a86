package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stacklane/pkg/core/lanes"
	errs "github.com/matzehuels/stacklane/pkg/errors"
)

// Input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Document is a timeline as written by users.
//
//	title = "Clinical trials"
//	epoch = "2000-01-01"
//	unit  = "month"
//
//	[[intervals]]
//	title = "Study of Bendamustine"
//	start = 5
//	end   = 50
type Document struct {
	Title     string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Epoch     string  `json:"epoch,omitempty" yaml:"epoch,omitempty" toml:"epoch,omitempty"`
	Unit      string  `json:"unit,omitempty" yaml:"unit,omitempty" toml:"unit,omitempty"`
	Intervals []Entry `json:"intervals" yaml:"intervals" toml:"intervals"`
}

// Entry is one interval in a Document. ID is optional; entries without one
// are numbered by position.
type Entry struct {
	ID    *int    `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Title string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Start float64 `json:"start" yaml:"start" toml:"start"`
	End   float64 `json:"end" yaml:"end" toml:"end"`
}

// LaneIntervals converts the entries to engine input. Entries without an ID
// take their position; an explicit ID that collides with another entry's
// is reported by [lanes.Validate].
func (d *Document) LaneIntervals() ([]lanes.Interval, error) {
	if err := errs.ValidateTitle(d.Title); err != nil {
		return nil, err
	}
	out := make([]lanes.Interval, len(d.Intervals))
	for i, e := range d.Intervals {
		if err := errs.ValidateTitle(e.Title); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "interval %d", i)
		}
		id := i
		if e.ID != nil {
			id = *e.ID
		}
		out[i] = lanes.Interval{ID: id, Start: e.Start, End: e.End, Title: e.Title}
	}
	if err := lanes.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromIntervals builds a Document from engine intervals.
func FromIntervals(title string, intervals []lanes.Interval) *Document {
	d := &Document{Title: title, Intervals: make([]Entry, len(intervals))}
	for i, iv := range intervals {
		id := iv.ID
		d.Intervals[i] = Entry{ID: &id, Title: iv.Title, Start: iv.Start, End: iv.End}
	}
	return d
}

// FormatFromPath infers the input format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer format of %s (use .json, .yaml, .yml or .toml)", path)
	}
}

// Read decodes a Document in the given format.
func Read(r io.Reader, format string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	return Unmarshal(data, format)
}

// Unmarshal decodes a Document in the given format.
func Unmarshal(data []byte, format string) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported timeline format: %q", format)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s timeline", format)
	}
	return &doc, nil
}

// ReadFile reads a Document, choosing the format from the extension.
func ReadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "timeline %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data, format)
}

// Marshal encodes a Document in the given format.
func Marshal(doc *Document, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported timeline format: %q", format)
	}
}

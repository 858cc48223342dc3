// Package logframe decodes structured log frames emitted by firmware.
//
// A frame carries only a format index, an optional timestamp and the
// argument values; the format strings, levels and source locations live in
// a Table shipped alongside the firmware image.
package logframe

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Encoding names the wire codec used for frames.
type Encoding string

const (
	EncodingCBOR    Encoding = "cbor"
	EncodingMsgpack Encoding = "msgpack"
)

// Entry is one format string in the schema table.
type Entry struct {
	Index  uint64 `yaml:"index" json:"index"`
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Location is the source position that emitted an Entry.
type Location struct {
	Index uint64 `yaml:"index" json:"index"`
	File  string `yaml:"file" json:"file"`
	Line  int    `yaml:"line" json:"line"`
}

// tableFile is the on-disk shape shared by YAML and JSONC tables.
type tableFile struct {
	Encoding  Encoding   `yaml:"encoding" json:"encoding"`
	Entries   []Entry    `yaml:"entries" json:"entries"`
	Locations []Location `yaml:"locations" json:"locations"`
}

// Table is the schema table plus the optional location table.
type Table struct {
	Encoding  Encoding
	entries   map[uint64]Entry
	locations map[uint64]Location
}

// NewTable builds a table. locations may be nil when no location info exists.
func NewTable(enc Encoding, entries []Entry, locations []Location) (*Table, error) {
	if enc == "" {
		enc = EncodingCBOR
	}
	if enc != EncodingCBOR && enc != EncodingMsgpack {
		return nil, fmt.Errorf("unknown frame encoding %q", enc)
	}
	if len(entries) == 0 {
		return nil, errors.New("table has no entries")
	}

	t := &Table{Encoding: enc, entries: make(map[uint64]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := t.entries[e.Index]; dup {
			return nil, fmt.Errorf("duplicate table index %d", e.Index)
		}
		t.entries[e.Index] = e
	}
	if len(locations) > 0 {
		t.locations = make(map[uint64]Location, len(locations))
		for _, l := range locations {
			if _, ok := t.entries[l.Index]; !ok {
				return nil, fmt.Errorf("location for unknown index %d", l.Index)
			}
			t.locations[l.Index] = l
		}
	}
	return t, nil
}

// LoadTable reads a table from a .yaml/.yml or .json/.jsonc file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	var tf tableFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &tf)
	default:
		err = yaml.Unmarshal(data, &tf)
	}
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", path, err)
	}

	t, err := NewTable(tf.Encoding, tf.Entries, tf.Locations)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", path, err)
	}
	return t, nil
}

// Entry returns the schema entry for index.
func (t *Table) Entry(index uint64) (Entry, bool) {
	e, ok := t.entries[index]
	return e, ok
}

// HasLocations reports whether a location table was loaded.
func (t *Table) HasLocations() bool {
	return t.locations != nil
}

// Location returns the source location for index, if known.
func (t *Table) Location(index uint64) (Location, bool) {
	l, ok := t.locations[index]
	return l, ok
}

// Len returns the number of schema entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns every schema entry ordered by index.
func (t *Table) Entries() []Entry {
	out := slices.Collect(maps.Values(t.entries))
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Index, b.Index) })
	return out
}

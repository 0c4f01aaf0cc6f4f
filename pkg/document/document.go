// Package document binds event sets to the map objects that host them and
// reads and writes whole event-set documents.
package document

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jwebster45206/story-editor/pkg/eventset"
	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

// HostKind is the kind of map object holding an event set.
type HostKind string

const (
	HostPerson HostKind = "person"
	HostNPC    HostKind = "npc"
	HostThing  HostKind = "thing"
)

// ParseHostKind validates a host kind name.
func ParseHostKind(s string) (HostKind, bool) {
	switch k := HostKind(s); k {
	case HostPerson, HostNPC, HostThing:
		return k, true
	}
	return "", false
}

const (
	elemRoot = "eventsets"
	elemSet  = "set"
)

// Entry is the event set of one map object.
type Entry struct {
	Host    HostKind
	ThingID int
	Set     *eventset.EventSet
}

// Label identifies the entry in listings, e.g. "npc 4".
func (e *Entry) Label() string {
	return fmt.Sprintf("%s %d", e.Host, e.ThingID)
}

// Document is an ordered collection of host entries.
type Document struct {
	Entries []*Entry
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Clone deep-copies every entry.
func (d *Document) Clone() *Document {
	cp := New()
	for _, e := range d.Entries {
		cp.Entries = append(cp.Entries, &Entry{Host: e.Host, ThingID: e.ThingID, Set: e.Set.Clone()})
	}
	return cp
}

// Find returns the entry for a host, or nil.
func (d *Document) Find(host HostKind, thingID int) *Entry {
	for _, e := range d.Entries {
		if e.Host == host && e.ThingID == thingID {
			return e
		}
	}
	return nil
}

// Entry returns the entry for a host, creating a blank one if needed.
func (d *Document) Entry(host HostKind, thingID int) *Entry {
	if e := d.Find(host, thingID); e != nil {
		return e
	}
	e := &Entry{Host: host, ThingID: thingID, Set: eventset.New()}
	d.Entries = append(d.Entries, e)
	return e
}

// Sort orders entries by host kind then thing id.
func (d *Document) Sort() {
	sort.SliceStable(d.Entries, func(i, j int) bool {
		if d.Entries[i].Host != d.Entries[j].Host {
			return d.Entries[i].Host < d.Entries[j].Host
		}
		return d.Entries[i].ThingID < d.Entries[j].ThingID
	})
}

// Save writes every non-empty entry. It stops at the first set that
// cannot be saved.
func (d *Document) Save(w treefmt.Writer) error {
	w.OpenElement(elemRoot)
	for _, e := range d.Entries {
		err := e.Set.Save(w, elemSet, true,
			treefmt.Attr{Key: "host", Value: string(e.Host)},
			treefmt.IntAttr("id", e.ThingID))
		if err != nil {
			return fmt.Errorf("%s: %w", e.Label(), err)
		}
	}
	w.CloseElement()
	return nil
}

// Load builds a document from decoded records. Records that cannot be
// applied are reported as warnings rather than failing the load.
func Load(records []treefmt.Record) (*Document, []string) {
	d := New()
	var warnings []string
	for _, rec := range records {
		if rec.Depth() == 1 && rec.ElementAt(0) == elemRoot {
			continue
		}
		if rec.ElementAt(0) != elemRoot || rec.ElementAt(1) != elemSet {
			warnings = append(warnings, "unexpected element: "+rec.String())
			continue
		}
		hostName, _ := rec.AttrAt(1, "host")
		host, ok := ParseHostKind(hostName)
		if !ok {
			warnings = append(warnings, "unknown host kind: "+rec.String())
			continue
		}
		idValue, _ := rec.AttrAt(1, "id")
		id, err := strconv.Atoi(idValue)
		if err != nil || id < 0 {
			warnings = append(warnings, "invalid host id: "+rec.String())
			continue
		}

		entry := d.Entry(host, id)
		if rec.Depth() <= 2 {
			continue
		}
		if !entry.Set.LoadData(rec, 2) {
			warnings = append(warnings, "ignored: "+rec.String())
		}
	}
	return d, warnings
}

// Read decodes a document in the given format.
func Read(format treefmt.Format, r io.Reader) (*Document, []string, error) {
	records, err := treefmt.Decode(format, r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode document: %w", err)
	}
	d, warnings := Load(records)
	return d, warnings, nil
}

// Write encodes the document in the given format.
func Write(format treefmt.Format, w io.Writer, d *Document) error {
	enc, err := treefmt.NewEncoder(format, w)
	if err != nil {
		return err
	}
	if err := d.Save(enc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

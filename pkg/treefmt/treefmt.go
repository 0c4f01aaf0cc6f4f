// Package treefmt is the hierarchical element format used to persist
// authoring data. Writers receive nested elements; readers flatten a
// document into Records, one per leaf element, each carrying the full
// element path from the document root.
package treefmt

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a document cannot be decoded into elements.
var ErrMalformed = errors.New("treefmt: malformed document")

// Attr is a key="value" pair attached to an element.
type Attr struct {
	Key   string
	Value string
}

// IntAttr builds an Attr from an integer value.
func IntAttr(key string, value int) Attr {
	return Attr{Key: key, Value: strconv.Itoa(value)}
}

// Writer receives a document as a stream of nested elements.
type Writer interface {
	// OpenElement starts a new element nested under the current one.
	OpenElement(name string, attrs ...Attr)
	// WriteData writes a complete element holding a single scalar value.
	WriteData(name, value string)
	// CloseElement terminates the most recently opened element.
	CloseElement()
}

// Encoder is a Writer bound to an output stream.
type Encoder interface {
	Writer
	// Close terminates any open elements, flushes output and reports the
	// first error seen while writing.
	Close() error
}

// WriteInt writes an integer data element.
func WriteInt(w Writer, name string, value int) {
	w.WriteData(name, strconv.Itoa(value))
}

// WriteBool writes a boolean data element.
func WriteBool(w Writer, name string, value bool) {
	w.WriteData(name, strconv.FormatBool(value))
}

// Element is one step of a Record path.
type Element struct {
	Name  string
	Attrs []Attr
}

// Record is a leaf element together with the path of elements enclosing it.
type Record struct {
	Path  []Element
	Value string
}

// Depth returns the number of elements in the path.
func (r Record) Depth() int {
	return len(r.Path)
}

// ElementAt returns the element name at index, or "" when out of range.
func (r Record) ElementAt(index int) string {
	if index < 0 || index >= len(r.Path) {
		return ""
	}
	return r.Path[index].Name
}

// KeyAt returns the first attribute key of the element at index.
func (r Record) KeyAt(index int) string {
	if index < 0 || index >= len(r.Path) || len(r.Path[index].Attrs) == 0 {
		return ""
	}
	return r.Path[index].Attrs[0].Key
}

// KeyValueAt returns the first attribute value of the element at index.
func (r Record) KeyValueAt(index int) string {
	if index < 0 || index >= len(r.Path) || len(r.Path[index].Attrs) == 0 {
		return ""
	}
	return r.Path[index].Attrs[0].Value
}

// AttrAt returns the value of the named attribute of the element at index.
func (r Record) AttrAt(index int, key string) (string, bool) {
	if index < 0 || index >= len(r.Path) {
		return "", false
	}
	for _, a := range r.Path[index].Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// KeyValueIntAt parses the first attribute value at index as an integer.
func (r Record) KeyValueIntAt(index int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(r.KeyValueAt(index)))
	if err != nil {
		return 0, false
	}
	return v, true
}

// TailElements returns the element names from index to the end of the path.
func (r Record) TailElements(index int) []string {
	if index < 0 || index >= len(r.Path) {
		return nil
	}
	names := make([]string, 0, len(r.Path)-index)
	for _, e := range r.Path[index:] {
		names = append(names, e.Name)
	}
	return names
}

// IsLast reports whether index addresses the leaf element of the record.
func (r Record) IsLast(index int) bool {
	return index == len(r.Path)-1
}

// DataString returns the leaf value.
func (r Record) DataString() string {
	return r.Value
}

// DataInt parses the leaf value as an integer.
func (r Record) DataInt() (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(r.Value))
	if err != nil {
		return 0, false
	}
	return v, true
}

// DataBool parses the leaf value as a boolean.
func (r Record) DataBool() (bool, bool) {
	v, err := strconv.ParseBool(strings.TrimSpace(r.Value))
	if err != nil {
		return false, false
	}
	return v, true
}

// String renders the record path for diagnostics, e.g. "set[id=3]/lock/item/count=2".
func (r Record) String() string {
	var b strings.Builder
	for i, e := range r.Path {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(e.Name)
		for _, a := range e.Attrs {
			fmt.Fprintf(&b, "[%s=%s]", a.Key, a.Value)
		}
	}
	if r.Value != "" {
		b.WriteByte('=')
		b.WriteString(r.Value)
	}
	return b.String()
}

// Format names a concrete document encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a name (or file extension) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "xml", "":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document format %q", name)
	}
}

// NewEncoder returns an Encoder writing the given format to w.
func NewEncoder(format Format, w io.Writer) (Encoder, error) {
	switch format {
	case FormatXML:
		return NewXMLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// Decode reads a whole document in the given format.
func Decode(format Format, r io.Reader) ([]Record, error) {
	switch format {
	case FormatXML:
		return DecodeXML(r)
	case FormatYAML:
		return DecodeYAML(r)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// copyPath snapshots a path stack so later pushes don't alias it.
func copyPath(stack []Element) []Element {
	out := make([]Element, len(stack))
	copy(out, stack)
	return out
}

package treefmt

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// XMLWriter writes elements as indented XML.
type XMLWriter struct {
	enc   *xml.Encoder
	stack []string
	err   error
}

var _ Encoder = (*XMLWriter)(nil)

// NewXMLWriter creates a writer emitting to w.
func NewXMLWriter(w io.Writer) *XMLWriter {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &XMLWriter{enc: enc}
}

func (x *XMLWriter) encode(tok xml.Token) {
	if x.err != nil {
		return
	}
	x.err = x.enc.EncodeToken(tok)
}

func startElement(name string, attrs []Attr) xml.StartElement {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	for _, a := range attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Key}, Value: a.Value})
	}
	return start
}

func (x *XMLWriter) OpenElement(name string, attrs ...Attr) {
	x.encode(startElement(name, attrs))
	x.stack = append(x.stack, name)
}

func (x *XMLWriter) WriteData(name, value string) {
	x.encode(xml.StartElement{Name: xml.Name{Local: name}})
	if value != "" {
		x.encode(xml.CharData(value))
	}
	x.encode(xml.EndElement{Name: xml.Name{Local: name}})
}

func (x *XMLWriter) CloseElement() {
	if len(x.stack) == 0 {
		if x.err == nil {
			x.err = errors.New("treefmt: close without open element")
		}
		return
	}
	name := x.stack[len(x.stack)-1]
	x.stack = x.stack[:len(x.stack)-1]
	x.encode(xml.EndElement{Name: xml.Name{Local: name}})
}

func (x *XMLWriter) Close() error {
	for len(x.stack) > 0 {
		x.CloseElement()
	}
	if x.err != nil {
		return fmt.Errorf("failed to write xml: %w", x.err)
	}
	if err := x.enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush xml: %w", err)
	}
	return nil
}

type xmlFrame struct {
	elem     Element
	text     strings.Builder
	hasChild bool
}

// DecodeXML flattens an XML document into leaf records.
func DecodeXML(r io.Reader) ([]Record, error) {
	dec := xml.NewDecoder(r)
	var (
		frames  []*xmlFrame
		records []Record
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(frames) > 0 {
				frames[len(frames)-1].hasChild = true
			}
			f := &xmlFrame{elem: Element{Name: t.Name.Local}}
			for _, a := range t.Attr {
				f.elem.Attrs = append(f.elem.Attrs, Attr{Key: a.Name.Local, Value: a.Value})
			}
			frames = append(frames, f)
		case xml.CharData:
			if len(frames) > 0 {
				frames[len(frames)-1].text.Write(t)
			}
		case xml.EndElement:
			top := frames[len(frames)-1]
			if !top.hasChild {
				path := make([]Element, 0, len(frames))
				for _, f := range frames {
					path = append(path, f.elem)
				}
				records = append(records, Record{Path: path, Value: top.text.String()})
			}
			frames = frames[:len(frames)-1]
		}
	}

	if len(frames) != 0 {
		return nil, fmt.Errorf("%w: %d unclosed elements", ErrMalformed, len(frames))
	}
	return records, nil
}

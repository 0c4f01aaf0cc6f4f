package eventset

import (
	"bytes"
	"fmt"

	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

// RootElement wraps a standalone serialized event set.
const RootElement = "eventset"

// Marshal serializes a single set. Empty sets are written with the none
// marker so that a cleared set is distinguishable from a missing one.
func Marshal(format treefmt.Format, s *EventSet) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := treefmt.NewEncoder(format, &buf)
	if err != nil {
		return nil, err
	}
	if err := s.Save(enc, RootElement, false); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal event set: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a set written by Marshal. Records that could not be
// applied are returned as warnings.
func Unmarshal(format treefmt.Format, data []byte) (*EventSet, []string, error) {
	records, err := treefmt.Decode(format, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal event set: %w", err)
	}
	s := New()
	var warnings []string
	for _, rec := range records {
		if rec.ElementAt(0) != RootElement {
			warnings = append(warnings, "unexpected element: "+rec.String())
			continue
		}
		if rec.Depth() == 1 {
			continue
		}
		if !s.LoadData(rec, 1) {
			warnings = append(warnings, "ignored: "+rec.String())
		}
	}
	return s, warnings, nil
}

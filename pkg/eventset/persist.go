package eventset

import (
	"fmt"

	"github.com/jwebster45206/story-editor/pkg/event"
	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

const (
	elemLock        = "lock"
	elemLockEvent   = "lockevent"
	elemUnlockEvent = "unlockevent"
	elemAccess      = "unlockaccess"
	elemNone        = "none"
)

// MaxUnlocked bounds the unlocked list a document may declare.
const MaxUnlocked = 1024

// Save writes the set inside an element named wrapper. An empty set
// writes nothing when skipEmpty is true, and a wrapper holding a single
// "none" marker otherwise. Default-valued parts are omitted.
//
// A set in which a conversation node is reachable twice, within one event
// or across events, is rejected before anything is written.
func (s *EventSet) Save(w treefmt.Writer, wrapper string, skipEmpty bool, attrs ...treefmt.Attr) error {
	if s.IsEmpty() {
		if skipEmpty {
			return nil
		}
		w.OpenElement(wrapper, attrs...)
		w.WriteData(elemNone, "")
		w.CloseElement()
		return nil
	}

	all := append([]event.Event{s.locked}, s.unlocked...)
	if err := event.ValidateEvents(all...); err != nil {
		return fmt.Errorf("cannot save event set: %w", err)
	}

	w.OpenElement(wrapper, attrs...)
	s.lock.Save(w, elemLock)
	if !s.locked.IsNone() {
		if err := s.locked.Save(w, elemLockEvent); err != nil {
			return err
		}
	}
	for i, e := range s.unlocked {
		if err := e.Save(w, elemUnlockEvent, treefmt.IntAttr("id", i)); err != nil {
			return err
		}
	}
	if s.access != DefaultAccess {
		w.WriteData(elemAccess, s.access.String())
	}
	w.CloseElement()
	return nil
}

// LoadData applies one record to the set. index is the position of the
// first element under the set's wrapper. Records that do not apply
// return false and leave the set unchanged.
func (s *EventSet) LoadData(rec treefmt.Record, index int) bool {
	switch rec.ElementAt(index) {
	case elemNone:
		s.Clear()
		return true
	case elemLock:
		return s.lock.LoadData(rec, index+1)
	case elemLockEvent:
		return s.locked.LoadData(rec, index+1)
	case elemUnlockEvent:
		id, ok := rec.KeyValueIntAt(index)
		if !ok || id < 0 || id >= MaxUnlocked {
			return false
		}
		if id < len(s.unlocked) {
			return s.unlocked[id].LoadData(rec, index+1)
		}
		var e event.Event
		if !e.LoadData(rec, index+1) {
			return false
		}
		for len(s.unlocked) < id {
			s.unlocked = append(s.unlocked, event.Blank())
		}
		s.unlocked = append(s.unlocked, e)
		return true
	case elemAccess:
		a, ok := ParseAccess(rec.DataString())
		if !ok {
			return false
		}
		s.access = a
		return true
	}
	return false
}

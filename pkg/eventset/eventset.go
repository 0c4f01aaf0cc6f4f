// Package eventset is the unit of scripted behavior attached to a map
// object: one event fired while locked, a list of events available once
// unlocked, the lock itself and the policy for picking unlocked events.
package eventset

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/story-editor/pkg/event"
	"github.com/jwebster45206/story-editor/pkg/lock"
)

// Access selects how the engine picks among unlocked events.
type Access int

const (
	AccessNone Access = iota
	AccessSequential
	AccessRandom
)

// DefaultAccess matches the engine's default.
const DefaultAccess = AccessSequential

func (a Access) String() string {
	switch a {
	case AccessSequential:
		return "sequential"
	case AccessRandom:
		return "random"
	default:
		return "none"
	}
}

// ParseAccess maps a document value to an Access.
func ParseAccess(s string) (Access, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return AccessNone, true
	case "sequential":
		return AccessSequential, true
	case "random":
		return AccessRandom, true
	}
	return DefaultAccess, false
}

// EventSet owns all of its events and their conversation trees. Use Clone
// or CopyFrom to copy; the copy shares nothing with the source.
type EventSet struct {
	locked   event.Event
	unlocked []event.Event
	lock     lock.Lock
	access   Access
}

// New returns a blank event set.
func New() *EventSet {
	return &EventSet{lock: lock.Blank(), access: DefaultAccess}
}

// Clone returns a deep copy.
func (s *EventSet) Clone() *EventSet {
	cp := New()
	cp.CopyFrom(s)
	return cp
}

// CopyFrom replaces the contents of s with a deep copy of o.
func (s *EventSet) CopyFrom(o *EventSet) {
	if s == o {
		return
	}
	s.locked = o.locked.Clone()
	s.unlocked = make([]event.Event, len(o.unlocked))
	for i, e := range o.unlocked {
		s.unlocked[i] = e.Clone()
	}
	s.lock = o.lock
	s.access = o.access
}

// Clear resets to the blank state.
func (s *EventSet) Clear() {
	*s = *New()
}

// IsEmpty reports whether the locked event and every unlocked event are
// blank and there is no lock. The access policy is not considered.
func (s *EventSet) IsEmpty() bool {
	if !s.locked.IsNone() || !s.lock.IsBlank() {
		return false
	}
	for _, e := range s.unlocked {
		if !e.IsNone() {
			return false
		}
	}
	return true
}

// Equal compares two sets structurally.
func (s *EventSet) Equal(o *EventSet) bool {
	if s.access != o.access || !s.lock.Equal(o.lock) || !s.locked.Equal(o.locked) {
		return false
	}
	if len(s.unlocked) != len(o.unlocked) {
		return false
	}
	for i := range s.unlocked {
		if !s.unlocked[i].Equal(o.unlocked[i]) {
			return false
		}
	}
	return true
}

// Lock returns the set's lock for editing.
func (s *EventSet) Lock() *lock.Lock {
	return &s.lock
}

// SetLock replaces the lock.
func (s *EventSet) SetLock(l lock.Lock) {
	s.lock = l
}

func (s *EventSet) Access() Access {
	return s.access
}

func (s *EventSet) SetAccess(a Access) bool {
	if a < AccessNone || a > AccessRandom {
		return false
	}
	s.access = a
	return true
}

// LockedEvent returns the locked event for editing.
func (s *EventSet) LockedEvent() *event.Event {
	return &s.locked
}

// SetLocked replaces the locked event with a copy of e.
// With replaceExisting false a non-blank locked event is kept and false
// is returned.
func (s *EventSet) SetLocked(e event.Event, replaceExisting bool) bool {
	if !replaceExisting && !s.locked.IsNone() {
		return false
	}
	s.locked = e.Clone()
	return true
}

// UnsetLocked resets the locked event to blank.
func (s *EventSet) UnsetLocked() {
	s.locked.SetBlank()
}

// UnlockedCount returns the number of unlocked events.
func (s *EventSet) UnlockedCount() int {
	return len(s.unlocked)
}

// UnlockedEvent returns the unlocked event at index for editing, or nil.
func (s *EventSet) UnlockedEvent(index int) *event.Event {
	if index < 0 || index >= len(s.unlocked) {
		return nil
	}
	return &s.unlocked[index]
}

// AddUnlocked appends a copy of e.
func (s *EventSet) AddUnlocked(e event.Event) {
	s.unlocked = append(s.unlocked, e.Clone())
}

// SetUnlockedAt stores a copy of e at index. With replace, the event at index is
// overwritten, or e is appended when index is out of range. Without
// replace, e is inserted before index, or appended when index is out of
// range.
func (s *EventSet) SetUnlockedAt(index int, e event.Event, replace bool) {
	e = e.Clone()
	inRange := index >= 0 && index < len(s.unlocked)
	switch {
	case replace && inRange:
		s.unlocked[index] = e
	case !replace && inRange:
		s.unlocked = append(s.unlocked, event.Event{})
		copy(s.unlocked[index+1:], s.unlocked[index:])
		s.unlocked[index] = e
	default:
		s.unlocked = append(s.unlocked, e)
	}
}

// UnsetUnlockedAt removes the event at index, compacting the list.
func (s *EventSet) UnsetUnlockedAt(index int) bool {
	if index < 0 || index >= len(s.unlocked) {
		return false
	}
	s.unlocked = append(s.unlocked[:index], s.unlocked[index+1:]...)
	return true
}

// UnsetAllUnlocked empties the unlocked list.
func (s *EventSet) UnsetAllUnlocked() {
	s.unlocked = nil
}

// ShiftUnlockedUp swaps the event at index with the one before it and
// returns its new index, or -1 when it is already first or out of range.
func (s *EventSet) ShiftUnlockedUp(index int) int {
	if index <= 0 || index >= len(s.unlocked) {
		return -1
	}
	s.unlocked[index-1], s.unlocked[index] = s.unlocked[index], s.unlocked[index-1]
	return index - 1
}

// ShiftUnlockedDown swaps the event at index with the one after it and
// returns its new index, or -1 when it is already last or out of range.
func (s *EventSet) ShiftUnlockedDown(index int) int {
	if index < 0 || index >= len(s.unlocked)-1 {
		return -1
	}
	s.unlocked[index+1], s.unlocked[index] = s.unlocked[index], s.unlocked[index+1]
	return index + 1
}

// Summarize describes the set as three lines: the lock, the locked event
// and a preview of the unlocked events.
func (s *EventSet) Summarize() []string {
	return []string{
		s.lock.Summarize(""),
		"Locked Event: " + s.locked.Summary(),
		s.unlockedSummary(),
	}
}

func (s *EventSet) unlockedSummary() string {
	n := len(s.unlocked)
	head := fmt.Sprintf("Unlock Events (%d)", n)
	switch n {
	case 0:
		return head
	case 1:
		return fmt.Sprintf("%s: %s", head, s.unlocked[0].Summary())
	case 2:
		return fmt.Sprintf("%s: %s and 1 other", head, s.unlocked[0].Summary())
	default:
		return fmt.Sprintf("%s: %s and %d others", head, s.unlocked[0].Summary(), n-1)
	}
}

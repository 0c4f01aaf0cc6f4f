// Package lock models the condition that gates an event set.
package lock

import "strings"

// State is the classifier of a Lock.
type State int

const (
	StateNone State = iota
	StateTrigger
	StateItem
)

func (s State) String() string {
	switch s {
	case StateTrigger:
		return "trigger"
	case StateItem:
		return "item"
	default:
		return "none"
	}
}

// Condition is the variant data of a non-blank lock: Trigger or HaveItem.
type Condition interface {
	State() State
}

// Trigger opens when an external trigger fires.
type Trigger struct{}

// HaveItem opens when the player holds Count of item ItemID, optionally
// consuming them.
type HaveItem struct {
	ItemID  int
	Count   int
	Consume bool
}

func (Trigger) State() State  { return StateTrigger }
func (HaveItem) State() State { return StateItem }

// DefaultHaveItem is the have item condition a new item lock starts with.
func DefaultHaveItem() HaveItem {
	return HaveItem{ItemID: 0, Count: 1, Consume: true}
}

// Lock is an unlock condition plus whether it stays open once satisfied.
// Lock values contain no references and copy safely.
type Lock struct {
	cond      Condition
	permanent bool
}

// Blank returns a lock with no condition.
func Blank() Lock {
	return Lock{permanent: true}
}

// NewTrigger returns a trigger lock.
func NewTrigger(permanent bool) Lock {
	return Lock{cond: Trigger{}, permanent: permanent}
}

// NewHaveItem returns an item lock. It fails for a negative id or a
// non-positive count, returning a blank lock.
func NewHaveItem(itemID, count int, consume, permanent bool) (Lock, bool) {
	l := Blank()
	ok := l.SetHaveItem(itemID, count, consume, permanent)
	return l, ok
}

// defaultFor returns the freshly constructed lock for a state; saved
// fields are compared against it.
func defaultFor(s State) Lock {
	switch s {
	case StateTrigger:
		return NewTrigger(true)
	case StateItem:
		d := DefaultHaveItem()
		return Lock{cond: d, permanent: true}
	default:
		return Blank()
	}
}

// State returns the classifier.
func (l Lock) State() State {
	if l.cond == nil {
		return StateNone
	}
	return l.cond.State()
}

// Condition returns the variant data, or nil for a blank lock.
func (l Lock) Condition() Condition {
	return l.cond
}

// IsBlank reports whether the lock has no condition.
func (l Lock) IsBlank() bool {
	return l.cond == nil
}

// IsPermanent reports whether a satisfied lock stays open. A blank lock
// is never permanent.
func (l Lock) IsPermanent() bool {
	return l.cond != nil && l.permanent
}

func (l *Lock) SetBlank() {
	*l = Blank()
}

func (l *Lock) SetTrigger(permanent bool) {
	l.cond = Trigger{}
	l.permanent = permanent
}

// SetHaveItem switches to an item lock. Invalid values leave the lock as it was.
func (l *Lock) SetHaveItem(itemID, count int, consume, permanent bool) bool {
	if itemID < 0 || count <= 0 {
		return false
	}
	l.cond = HaveItem{ItemID: itemID, Count: count, Consume: consume}
	l.permanent = permanent
	return true
}

// SetPermanent changes permanence of a non-blank lock.
func (l *Lock) SetPermanent(permanent bool) bool {
	if l.cond == nil {
		return false
	}
	l.permanent = permanent
	return true
}

// Item getters return -1 (or false) when the lock is not an item lock.

func (l Lock) HaveItemID() int {
	if c, ok := l.cond.(HaveItem); ok {
		return c.ItemID
	}
	return -1
}

func (l Lock) HaveItemCount() int {
	if c, ok := l.cond.(HaveItem); ok {
		return c.Count
	}
	return -1
}

func (l Lock) HaveItemConsume() bool {
	if c, ok := l.cond.(HaveItem); ok {
		return c.Consume
	}
	return false
}

// Equal compares condition and permanence. Permanence is ignored for
// blank locks.
func (l Lock) Equal(o Lock) bool {
	if l.cond != o.cond {
		return false
	}
	return l.cond == nil || l.permanent == o.permanent
}

// Summarize returns a one line description prefixed with prefix.
func (l Lock) Summarize(prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("Lock: ")
	switch l.State() {
	case StateTrigger:
		b.WriteString("Trigger")
	case StateItem:
		b.WriteString("Have Item")
	default:
		b.WriteString("None")
	}
	return b.String()
}

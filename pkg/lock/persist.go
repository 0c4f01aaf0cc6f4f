package lock

import (
	"strconv"

	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

// Save writes the lock inside an element named wrapper. Fields equal to
// the default for the lock's state are omitted, and a blank lock writes
// nothing at all.
func (l Lock) Save(w treefmt.Writer, wrapper string) {
	if l.cond == nil {
		return
	}
	def := defaultFor(l.State())

	w.OpenElement(wrapper)
	w.OpenElement(l.State().String())
	if c, ok := l.cond.(HaveItem); ok {
		dc := def.cond.(HaveItem)
		if c.ItemID != dc.ItemID {
			treefmt.WriteInt(w, "id", c.ItemID)
		}
		if c.Count != dc.Count {
			treefmt.WriteInt(w, "count", c.Count)
		}
		if c.Consume != dc.Consume {
			treefmt.WriteBool(w, "consume", c.Consume)
		}
	}
	if l.permanent != def.permanent {
		treefmt.WriteBool(w, "permanent", l.permanent)
	}
	w.CloseElement()
	w.CloseElement()
}

// LoadData applies one record to the lock. index is the position of the
// element naming the state, directly under the lock's wrapper.
func (l *Lock) LoadData(rec treefmt.Record, index int) bool {
	var state State
	switch rec.ElementAt(index) {
	case StateNone.String():
		l.SetBlank()
		return true
	case StateTrigger.String():
		state = StateTrigger
	case StateItem.String():
		state = StateItem
	default:
		return false
	}

	next := *l
	if next.State() != state {
		next = defaultFor(state)
	}

	field := rec.ElementAt(index + 1)
	switch field {
	case "":
	case "permanent":
		v, ok := rec.DataBool()
		if !ok {
			return false
		}
		next.permanent = v
	case "id", "count", "consume":
		if state != StateItem || !next.loadItemField(field, rec.DataString()) {
			return false
		}
	default:
		return false
	}

	*l = next
	return true
}

func (l *Lock) loadItemField(field, data string) bool {
	c := l.cond.(HaveItem)
	switch field {
	case "consume":
		v, err := strconv.ParseBool(data)
		if err != nil {
			return false
		}
		c.Consume = v
	default:
		v, err := strconv.Atoi(data)
		if err != nil {
			return false
		}
		if field == "id" {
			if v < 0 {
				return false
			}
			c.ItemID = v
		} else {
			if v <= 0 {
				return false
			}
			c.Count = v
		}
	}
	l.cond = c
	return true
}

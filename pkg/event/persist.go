package event

import (
	"fmt"

	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

const (
	elemConversation = "conversation"
	elemNodeText     = "text"
	elemNodeCategory = "category"
	elemNodeThing    = "thing"
	elemNodeEvent    = "event"
)

// Save writes the event inside an element named wrapper. A conversation
// whose tree shares nodes is rejected before anything is written.
func (e Event) Save(w treefmt.Writer, wrapper string, attrs ...treefmt.Attr) error {
	if err := ValidateEvents(e); err != nil {
		return fmt.Errorf("cannot save %s event: %w", e.Kind(), err)
	}
	w.OpenElement(wrapper, attrs...)
	e.saveBody(w, make(map[*Conversation]bool))
	w.CloseElement()
	return nil
}

func (e Event) saveBody(w treefmt.Writer, seen map[*Conversation]bool) {
	switch p := e.payload.(type) {
	case GiveItem:
		w.OpenElement(KindGiveItem.String())
		treefmt.WriteInt(w, "id", p.ItemID)
		treefmt.WriteInt(w, "count", p.Count)
		w.CloseElement()
	case Notification:
		w.WriteData(KindNotification.String(), p.Text)
	case StartBattle:
		w.WriteData(KindStartBattle.String(), "")
	case RunMap:
		w.OpenElement(KindRunMap.String())
		treefmt.WriteInt(w, "id", p.MapID)
		w.CloseElement()
	case Teleport:
		w.OpenElement(KindTeleportThing.String())
		treefmt.WriteInt(w, "id", p.ThingID)
		treefmt.WriteInt(w, "section", p.SectionID)
		treefmt.WriteInt(w, "x", p.X)
		treefmt.WriteInt(w, "y", p.Y)
		w.CloseElement()
	case StartConversation:
		saveNode(w, p.Root, 1, seen)
	default:
		w.WriteData(KindNone.String(), "")
	}
}

// saveNode writes n and its subtree. Nesting carries the address; each
// element only records its 1-based position among its siblings.
func saveNode(w treefmt.Writer, n *Conversation, position int, seen map[*Conversation]bool) {
	if n == nil || seen[n] {
		return
	}
	seen[n] = true

	w.OpenElement(elemConversation, treefmt.IntAttr("id", position))
	if n.Text != "" {
		w.WriteData(elemNodeText, n.Text)
	}
	if n.Category != CategoryText {
		w.WriteData(elemNodeCategory, n.Category.String())
	}
	if n.ThingID != ThingNone {
		treefmt.WriteInt(w, elemNodeThing, n.ThingID)
	}
	if !n.Action.IsNone() {
		w.OpenElement(elemNodeEvent)
		n.Action.saveBody(w, seen)
		w.CloseElement()
	}
	for i, child := range n.Next {
		saveNode(w, child, i+1, seen)
	}
	w.CloseElement()
}

// LoadData applies one record to the event. index is the position of the
// element naming the event kind, directly under the event's wrapper.
// Records that fail validation leave the event unchanged and return false.
func (e *Event) LoadData(rec treefmt.Record, index int) bool {
	kind, ok := KindFromElement(rec.ElementAt(index))
	if !ok {
		return false
	}
	field := rec.ElementAt(index + 1)
	value, isInt := rec.DataInt()

	switch kind {
	case KindNone:
		e.SetBlank()
		return true
	case KindGiveItem:
		p, ok := e.payload.(GiveItem)
		if !ok {
			p = GiveItem{Count: 1}
		}
		switch {
		case field == "id" && isInt && value >= 0:
			p.ItemID = value
		case field == "count" && isInt && value > 0:
			p.Count = value
		default:
			return false
		}
		e.payload = p
		return true
	case KindNotification:
		return e.SetNotification(rec.DataString())
	case KindStartBattle:
		e.SetStartBattle()
		return true
	case KindRunMap:
		if field != "id" || !isInt {
			return false
		}
		return e.SetStartMap(value)
	case KindTeleportThing:
		p, ok := e.payload.(Teleport)
		if !ok {
			p = Teleport{}
		}
		if !isInt || value < 0 {
			return false
		}
		switch field {
		case "id":
			p.ThingID = value
		case "section":
			p.SectionID = value
		case "x":
			p.X = value
		case "y":
			p.Y = value
		default:
			return false
		}
		e.payload = p
		return true
	case KindStartConversation:
		return e.loadConversation(rec, index)
	}
	return false
}

func (e *Event) loadConversation(rec treefmt.Record, index int) bool {
	var addr Address
	i := index
	for rec.ElementAt(i) == elemConversation {
		pos, ok := rec.KeyValueIntAt(i)
		if !ok {
			return false
		}
		addr = append(addr, pos)
		i++
	}
	if !addr.Valid() {
		return false
	}

	root := e.Conversation()
	fresh := root == nil
	if fresh {
		root = blankNode()
	}
	node := root.FindOrCreate(addr)
	if node == nil {
		return false
	}
	if fresh {
		e.payload = StartConversation{Root: root}
	}
	return node.loadField(rec, i)
}

func (n *Conversation) loadField(rec treefmt.Record, index int) bool {
	if index >= rec.Depth() {
		return true
	}
	switch rec.ElementAt(index) {
	case elemNodeText:
		n.Text = rec.DataString()
		return true
	case elemNodeCategory:
		c, ok := ParseCategory(rec.DataString())
		if !ok || (c == CategoryText && len(n.Next) > 1) {
			return false
		}
		n.Category = c
		return true
	case elemNodeThing:
		v, ok := rec.DataInt()
		if !ok || v < ThingSelf {
			return false
		}
		n.ThingID = v
		return true
	case elemNodeEvent:
		return n.Action.LoadData(rec, index+1)
	}
	return false
}

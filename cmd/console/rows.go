package main

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/story-editor/pkg/event"
	"github.com/jwebster45206/story-editor/pkg/eventset"
)

type rowKind int

const (
	rowLocked rowKind = iota
	rowUnlocked
	rowNode
)

// row is one selectable line of the event panel: an event, or a node of
// the conversation that event opens.
type row struct {
	kind  rowKind
	index int // unlocked index, or -1
	ev    *event.Event
	addr  event.Address
	node  *event.Conversation
}

func buildRows(set *eventset.EventSet) []row {
	rows := []row{{kind: rowLocked, index: -1, ev: set.LockedEvent()}}
	rows = appendNodeRows(rows, set.LockedEvent(), -1)
	for i := 0; i < set.UnlockedCount(); i++ {
		ev := set.UnlockedEvent(i)
		rows = append(rows, row{kind: rowUnlocked, index: i, ev: ev})
		rows = appendNodeRows(rows, ev, i)
	}
	return rows
}

func appendNodeRows(rows []row, ev *event.Event, index int) []row {
	root := ev.Conversation()
	if root == nil {
		return rows
	}
	for addr, node := range root.Walk() {
		rows = append(rows, row{kind: rowNode, index: index, ev: ev, addr: addr, node: node})
	}
	return rows
}

func (r row) label(width int) string {
	var s string
	switch r.kind {
	case rowLocked:
		s = "Locked: " + r.ev.Summary()
	case rowUnlocked:
		s = fmt.Sprintf("Unlock %d: %s", r.index, r.ev.Summary())
	case rowNode:
		marker := " "
		if r.node.Category == event.CategoryOption {
			marker = "?"
		}
		if !r.node.Action.IsNone() {
			marker = "!"
		}
		s = fmt.Sprintf("%s%s %s %s", strings.Repeat("  ", r.addr.Depth()+1), marker, r.addr, r.node.Text)
	}
	return truncate(s, width)
}

func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	s, _, _ = strings.Cut(s, "\n")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

// visibleWindow returns the [start, end) range of a list of total items
// that keeps selected inside height lines.
func visibleWindow(total, selected, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

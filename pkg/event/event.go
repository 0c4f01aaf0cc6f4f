// Package event holds the authoring model for scripted events and the
// conversation trees they can open.
package event

import (
	"fmt"
	"strings"
)

// Event is a single scripted action attached to a map object. The zero
// value is a blank (KindNone) event.
//
// Events with a conversation own their tree. Copy an Event with Clone;
// plain assignment shares the tree, and Save refuses events whose trees
// share nodes.
type Event struct {
	payload Payload
}

// Blank returns an event with no payload.
func Blank() Event {
	return Event{}
}

// NewGiveItem returns a give item event. It fails for a negative id or a
// non-positive count.
func NewGiveItem(itemID, count int) (Event, bool) {
	var e Event
	ok := e.SetGiveItem(itemID, count)
	return e, ok
}

// NewNotification returns a notification event. Empty text is rejected.
func NewNotification(text string) (Event, bool) {
	var e Event
	ok := e.SetNotification(text)
	return e, ok
}

// NewStartBattle returns a start battle event.
func NewStartBattle() Event {
	var e Event
	e.SetStartBattle()
	return e
}

// NewStartMap returns a run map event. Negative ids are rejected.
func NewStartMap(mapID int) (Event, bool) {
	var e Event
	ok := e.SetStartMap(mapID)
	return e, ok
}

// NewTeleport returns a teleport event. Any negative argument is rejected.
func NewTeleport(thingID, sectionID, x, y int) (Event, bool) {
	var e Event
	ok := e.SetTeleport(thingID, sectionID, x, y)
	return e, ok
}

// NewConversation returns a conversation event taking ownership of root.
// A nil root or a root whose tree shares nodes is rejected.
func NewConversation(root *Conversation) (Event, bool) {
	var e Event
	ok := e.SetConversation(root)
	return e, ok
}

// Kind returns the classifier of the event.
func (e Event) Kind() Kind {
	if e.payload == nil {
		return KindNone
	}
	return e.payload.Kind()
}

// Payload returns the variant data, or nil for a blank event.
func (e Event) Payload() Payload {
	return e.payload
}

// IsNone reports whether the event is blank.
func (e Event) IsNone() bool {
	return e.payload == nil
}

// Clone returns a deep copy, including any conversation tree.
func (e Event) Clone() Event {
	if e.payload == nil {
		return Event{}
	}
	return Event{payload: e.payload.clone()}
}

// SetBlank resets the event, dropping any owned conversation.
func (e *Event) SetBlank() {
	e.payload = nil
}

func (e *Event) SetGiveItem(itemID, count int) bool {
	if itemID < 0 || count <= 0 {
		return false
	}
	e.payload = GiveItem{ItemID: itemID, Count: count}
	return true
}

func (e *Event) SetNotification(text string) bool {
	if text == "" {
		return false
	}
	e.payload = Notification{Text: text}
	return true
}

func (e *Event) SetStartBattle() {
	e.payload = StartBattle{}
}

func (e *Event) SetStartMap(mapID int) bool {
	if mapID < 0 {
		return false
	}
	e.payload = RunMap{MapID: mapID}
	return true
}

func (e *Event) SetTeleport(thingID, sectionID, x, y int) bool {
	if thingID < 0 || sectionID < 0 || x < 0 || y < 0 {
		return false
	}
	e.payload = Teleport{ThingID: thingID, SectionID: sectionID, X: x, Y: y}
	return true
}

// SetConversation makes root the event's conversation. The caller gives up
// root; it must not be attached anywhere else.
func (e *Event) SetConversation(root *Conversation) bool {
	if root == nil || Validate(root) != nil {
		return false
	}
	e.payload = StartConversation{Root: root}
	return true
}

// The getters below return -1 or "" when the event is of another kind.

func (e Event) GiveItemID() int {
	if p, ok := e.payload.(GiveItem); ok {
		return p.ItemID
	}
	return -1
}

func (e Event) GiveItemCount() int {
	if p, ok := e.payload.(GiveItem); ok {
		return p.Count
	}
	return -1
}

func (e Event) NotificationText() string {
	if p, ok := e.payload.(Notification); ok {
		return p.Text
	}
	return ""
}

func (e Event) StartMapID() int {
	if p, ok := e.payload.(RunMap); ok {
		return p.MapID
	}
	return -1
}

func (e Event) TeleportThingID() int {
	if p, ok := e.payload.(Teleport); ok {
		return p.ThingID
	}
	return -1
}

func (e Event) TeleportSection() int {
	if p, ok := e.payload.(Teleport); ok {
		return p.SectionID
	}
	return -1
}

func (e Event) TeleportX() int {
	if p, ok := e.payload.(Teleport); ok {
		return p.X
	}
	return -1
}

func (e Event) TeleportY() int {
	if p, ok := e.payload.(Teleport); ok {
		return p.Y
	}
	return -1
}

// Conversation returns the owned conversation root, or nil.
func (e Event) Conversation() *Conversation {
	if p, ok := e.payload.(StartConversation); ok {
		return p.Root
	}
	return nil
}

// Summary describes the event on one line, e.g. "Give Item: 3 x2".
func (e Event) Summary() string {
	name := e.Kind().DisplayName()
	switch p := e.payload.(type) {
	case GiveItem:
		return fmt.Sprintf("%s: %d x%d", name, p.ItemID, p.Count)
	case Notification:
		return fmt.Sprintf("%s: %s", name, firstLine(p.Text))
	case RunMap:
		return fmt.Sprintf("%s: %d", name, p.MapID)
	case Teleport:
		return fmt.Sprintf("%s: %d to (%d,%d) section %d", name, p.ThingID, p.X, p.Y, p.SectionID)
	case StartConversation:
		return fmt.Sprintf("%s: %s", name, firstLine(p.Root.Text))
	default:
		return name
	}
}

// Equal reports whether two events carry the same payload, comparing
// conversation trees structurally.
func (e Event) Equal(o Event) bool {
	if e.Kind() != o.Kind() {
		return false
	}
	switch p := e.payload.(type) {
	case StartConversation:
		return p.Root.Equal(o.payload.(StartConversation).Root)
	case nil:
		return true
	default:
		return e.payload == o.payload
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// FindConversation resolves addr in the event's conversation, or nil.
func (e Event) FindConversation(addr Address) *Conversation {
	return e.Conversation().Find(addr)
}

// InsertConversationBefore inserts node at addr in the event's conversation.
func (e *Event) InsertConversationBefore(addr Address, node *Conversation) bool {
	root := e.Conversation()
	if root == nil {
		return false
	}
	return root.InsertBefore(addr, node)
}

// InsertConversationAfter inserts node after addr in the event's conversation.
func (e *Event) InsertConversationAfter(addr Address, node *Conversation) bool {
	root := e.Conversation()
	if root == nil {
		return false
	}
	return root.InsertAfter(addr, node)
}

// DeleteConversation removes the node at addr from the event's conversation.
func (e *Event) DeleteConversation(addr Address) bool {
	root := e.Conversation()
	if root == nil {
		return false
	}
	return root.Delete(addr)
}

package event

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Category controls how a node presents its children.
type Category int

const (
	// CategoryText nodes continue to at most one following node.
	CategoryText Category = iota
	// CategoryOption nodes offer each child as a player choice; the
	// child's text is the option label.
	CategoryOption
)

func (c Category) String() string {
	if c == CategoryOption {
		return "option"
	}
	return "text"
}

// ParseCategory maps a document value to a Category.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return CategoryText, true
	case "option":
		return CategoryOption, true
	}
	return CategoryText, false
}

// Speaker attribution for conversation lines.
const (
	ThingNone = -1 // no speaker
	ThingSelf = -2 // the thing that owns the event set
)

var (
	ErrSharedNode = errors.New("conversation node is reachable more than once")
	ErrNilNode    = errors.New("conversation has a nil child")
)

// Conversation is one node of a dialogue tree.
//
// Next and Action may be edited directly, but a node must appear only
// once across a tree and the action conversations beneath it. The
// checked operations (SetConversation, InsertBefore, InsertAfter)
// enforce this; direct edits are caught by Validate and by Save.
type Conversation struct {
	Text     string
	Category Category
	ThingID  int
	Action   Event
	Next     []*Conversation
}

// NewNode creates a childless node with a blank action.
func NewNode(text string, category Category, thingID int) *Conversation {
	return &Conversation{Text: text, Category: category, ThingID: thingID}
}

func blankNode() *Conversation {
	return &Conversation{ThingID: ThingNone}
}

// Clone deep-copies the subtree, including nested action conversations.
func (c *Conversation) Clone() *Conversation {
	return c.cloneInto(make(map[*Conversation]*Conversation))
}

func (c *Conversation) cloneInto(memo map[*Conversation]*Conversation) *Conversation {
	if c == nil {
		return nil
	}
	if cp, ok := memo[c]; ok {
		return cp
	}
	cp := &Conversation{Text: c.Text, Category: c.Category, ThingID: c.ThingID}
	memo[c] = cp
	cp.Action = c.Action.cloneWith(memo)
	if len(c.Next) > 0 {
		cp.Next = make([]*Conversation, len(c.Next))
		for i, child := range c.Next {
			cp.Next[i] = child.cloneInto(memo)
		}
	}
	return cp
}

func (e Event) cloneWith(memo map[*Conversation]*Conversation) Event {
	if p, ok := e.payload.(StartConversation); ok {
		return Event{payload: StartConversation{Root: p.Root.cloneInto(memo)}}
	}
	return e.Clone()
}

// Equal compares two subtrees node by node.
func (c *Conversation) Equal(o *Conversation) bool {
	return c.equal(o, make(map[[2]*Conversation]bool))
}

func (c *Conversation) equal(o *Conversation, seen map[[2]*Conversation]bool) bool {
	if c == nil || o == nil {
		return c == o
	}
	pair := [2]*Conversation{c, o}
	if seen[pair] {
		return true
	}
	seen[pair] = true

	if c.Text != o.Text || c.Category != o.Category || c.ThingID != o.ThingID {
		return false
	}
	if c.Action.Kind() != o.Action.Kind() {
		return false
	}
	if ca := c.Action.Conversation(); ca != nil {
		if !ca.equal(o.Action.Conversation(), seen) {
			return false
		}
	} else if !c.Action.Equal(o.Action) {
		return false
	}
	if len(c.Next) != len(o.Next) {
		return false
	}
	for i := range c.Next {
		if !c.Next[i].equal(o.Next[i], seen) {
			return false
		}
	}
	return true
}

// Validate checks that no node is reachable twice from root, through
// children or through action conversations. Such sharing would make
// copies alias and traversals revisit ancestors.
func Validate(root *Conversation) error {
	if root == nil {
		return ErrNilNode
	}
	return validate(root, make(map[*Conversation]bool))
}

// ValidateEvents validates the tree of every conversation event and
// checks that no node belongs to more than one of them.
func ValidateEvents(events ...Event) error {
	seen := make(map[*Conversation]bool)
	for _, e := range events {
		if root := e.Conversation(); root != nil {
			if err := validate(root, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func validate(n *Conversation, seen map[*Conversation]bool) error {
	if seen[n] {
		return ErrSharedNode
	}
	seen[n] = true
	if r := n.Action.Conversation(); r != nil {
		if err := validate(r, seen); err != nil {
			return err
		}
	}
	for _, child := range n.Next {
		if child == nil {
			return ErrNilNode
		}
		if err := validate(child, seen); err != nil {
			return err
		}
	}
	return nil
}

// accepts reports whether a child may live at index under c.
func (c *Conversation) accepts(index int) bool {
	if index < 0 {
		return false
	}
	if c.Category == CategoryOption {
		return true
	}
	return index == 0
}

// Find returns the node at addr relative to c as root, or nil.
func (c *Conversation) Find(addr Address) *Conversation {
	if c == nil || !addr.Valid() {
		return nil
	}
	cur := c
	for _, seg := range addr[1:] {
		idx := seg - 1
		if !cur.accepts(idx) || idx >= len(cur.Next) {
			return nil
		}
		cur = cur.Next[idx]
	}
	return cur
}

// FindOrCreate returns the node at addr, synthesizing blank nodes for any
// missing part of the path. It returns nil without modifying the tree
// when the path can never exist (a text node asked for a second child).
func (c *Conversation) FindOrCreate(addr Address) *Conversation {
	if c == nil || !addr.Valid() {
		return nil
	}

	// validate first so a bad tail leaves the tree untouched
	cur := c
	depth := 1
	for ; depth < len(addr); depth++ {
		idx := addr[depth] - 1
		if !cur.accepts(idx) {
			return nil
		}
		if idx >= len(cur.Next) {
			break
		}
		cur = cur.Next[idx]
	}
	if depth == len(addr) {
		return cur
	}
	for _, seg := range addr[depth+1:] {
		if seg != 1 {
			return nil
		}
	}

	for ; depth < len(addr); depth++ {
		idx := addr[depth] - 1
		for len(cur.Next) <= idx {
			cur.Next = append(cur.Next, blankNode())
		}
		cur = cur.Next[idx]
	}
	return cur
}

// Slot resolves the container position named by addr: the parent node and
// the index the addressed node occupies (or would occupy). The index may
// equal len(parent.Next) to name the slot past the last child.
func (c *Conversation) Slot(addr Address) (*Conversation, int, bool) {
	if len(addr) < 2 {
		return nil, -1, false
	}
	parent := c.Find(addr.Parent())
	if parent == nil {
		return nil, -1, false
	}
	idx := addr.Index()
	if idx > len(parent.Next) {
		return nil, -1, false
	}
	return parent, idx, true
}

// InsertBefore inserts node at addr, shifting the node there and its
// later siblings down by one. The parent must be an option node.
func (c *Conversation) InsertBefore(addr Address, node *Conversation) bool {
	parent, idx, ok := c.Slot(addr)
	if !ok {
		return false
	}
	return c.insertAt(parent, idx, node)
}

// InsertAfter inserts node after the existing node at addr. The parent
// must be an option node.
func (c *Conversation) InsertAfter(addr Address, node *Conversation) bool {
	parent, idx, ok := c.Slot(addr)
	if !ok || idx >= len(parent.Next) {
		return false
	}
	return c.insertAt(parent, idx+1, node)
}

func (c *Conversation) insertAt(parent *Conversation, idx int, node *Conversation) bool {
	if node == nil || parent.Category != CategoryOption {
		return false
	}
	if Validate(node) != nil || c.shares(node) {
		return false
	}
	parent.Next = append(parent.Next, nil)
	copy(parent.Next[idx+1:], parent.Next[idx:])
	parent.Next[idx] = node
	return true
}

// shares reports whether any node of other is already part of c.
func (c *Conversation) shares(other *Conversation) bool {
	mine := make(map[*Conversation]bool)
	collect(c, mine)
	theirs := make(map[*Conversation]bool)
	collect(other, theirs)
	for n := range theirs {
		if mine[n] {
			return true
		}
	}
	return false
}

// collect adds every node reachable from n, including action
// conversations, to set.
func collect(n *Conversation, set map[*Conversation]bool) {
	if n == nil || set[n] {
		return
	}
	set[n] = true
	collect(n.Action.Conversation(), set)
	for _, child := range n.Next {
		collect(child, set)
	}
}

// Delete removes the node at addr and its subtree. Later siblings move up
// one position. The root cannot be deleted.
func (c *Conversation) Delete(addr Address) bool {
	parent, idx, ok := c.Slot(addr)
	if !ok || idx >= len(parent.Next) {
		return false
	}
	parent.Next = append(parent.Next[:idx], parent.Next[idx+1:]...)
	return true
}

// Walk traverses the tree depth first, yielding each node with its
// address. Every child subtree is finished before the next sibling.
func (c *Conversation) Walk() iter.Seq2[Address, *Conversation] {
	return c.WalkFrom(RootAddress())
}

// WalkFrom is Walk with the root labelled base. A node reached a second
// time is skipped, so malformed shared trees still terminate.
func (c *Conversation) WalkFrom(base Address) iter.Seq2[Address, *Conversation] {
	return func(yield func(Address, *Conversation) bool) {
		if c == nil {
			return
		}
		start := append(Address(nil), base...)
		walk(c, start, make(map[*Conversation]bool), yield)
	}
}

func walk(n *Conversation, addr Address, seen map[*Conversation]bool, yield func(Address, *Conversation) bool) bool {
	if seen[n] {
		return true
	}
	seen[n] = true
	if !yield(addr, n) {
		return false
	}
	for i, child := range n.Next {
		if child == nil {
			continue
		}
		if !walk(child, addr.Child(i), seen, yield) {
			return false
		}
	}
	return true
}

// AddressOf returns the current address of n within the tree.
func (c *Conversation) AddressOf(n *Conversation) (Address, bool) {
	for addr, node := range c.Walk() {
		if node == n {
			return addr, true
		}
	}
	return nil, false
}

// Count returns the number of nodes in the tree.
func (c *Conversation) Count() int {
	count := 0
	for range c.Walk() {
		count++
	}
	return count
}

// PrintTree writes one "address: text" line per node, indented by depth.
func (c *Conversation) PrintTree(w io.Writer) error {
	for addr, n := range c.Walk() {
		indent := strings.Repeat("  ", addr.Depth())
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", indent, addr, n.Text); err != nil {
			return err
		}
	}
	return nil
}

package event

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTree builds:
//
//	1   option "Choose"
//	1.1 option "Ask"
//	1.1.1 text "Where?"
//	1.1.2 text "When?"
//	1.2 text "Leave"
func sampleTree() *Conversation {
	ask := NewNode("Ask", CategoryOption, ThingNone)
	ask.Next = []*Conversation{
		NewNode("Where?", CategoryText, ThingSelf),
		NewNode("When?", CategoryText, ThingSelf),
	}
	root := NewNode("Choose", CategoryOption, 3)
	root.Next = []*Conversation{ask, NewNode("Leave", CategoryText, ThingNone)}
	return root
}

func mustAddr(t *testing.T, s string) Address {
	t.Helper()
	addr, ok := ParseAddress(s)
	if !ok {
		t.Fatalf("invalid address %q", s)
	}
	return addr
}

func addresses(root *Conversation) []string {
	var out []string
	for addr := range root.Walk() {
		out = append(out, addr.String())
	}
	return out
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"1", true},
		{"1.2.1", true},
		{" 1.10 ", true},
		{"", false},
		{"2", false},
		{"1.0", false},
		{"1.-1", false},
		{"1..2", false},
		{"a.b", false},
	}
	for _, tt := range tests {
		addr, ok := ParseAddress(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.True(t, addr.Valid())
		}
	}
}

func TestAddressNavigation(t *testing.T) {
	addr := mustAddr(t, "1.2.3")
	assert.Equal(t, "1.2", addr.Parent().String())
	assert.Equal(t, 2, addr.Index())
	assert.Equal(t, 2, addr.Depth())
	assert.Equal(t, "1.2.3.1", addr.Child(0).String())
	assert.Nil(t, RootAddress().Parent())

	// Child must not alias the receiver
	a := addr.Child(0)
	b := addr.Child(1)
	assert.Equal(t, "1.2.3.1", a.String())
	assert.Equal(t, "1.2.3.2", b.String())
}

func TestWalkOrderAndAddresses(t *testing.T) {
	root := sampleTree()
	assert.Equal(t, []string{"1", "1.1", "1.1.1", "1.1.2", "1.2"}, addresses(root))

	// every yielded address resolves back to the node it was yielded with
	for addr, node := range root.Walk() {
		assert.Same(t, node, root.Find(addr), addr.String())
	}
	assert.Equal(t, 5, root.Count())
}

func TestWalkStopsEarly(t *testing.T) {
	root := sampleTree()
	var seen []string
	for addr := range root.Walk() {
		seen = append(seen, addr.String())
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "1.1"}, seen)
}

func TestFind(t *testing.T) {
	root := sampleTree()

	tests := []struct {
		addr string
		want string
	}{
		{"1", "Choose"},
		{"1.1", "Ask"},
		{"1.1.2", "When?"},
		{"1.2", "Leave"},
	}
	for _, tt := range tests {
		node := root.Find(mustAddr(t, tt.addr))
		require.NotNil(t, node, tt.addr)
		assert.Equal(t, tt.want, node.Text)
	}

	assert.Nil(t, root.Find(mustAddr(t, "1.3")))
	assert.Nil(t, root.Find(mustAddr(t, "1.2.1")))
	// a text node never has a second child
	assert.Nil(t, root.Find(mustAddr(t, "1.2.2")))
	assert.Nil(t, root.Find(Address{2}))
	assert.Nil(t, root.Find(nil))
}

func TestFindOrCreate(t *testing.T) {
	root := NewNode("start", CategoryText, ThingNone)

	node := root.FindOrCreate(mustAddr(t, "1.1.1"))
	require.NotNil(t, node)
	assert.Equal(t, 3, root.Count())
	assert.Equal(t, ThingNone, node.ThingID)
	assert.Equal(t, CategoryText, node.Category)
	assert.Same(t, node, root.Find(mustAddr(t, "1.1.1")))

	// existing nodes are returned as is
	assert.Same(t, root, root.FindOrCreate(RootAddress()))
	assert.Same(t, node, root.FindOrCreate(mustAddr(t, "1.1.1")))
}

func TestFindOrCreateRejectsImpossiblePaths(t *testing.T) {
	root := NewNode("start", CategoryText, ThingNone)

	// second child of a text node
	assert.Nil(t, root.FindOrCreate(mustAddr(t, "1.2")))
	// the fresh blank node at 1.1 would be text, so 1.1.2 cannot exist
	assert.Nil(t, root.FindOrCreate(mustAddr(t, "1.1.2")))
	assert.Equal(t, 1, root.Count(), "failed lookups must not modify the tree")
}

func TestFindOrCreateFillsOptionSiblings(t *testing.T) {
	root := NewNode("pick", CategoryOption, ThingNone)
	node := root.FindOrCreate(mustAddr(t, "1.3"))
	require.NotNil(t, node)
	assert.Len(t, root.Next, 3)
	assert.Same(t, node, root.Next[2])
}

func TestDeleteShiftsLaterSiblings(t *testing.T) {
	root := sampleTree()
	extra := NewNode("Wait", CategoryText, ThingNone)
	require.True(t, root.InsertAfter(mustAddr(t, "1.2"), extra))

	require.True(t, root.Delete(mustAddr(t, "1.2")))
	assert.Same(t, extra, root.Find(mustAddr(t, "1.2")))
	assert.Nil(t, root.Find(mustAddr(t, "1.3")))

	require.True(t, root.Delete(mustAddr(t, "1.1")))
	assert.Equal(t, []string{"1", "1.1"}, addresses(root))

	assert.False(t, root.Delete(RootAddress()), "root cannot be deleted")
	assert.False(t, root.Delete(mustAddr(t, "1.5")))
}

func TestInsertBefore(t *testing.T) {
	root := sampleTree()
	node := NewNode("Fight", CategoryText, ThingNone)

	require.True(t, root.InsertBefore(mustAddr(t, "1.1"), node))
	assert.Same(t, node, root.Find(mustAddr(t, "1.1")))
	assert.Equal(t, "Ask", root.Find(mustAddr(t, "1.2")).Text)
	assert.Equal(t, "When?", root.Find(mustAddr(t, "1.2.2")).Text)

	// the slot one past the last child appends
	tail := NewNode("Run", CategoryText, ThingNone)
	require.True(t, root.InsertBefore(mustAddr(t, "1.4"), tail))
	assert.Same(t, tail, root.Find(mustAddr(t, "1.4")))

	assert.False(t, root.InsertBefore(mustAddr(t, "1.9"), NewNode("x", CategoryText, ThingNone)))
}

func TestInsertAfter(t *testing.T) {
	root := sampleTree()
	node := NewNode("Why?", CategoryText, ThingNone)

	require.True(t, root.InsertAfter(mustAddr(t, "1.1.1"), node))
	assert.Equal(t, []string{"Where?", "Why?", "When?"}, []string{
		root.Find(mustAddr(t, "1.1.1")).Text,
		root.Find(mustAddr(t, "1.1.2")).Text,
		root.Find(mustAddr(t, "1.1.3")).Text,
	})

	// after a node that does not exist
	assert.False(t, root.InsertAfter(mustAddr(t, "1.3"), NewNode("x", CategoryText, ThingNone)))
}

func TestInsertRequiresOptionParent(t *testing.T) {
	root := sampleTree()
	// 1.2 is a text node
	assert.False(t, root.InsertBefore(mustAddr(t, "1.2.1"), NewNode("x", CategoryText, ThingNone)))
	assert.False(t, root.InsertBefore(RootAddress(), NewNode("x", CategoryText, ThingNone)))
	assert.False(t, root.InsertBefore(mustAddr(t, "1.1"), nil))
}

func TestInsertRejectsAttachedNodes(t *testing.T) {
	root := sampleTree()
	ask := root.Find(mustAddr(t, "1.1"))

	assert.False(t, root.InsertBefore(mustAddr(t, "1.1"), ask))
	assert.False(t, root.InsertAfter(mustAddr(t, "1.1.1"), root))
	assert.Equal(t, 5, root.Count())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sampleTree()))
	assert.ErrorIs(t, Validate(nil), ErrNilNode)

	shared := NewNode("shared", CategoryText, ThingNone)
	root := NewNode("root", CategoryOption, ThingNone)
	root.Next = []*Conversation{shared, shared}
	assert.ErrorIs(t, Validate(root), ErrSharedNode)

	cyclic := sampleTree()
	leave := cyclic.Find(mustAddr(t, "1.2"))
	leave.Next = []*Conversation{cyclic}
	assert.True(t, errors.Is(Validate(cyclic), ErrSharedNode))

	// a cycle through an action conversation
	viaAction := NewNode("root", CategoryText, ThingNone)
	viaAction.Action = Event{payload: StartConversation{Root: viaAction}}
	assert.ErrorIs(t, Validate(viaAction), ErrSharedNode)

	withNil := NewNode("root", CategoryOption, ThingNone)
	withNil.Next = []*Conversation{nil}
	assert.ErrorIs(t, Validate(withNil), ErrNilNode)

	var e Event
	assert.False(t, e.SetConversation(cyclic))
	assert.True(t, e.IsNone())
}

func TestWalkTerminatesOnCycle(t *testing.T) {
	root := sampleTree()
	root.Find(mustAddr(t, "1.2")).Next = []*Conversation{root}
	assert.Equal(t, 5, root.Count())
}

func TestCloneIsDeep(t *testing.T) {
	root := sampleTree()
	inner := NewNode("nested", CategoryText, ThingNone)
	root.Find(mustAddr(t, "1.2")).Action = Event{payload: StartConversation{Root: inner}}

	cp := root.Clone()
	require.True(t, cp.Equal(root))

	for addr, node := range cp.Walk() {
		assert.NotSame(t, root.Find(addr), node, addr.String())
	}
	cpInner := cp.Find(mustAddr(t, "1.2")).Action.Conversation()
	require.NotNil(t, cpInner)
	assert.NotSame(t, inner, cpInner)

	cp.Find(mustAddr(t, "1.1.1")).Text = "Here?"
	assert.Equal(t, "Where?", root.Find(mustAddr(t, "1.1.1")).Text)
	assert.False(t, cp.Equal(root))
}

func TestAddressOf(t *testing.T) {
	root := sampleTree()
	when := root.Find(mustAddr(t, "1.1.2"))

	addr, ok := root.AddressOf(when)
	require.True(t, ok)
	assert.Equal(t, "1.1.2", addr.String())

	require.True(t, root.Delete(mustAddr(t, "1.1.1")))
	addr, ok = root.AddressOf(when)
	require.True(t, ok)
	assert.Equal(t, "1.1.1", addr.String(), "addresses follow tree position")

	_, ok = root.AddressOf(NewNode("stranger", CategoryText, ThingNone))
	assert.False(t, ok)
}

func TestPrintTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTree().PrintTree(&buf))
	want := "1: Choose\n" +
		"  1.1: Ask\n" +
		"    1.1.1: Where?\n" +
		"    1.1.2: When?\n" +
		"  1.2: Leave\n"
	assert.Equal(t, want, buf.String())
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory(" Option ")
	assert.True(t, ok)
	assert.Equal(t, CategoryOption, c)
	c, ok = ParseCategory("text")
	assert.True(t, ok)
	assert.Equal(t, CategoryText, c)
	_, ok = ParseCategory("menu")
	assert.False(t, ok)
}

func TestValidateEvents(t *testing.T) {
	a, ok := NewConversation(sampleTree())
	require.True(t, ok)
	b, ok := NewConversation(sampleTree())
	require.True(t, ok)
	give, _ := NewGiveItem(1, 1)

	assert.NoError(t, ValidateEvents())
	assert.NoError(t, ValidateEvents(a, b, give, Blank()))
	assert.NoError(t, ValidateEvents(a, a.Clone()))

	// the same tree under two events
	assert.ErrorIs(t, ValidateEvents(a, give, a), ErrSharedNode)

	// a subtree of one event reused as the root of another
	c := Event{payload: StartConversation{Root: a.Conversation().Next[0]}}
	assert.ErrorIs(t, ValidateEvents(a, c), ErrSharedNode)
}

package eventset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-editor/pkg/event"
	"github.com/jwebster45206/story-editor/pkg/lock"
	"github.com/jwebster45206/story-editor/pkg/treefmt"
)

func notification(t *testing.T, text string) event.Event {
	t.Helper()
	e, ok := event.NewNotification(text)
	require.True(t, ok)
	return e
}

func texts(s *EventSet) []string {
	out := make([]string, s.UnlockedCount())
	for i := range out {
		out[i] = s.UnlockedEvent(i).NotificationText()
	}
	return out
}

func TestNewIsEmpty(t *testing.T) {
	s := New()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, DefaultAccess, s.Access())
	assert.True(t, s.Lock().IsBlank())
	assert.True(t, s.LockedEvent().IsNone())
	assert.Equal(t, 0, s.UnlockedCount())
}

func TestIsEmptyIgnoresBlankUnlockedEventsAndAccess(t *testing.T) {
	s := New()
	s.AddUnlocked(event.Blank())
	s.SetAccess(AccessRandom)
	assert.True(t, s.IsEmpty())

	s.Lock().SetTrigger(true)
	assert.False(t, s.IsEmpty())
}

func TestExampleScenario(t *testing.T) {
	s := New()
	tele, ok := event.NewTeleport(4, 0, 10, 12)
	require.True(t, ok)
	require.True(t, s.SetLocked(tele, false))
	s.AddUnlocked(notification(t, "Hello"))
	item, ok := lock.NewHaveItem(0, 1, true, true)
	require.True(t, ok)
	s.SetLock(item)

	data, err := Marshal(treefmt.FormatXML, s)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "<lockevent>")
	assert.Contains(t, out, "<teleportthing>")
	assert.Contains(t, out, "<x>10</x>")
	assert.Contains(t, out, "<y>12</y>")
	assert.Contains(t, out, `<unlockevent id="0">`)
	assert.Contains(t, out, "<notification>Hello</notification>")
	assert.Contains(t, out, "<lock>")
	assert.Contains(t, out, "<item></item>")
	assert.NotContains(t, out, "unlockaccess")
	assert.False(t, s.IsEmpty())

	loaded, warnings, err := Unmarshal(treefmt.FormatXML, data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, s.Equal(loaded))
}

func TestShiftUnlocked(t *testing.T) {
	s := New()
	s.AddUnlocked(notification(t, "a"))
	assert.Equal(t, -1, s.ShiftUnlockedUp(0), "single element is already at the top")
	assert.Equal(t, -1, s.ShiftUnlockedDown(0))

	s.AddUnlocked(notification(t, "b"))
	s.AddUnlocked(notification(t, "c"))
	assert.Equal(t, 1, s.ShiftUnlockedUp(2))
	assert.Equal(t, []string{"a", "c", "b"}, texts(s))

	assert.Equal(t, 2, s.ShiftUnlockedDown(1))
	assert.Equal(t, []string{"a", "b", "c"}, texts(s))

	assert.Equal(t, -1, s.ShiftUnlockedDown(2))
	assert.Equal(t, -1, s.ShiftUnlockedUp(5))
	assert.Equal(t, -1, s.ShiftUnlockedDown(-1))
}

func TestSetLockedRespectsReplaceFlag(t *testing.T) {
	s := New()
	require.True(t, s.SetLocked(notification(t, "first"), false))
	assert.False(t, s.SetLocked(notification(t, "second"), false))
	assert.Equal(t, "first", s.LockedEvent().NotificationText())

	assert.True(t, s.SetLocked(notification(t, "third"), true))
	assert.Equal(t, "third", s.LockedEvent().NotificationText())

	s.UnsetLocked()
	assert.True(t, s.LockedEvent().IsNone())
}

func TestSetUnlockedAt(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		replace bool
		want    []string
	}{
		{"replace in range", 1, true, []string{"a", "x", "c"}},
		{"replace out of range appends", 7, true, []string{"a", "b", "c", "x"}},
		{"insert in range", 1, false, []string{"a", "x", "b", "c"}},
		{"insert at front", 0, false, []string{"x", "a", "b", "c"}},
		{"insert out of range appends", 3, false, []string{"a", "b", "c", "x"}},
		{"negative appends", -1, false, []string{"a", "b", "c", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			for _, text := range []string{"a", "b", "c"} {
				s.AddUnlocked(notification(t, text))
			}
			s.SetUnlockedAt(tt.index, notification(t, "x"), tt.replace)
			assert.Equal(t, tt.want, texts(s))
		})
	}
}

func TestUnsetUnlocked(t *testing.T) {
	s := New()
	for _, text := range []string{"a", "b", "c"} {
		s.AddUnlocked(notification(t, text))
	}

	assert.True(t, s.UnsetUnlockedAt(1))
	assert.Equal(t, []string{"a", "c"}, texts(s))
	assert.False(t, s.UnsetUnlockedAt(2))
	assert.Nil(t, s.UnlockedEvent(2))

	s.UnsetAllUnlocked()
	assert.Equal(t, 0, s.UnlockedCount())
}

func TestCloneSharesNothing(t *testing.T) {
	root := event.NewNode("Hi", event.CategoryOption, 2)
	root.Next = []*event.Conversation{event.NewNode("Bye", event.CategoryText, event.ThingNone)}
	conv, ok := event.NewConversation(root)
	require.True(t, ok)

	s := New()
	s.SetLocked(conv, true)
	s.AddUnlocked(notification(t, "a"))
	s.Lock().SetTrigger(false)

	cp := s.Clone()
	require.True(t, cp.Equal(s))

	cp.LockedEvent().Conversation().Next[0].Text = "Later"
	cp.UnlockedEvent(0).SetStartBattle()
	cp.Lock().SetBlank()

	assert.Equal(t, "Bye", s.LockedEvent().Conversation().Next[0].Text)
	assert.Equal(t, "a", s.UnlockedEvent(0).NotificationText())
	assert.Equal(t, lock.StateTrigger, s.Lock().State())
	assert.False(t, cp.Equal(s))
}

func TestCopyFrom(t *testing.T) {
	src := New()
	src.AddUnlocked(notification(t, "a"))
	src.SetAccess(AccessRandom)

	dst := New()
	dst.SetLocked(notification(t, "old"), true)
	dst.CopyFrom(src)

	assert.True(t, dst.Equal(src))
	assert.True(t, dst.LockedEvent().IsNone())

	dst.CopyFrom(dst)
	assert.True(t, dst.Equal(src))
}

func TestClear(t *testing.T) {
	s := New()
	s.AddUnlocked(notification(t, "a"))
	s.SetAccess(AccessNone)
	s.Lock().SetTrigger(true)

	s.Clear()
	assert.True(t, s.IsEmpty())
	assert.Equal(t, DefaultAccess, s.Access())
}

func TestSetAccess(t *testing.T) {
	s := New()
	assert.True(t, s.SetAccess(AccessRandom))
	assert.False(t, s.SetAccess(Access(9)))
	assert.Equal(t, AccessRandom, s.Access())

	a, ok := ParseAccess("Sequential")
	assert.True(t, ok)
	assert.Equal(t, AccessSequential, a)
	_, ok = ParseAccess("shuffle")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	s := New()
	assert.Equal(t, []string{"Lock: None", "Locked Event: None", "Unlock Events (0)"}, s.Summarize())

	s.AddUnlocked(notification(t, "a"))
	assert.Equal(t, "Unlock Events (1): Notification: a", s.Summarize()[2])
	s.AddUnlocked(notification(t, "b"))
	assert.Equal(t, "Unlock Events (2): Notification: a and 1 other", s.Summarize()[2])
	s.AddUnlocked(notification(t, "c"))
	assert.Equal(t, "Unlock Events (3): Notification: a and 2 others", s.Summarize()[2])

	s.Lock().SetTrigger(true)
	assert.Equal(t, "Lock: Trigger", s.Summarize()[0])
}

func optionConversation(t *testing.T) event.Event {
	t.Helper()
	root := event.NewNode("Well met", event.CategoryOption, event.ThingSelf)
	root.Next = []*event.Conversation{event.NewNode("Farewell", event.CategoryText, event.ThingNone)}
	conv, ok := event.NewConversation(root)
	require.True(t, ok)
	return conv
}

func TestStoredEventsAreCopies(t *testing.T) {
	s := New()
	conv := optionConversation(t)
	s.SetLocked(conv, true)
	s.AddUnlocked(*s.LockedEvent())
	s.SetUnlockedAt(0, *s.LockedEvent(), false)
	s.SetUnlockedAt(5, *s.UnlockedEvent(0), true)
	require.Equal(t, 3, s.UnlockedCount())

	extra := event.NewNode("One more thing", event.CategoryText, event.ThingNone)
	require.True(t, s.LockedEvent().InsertConversationAfter(event.Address{1, 1}, extra))

	assert.Equal(t, 3, s.LockedEvent().Conversation().Count())
	for i := 0; i < s.UnlockedCount(); i++ {
		assert.Equal(t, 2, s.UnlockedEvent(i).Conversation().Count(), "unlocked %d", i)
	}
	// the caller's event is not the stored one either
	assert.Equal(t, 2, conv.Conversation().Count())

	data, err := Marshal(treefmt.FormatXML, s)
	require.NoError(t, err)
	out, warnings, err := Unmarshal(treefmt.FormatXML, data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, out.Equal(s))
}

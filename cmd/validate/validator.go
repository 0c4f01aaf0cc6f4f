package main

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/story-editor/pkg/document"
	"github.com/jwebster45206/story-editor/pkg/event"
	"github.com/jwebster45206/story-editor/pkg/eventset"
	"github.com/jwebster45206/story-editor/pkg/lock"
)

type DocumentValidator struct {
	strict   bool
	errors   []string
	warnings []string
}

func (v *DocumentValidator) reset() {
	v.errors = nil
	v.warnings = nil
}

func (v *DocumentValidator) fail(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *DocumentValidator) warn(format string, args ...any) {
	if v.strict {
		v.fail(format, args...)
		return
	}
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *DocumentValidator) result(filename string) error {
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *DocumentValidator) validateDocument(doc *document.Document) {
	if len(doc.Entries) == 0 {
		v.warn("document has no event sets")
	}
	for _, entry := range doc.Entries {
		v.validateEventSet(entry.Label(), entry.Set)
	}
}

func (v *DocumentValidator) validateEventSet(label string, set *eventset.EventSet) {
	if set.IsEmpty() {
		v.warn("%s: event set is empty", label)
		return
	}

	if set.Lock().State() != lock.StateNone && set.LockedEvent().IsNone() && set.UnlockedCount() == 0 {
		v.warn("%s: lock has no events to gate", label)
	}

	v.validateEvent(label+" locked event", *set.LockedEvent())

	for i := 0; i < set.UnlockedCount(); i++ {
		e := *set.UnlockedEvent(i)
		context := fmt.Sprintf("%s unlocked event %d", label, i)
		if e.IsNone() {
			v.warn("%s: is blank", context)
			continue
		}
		v.validateEvent(context, e)
	}

	if set.UnlockedCount() > 1 && set.Access() == eventset.AccessNone {
		v.warn("%s: %d unlocked events but access policy is none", label, set.UnlockedCount())
	}
}

func (v *DocumentValidator) validateEvent(context string, e event.Event) {
	root := e.Conversation()
	if root == nil {
		return
	}
	if err := event.Validate(root); err != nil {
		v.fail("%s: %v", context, err)
		return
	}
	v.validateConversation(context, root)
}

func (v *DocumentValidator) validateConversation(context string, root *event.Conversation) {
	for addr, node := range root.Walk() {
		where := fmt.Sprintf("%s conversation %s", context, addr)
		if node.Text == "" {
			v.warn("%s: empty text", where)
		}
		if node.Category == event.CategoryOption && len(node.Next) == 0 {
			v.fail("%s: option node offers no choices", where)
		}
		if node.Category == event.CategoryText && len(node.Next) > 1 {
			v.fail("%s: text node has %d continuations", where, len(node.Next))
		}
		if !node.Action.IsNone() {
			v.validateEvent(where+" action", node.Action)
		}
	}
}

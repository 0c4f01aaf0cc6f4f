package event

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind classifies which payload an Event carries.
type Kind int

const (
	KindNone Kind = iota
	KindGiveItem
	KindNotification
	KindStartBattle
	KindRunMap
	KindTeleportThing
	KindStartConversation
)

// element names used in documents
var kindNames = map[Kind]string{
	KindNone:              "none",
	KindGiveItem:          "giveitem",
	KindNotification:      "notification",
	KindStartBattle:       "startbattle",
	KindRunMap:            "startmap",
	KindTeleportThing:     "teleportthing",
	KindStartConversation: "conversation",
}

var kindLabels = map[Kind]string{
	KindNone:              "none",
	KindGiveItem:          "give item",
	KindNotification:      "notification",
	KindStartBattle:       "start battle",
	KindRunMap:            "run map",
	KindTeleportThing:     "teleport thing",
	KindStartConversation: "conversation",
}

var titleCaser = cases.Title(language.English)

// String returns the document element name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// DisplayName returns a human readable title, e.g. "Teleport Thing".
func (k Kind) DisplayName() string {
	label, ok := kindLabels[k]
	if !ok {
		label = "unknown"
	}
	return titleCaser.String(label)
}

// KindFromElement maps a document element name back to a Kind.
func KindFromElement(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindNone, false
}

package event

// Payload is the variant data of a non-blank Event. The concrete types
// below are the only implementations; switch on them to read a payload.
type Payload interface {
	Kind() Kind
	clone() Payload
}

// GiveItem hands Count copies of item ItemID to the player.
type GiveItem struct {
	ItemID int
	Count  int
}

// Notification shows Text to the player.
type Notification struct {
	Text string
}

// StartBattle begins a battle with the triggering thing.
type StartBattle struct{}

// RunMap switches play to another map.
type RunMap struct {
	MapID int
}

// Teleport moves a thing to a tile in a map section.
type Teleport struct {
	ThingID   int
	SectionID int
	X         int
	Y         int
}

// StartConversation opens a conversation tree. The Event owns Root.
type StartConversation struct {
	Root *Conversation
}

func (GiveItem) Kind() Kind          { return KindGiveItem }
func (Notification) Kind() Kind      { return KindNotification }
func (StartBattle) Kind() Kind       { return KindStartBattle }
func (RunMap) Kind() Kind            { return KindRunMap }
func (Teleport) Kind() Kind          { return KindTeleportThing }
func (StartConversation) Kind() Kind { return KindStartConversation }

func (p GiveItem) clone() Payload     { return p }
func (p Notification) clone() Payload { return p }
func (p StartBattle) clone() Payload  { return p }
func (p RunMap) clone() Payload       { return p }
func (p Teleport) clone() Payload     { return p }

func (p StartConversation) clone() Payload {
	return StartConversation{Root: p.Root.Clone()}
}

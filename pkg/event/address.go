package event

import (
	"strconv"
	"strings"
)

// Address is a dotted-index path to a conversation node. The root is "1";
// child k (0-based) of node P is P + "." + (k+1). Addresses are derived
// from tree position and never stored on nodes.
type Address []int

// RootAddress returns the address of a conversation root.
func RootAddress() Address {
	return Address{1}
}

// ParseAddress parses a string such as "1.2.1". The first segment must be
// 1 and every segment must be positive.
func ParseAddress(s string) (Address, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	addr := make(Address, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, false
		}
		addr = append(addr, n)
	}
	if !addr.Valid() {
		return nil, false
	}
	return addr, true
}

// Valid reports whether the address starts at the root and has only
// positive segments.
func (a Address) Valid() bool {
	if len(a) == 0 || a[0] != 1 {
		return false
	}
	for _, seg := range a {
		if seg < 1 {
			return false
		}
	}
	return true
}

func (a Address) String() string {
	parts := make([]string, len(a))
	for i, seg := range a {
		parts[i] = strconv.Itoa(seg)
	}
	return strings.Join(parts, ".")
}

// Parent returns the address with the last segment removed, or nil for the root.
func (a Address) Parent() Address {
	if len(a) <= 1 {
		return nil
	}
	return append(Address(nil), a[:len(a)-1]...)
}

// Child returns the address of the child at 0-based index.
func (a Address) Child(index int) Address {
	out := make(Address, len(a), len(a)+1)
	copy(out, a)
	return append(out, index+1)
}

// Index returns the 0-based sibling position encoded by the last segment.
func (a Address) Index() int {
	if len(a) == 0 {
		return -1
	}
	return a[len(a)-1] - 1
}

// Depth returns the number of edges between the root and the node.
func (a Address) Depth() int {
	return len(a) - 1
}

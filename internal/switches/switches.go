// Package switches implements the immutable integer-set feature-flag type
// used to gate action behavior per request, mirroring
// pysoa.server.internal.types.SwitchSet / RequestSwitchSet.
// file: internal/switches/switches.go
package switches

// Switch is implemented by types that expose an int switch identifier through
// an Int() method (the Go analogue of the original's duck-typed
// __int__/.value.__int__() coercion in get_switch/is_switch). Plain ints are
// not Switches; valueOf accepts them alongside Switch values.
type Switch interface {
	Int() int
}

// valueOf coerces an arbitrary member (int or Switch) to its int identifier.
// Panics on an unsupported type, matching the original's TypeError on a
// value with neither an __int__ nor a .value attribute exposing one.
func valueOf(member interface{}) int {
	switch v := member.(type) {
	case int:
		return v
	case Switch:
		return v.Int()
	default:
		panic("switches: value must be an int or implement Switch")
	}
}

// Set is an immutable set of switch identifiers. The zero value is an empty set.
type Set struct {
	members map[int]struct{}
}

// New builds a Set from a mix of plain ints and Switch-implementing values.
func New(members ...interface{}) Set {
	s := Set{members: make(map[int]struct{}, len(members))}
	for _, m := range members {
		s.members[valueOf(m)] = struct{}{}
	}
	return s
}

// FromInts builds a Set directly from a slice of plain int identifiers, the
// common case when decoding Control.Switches off the wire.
func FromInts(ids []int) Set {
	s := Set{members: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
	return s
}

// Contains reports whether member (an int or a Switch) is in the set.
func (s Set) Contains(member interface{}) bool {
	if s.members == nil {
		return false
	}
	_, ok := s.members[valueOf(member)]
	return ok
}

// IsActive is an alias for Contains kept for parity with the original's
// RequestSwitchSet.is_active, used at action-level call sites for readability.
func (s Set) IsActive(member interface{}) bool {
	return s.Contains(member)
}

// Len reports the number of distinct switch identifiers in the set.
func (s Set) Len() int {
	return len(s.members)
}

// Ints returns the set's members as a plain, order-unspecified int slice,
// suitable for encoding onto the wire as Control.Switches.
func (s Set) Ints() []int {
	out := make([]int, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	return out
}

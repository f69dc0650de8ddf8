package session

import "sync/atomic"

// Generation counts view lifetimes. Requests capture a Ticket before going to the network
// and their results are applied only while the ticket is still current.
type Generation struct {
	value atomic.Uint64
}

type Ticket struct {
	generation *Generation
	value      uint64
}

func (g *Generation) Ticket() Ticket {
	return Ticket{generation: g, value: g.value.Load()}
}

// Invalidate makes every issued ticket stale.
func (g *Generation) Invalidate() {
	g.value.Add(1)
}

func (t Ticket) Valid() bool {
	return t.generation != nil && t.generation.value.Load() == t.value
}

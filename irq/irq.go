// Package irq implements a bidirectional 1-bit signal graph, the kind
// used to wire MCU port pins to external peripheral models. A raise on
// either side of a bound pair propagates to the other; a value-equality
// check at every node prevents the bidirectional binding from turning
// into an infinite loop.
//
// NOTE: this is not a CPU interrupt line (c.f. a 6502 NMI/IRQ). It's a
// signal endpoint in the style of simavr's avr_irq_t: any single-bit
// wire in the system, MCU-owned or externally allocated, can be a node
// in this graph.
package irq

import "fmt"

// ID names a single node in a Pool. The zero value is not a valid ID;
// Pool.Alloc always returns IDs starting at 1 so a zero ID can signal
// "unset" in structs that embed one.
type ID int

// NotifyFunc is called whenever a node's value changes, whether the
// change originated locally (Raise) or propagated in from a bound peer.
type NotifyFunc func(pool *Pool, id ID, value uint8, ctx interface{})

type subscription struct {
	cb  NotifyFunc
	ctx interface{}
}

type node struct {
	name  string
	value uint8
	edges []ID
	subs  []subscription
}

// Pool is an arena of signal nodes. Nodes are never freed individually;
// a Pool is sized for the lifetime of the emulator it belongs to, so
// indices stay stable and edges can be stored as plain ID slices
// instead of owning references.
type Pool struct {
	nodes []node
}

// NewPool returns an empty signal pool.
func NewPool() *Pool {
	return &Pool{}
}

// Alloc reserves len(names) contiguous new nodes and returns their IDs
// in order. Each name is cosmetic (debugging only) and need not be
// unique.
func (p *Pool) Alloc(names []string) []ID {
	ids := make([]ID, len(names))
	for i, n := range names {
		p.nodes = append(p.nodes, node{name: n})
		ids[i] = ID(len(p.nodes))
	}
	return ids
}

// AllocOne is a convenience for allocating a single named node.
func (p *Pool) AllocOne(name string) ID {
	return p.Alloc([]string{name})[0]
}

func (p *Pool) at(id ID) *node {
	if id < 1 || int(id) > len(p.nodes) {
		panic(fmt.Sprintf("irq: invalid node id %d", id))
	}
	return &p.nodes[id-1]
}

// Name returns the cosmetic name a node was allocated with.
func (p *Pool) Name(id ID) string {
	return p.at(id).name
}

// Value returns the node's current value without side effects.
func (p *Pool) Value(id ID) uint8 {
	return p.at(id).value
}

// Connect adds a one-way edge: raising "from" will also raise "to",
// but not vice versa.
func (p *Pool) Connect(from, to ID) {
	n := p.at(from)
	for _, e := range n.edges {
		if e == to {
			return
		}
	}
	n.edges = append(n.edges, to)
}

// BiConnect wires two nodes together in both directions.
func (p *Pool) BiConnect(a, b ID) {
	p.Connect(a, b)
	p.Connect(b, a)
}

// Disconnect removes a one-way edge, if present.
func (p *Pool) Disconnect(from, to ID) {
	n := p.at(from)
	for i, e := range n.edges {
		if e == to {
			n.edges = append(n.edges[:i], n.edges[i+1:]...)
			return
		}
	}
}

// BiDisconnect tears down both directions of a binding.
func (p *Pool) BiDisconnect(a, b ID) {
	p.Disconnect(a, b)
	p.Disconnect(b, a)
}

// Raise sets id's value. If the value is unchanged this is a no-op,
// the guard that keeps a cyclic bidirectional binding from recursing
// forever. Otherwise subscribers are notified and the change is
// propagated along every outgoing edge.
func (p *Pool) Raise(id ID, value uint8) {
	n := p.at(id)
	if n.value == value {
		return
	}
	n.value = value

	subs := append([]subscription(nil), n.subs...)
	for _, s := range subs {
		s.cb(p, id, value, s.ctx)
	}

	edges := append([]ID(nil), n.edges...)
	for _, e := range edges {
		p.Raise(e, value)
	}
}

// Subscribe registers cb to run on every value change of id (whether
// raised locally or propagated from a bound peer).
func (p *Pool) Subscribe(id ID, cb NotifyFunc, ctx interface{}) {
	n := p.at(id)
	n.subs = append(n.subs, subscription{cb: cb, ctx: ctx})
}

// ClearCallbacks removes every subscriber registered on id. Used when a
// pin endpoint resets: the peripheral model re-subscribes fresh rather
// than accumulating duplicate notifications across resets.
func (p *Pool) ClearCallbacks(id ID) {
	p.at(id).subs = nil
}

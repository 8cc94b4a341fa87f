// Package memory implements the sparse word-addressable store shared by
// data memory and the memory-mapped register file (see spec.md §4.2).
package memory

import "rv32shard/pkg/events"

// RegBase is the address where the register file is aliased into memory.
// x0's own address is REG_BASE + 0.
const RegBase = 8 * 1024 * 1024

// MemSize is the sentinel value used to initialize the stack pointer (x2).
const MemSize = 8 * 1024 * 1024

// Memory is a sparse mapping from address to 32-bit word. Reads of an
// address that was never written observe zero, which is itself a legitimate
// initial state (spec.md §4.2).
type Memory struct {
	store map[uint32]uint32
	shard uint32
	clk   uint32
}

// New returns an empty memory. The (shard, clk) stamped onto events starts
// at zero and is set with SetContext.
func New() *Memory {
	return &Memory{store: make(map[uint32]uint32)}
}

// SetContext updates the (shard, clk) stamped onto emitted events. The
// interpreter calls this once per cycle before touching memory.
func (m *Memory) SetContext(shard, clk uint32) {
	m.shard = shard
	m.clk = clk
}

// Read returns the word at addr (zero if absent) and reports the touch as a
// MemoryEvent.
func (m *Memory) Read(addr uint32) (uint32, events.MemoryEvent) {
	value := m.store[addr]
	ev := events.MemoryEvent{Shard: m.shard, Clk: m.clk, Addr: addr, Op: events.MemRead, Value: value}
	return value, ev
}

// Write installs value at addr and reports the touch as a MemoryEvent.
func (m *Memory) Write(addr, value uint32) events.MemoryEvent {
	m.store[addr] = value
	return events.MemoryEvent{Shard: m.shard, Clk: m.clk, Addr: addr, Op: events.MemWrite, Value: value}
}

// Peek returns the stored word without emitting an event. The interpreter
// uses it only to snapshot values for memory initialize/finalize events;
// instruction execution goes through Read/Write so every touch is witnessed.
func (m *Memory) Peek(addr uint32) uint32 {
	return m.store[addr]
}

// Poke installs a word without emitting an event. Used to materialize the
// program's initial memory image and the x2/x0 seeds before execution
// starts, and to clamp x0 back to zero after each cycle.
func (m *Memory) Poke(addr, value uint32) {
	m.store[addr] = value
}

// RegAddr returns the memory address a register is aliased to.
func RegAddr(reg uint32) uint32 {
	return RegBase + reg
}

// SortedAddrs returns every address present in the store, in ascending
// order, including addresses whose stored word is zero. Used when building memory initialize/finalize events.
func (m *Memory) SortedAddrs() []uint32 {
	addrs := make([]uint32, 0, len(m.store))
	for addr := range m.store {
		addrs = append(addrs, addr)
	}
	insertionSortUint32(addrs)
	return addrs
}

// insertionSortUint32 is a tiny sort used for the (typically small) set of
// touched addresses; avoids pulling in sort.Slice's closure overhead for a
// hot path the interpreter may call per shard.
func insertionSortUint32(a []uint32) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

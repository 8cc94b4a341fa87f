// Package program holds the immutable bundle handed to the interpreter.
package program

import "rv32shard/pkg/isa"

// MemoryEntry is one (address, value) pair from the ELF loader's initial
// memory image (external to this core; only the bundle shape lives here).
type MemoryEntry struct {
	Addr  uint32
	Value uint32
}

// Program is the immutable unit of compiled work. Once handed to the
// executor it must not be mutated; shards reference it read-only for the
// lifetime of the longest-lived holder (see spec.md §5).
type Program struct {
	EntryPC       uint32
	Instructions  []isa.Instruction
	InitialMemory []MemoryEntry
	Metadata      map[string]string
}

// New builds a Program from its constituent parts. The returned value, and
// the slices/map it references, must not be mutated afterwards.
func New(entryPC uint32, instructions []isa.Instruction, initialMemory []MemoryEntry, metadata map[string]string) *Program {
	return &Program{
		EntryPC:       entryPC,
		Instructions:  instructions,
		InitialMemory: initialMemory,
		Metadata:      metadata,
	}
}

// FetchAt returns the instruction at the given program-counter value.
// The caller must have already checked pc is 4-aligned and in bounds.
func (p *Program) FetchAt(pc uint32) isa.Instruction {
	return p.Instructions[pc/4]
}

// Aligned reports whether pc is a legal fetch address (4-byte aligned). A
// misaligned pc is a fatal GuestTrap (spec.md §4.3), distinct from running
// off the end of code, so callers must check this before InBounds.
func (p *Program) Aligned(pc uint32) bool {
	return pc%4 == 0
}

// InBounds reports whether an aligned pc addresses a valid instruction slot.
// The caller must have already checked Aligned.
func (p *Program) InBounds(pc uint32) bool {
	return pc/4 < uint32(len(p.Instructions))
}

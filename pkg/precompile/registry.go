// Package precompile implements the ECALL-routed syscall façade: each
// precompile mutates guest memory atomically at the current clock and
// appends exactly one event of the matching kind to the execution record
// (spec.md §4.7). The interpreter treats every entry as an opaque pure
// function over its declared pointer operands; this package supplies
// concrete (but black-box, from the interpreter's perspective)
// implementations so the event streams it produces are exercised.
package precompile

import (
	"fmt"

	"rv32shard/pkg/memory"
	"rv32shard/pkg/record"
)

// SyscallID identifies a precompile by the syscall number a guest loads
// into a7 before trapping via ecall.
type SyscallID uint32

const (
	SyscallShaExtend SyscallID = 0x00_30_01_05 + iota
	SyscallShaCompress
	SyscallKeccakPermute
	SyscallEd25519Add
	SyscallEd25519Decompress
	SyscallSecp256k1Add
	SyscallSecp256k1Double
	SyscallSecp256k1Decompress
	SyscallBn254Add
	SyscallBn254Double
	SyscallBls12381Add
	SyscallBls12381Double
	SyscallBls12381Decompress
	SyscallUint256Mul
)

// Func is one precompile: a and b are the guest-supplied pointer operands
// (exact meaning is per-syscall — usually "destination/accumulator" and
// "operand"). It must read its operands from m, write its result back into
// m, and append exactly one event to rec.
type Func func(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error

// Registry maps syscall numbers to their precompile implementation.
type Registry struct {
	funcs map[SyscallID]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[SyscallID]Func)}
}

// Register installs fn under id, overwriting any previous entry.
func (r *Registry) Register(id SyscallID, fn Func) {
	r.funcs[id] = fn
}

// Dispatch invokes the precompile registered for id. An unknown id is a
// guest programming error (spec.md §7 GuestTrap), reported as a plain
// error for the executor to wrap.
func (r *Registry) Dispatch(rec *record.ExecutionRecord, m *memory.Memory, shard, clk uint32, id SyscallID, a, b uint32) error {
	fn, ok := r.funcs[id]
	if !ok {
		return fmt.Errorf("precompile: unknown syscall %#x", uint32(id))
	}
	return fn(rec, m, shard, clk, a, b)
}

// Default returns the registry wired with every precompile this package
// implements (spec.md §4.7's full family).
func Default() *Registry {
	reg := NewRegistry()
	reg.Register(SyscallShaExtend, shaExtend)
	reg.Register(SyscallShaCompress, shaCompress)
	reg.Register(SyscallKeccakPermute, keccakPermute)
	reg.Register(SyscallEd25519Add, edAdd)
	reg.Register(SyscallEd25519Decompress, edDecompress)
	reg.Register(SyscallSecp256k1Add, secp256k1Add)
	reg.Register(SyscallSecp256k1Double, secp256k1Double)
	reg.Register(SyscallSecp256k1Decompress, secp256k1Decompress)
	reg.Register(SyscallBn254Add, bn254Add)
	reg.Register(SyscallBn254Double, bn254Double)
	reg.Register(SyscallBls12381Add, bls12381Add)
	reg.Register(SyscallBls12381Double, bls12381Double)
	reg.Register(SyscallBls12381Decompress, bls12381Decompress)
	reg.Register(SyscallUint256Mul, uint256Mul)
	return reg
}

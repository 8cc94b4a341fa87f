// Package events defines every immutable micro-operation record the
// interpreter can emit: CPU steps, ALU outcomes, memory touches,
// byte-range lookups, and precompile invocations.
package events

import (
	"github.com/google/uuid"

	"rv32shard/pkg/isa"
)

// MemOp distinguishes a memory touch's direction.
type MemOp uint8

const (
	MemRead MemOp = iota
	MemWrite
)

func (op MemOp) String() string {
	if op == MemWrite {
		return "write"
	}
	return "read"
}

// MemoryEvent records a single register/memory touch. Every register access
// is routed through the memory-mapped window (see pkg/memory) so this one
// event stream covers both.
type MemoryEvent struct {
	Shard uint32
	Clk   uint32
	Addr  uint32
	Op    MemOp
	Value uint32
}

// MemoryAccessRecord bundles the (up to four) memory touches a single CPU
// step can produce: the rd/rs1/rs2-register touches plus one data-memory
// touch for loads/stores.
type MemoryAccessRecord struct {
	A      *MemoryEvent
	B      *MemoryEvent
	C      *MemoryEvent
	Memory *MemoryEvent
}

// CpuEvent records one executed instruction and its operand values.
type CpuEvent struct {
	Shard       uint32
	Clk         uint32
	PC          uint32
	NextPC      uint32
	Instruction isa.Instruction
	A, B, C     uint32
	Access      MemoryAccessRecord
}

// AluEvent records one ALU outcome. LookupID is a fresh 128-bit nonce minted
// at creation time and later densified into a per-stream position by
// ExecutionRecord.RegisterNonces.
type AluEvent struct {
	LookupID uuid.UUID
	Shard    uint32
	Clk      uint32
	Opcode   isa.Opcode
	A, B, C  uint32
}

// NewAluEvent constructs an AluEvent with a freshly minted LookupID.
func NewAluEvent(shard, clk uint32, opcode isa.Opcode, a, b, c uint32) AluEvent {
	return AluEvent{
		LookupID: uuid.New(),
		Shard:    shard,
		Clk:      clk,
		Opcode:   opcode,
		A:        a, B: b, C: c,
	}
}

// ByteLookupKind identifies which range/decomposition relation a
// ByteLookupEvent witnesses.
type ByteLookupKind uint8

const (
	ByteLookupRange ByteLookupKind = iota
	ByteLookupAnd
	ByteLookupOr
	ByteLookupXor
	ByteLookupSll
	ByteLookupLtu
	ByteLookupMsb
	ByteLookupU8Range
)

// ByteLookupEvent is a witness that a byte-level relation holds. It is
// comparable (no slice/map fields) so it can key the per-shard multiset.
type ByteLookupEvent struct {
	Shard  uint32
	Kind   ByteLookupKind
	Byte1  uint8
	Byte2  uint8
	Result uint16
}

// MemoryInitializeFinalizeEvent marks the first (initialize) or last
// (finalize) witnessed value at an address, used to stitch shard boundaries.
type MemoryInitializeFinalizeEvent struct {
	Addr         uint32
	Value        uint32
	Shard        uint32
	Timestamp    uint32
	IsInitialize bool
}

// ShaExtendEvent records one SHA-256 message-schedule extension step:
// w[i] := w[i-16] + s0(w[i-15]) + w[i-7] + s1(w[i-2]).
type ShaExtendEvent struct {
	Shard, Clk uint32
	WPtr       uint32
	I          uint32
	WIMinus15  uint32
	WIMinus2   uint32
	WIMinus16  uint32
	WIMinus7   uint32
	WI         uint32
}

// ShaCompressEvent records one full SHA-256 compression of a 512-bit block
// against an 8-word running state.
type ShaCompressEvent struct {
	Shard, Clk  uint32
	WPtr, HPtr  uint32
	W           [64]uint32
	HIn, HOut   [8]uint32
}

// KeccakPermuteEvent records one Keccak-f[1600] permutation over the
// 25-word (1600-bit) state.
type KeccakPermuteEvent struct {
	Shard, Clk   uint32
	StatePtr     uint32
	PreState     [25]uint64
	PostState    [25]uint64
}

// Curve identifies which elliptic-curve family a curve precompile event
// belongs to.
type Curve uint8

const (
	CurveSecp256k1 Curve = iota
	CurveBn254
	CurveBls12381
	CurveEd25519
)

// EllipticCurveAddEvent records P3 = P1 + P2 over the given curve, each
// point as an affine (x||y) byte encoding: little-endian coordinates for
// ed25519, gnark-crypto's big-endian point encoding for the other curves.
type EllipticCurveAddEvent struct {
	Shard, Clk   uint32
	Curve        Curve
	P1Ptr, P2Ptr uint32
	P1, P2       []byte
	Result       []byte
}

// EllipticCurveDoubleEvent records P2 = 2*P1.
type EllipticCurveDoubleEvent struct {
	Shard, Clk uint32
	Curve      Curve
	PPtr       uint32
	P          []byte
	Result     []byte
}

// EllipticCurveDecompressEvent records the decompression of a compressed
// curve point (x plus a sign/parity bit) into its full affine form.
type EllipticCurveDecompressEvent struct {
	Shard, Clk uint32
	Curve      Curve
	PtrX       uint32
	SignBit    bool
	X          []byte
	DecompressedY []byte
}

// EdAddEvent and EdDecompressEvent are the ed25519-specific aliases of the
// events above, kept distinct because SP1 tracks them as their own streams.
type EdAddEvent = EllipticCurveAddEvent
type EdDecompressEvent = EllipticCurveDecompressEvent

// Uint256MulEvent records a full 256-bit modular multiply: result =
// (x * y) mod modulus.
type Uint256MulEvent struct {
	Shard, Clk      uint32
	XPtr, YPtr      uint32
	X, Y, Modulus   [32]byte
	Result          [32]byte
}

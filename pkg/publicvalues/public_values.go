// Package publicvalues implements the fixed-layout commitment block that
// downstream verification binds to (spec.md §3/§4.6/§6).
package publicvalues

import "rv32shard/pkg/field"

// PVDigestNumWords is the number of 32-bit words in the committed-value
// digest.
const PVDigestNumWords = 8

// PoseidonNumWords is the number of field elements in the deferred-proofs
// digest.
const PoseidonNumWords = 8

// MaxNumPVs is the padded length ToFieldVector always returns, agreed with
// the downstream proof system (spec.md P9).
const MaxNumPVs = 64

// PublicValues is the fixed-layout per-shard commitment block. W is the
// representation of a 32-bit word (uint32 on the executor side, [4]F once
// lifted); T is the representation of a scalar (uint32 or F).
type PublicValues[W any, T any] struct {
	CommittedValueDigest [PVDigestNumWords]W
	DeferredProofsDigest [PoseidonNumWords]T

	StartPC  T
	NextPC   T
	ExitCode T
	Shard    T

	PreviousInitAddr    T
	LastInitAddr        T
	PreviousFinalizeAddr T
	LastFinalizeAddr    T
}

// Ground is the executor-side representation: both W and T are uint32.
type Ground PublicValues[uint32, uint32]

// Lifted is the prover-side representation: W is a little-endian 4-byte
// field-element expansion, T is a single field element.
type Lifted PublicValues[[4]field.Element, field.Element]

// Lift converts the ground representation into field elements: each 32-bit
// word becomes its 4-element little-endian byte expansion, each scalar its
// canonical field lift.
func Lift(pv Ground) Lifted {
	var out Lifted
	for i, w := range pv.CommittedValueDigest {
		out.CommittedValueDigest[i] = wordToBytes(w)
	}
	for i, t := range pv.DeferredProofsDigest {
		out.DeferredProofsDigest[i] = field.FromCanonicalU32(t)
	}
	out.StartPC = field.FromCanonicalU32(pv.StartPC)
	out.NextPC = field.FromCanonicalU32(pv.NextPC)
	out.ExitCode = field.FromCanonicalU32(pv.ExitCode)
	out.Shard = field.FromCanonicalU32(pv.Shard)
	out.PreviousInitAddr = field.FromCanonicalU32(pv.PreviousInitAddr)
	out.LastInitAddr = field.FromCanonicalU32(pv.LastInitAddr)
	out.PreviousFinalizeAddr = field.FromCanonicalU32(pv.PreviousFinalizeAddr)
	out.LastFinalizeAddr = field.FromCanonicalU32(pv.LastFinalizeAddr)
	return out
}

func wordToBytes(w uint32) [4]field.Element {
	return [4]field.Element{
		field.FromByte(byte(w)),
		field.FromByte(byte(w >> 8)),
		field.FromByte(byte(w >> 16)),
		field.FromByte(byte(w >> 24)),
	}
}

// ToFieldVector serializes the block field-by-field (committed digest
// words, then deferred-proofs digest, then the eight scalars, in the order
// declared in spec.md §3) and pads with zeros to MaxNumPVs.
func (pv Ground) ToFieldVector() []field.Element {
	lifted := Lift(pv)
	out := make([]field.Element, 0, MaxNumPVs)
	for _, w := range lifted.CommittedValueDigest {
		out = append(out, w[:]...)
	}
	out = append(out, lifted.DeferredProofsDigest[:]...)
	out = append(out,
		lifted.StartPC,
		lifted.NextPC,
		lifted.ExitCode,
		lifted.Shard,
		lifted.PreviousInitAddr,
		lifted.LastInitAddr,
		lifted.PreviousFinalizeAddr,
		lifted.LastFinalizeAddr,
	)
	if len(out) > MaxNumPVs {
		panic("publicvalues: serialized block exceeds MaxNumPVs")
	}
	for len(out) < MaxNumPVs {
		out = append(out, field.Zero)
	}
	return out
}

// CommitDigestBytes extracts the 32-byte commitment by reading each word's
// 4 byte-elements back to u8, concatenated in order.
func (l Lifted) CommitDigestBytes() []byte {
	out := make([]byte, 0, PVDigestNumWords*4)
	for _, w := range l.CommittedValueDigest {
		for _, e := range w {
			out = append(out, e.AsByte())
		}
	}
	return out
}

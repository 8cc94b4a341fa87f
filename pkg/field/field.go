// Package field implements the small prime-field element type used to lift
// PublicValues from raw uint32s into the representation a downstream
// algebraic proof system binds to. No library in the retrieval pack
// implements this specific field (see DESIGN.md), so it is hand-rolled on
// top of plain uint64 arithmetic.
package field

// Modulus is the Baby Bear prime 2^31 - 2^27 + 1, the field SP1 itself
// lifts public values into. It comfortably exceeds 256, satisfying the
// "fields must be larger than 256" requirement for byte decomposition to be
// injective.
const Modulus uint64 = (1 << 31) - (1 << 27) + 1

// Element is a canonical residue mod Modulus.
type Element uint32

// Zero is the additive identity.
var Zero = Element(0)

// FromCanonicalU32 lifts a raw 32-bit value by reduction mod Modulus.
func FromCanonicalU32(v uint32) Element {
	return Element(uint64(v) % Modulus)
}

// FromByte lifts a single byte (always < Modulus, no reduction needed).
func FromByte(b byte) Element {
	return Element(b)
}

// AsCanonicalU32 returns the element's canonical representative.
func (e Element) AsCanonicalU32() uint32 {
	return uint32(e)
}

// AsByte truncates the element to its low byte. Used only when the element
// is known to represent an original byte value (e.g. public-value digest
// words decomposed via FromByte), per commit-digest extraction.
func (e Element) AsByte() byte {
	return byte(e)
}

// Add returns e+other mod Modulus.
func (e Element) Add(other Element) Element {
	return Element((uint64(e) + uint64(other)) % Modulus)
}

// Mul returns e*other mod Modulus.
func (e Element) Mul(other Element) Element {
	return Element((uint64(e) * uint64(other)) % Modulus)
}

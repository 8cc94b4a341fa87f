package precompile

import (
	"fmt"
	"math/big"

	"rv32shard/pkg/events"
	"rv32shard/pkg/memory"
	"rv32shard/pkg/record"
)

// ed25519 field/curve constants. No edwards25519/ed25519/curve25519
// dependency appears anywhere in the retrieval pack's go.mod manifests, so
// this curve's arithmetic is hand-rolled over math/big (see DESIGN.md).
var (
	ed25519Prime, _ = new(big.Int).SetString("57896044618658097711785492504343953926634992332820282019728792003956564819949", 10)
	ed25519D, _     = new(big.Int).SetString("37095705934669439343138083508754565189542113879843219016388785533085940283555", 10)
)

const ed25519FieldBytes = 32

func edMod(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, ed25519Prime)
}

func edInv(x *big.Int) *big.Int {
	return new(big.Int).ModInverse(x, ed25519Prime)
}

// edAffineAdd computes the twisted-Edwards unified addition formula:
//
//	x3 = (x1 y2 + y1 x2) / (1 + d x1 x2 y1 y2)
//	y3 = (y1 y2 + x1 x2) / (1 - d x1 x2 y1 y2)
func edAffineAdd(x1, y1, x2, y2 *big.Int) (x3, y3 *big.Int) {
	x1y2 := edMod(new(big.Int).Mul(x1, y2))
	y1x2 := edMod(new(big.Int).Mul(y1, x2))
	y1y2 := edMod(new(big.Int).Mul(y1, y2))
	x1x2 := edMod(new(big.Int).Mul(x1, x2))

	dProd := edMod(new(big.Int).Mul(ed25519D, edMod(new(big.Int).Mul(x1x2, y1y2))))

	xNum := edMod(new(big.Int).Add(x1y2, y1x2))
	xDen := edMod(new(big.Int).Add(big.NewInt(1), dProd))
	yNum := edMod(new(big.Int).Add(y1y2, x1x2))
	yDen := edMod(new(big.Int).Sub(big.NewInt(1), dProd))

	x3 = edMod(new(big.Int).Mul(xNum, edInv(xDen)))
	y3 = edMod(new(big.Int).Mul(yNum, edInv(yDen)))
	return x3, y3
}

// edDecompressY recovers x from y and a sign bit: x^2 = (y^2-1)/(d y^2+1),
// then a modular square root via the p ≡ 5 (mod 8) Euler-style method
// (ed25519's prime satisfies this), selecting the root matching signBit.
func edDecompressY(y *big.Int, signBit bool) (*big.Int, error) {
	ySq := edMod(new(big.Int).Mul(y, y))
	num := edMod(new(big.Int).Sub(ySq, big.NewInt(1)))
	den := edMod(new(big.Int).Add(edMod(new(big.Int).Mul(ed25519D, ySq)), big.NewInt(1)))
	xSq := edMod(new(big.Int).Mul(num, edInv(den)))

	x := edSqrtP5Mod8(xSq)
	if x == nil {
		return nil, fmt.Errorf("precompile: ed25519 decompress: no square root exists")
	}
	if x.Bit(0) == 1 != signBit {
		x = edMod(new(big.Int).Sub(ed25519Prime, x))
	}
	return x, nil
}

// edSqrtP5Mod8 computes a square root of a modulo ed25519Prime (which is
// congruent to 5 mod 8) using the standard candidate-then-adjust method.
func edSqrtP5Mod8(a *big.Int) *big.Int {
	one := big.NewInt(1)
	two := big.NewInt(2)
	three := big.NewInt(3)
	four := big.NewInt(4)
	eight := big.NewInt(8)

	exp := new(big.Int).Div(new(big.Int).Add(ed25519Prime, three), eight)
	candidate := new(big.Int).Exp(a, exp, ed25519Prime)

	check := edMod(new(big.Int).Mul(candidate, candidate))
	if check.Cmp(edMod(a)) == 0 {
		return candidate
	}

	exp2 := new(big.Int).Div(new(big.Int).Sub(ed25519Prime, one), four)
	twoToExp2 := new(big.Int).Exp(two, exp2, ed25519Prime)
	candidate = edMod(new(big.Int).Mul(candidate, twoToExp2))
	check = edMod(new(big.Int).Mul(candidate, candidate))
	if check.Cmp(edMod(a)) == 0 {
		return candidate
	}
	return nil
}

func edPointBytesToXY(buf []byte) (x, y *big.Int) {
	x = new(big.Int).SetBytes(reverseBytes(buf[:ed25519FieldBytes]))
	y = new(big.Int).SetBytes(reverseBytes(buf[ed25519FieldBytes:]))
	return x, y
}

func edXYToPointBytes(x, y *big.Int) []byte {
	out := make([]byte, 2*ed25519FieldBytes)
	copy(out[:ed25519FieldBytes], reverseBytes(leftPad(x.Bytes(), ed25519FieldBytes)))
	copy(out[ed25519FieldBytes:], reverseBytes(leftPad(y.Bytes(), ed25519FieldBytes)))
	return out
}

func leftPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// edAdd reads two little-endian (x||y) affine points and writes their sum
// back over the accumulator slot at ptr a.
func edAdd(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	p1Bytes := readBytes(m, a, 2*ed25519FieldBytes)
	p2Bytes := readBytes(m, b, 2*ed25519FieldBytes)

	x1, y1 := edPointBytesToXY(p1Bytes)
	x2, y2 := edPointBytesToXY(p2Bytes)
	x3, y3 := edAffineAdd(x1, y1, x2, y2)

	resultBytes := edXYToPointBytes(x3, y3)
	writeBytes(m, a, resultBytes)

	rec.EdAddEvents = append(rec.EdAddEvents, events.EdAddEvent{
		Shard: shard, Clk: clk, Curve: events.CurveEd25519,
		P1Ptr: a, P2Ptr: b, P1: p1Bytes, P2: p2Bytes, Result: resultBytes,
	})
	return nil
}

// edDecompress reads a little-endian y-coordinate at ptr a plus a sign bit
// in b, recovers x, and writes the full (x||y) point back at ptr a.
func edDecompress(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	yBytes := readBytes(m, a, ed25519FieldBytes)
	signBit := b != 0

	y := new(big.Int).SetBytes(reverseBytes(yBytes))
	x, err := edDecompressY(y, signBit)
	if err != nil {
		return err
	}

	xBytes := reverseBytes(leftPad(x.Bytes(), ed25519FieldBytes))
	writeBytes(m, a, edXYToPointBytes(x, y))

	rec.EdDecompressEvents = append(rec.EdDecompressEvents, events.EdDecompressEvent{
		Shard: shard, Clk: clk, Curve: events.CurveEd25519,
		PtrX: a, SignBit: signBit, X: xBytes, DecompressedY: yBytes,
	})
	return nil
}

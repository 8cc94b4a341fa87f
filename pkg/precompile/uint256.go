package precompile

import (
	"github.com/holiman/uint256"

	"rv32shard/pkg/events"
	"rv32shard/pkg/memory"
	"rv32shard/pkg/record"
)

// uint256Mul reads x at ptr a, (y||modulus) at ptr b, and writes
// (x*y) mod modulus back over x's slot.
func uint256Mul(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	xBytes := readBytes(m, a, 32)
	yBytes := readBytes(m, b, 32)
	modBytes := readBytes(m, b+32, 32)

	x := new(uint256.Int).SetBytes(reverseBytes(xBytes))
	y := new(uint256.Int).SetBytes(reverseBytes(yBytes))
	mod := new(uint256.Int).SetBytes(reverseBytes(modBytes))

	result := new(uint256.Int)
	if mod.IsZero() {
		result.Mul(x, y)
	} else {
		result.MulMod(x, y, mod)
	}
	resultBytes32 := result.Bytes32()

	var resultArr, xArr, yArr, modArr [32]byte
	copy(resultArr[:], reverseBytes(resultBytes32[:]))
	copy(xArr[:], xBytes)
	copy(yArr[:], yBytes)
	copy(modArr[:], modBytes)

	writeBytes(m, a, resultArr[:])

	rec.Uint256MulEvents = append(rec.Uint256MulEvents, events.Uint256MulEvent{
		Shard: shard, Clk: clk, XPtr: a, YPtr: b,
		X: xArr, Y: yArr, Modulus: modArr, Result: resultArr,
	})
	return nil
}

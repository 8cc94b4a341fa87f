package precompile

import (
	"rv32shard/internal/ops"
	"rv32shard/pkg/events"
	"rv32shard/pkg/memory"
	"rv32shard/pkg/record"
)

// sha256RoundConstants are the 64 round constants from FIPS 180-4.
var sha256RoundConstants = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// shaExtend expands one message-schedule word at index b, reading
// w[i-16..i-2] from the 64-word buffer at ptr a and writing w[i] back in
// place: w[i] = w[i-16] + s0(w[i-15]) + w[i-7] + s1(w[i-2]), where
// s0(x) = rotr(x,7) ^ rotr(x,18) ^ (x>>3) and
// s1(x) = rotr(x,17) ^ rotr(x,19) ^ (x>>10).
func shaExtend(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	wPtr, i := a, b
	w := readWords(m, wPtr, 64)

	wIMinus15 := w[i-15]
	wIMinus2 := w[i-2]
	wIMinus16 := w[i-16]
	wIMinus7 := w[i-7]

	s0 := ops.RotateRight32(wIMinus15, 7) ^ ops.RotateRight32(wIMinus15, 18) ^ ops.ShiftRight32(wIMinus15, 3)
	s1 := ops.RotateRight32(wIMinus2, 17) ^ ops.RotateRight32(wIMinus2, 19) ^ ops.ShiftRight32(wIMinus2, 10)
	wI := ops.Add4(wIMinus16, s0, wIMinus7, s1)

	m.Write(wPtr+i*4, wI)
	rec.RangeCheckWord(shard, wI)

	rec.ShaExtendEvents = append(rec.ShaExtendEvents, events.ShaExtendEvent{
		Shard: shard, Clk: clk, WPtr: wPtr, I: i,
		WIMinus15: wIMinus15, WIMinus2: wIMinus2, WIMinus16: wIMinus16, WIMinus7: wIMinus7, WI: wI,
	})
	return nil
}

// shaCompress runs the full 64-round SHA-256 compression function over the
// 64-word schedule at ptr a against the 8-word running state at ptr b,
// writing the updated state back in place.
func shaCompress(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	wPtr, hPtr := a, b
	w := readWords(m, wPtr, 64)
	hWords := readWords(m, hPtr, 8)

	var hIn, hOut [8]uint32
	copy(hIn[:], hWords)

	h0, h1, h2, h3, h4, h5, h6, h7 := hIn[0], hIn[1], hIn[2], hIn[3], hIn[4], hIn[5], hIn[6], hIn[7]
	var wArr [64]uint32
	copy(wArr[:], w)

	for i := 0; i < 64; i++ {
		s1 := ops.RotateRight32(h4, 6) ^ ops.RotateRight32(h4, 11) ^ ops.RotateRight32(h4, 25)
		ch := (h4 & h5) ^ (^h4 & h6)
		temp1 := ops.Add5(h7, s1, ch, sha256RoundConstants[i], wArr[i])
		s0 := ops.RotateRight32(h0, 2) ^ ops.RotateRight32(h0, 13) ^ ops.RotateRight32(h0, 22)
		maj := (h0 & h1) ^ (h0 & h2) ^ (h1 & h2)
		temp2 := ops.Add32(s0, maj)

		h7 = h6
		h6 = h5
		h5 = h4
		h4 = ops.Add32(h3, temp1)
		h3 = h2
		h2 = h1
		h1 = h0
		h0 = ops.Add32(temp1, temp2)
	}

	hOut = [8]uint32{
		ops.Add32(hIn[0], h0), ops.Add32(hIn[1], h1), ops.Add32(hIn[2], h2), ops.Add32(hIn[3], h3),
		ops.Add32(hIn[4], h4), ops.Add32(hIn[5], h5), ops.Add32(hIn[6], h6), ops.Add32(hIn[7], h7),
	}
	writeWords(m, hPtr, hOut[:])
	for _, word := range hOut {
		rec.RangeCheckWord(shard, word)
	}

	rec.ShaCompressEvents = append(rec.ShaCompressEvents, events.ShaCompressEvent{
		Shard: shard, Clk: clk, WPtr: wPtr, HPtr: hPtr, W: wArr, HIn: hIn, HOut: hOut,
	})
	return nil
}

package precompile

import "rv32shard/pkg/memory"

// readWords reads n consecutive little-endian words starting at ptr.
func readWords(m *memory.Memory, ptr uint32, n int) []uint32 {
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		v, _ := m.Read(ptr + uint32(i)*4)
		out[i] = v
	}
	return out
}

// writeWords installs words starting at ptr, one per 4-byte slot.
func writeWords(m *memory.Memory, ptr uint32, words []uint32) {
	for i, w := range words {
		m.Write(ptr+uint32(i)*4, w)
	}
}

// readBytes reads n bytes starting at ptr, unpacking each word
// little-endian, truncating to the requested byte count.
func readBytes(m *memory.Memory, ptr uint32, n int) []byte {
	out := make([]byte, 0, n)
	words := readWords(m, ptr, (n+3)/4)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out[:n]
}

// writeBytes packs b into consecutive little-endian words starting at ptr.
// len(b) must be a multiple of 4, matching every precompile's fixed-width
// field encodings.
func writeBytes(m *memory.Memory, ptr uint32, b []byte) {
	for i := 0; i+4 <= len(b); i += 4 {
		word := uint32(b[i]) | uint32(b[i+1])<<8 | uint32(b[i+2])<<16 | uint32(b[i+3])<<24
		m.Write(ptr+uint32(i), word)
	}
}

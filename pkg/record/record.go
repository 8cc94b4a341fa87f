// Package record implements the execution record: per-kind event buckets,
// the byte-lookup multiset, and the shard-splitting post-pass (spec.md §3,
// §4.4, §4.5, §6).
package record

import (
	"github.com/google/uuid"

	"rv32shard/pkg/events"
	"rv32shard/pkg/field"
	"rv32shard/pkg/program"
	"rv32shard/pkg/publicvalues"
)

// ExecutionRecord accumulates every event kind the interpreter can emit for
// one shard's worth (or one full run's worth, before splitting) of
// execution. Once split and handed downstream, a record is read-only.
type ExecutionRecord struct {
	Program *program.Program

	CPUEvents    []events.CpuEvent
	AddEvents    []events.AluEvent
	MulEvents    []events.AluEvent
	SubEvents    []events.AluEvent
	BitwiseEvents    []events.AluEvent
	ShiftLeftEvents  []events.AluEvent
	ShiftRightEvents []events.AluEvent
	DivRemEvents     []events.AluEvent
	LtEvents         []events.AluEvent

	ShaExtendEvents   []events.ShaExtendEvent
	ShaCompressEvents []events.ShaCompressEvent
	KeccakPermuteEvents []events.KeccakPermuteEvent

	EdAddEvents           []events.EllipticCurveAddEvent
	EdDecompressEvents    []events.EllipticCurveDecompressEvent
	Secp256k1AddEvents    []events.EllipticCurveAddEvent
	Secp256k1DoubleEvents []events.EllipticCurveDoubleEvent
	Bn254AddEvents        []events.EllipticCurveAddEvent
	Bn254DoubleEvents     []events.EllipticCurveDoubleEvent
	K256DecompressEvents  []events.EllipticCurveDecompressEvent
	Bls12381AddEvents     []events.EllipticCurveAddEvent
	Bls12381DoubleEvents  []events.EllipticCurveDoubleEvent
	Bls12381DecompressEvents []events.EllipticCurveDecompressEvent
	Uint256MulEvents      []events.Uint256MulEvent

	MemoryInitializeEvents []events.MemoryInitializeFinalizeEvent
	MemoryFinalizeEvents   []events.MemoryInitializeFinalizeEvent

	// ByteLookups is keyed shard -> (event -> multiplicity).
	ByteLookups map[uint32]map[events.ByteLookupEvent]int

	// NonceLookup densifies AluEvent.LookupID into a per-stream position,
	// populated by RegisterNonces.
	NonceLookup map[uuid.UUID]uint32

	PublicValues publicvalues.Ground
}

// New returns an empty record referencing program.
func New(p *program.Program) *ExecutionRecord {
	return &ExecutionRecord{
		Program:     p,
		ByteLookups: make(map[uint32]map[events.ByteLookupEvent]int),
		NonceLookup: make(map[uuid.UUID]uint32),
	}
}

// AddByteLookupEvent folds ev into the per-shard multiset.
func (r *ExecutionRecord) AddByteLookupEvent(ev events.ByteLookupEvent) {
	if r.ByteLookups == nil {
		r.ByteLookups = make(map[uint32]map[events.ByteLookupEvent]int)
	}
	bucket, ok := r.ByteLookups[ev.Shard]
	if !ok {
		bucket = make(map[events.ByteLookupEvent]int)
		r.ByteLookups[ev.Shard] = bucket
	}
	bucket[ev]++
}

// RangeCheckWord emits one ByteLookupRange event per byte of v: the coarsest
// witness a computed word needs, so every byte of every ALU/precompile
// result is accounted for in the multiset (spec.md §3 "emitted whenever a
// computation must be witnessed as a range/decomposition lookup").
func (r *ExecutionRecord) RangeCheckWord(shard uint32, v uint32) {
	for i := 0; i < 4; i++ {
		r.AddByteLookupEvent(events.ByteLookupEvent{
			Shard: shard,
			Kind:  events.ByteLookupRange,
			Byte1: byte(v >> (8 * i)),
		})
	}
}

// Stats returns non-zero event counts keyed by stream name.
func (r *ExecutionRecord) Stats() map[string]int {
	stats := map[string]int{
		"cpu_events":                  len(r.CPUEvents),
		"add_events":                  len(r.AddEvents),
		"mul_events":                  len(r.MulEvents),
		"sub_events":                  len(r.SubEvents),
		"bitwise_events":              len(r.BitwiseEvents),
		"shift_left_events":           len(r.ShiftLeftEvents),
		"shift_right_events":          len(r.ShiftRightEvents),
		"divrem_events":               len(r.DivRemEvents),
		"lt_events":                   len(r.LtEvents),
		"sha_extend_events":           len(r.ShaExtendEvents),
		"sha_compress_events":         len(r.ShaCompressEvents),
		"keccak_permute_events":       len(r.KeccakPermuteEvents),
		"ed_add_events":               len(r.EdAddEvents),
		"ed_decompress_events":        len(r.EdDecompressEvents),
		"secp256k1_add_events":        len(r.Secp256k1AddEvents),
		"secp256k1_double_events":     len(r.Secp256k1DoubleEvents),
		"bn254_add_events":            len(r.Bn254AddEvents),
		"bn254_double_events":         len(r.Bn254DoubleEvents),
		"k256_decompress_events":      len(r.K256DecompressEvents),
		"bls12381_add_events":         len(r.Bls12381AddEvents),
		"bls12381_double_events":      len(r.Bls12381DoubleEvents),
		"uint256_mul_events":          len(r.Uint256MulEvents),
		"bls12381_decompress_events":  len(r.Bls12381DecompressEvents),
		"memory_initialize_events":    len(r.MemoryInitializeEvents),
		"memory_finalize_events":      len(r.MemoryFinalizeEvents),
	}
	if len(r.CPUEvents) != 0 {
		shard := r.CPUEvents[0].Shard
		stats["byte_lookups"] = len(r.ByteLookups[shard])
	}
	for k, v := range stats {
		if v == 0 {
			delete(stats, k)
		}
	}
	return stats
}

// Append destructively merges other into r: every event slice is
// concatenated in order, and the byte-lookup multisets are summed per
// shard.
func (r *ExecutionRecord) Append(other *ExecutionRecord) {
	r.CPUEvents = append(r.CPUEvents, other.CPUEvents...)
	r.AddEvents = append(r.AddEvents, other.AddEvents...)
	r.SubEvents = append(r.SubEvents, other.SubEvents...)
	r.MulEvents = append(r.MulEvents, other.MulEvents...)
	r.BitwiseEvents = append(r.BitwiseEvents, other.BitwiseEvents...)
	r.ShiftLeftEvents = append(r.ShiftLeftEvents, other.ShiftLeftEvents...)
	r.ShiftRightEvents = append(r.ShiftRightEvents, other.ShiftRightEvents...)
	r.DivRemEvents = append(r.DivRemEvents, other.DivRemEvents...)
	r.LtEvents = append(r.LtEvents, other.LtEvents...)

	r.ShaExtendEvents = append(r.ShaExtendEvents, other.ShaExtendEvents...)
	r.ShaCompressEvents = append(r.ShaCompressEvents, other.ShaCompressEvents...)
	r.KeccakPermuteEvents = append(r.KeccakPermuteEvents, other.KeccakPermuteEvents...)

	r.EdAddEvents = append(r.EdAddEvents, other.EdAddEvents...)
	r.EdDecompressEvents = append(r.EdDecompressEvents, other.EdDecompressEvents...)
	r.Secp256k1AddEvents = append(r.Secp256k1AddEvents, other.Secp256k1AddEvents...)
	r.Secp256k1DoubleEvents = append(r.Secp256k1DoubleEvents, other.Secp256k1DoubleEvents...)
	r.Bn254AddEvents = append(r.Bn254AddEvents, other.Bn254AddEvents...)
	r.Bn254DoubleEvents = append(r.Bn254DoubleEvents, other.Bn254DoubleEvents...)
	r.K256DecompressEvents = append(r.K256DecompressEvents, other.K256DecompressEvents...)
	r.Bls12381AddEvents = append(r.Bls12381AddEvents, other.Bls12381AddEvents...)
	r.Bls12381DoubleEvents = append(r.Bls12381DoubleEvents, other.Bls12381DoubleEvents...)
	r.Bls12381DecompressEvents = append(r.Bls12381DecompressEvents, other.Bls12381DecompressEvents...)
	r.Uint256MulEvents = append(r.Uint256MulEvents, other.Uint256MulEvents...)

	if len(r.ByteLookups) == 0 {
		r.ByteLookups = other.ByteLookups
	} else {
		mergeByteLookups(r.ByteLookups, other.ByteLookups)
	}

	r.MemoryInitializeEvents = append(r.MemoryInitializeEvents, other.MemoryInitializeEvents...)
	r.MemoryFinalizeEvents = append(r.MemoryFinalizeEvents, other.MemoryFinalizeEvents...)
}

func mergeByteLookups(into, from map[uint32]map[events.ByteLookupEvent]int) {
	for shard, bucket := range from {
		dst, ok := into[shard]
		if !ok {
			dst = make(map[events.ByteLookupEvent]int, len(bucket))
			into[shard] = dst
		}
		for ev, count := range bucket {
			dst[ev] += count
		}
	}
}

// Defer moves every deferrable event stream (the precompile families plus
// memory initialize/finalize) out into a fresh record, leaving r holding
// only the non-deferred streams.
func (r *ExecutionRecord) Defer() *ExecutionRecord {
	out := &ExecutionRecord{
		Program: r.Program,

		KeccakPermuteEvents: r.KeccakPermuteEvents,
		Secp256k1AddEvents:  r.Secp256k1AddEvents,
		Secp256k1DoubleEvents: r.Secp256k1DoubleEvents,
		Bn254AddEvents:      r.Bn254AddEvents,
		Bn254DoubleEvents:   r.Bn254DoubleEvents,
		Bls12381AddEvents:   r.Bls12381AddEvents,
		Bls12381DoubleEvents: r.Bls12381DoubleEvents,
		ShaExtendEvents:     r.ShaExtendEvents,
		ShaCompressEvents:   r.ShaCompressEvents,
		EdAddEvents:         r.EdAddEvents,
		EdDecompressEvents:  r.EdDecompressEvents,
		K256DecompressEvents: r.K256DecompressEvents,
		Uint256MulEvents:    r.Uint256MulEvents,
		Bls12381DecompressEvents: r.Bls12381DecompressEvents,
		MemoryInitializeEvents: r.MemoryInitializeEvents,
		MemoryFinalizeEvents:   r.MemoryFinalizeEvents,

		ByteLookups: make(map[uint32]map[events.ByteLookupEvent]int),
		NonceLookup: make(map[uuid.UUID]uint32),
	}

	r.KeccakPermuteEvents = nil
	r.Secp256k1AddEvents = nil
	r.Secp256k1DoubleEvents = nil
	r.Bn254AddEvents = nil
	r.Bn254DoubleEvents = nil
	r.Bls12381AddEvents = nil
	r.Bls12381DoubleEvents = nil
	r.ShaExtendEvents = nil
	r.ShaCompressEvents = nil
	r.EdAddEvents = nil
	r.EdDecompressEvents = nil
	r.K256DecompressEvents = nil
	r.Uint256MulEvents = nil
	r.Bls12381DecompressEvents = nil
	r.MemoryInitializeEvents = nil
	r.MemoryFinalizeEvents = nil

	return out
}

// RegisterNonces assigns per-stream densified positions to every AluEvent's
// LookupID: ADD/SUB share one numbering space (SUB continues past ADD), the
// rest are keyed independently because they're witnessed in independent
// tables (spec.md §4.4).
func (r *ExecutionRecord) RegisterNonces() {
	if r.NonceLookup == nil {
		r.NonceLookup = make(map[uuid.UUID]uint32)
	}
	for i, ev := range r.AddEvents {
		r.NonceLookup[ev.LookupID] = uint32(i)
	}
	for i, ev := range r.SubEvents {
		r.NonceLookup[ev.LookupID] = uint32(len(r.AddEvents) + i)
	}
	for i, ev := range r.MulEvents {
		r.NonceLookup[ev.LookupID] = uint32(i)
	}
	for i, ev := range r.BitwiseEvents {
		r.NonceLookup[ev.LookupID] = uint32(i)
	}
	for i, ev := range r.ShiftLeftEvents {
		r.NonceLookup[ev.LookupID] = uint32(i)
	}
	for i, ev := range r.ShiftRightEvents {
		r.NonceLookup[ev.LookupID] = uint32(i)
	}
	for i, ev := range r.DivRemEvents {
		r.NonceLookup[ev.LookupID] = uint32(i)
	}
	for i, ev := range r.LtEvents {
		r.NonceLookup[ev.LookupID] = uint32(i)
	}
}

// PublicValuesVector returns the padded field-element vector for this
// record's public values block (spec.md §6).
func (r *ExecutionRecord) PublicValuesVector() []field.Element {
	return r.PublicValues.ToFieldVector()
}

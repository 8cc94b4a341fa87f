package record

import "rv32shard/pkg/events"

// SplitOptions configures per-stream chunk sizes for Split (spec.md §6
// "Configuration options"). A zero value for any deferred-stream field is
// a ProgrammerError: the caller must size every bucket before splitting.
type SplitOptions struct {
	Keccak      int
	ShaExtend   int
	ShaCompress int
	Deferred    int
	Memory      int
}

// chunkExact splits items into floor(len/size) chunks of exactly size,
// mirroring Rust's chunks_exact, and returns the leftover tail separately.
// Generalizes the original's split_events! macro, which repeats this
// pattern once per deferrable stream, into one generic helper (there is no
// itertools-style chunking library anywhere in the retrieval pack).
func chunkExact[T any](items []T, size int) (chunks [][]T, remainder []T) {
	if size < 1 {
		panic("record: chunk size must be >= 1")
	}
	n := len(items) / size
	for i := 0; i < n; i++ {
		chunks = append(chunks, items[i*size:(i+1)*size])
	}
	remainder = items[n*size:]
	return chunks, remainder
}

// splitStream buckets items per chunkExact. When last is true the
// remainder becomes one additional final chunk (possibly short); when
// false the remainder is returned to the caller to retain for a future
// call, matching spec.md §4.5's remainder policy.
func splitStream[T any](items []T, size int, last bool) (chunks [][]T, retained []T) {
	chunks, remainder := chunkExact(items, size)
	if last {
		if len(remainder) > 0 {
			chunks = append(chunks, remainder)
		}
		return chunks, nil
	}
	return chunks, remainder
}

// Split partitions the deferred event streams into bounded shards, each
// carrying a reference to the parent program and, for the final call,
// the stitched memory initialize/finalize public-values boundaries. See
// spec.md §4.5 for the exact chunking/remainder/stitching rules.
func (r *ExecutionRecord) Split(last bool, opts SplitOptions) []*ExecutionRecord {
	keccakChunks, keccakRem := splitStream(r.KeccakPermuteEvents, opts.Keccak, last)
	shaExtendChunks, shaExtendRem := splitStream(r.ShaExtendEvents, opts.ShaExtend, last)
	shaCompressChunks, shaCompressRem := splitStream(r.ShaCompressEvents, opts.ShaCompress, last)
	edAddChunks, edAddRem := splitStream(r.EdAddEvents, opts.Deferred, last)
	edDecompressChunks, edDecompressRem := splitStream(r.EdDecompressEvents, opts.Deferred, last)
	secp256k1AddChunks, secp256k1AddRem := splitStream(r.Secp256k1AddEvents, opts.Deferred, last)
	secp256k1DoubleChunks, secp256k1DoubleRem := splitStream(r.Secp256k1DoubleEvents, opts.Deferred, last)
	bn254AddChunks, bn254AddRem := splitStream(r.Bn254AddEvents, opts.Deferred, last)
	bn254DoubleChunks, bn254DoubleRem := splitStream(r.Bn254DoubleEvents, opts.Deferred, last)
	k256DecompressChunks, k256DecompressRem := splitStream(r.K256DecompressEvents, opts.Deferred, last)
	bls12381AddChunks, bls12381AddRem := splitStream(r.Bls12381AddEvents, opts.Deferred, last)
	bls12381DoubleChunks, bls12381DoubleRem := splitStream(r.Bls12381DoubleEvents, opts.Deferred, last)
	bls12381DecompressChunks, bls12381DecompressRem := splitStream(r.Bls12381DecompressEvents, opts.Deferred, last)
	uint256MulChunks, uint256MulRem := splitStream(r.Uint256MulEvents, opts.Deferred, last)

	r.KeccakPermuteEvents = keccakRem
	r.ShaExtendEvents = shaExtendRem
	r.ShaCompressEvents = shaCompressRem
	r.EdAddEvents = edAddRem
	r.EdDecompressEvents = edDecompressRem
	r.Secp256k1AddEvents = secp256k1AddRem
	r.Secp256k1DoubleEvents = secp256k1DoubleRem
	r.Bn254AddEvents = bn254AddRem
	r.Bn254DoubleEvents = bn254DoubleRem
	r.K256DecompressEvents = k256DecompressRem
	r.Bls12381AddEvents = bls12381AddRem
	r.Bls12381DoubleEvents = bls12381DoubleRem
	r.Bls12381DecompressEvents = bls12381DecompressRem
	r.Uint256MulEvents = uint256MulRem

	n := 0
	for _, l := range []int{
		len(keccakChunks), len(shaExtendChunks), len(shaCompressChunks),
		len(edAddChunks), len(edDecompressChunks), len(secp256k1AddChunks),
		len(secp256k1DoubleChunks), len(bn254AddChunks), len(bn254DoubleChunks),
		len(k256DecompressChunks), len(bls12381AddChunks), len(bls12381DoubleChunks),
		len(bls12381DecompressChunks), len(uint256MulChunks),
	} {
		if l > n {
			n = l
		}
	}

	shards := make([]*ExecutionRecord, n)
	for i := range shards {
		shards[i] = New(r.Program)
		if i < len(keccakChunks) {
			shards[i].KeccakPermuteEvents = keccakChunks[i]
		}
		if i < len(shaExtendChunks) {
			shards[i].ShaExtendEvents = shaExtendChunks[i]
		}
		if i < len(shaCompressChunks) {
			shards[i].ShaCompressEvents = shaCompressChunks[i]
		}
		if i < len(edAddChunks) {
			shards[i].EdAddEvents = edAddChunks[i]
		}
		if i < len(edDecompressChunks) {
			shards[i].EdDecompressEvents = edDecompressChunks[i]
		}
		if i < len(secp256k1AddChunks) {
			shards[i].Secp256k1AddEvents = secp256k1AddChunks[i]
		}
		if i < len(secp256k1DoubleChunks) {
			shards[i].Secp256k1DoubleEvents = secp256k1DoubleChunks[i]
		}
		if i < len(bn254AddChunks) {
			shards[i].Bn254AddEvents = bn254AddChunks[i]
		}
		if i < len(bn254DoubleChunks) {
			shards[i].Bn254DoubleEvents = bn254DoubleChunks[i]
		}
		if i < len(k256DecompressChunks) {
			shards[i].K256DecompressEvents = k256DecompressChunks[i]
		}
		if i < len(bls12381AddChunks) {
			shards[i].Bls12381AddEvents = bls12381AddChunks[i]
		}
		if i < len(bls12381DoubleChunks) {
			shards[i].Bls12381DoubleEvents = bls12381DoubleChunks[i]
		}
		if i < len(bls12381DecompressChunks) {
			shards[i].Bls12381DecompressEvents = bls12381DecompressChunks[i]
		}
		if i < len(uint256MulChunks) {
			shards[i].Uint256MulEvents = uint256MulChunks[i]
		}
	}

	if last {
		shards = append(shards, r.splitMemory(opts.Memory)...)
	}

	return shards
}

// splitMemory sorts the memory initialize/finalize streams by address and
// chunks them independently, stamping each resulting shard's public
// values with the running previous/last address boundary so consecutive
// shards stitch together (spec.md §4.5.3, generalizing the original's
// itertools::zip_longest walk over the two streams into two independent
// chunkExact passes since our shard count already comes from the max of
// the two chunk counts).
func (r *ExecutionRecord) splitMemory(chunkSize int) []*ExecutionRecord {
	if chunkSize < 1 {
		panic("record: memory chunk size must be >= 1")
	}
	insertionSortByAddr(r.MemoryInitializeEvents)
	insertionSortByAddr(r.MemoryFinalizeEvents)

	initChunks, initRem := chunkExact(r.MemoryInitializeEvents, chunkSize)
	if len(initRem) > 0 {
		initChunks = append(initChunks, initRem)
	}
	finalizeChunks, finalizeRem := chunkExact(r.MemoryFinalizeEvents, chunkSize)
	if len(finalizeRem) > 0 {
		finalizeChunks = append(finalizeChunks, finalizeRem)
	}

	n := len(initChunks)
	if len(finalizeChunks) > n {
		n = len(finalizeChunks)
	}

	shards := make([]*ExecutionRecord, n)
	var prevInit, prevFinalize uint32
	for i := 0; i < n; i++ {
		shard := New(r.Program)
		shard.PublicValues.PreviousInitAddr = prevInit
		shard.PublicValues.PreviousFinalizeAddr = prevFinalize

		lastInit, lastFinalize := prevInit, prevFinalize
		if i < len(initChunks) {
			shard.MemoryInitializeEvents = initChunks[i]
			if chunk := initChunks[i]; len(chunk) > 0 {
				lastInit = chunk[len(chunk)-1].Addr
			}
		}
		if i < len(finalizeChunks) {
			shard.MemoryFinalizeEvents = finalizeChunks[i]
			if chunk := finalizeChunks[i]; len(chunk) > 0 {
				lastFinalize = chunk[len(chunk)-1].Addr
			}
		}
		shard.PublicValues.LastInitAddr = lastInit
		shard.PublicValues.LastFinalizeAddr = lastFinalize
		prevInit, prevFinalize = lastInit, lastFinalize

		shards[i] = shard
	}

	r.MemoryInitializeEvents = nil
	r.MemoryFinalizeEvents = nil
	return shards
}

func insertionSortByAddr(evs []events.MemoryInitializeFinalizeEvent) {
	for i := 1; i < len(evs); i++ {
		v := evs[i]
		j := i - 1
		for j >= 0 && evs[j].Addr > v.Addr {
			evs[j+1] = evs[j]
			j--
		}
		evs[j+1] = v
	}
}

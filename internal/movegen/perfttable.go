package movegen

import (
	"sync"
	"sync/atomic"

	"github.com/hailam/movegen/internal/board"
)

// Number of shards for table locking (power of 2 for fast modulo)
const ptShardCount = 256
const ptShardMask = ptShardCount - 1

// PerftEntry is one stored subtree count.
type PerftEntry struct {
	Key   uint64 // Full Zobrist hash of the subtree root
	Nodes uint64
	Depth uint8
}

// PerftTable memoises perft subtree counts by position hash and depth.
// It is safe for concurrent use by the workers of a parallel divide. Counts
// depend on the promotion mode, so a table serves one mode only.
type PerftTable struct {
	entries []PerftEntry
	shards  [ptShardCount]sync.RWMutex
	size    uint64
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewPerftTable creates a table of roughly sizeMB megabytes.
func NewPerftTable(sizeMB int) *PerftTable {
	entrySize := uint64(24)
	numEntries := roundDownToPowerOf2(max(uint64(sizeMB)*1024*1024/entrySize, 1))

	return &PerftTable{
		entries: make([]PerftEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe returns the stored count for hash at exactly depth.
func (pt *PerftTable) Probe(hash uint64, depth int) (uint64, bool) {
	pt.probes.Add(1)

	idx := hash & pt.mask
	shard := int(idx & ptShardMask)

	pt.shards[shard].RLock()
	entry := pt.entries[idx]
	pt.shards[shard].RUnlock()

	if entry.Key == hash && int(entry.Depth) == depth && depth > 0 {
		pt.hits.Add(1)
		return entry.Nodes, true
	}
	return 0, false
}

// Store saves a subtree count. A deeper entry in the slot is kept, since it
// stands for more work.
func (pt *PerftTable) Store(hash uint64, depth int, nodes uint64) {
	idx := hash & pt.mask
	shard := int(idx & ptShardMask)

	pt.shards[shard].Lock()
	entry := &pt.entries[idx]
	if depth >= int(entry.Depth) {
		entry.Key = hash
		entry.Nodes = nodes
		entry.Depth = uint8(depth)
	}
	pt.shards[shard].Unlock()
}

// Clear empties the table.
func (pt *PerftTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PerftEntry{}
	}
	pt.hits.Store(0)
	pt.probes.Store(0)
}

// HashFull returns the permille of the first 1000 slots in use.
func (pt *PerftTable) HashFull() int {
	sampleSize := min(1000, int(pt.size))
	used := 0
	for i := 0; i < sampleSize; i++ {
		if pt.entries[i].Depth > 0 {
			used++
		}
	}
	return used * 1000 / sampleSize
}

// HitRate returns the probe hit rate as a percentage.
func (pt *PerftTable) HitRate() float64 {
	probes := pt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(pt.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (pt *PerftTable) Size() uint64 {
	return pt.size
}

// HashPerft is Perft with subtrees of depth 2 and more memoised in tt.
// A nil table degrades to Perft.
func HashPerft(pos *board.Position, gen *Generator, depth int, tt *PerftTable) uint64 {
	if tt == nil || depth < 2 {
		return Perft(pos, gen, depth)
	}
	if nodes, ok := tt.Probe(pos.Hash(), depth); ok {
		return nodes
	}

	var nodes uint64
	for _, m := range gen.GenerateMoves(pos, true) {
		undo := pos.MakeMove(m)
		nodes += HashPerft(pos, gen, depth-1, tt)
		pos.UnmakeMove(m, undo)
	}
	tt.Store(pos.Hash(), depth, nodes)
	return nodes
}

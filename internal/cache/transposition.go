// Package cache implements the shared transposition table: a lock-free,
// bucket-addressed hash table of scored search results keyed by the
// board's zobrist hash.
package cache

import (
	"github.com/ekmadsen/chesscore/internal/board"
)

// Precision describes which side of the true score a stored score bounds.
type Precision uint8

const (
	Unknown    Precision = iota
	Exact                // the stored score is the true minimax value
	LowerBound           // the true value is at least the stored score (failed high)
	UpperBound           // the true value is at most the stored score (failed low)
)

// MateScore and MaxPly mirror the score-space conventions used by the
// search package; scores within MaxPly of MateScore are ply-adjusted
// before being cached (see AdjustScoreToTT/AdjustScoreFromTT).
const (
	MateScore = 30000
	MaxPly    = 128
)

// BucketSize is the number of candidate slots probed per key, matching
// the classic n-way set-associative transposition table layout.
const BucketSize = 4

// Record is the unpacked view of one cached search result. The 64-bit
// Data word a Record compresses to packs: to-horizon(7) | bestmove as
// promo(4)+from(7)+to(7) | score(27, offset-biased) | precision(2) |
// last-accessed(10).
type Record struct {
	ToHorizon    int
	BestMove     board.Move
	Score        int
	Precision    Precision
	LastAccessed uint16
}

const (
	shiftToHorizon    = 0
	bitsToHorizon     = 7
	shiftTo           = bitsToHorizon
	bitsSquare        = 7
	shiftFrom         = shiftTo + bitsSquare
	shiftPromo        = shiftFrom + bitsSquare
	bitsPromo         = 4
	shiftScore        = shiftPromo + bitsPromo
	bitsScore         = 27
	shiftPrecision    = shiftScore + bitsScore
	bitsPrecision     = 2
	shiftLastAccessed = shiftPrecision + bitsPrecision
	bitsLastAccessed  = 10

	scoreBias = 1 << (bitsScore - 1)
)

func mask(bits int) uint64 {
	return (uint64(1) << uint(bits)) - 1
}

func pack(r Record) uint64 {
	var toSq, fromSq, promo uint64
	if !r.BestMove.Equal(board.NoMove) {
		toSq = uint64(r.BestMove.To())
		fromSq = uint64(r.BestMove.From())
		if r.BestMove.IsPromotion() {
			promo = uint64(r.BestMove.Promotion()) + 1
		}
	} else {
		toSq = uint64(board.NoSquare)
		fromSq = uint64(board.NoSquare)
	}

	score := uint64(r.Score+scoreBias) & mask(bitsScore)

	var data uint64
	data |= (uint64(r.ToHorizon) & mask(bitsToHorizon)) << shiftToHorizon
	data |= (toSq & mask(bitsSquare)) << shiftTo
	data |= (fromSq & mask(bitsSquare)) << shiftFrom
	data |= (promo & mask(bitsPromo)) << shiftPromo
	data |= score << shiftScore
	data |= (uint64(r.Precision) & mask(bitsPrecision)) << shiftPrecision
	data |= (uint64(r.LastAccessed) & mask(bitsLastAccessed)) << shiftLastAccessed
	return data
}

func unpack(data uint64) Record {
	toHorizon := int((data >> shiftToHorizon) & mask(bitsToHorizon))
	toSq := board.Square((data >> shiftTo) & mask(bitsSquare))
	fromSq := board.Square((data >> shiftFrom) & mask(bitsSquare))
	promo := (data >> shiftPromo) & mask(bitsPromo)
	score := int((data>>shiftScore)&mask(bitsScore)) - scoreBias
	precision := Precision((data >> shiftPrecision) & mask(bitsPrecision))
	lastAccessed := uint16((data >> shiftLastAccessed) & mask(bitsLastAccessed))

	var best board.Move
	if fromSq != board.NoSquare && toSq != board.NoSquare {
		if promo != 0 {
			best = board.NewPromotion(fromSq, toSq, board.PieceType(promo-1))
		} else {
			best = board.NewMove(fromSq, toSq)
		}
	} else {
		best = board.NoMove
	}

	return Record{
		ToHorizon:    toHorizon,
		BestMove:     best,
		Score:        score,
		Precision:    precision,
		LastAccessed: lastAccessed,
	}
}

// priority returns the replacement-ordering value for a packed data word:
// last-accessed<<7 + to-horizon. Higher priority entries are kept over
// lower priority ones when a bucket is full.
func priority(data uint64) uint64 {
	lastAccessed := (data >> shiftLastAccessed) & mask(bitsLastAccessed)
	toHorizon := (data >> shiftToHorizon) & mask(bitsToHorizon)
	return lastAccessed<<7 + toHorizon
}

// slot is one lock-free table cell. lock holds key XOR data; a reader
// recovers the key as lock XOR data and only trusts the slot if that
// matches the key being searched for — the classic XOR-fold scheme for
// verifying a read wasn't torn by a concurrent write.
type slot struct {
	lock uint64
	data uint64
}

func (s *slot) store(key, data uint64) {
	s.data = data
	s.lock = key ^ data
}

func (s *slot) load(key uint64) (uint64, bool) {
	data := s.data
	if s.lock^data != key {
		return 0, false
	}
	return data, true
}

// Table is the shared transposition cache: buckets of BucketSize slots,
// addressed by the low bits of the zobrist hash.
type Table struct {
	buckets []([BucketSize]slot)
	mask    uint64
	clock   uint16

	probes uint64
	hits   uint64
}

// New creates a Table sized to approximately sizeMB megabytes.
func New(sizeMB int) *Table {
	bucketBytes := uint64(BucketSize * 16)
	numBuckets := (uint64(sizeMB) * 1024 * 1024) / bucketBytes
	numBuckets = roundDownToPowerOf2(numBuckets)
	if numBuckets == 0 {
		numBuckets = 1
	}

	return &Table{
		buckets: make([]([BucketSize]slot), numBuckets),
		mask:    numBuckets - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Tick advances the cache's last-accessed clock. Call once per search
// so entries written by later searches outrank older ones of equal depth
// in the replacement formula.
func (t *Table) Tick() {
	t.clock++
	if t.clock >= 1<<bitsLastAccessed {
		t.clock = 0
	}
}

// Probe looks up hash and returns the cached record, if any.
func (t *Table) Probe(hash uint64) (Record, bool) {
	t.probes++
	bucket := &t.buckets[hash&t.mask]
	for i := range bucket {
		if data, ok := bucket[i].load(hash); ok {
			t.hits++
			return unpack(data), true
		}
	}
	return Record{}, false
}

// Store writes a record for hash, replacing the lowest-priority slot in
// the bucket (or the existing slot for the same hash, if present).
func (t *Table) Store(hash uint64, r Record) {
	r.LastAccessed = t.clock
	data := pack(r)

	bucket := &t.buckets[hash&t.mask]

	victim := 0
	var victimPriority uint64 = ^uint64(0)
	for i := range bucket {
		if existing, ok := bucket[i].load(hash); ok {
			bucket[i].store(hash, data)
			_ = existing
			return
		}
		p := priority(bucket[i].data)
		if bucket[i].lock == 0 && bucket[i].data == 0 {
			p = 0
		}
		if p < victimPriority {
			victimPriority = p
			victim = i
		}
	}
	bucket[victim].store(hash, data)
}

// Clear empties the table.
func (t *Table) Clear() {
	for i := range t.buckets {
		t.buckets[i] = [BucketSize]slot{}
	}
	t.clock = 0
	t.probes = 0
	t.hits = 0
}

// HashFull returns the permille of sampled buckets with at least one
// occupied slot.
func (t *Table) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > uint64(len(t.buckets)) {
		sampleSize = len(t.buckets)
	}
	used := 0
	for i := 0; i < sampleSize; i++ {
		for j := range t.buckets[i] {
			if t.buckets[i][j].lock != 0 || t.buckets[i][j].data != 0 {
				used++
				break
			}
		}
	}
	if sampleSize == 0 {
		return 0
	}
	return (used * 1000) / sampleSize
}

// HitRate returns the probe hit rate as a percentage.
func (t *Table) HitRate() float64 {
	if t.probes == 0 {
		return 0
	}
	return float64(t.hits) / float64(t.probes) * 100
}

// AdjustScoreFromTT converts a mate score stored relative to the cached
// node back into one relative to the search root, given the node's ply.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a mate score relative to the search root into
// one relative to the node at ply, suitable for caching.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}

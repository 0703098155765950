package engine

import (
	"math/rand"

	"github.com/ekmadsen/chesscore/internal/board"
)

// Limiter is the strength limiter: a deterministic, seedable PRNG isolated
// behind one small capability so its randomness is scoped per Engine
// instance (never a process-wide RNG) and so tests can pin the seed for
// deterministic behavior.
type Limiter struct {
	on  bool
	rng *rand.Rand
}

// NewLimiter creates a Limiter seeded deterministically from seed. The
// limiter starts disabled; Enable turns on the throttling behavior.
func NewLimiter(seed int64) *Limiter {
	return &Limiter{rng: rand.New(rand.NewSource(seed))}
}

// Enable turns strength limiting on or off.
func (l *Limiter) Enable(on bool) {
	l.on = on
}

// Enabled reports whether strength limiting is active.
func (l *Limiter) Enabled() bool {
	return l.on
}

// PollInterval returns how many nodes the search should visit between
// time/stop checks. Under strength-limit throttling this polls every
// node; otherwise the normal, coarser interval applies.
func (l *Limiter) PollInterval(normal uint64) uint64 {
	if l.on {
		return 1
	}
	return normal
}

// Perturb randomly demotes a fraction of the already-sorted quiet tail of
// moves, weakening move ordering (and hence playing strength) in a way
// that is reproducible given the same seed. It is a no-op when the
// limiter is disabled.
func (l *Limiter) Perturb(list *board.MoveList, fromIndex int) {
	if !l.on {
		return
	}
	n := list.Len()
	for i := fromIndex; i < n; i++ {
		j := fromIndex + l.rng.Intn(n-fromIndex)
		list.Swap(i, j)
	}
}

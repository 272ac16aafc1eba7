package policy

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go_arena/internal/domain/board"
)

// Random plays a uniformly chosen legal point, pass included.
type Random struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom returns a Random policy; seed 0 seeds from the clock.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rnd: rand.New(rand.NewSource(seed))}
}

func (r *Random) Name() string { return "random" }

func (r *Random) SelectMove(ctx context.Context, s State) (board.Point, error) {
	if err := ctx.Err(); err != nil {
		return board.Pass, err
	}
	legal := s.Current.LegalPoints(s.ToMove)
	r.mu.Lock()
	defer r.mu.Unlock()
	return legal[r.rnd.Intn(len(legal))], nil
}

package chess

import (
	"context"
	"math/rand"
	"sync"
	"time"

	chesslib "github.com/corentings/chess/v2"
)

// RandomAdvisor picks a legal move uniformly at random.
type RandomAdvisor struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewRandomAdvisor seeds the advisor; seed 0 means seed from the clock.
func NewRandomAdvisor(seed int64) *RandomAdvisor {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomAdvisor{rand: rand.New(rand.NewSource(seed))}
}

func (a *RandomAdvisor) Propose(_ context.Context, pos *chesslib.Position) (*chesslib.Move, error) {
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, ErrNoMove
	}
	a.mu.Lock()
	idx := a.rand.Intn(len(moves))
	a.mu.Unlock()
	mv := moves[idx]
	return &mv, nil
}

package chess

import (
	"context"
	"math/rand"
	"sync"
	"time"

	chesslib "github.com/corentings/chess/v2"

	"github.com/park285/chessbro/internal/chess/openingbook"
)

const defaultBookMinWeight = 1

// BookAdvisor plays weighted-random moves from a polyglot book and passes
// (ErrNoSuggestion) once the position is out of book.
type BookAdvisor struct {
	book      *openingbook.Book
	minWeight uint16

	mu   sync.Mutex
	rand *rand.Rand
}

func NewBookAdvisor(book *openingbook.Book, minWeight int, seed int64) *BookAdvisor {
	if minWeight <= 0 {
		minWeight = defaultBookMinWeight
	}
	if minWeight > 0xffff {
		minWeight = 0xffff
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &BookAdvisor{
		book:      book,
		minWeight: uint16(minWeight),
		rand:      rand.New(rand.NewSource(seed)),
	}
}

func (a *BookAdvisor) Propose(_ context.Context, pos *chesslib.Position) (*chesslib.Move, error) {
	results, err := a.book.Lookup(pos, a.minWeight)
	if err != nil {
		return nil, err
	}

	type playable struct {
		move   *chesslib.Move
		weight int
	}
	candidates := make([]playable, 0, len(results))
	total := 0
	for _, res := range results {
		mv, err := ParseMove(pos, res.Move)
		if err != nil {
			continue
		}
		candidates = append(candidates, playable{move: mv, weight: int(res.Weight)})
		total += int(res.Weight)
	}
	if len(candidates) == 0 || total <= 0 {
		return nil, ErrNoSuggestion
	}

	a.mu.Lock()
	roll := a.rand.Intn(total)
	a.mu.Unlock()

	cumulative := 0
	for _, c := range candidates {
		cumulative += c.weight
		if roll < cumulative {
			return c.move, nil
		}
	}
	return candidates[len(candidates)-1].move, nil
}

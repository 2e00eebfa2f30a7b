package openingbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	chesslib "github.com/corentings/chess/v2"
)

type Result struct {
	Move   string
	Weight uint16
}

// Book wraps a polyglot opening book.
type Book struct {
	book *chesslib.PolyglotBook
}

func Load(r io.Reader) (*Book, error) {
	book, err := chesslib.LoadFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("load polyglot book: %w", err)
	}
	return &Book{book: book}, nil
}

func LoadFromPath(bookPath string) (*Book, error) {
	if strings.TrimSpace(bookPath) == "" {
		return nil, fmt.Errorf("polyglot book path required")
	}
	file, err := os.Open(bookPath)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book %q: %w", bookPath, err)
	}
	defer file.Close()

	book, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bookPath, err)
	}
	return book, nil
}

// Lookup returns the book moves stored for pos with at least minWeight,
// heaviest first. Moves are in long algebraic notation; castling is
// reported as the king's two-square move.
func (b *Book) Lookup(pos *chesslib.Position, minWeight uint16) ([]Result, error) {
	if b == nil || b.book == nil || pos == nil {
		return nil, nil
	}

	hasher := chesslib.NewZobristHasher()
	hashStr, err := hasher.HashPosition(pos.String())
	if err != nil {
		return nil, fmt.Errorf("compute polyglot hash: %w", err)
	}

	entries := b.book.FindMoves(chesslib.ZobristHashToUint64(hashStr))
	if len(entries) == 0 {
		return nil, nil
	}

	combined := make(map[string]int, len(entries))
	for _, entry := range entries {
		if entry.Weight < minWeight {
			continue
		}
		move := chesslib.DecodeMove(entry.Move).ToMove()
		uci := normalizeCastle(pos, move.String())
		if uci == "" {
			continue
		}
		combined[uci] += int(entry.Weight)
	}

	out := make([]Result, 0, len(combined))
	for move, weight := range combined {
		if weight > maxWeight {
			weight = maxWeight
		}
		out = append(out, Result{Move: move, Weight: uint16(weight)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight == out[j].Weight {
			return out[i].Move < out[j].Move
		}
		return out[i].Weight > out[j].Weight
	})
	return out, nil
}

const maxWeight = 0xffff

// polyglot encodes castling as the king capturing its own rook
var castleRewrites = map[string]string{
	"e1h1": "e1g1",
	"e1a1": "e1c1",
	"e8h8": "e8g8",
	"e8a8": "e8c8",
}

func normalizeCastle(pos *chesslib.Position, uci string) string {
	target, ok := castleRewrites[uci]
	if !ok || len(uci) < 2 {
		return uci
	}
	from := chesslib.Square(int(uci[0]-'a') + 8*int(uci[1]-'1'))
	if pos.Board().Piece(from).Type() != chesslib.King {
		return uci
	}
	return target
}

// ResolveBookPath picks the configured path, then CHESS_POLYGLOT_BOOK_PATH,
// then the first default location that exists. An empty result means no book.
func ResolveBookPath(configured string) (string, error) {
	if p := strings.TrimSpace(configured); p != "" {
		if exists(p) {
			return p, nil
		}
		return "", fmt.Errorf("opening book not found: %s", p)
	}
	if envPath := os.Getenv("CHESS_POLYGLOT_BOOK_PATH"); envPath != "" {
		if exists(envPath) {
			return envPath, nil
		}
		return "", fmt.Errorf("env CHESS_POLYGLOT_BOOK_PATH points to missing file: %s", envPath)
	}

	for _, candidate := range defaultBookPaths() {
		if exists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

func defaultBookPaths() []string {
	return []string{
		filepath.Join("resources", "opening", "book.bin"),
		filepath.Join("books", "book.bin"),
	}
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

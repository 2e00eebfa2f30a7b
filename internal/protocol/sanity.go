package protocol

import (
	"errors"
	"strings"

	chess "github.com/corentings/chess/v2"
)

var (
	errKingCount       = errors.New("each side needs exactly one king")
	errPawnOnBackRank  = errors.New("pawn on first or last rank")
	errCastlingRights  = errors.New("castling right without king and rook on their home squares")
	errOpponentInCheck = errors.New("side not to move is in check")
)

type castleRight struct {
	flag       byte
	king, rook chess.Square
	color      chess.Color
}

var castleRights = []castleRight{
	{'K', chess.E1, chess.H1, chess.White},
	{'Q', chess.E1, chess.A1, chess.White},
	{'k', chess.E8, chess.H8, chess.Black},
	{'q', chess.E8, chess.A8, chess.Black},
}

// checkSanity rejects positions the rules library decodes but that cannot
// arise in a game. fields are the six FEN fields pos was decoded from.
func checkSanity(pos *chess.Position, fields []string) error {
	board := pos.Board()

	kings := map[chess.Color]int{}
	kingSq := map[chess.Color]chess.Square{}
	for sq := 0; sq < 64; sq++ {
		p := board.Piece(chess.Square(sq))
		switch p.Type() {
		case chess.King:
			kings[p.Color()]++
			kingSq[p.Color()] = chess.Square(sq)
		case chess.Pawn:
			if rank := sq / 8; rank == 0 || rank == 7 {
				return errPawnOnBackRank
			}
		}
	}
	if kings[chess.White] != 1 || kings[chess.Black] != 1 {
		return errKingCount
	}

	if rights := fields[2]; rights != "-" {
		for _, cr := range castleRights {
			if !strings.ContainsRune(rights, rune(cr.flag)) {
				continue
			}
			if board.Piece(cr.king) != chess.NewPiece(chess.King, cr.color) ||
				board.Piece(cr.rook) != chess.NewPiece(chess.Rook, cr.color) {
				return errCastlingRights
			}
		}
	}

	waiting := chess.Black
	if fields[1] == "b" {
		waiting = chess.White
	}
	if attacked(board, kingSq[waiting], waiting.Other()) {
		return errOpponentInCheck
	}
	return nil
}

var (
	knightSteps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func pieceAt(board *chess.Board, file, rank int) (chess.Piece, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return chess.NoPiece, false
	}
	return board.Piece(chess.Square(file + 8*rank)), true
}

// attacked reports whether any piece of color by attacks sq.
func attacked(board *chess.Board, sq chess.Square, by chess.Color) bool {
	file, rank := int(sq)%8, int(sq)/8

	pawnRank := rank - 1
	if by == chess.Black {
		pawnRank = rank + 1
	}
	for _, df := range []int{-1, 1} {
		if p, ok := pieceAt(board, file+df, pawnRank); ok && p == chess.NewPiece(chess.Pawn, by) {
			return true
		}
	}
	for _, st := range knightSteps {
		if p, ok := pieceAt(board, file+st[0], rank+st[1]); ok && p == chess.NewPiece(chess.Knight, by) {
			return true
		}
	}
	for _, st := range kingSteps {
		if p, ok := pieceAt(board, file+st[0], rank+st[1]); ok && p == chess.NewPiece(chess.King, by) {
			return true
		}
	}
	slides := func(rays [][2]int, slider chess.PieceType) bool {
		for _, ray := range rays {
			for f, r := file+ray[0], rank+ray[1]; ; f, r = f+ray[0], r+ray[1] {
				p, ok := pieceAt(board, f, r)
				if !ok {
					break
				}
				if p == chess.NoPiece {
					continue
				}
				if p.Color() == by && (p.Type() == slider || p.Type() == chess.Queen) {
					return true
				}
				break
			}
		}
		return false
	}
	return slides(rookRays, chess.Rook) || slides(bishopRays, chess.Bishop)
}

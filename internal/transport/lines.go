package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	corechess "github.com/park285/chessbro/internal/chess"
	"github.com/park285/chessbro/internal/protocol"
)

const maxLineBytes = 1 << 20

// ServeLines feeds r to the interpreter line by line and writes every reply
// line to w, flushing after each one. It returns on EOF, on a terminate
// command, or when ctx is done between lines.
func ServeLines(ctx context.Context, r io.Reader, w io.Writer, in *protocol.Interpreter, advisor corechess.Advisor) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	out := bufio.NewWriter(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		for _, reply := range in.Handle(ctx, line, advisor) {
			if _, err := fmt.Fprintln(out, reply); err != nil {
				return fmt.Errorf("write reply: %w", err)
			}
			if err := out.Flush(); err != nil {
				return fmt.Errorf("flush reply: %w", err)
			}
		}
		if in.Done() {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// Package ucitest runs the test binary itself as a minimal UCI engine.
//
// A package's TestMain calls Main first; tests then call Enable and start
// the returned executable path as the engine binary.
package ucitest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
)

const (
	envFake     = "CHESSBRO_FAKE_UCI"
	envBestMove = "CHESSBRO_FAKE_BESTMOVE"
)

// Main turns the current process into the fake engine when it was started
// by Enable, and exits once the engine quits. Otherwise it returns.
func Main() {
	if os.Getenv(envFake) != "1" {
		return
	}
	bestmove := os.Getenv(envBestMove)
	if bestmove == "" {
		bestmove = "e2e4"
	}
	Run(os.Stdin, os.Stdout, bestmove)
	os.Exit(0)
}

// Enable makes child processes of this test run the fake engine answering
// every search with bestmove. It returns the path to start.
func Enable(t testing.TB, bestmove string) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	t.Setenv(envFake, "1")
	t.Setenv(envBestMove, bestmove)
	return exe
}

// Run answers uci, isready and go until quit or EOF.
func Run(r io.Reader, w io.Writer, bestmove string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "uci":
			fmt.Fprintln(w, "id name FakeFish")
			fmt.Fprintln(w, "option name Hash type spin default 16 min 1 max 1024")
			fmt.Fprintln(w, "uciok")
		case "isready":
			fmt.Fprintln(w, "readyok")
		case "go":
			fmt.Fprintln(w, "info depth 1 score cp 20 pv "+bestmove)
			fmt.Fprintln(w, "bestmove "+bestmove)
		case "quit":
			return
		}
	}
}

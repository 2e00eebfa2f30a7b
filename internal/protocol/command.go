package protocol

import (
	"fmt"
	"strings"
)

type CommandKind int

const (
	CmdUnrecognized CommandKind = iota
	CmdHandshake
	CmdReadinessCheck
	CmdNewGame
	CmdSetPosition
	CmdRequestMove
	CmdTerminate
)

func (k CommandKind) String() string {
	switch k {
	case CmdHandshake:
		return "handshake"
	case CmdReadinessCheck:
		return "readiness_check"
	case CmdNewGame:
		return "new_game"
	case CmdSetPosition:
		return "position"
	case CmdRequestMove:
		return "go"
	case CmdTerminate:
		return "quit"
	default:
		return "unrecognized"
	}
}

// Command is one parsed input line. Args holds every token after the keyword.
type Command struct {
	Kind CommandKind
	Args []string
}

// Vocabulary names the keywords and acknowledgement sentinels of a dialect.
type Vocabulary struct {
	Handshake      string
	HandshakeOK    string
	ReadinessCheck string
	ReadyOK        string
	NewGame        string
	Position       string
	Go             string
	Quit           string
}

const (
	DialectDefault = "default"
	DialectUCI     = "uci"
)

var dialects = map[string]Vocabulary{
	DialectDefault: {
		Handshake:      "handshake",
		HandshakeOK:    "handshakeok",
		ReadinessCheck: "readinesscheck",
		ReadyOK:        "readyok",
		NewGame:        "newgame",
		Position:       "position",
		Go:             "go",
		Quit:           "quit",
	},
	DialectUCI: {
		Handshake:      "uci",
		HandshakeOK:    "uciok",
		ReadinessCheck: "isready",
		ReadyOK:        "readyok",
		NewGame:        "ucinewgame",
		Position:       "position",
		Go:             "go",
		Quit:           "quit",
	},
}

// LookupDialect returns the vocabulary registered under name. An empty name
// selects the default dialect.
func LookupDialect(name string) (Vocabulary, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DialectDefault
	}
	v, ok := dialects[key]
	if !ok {
		return Vocabulary{}, fmt.Errorf("unknown protocol dialect: %s", name)
	}
	return v, nil
}

// Parse tokenizes line on whitespace. ok is false when the line holds no tokens.
func (v Vocabulary) Parse(line string) (cmd Command, ok bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, false
	}
	cmd = Command{Kind: v.kindOf(parts[0]), Args: parts[1:]}
	return cmd, true
}

func (v Vocabulary) kindOf(keyword string) CommandKind {
	switch keyword {
	case v.Handshake:
		return CmdHandshake
	case v.ReadinessCheck:
		return CmdReadinessCheck
	case v.NewGame:
		return CmdNewGame
	case v.Position:
		return CmdSetPosition
	case v.Go:
		return CmdRequestMove
	case v.Quit:
		return CmdTerminate
	default:
		return CmdUnrecognized
	}
}

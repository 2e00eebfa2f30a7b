package chess

import (
	"fmt"
	"strings"
)

// StrengthPreset configures an external engine: its UCI options and the
// search limits sent with every go command.
type StrengthPreset struct {
	Name           string
	SkillLevel     int
	Threads        int
	HashMB         int
	Elo            int
	MoveTimeMillis int
	NodeCap        int
	DepthCap       int
}

const defaultThreads = 2
const forlv8 = 6

var DefaultPresets = map[string]StrengthPreset{
	"level1": {Name: "level1", SkillLevel: 0, Threads: defaultThreads, HashMB: 16, Elo: 600, MoveTimeMillis: 20, DepthCap: 5},
	"level2": {Name: "level2", SkillLevel: 0, Threads: defaultThreads, HashMB: 16, Elo: 700, MoveTimeMillis: 60, DepthCap: 6},
	"level3": {Name: "level3", SkillLevel: 1, Threads: defaultThreads, HashMB: 24, Elo: 800, MoveTimeMillis: 80, DepthCap: 8},
	"level4": {Name: "level4", SkillLevel: 3, Threads: defaultThreads, HashMB: 32, Elo: 1000, MoveTimeMillis: 140, DepthCap: 10},
	"level5": {Name: "level5", SkillLevel: 7, Threads: defaultThreads, HashMB: 48, Elo: 1200, MoveTimeMillis: 200, DepthCap: 12},
	"level6": {Name: "level6", SkillLevel: 11, Threads: defaultThreads, HashMB: 64, Elo: 1400, MoveTimeMillis: 300, DepthCap: 16},
	"level7": {Name: "level7", SkillLevel: 16, Threads: defaultThreads, HashMB: 96, Elo: 1650, MoveTimeMillis: 500, DepthCap: 20},
	"level8": {Name: "level8", SkillLevel: 20, Threads: forlv8, HashMB: 128, Elo: 1900, MoveTimeMillis: 1000, DepthCap: 30},
}

// GetPreset resolves a preset by name or by one of its aliases.
func GetPreset(name string) (StrengthPreset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "beginner":
		key = "level1"
	case "intermediate":
		key = "level5"
	case "advanced":
		key = "level7"
	case "master":
		key = "level8"
	}
	p, ok := DefaultPresets[key]
	if !ok {
		return StrengthPreset{}, fmt.Errorf("unknown chess preset: %s", name)
	}
	return p, nil
}

// WithLimits overrides the search limits of p with any positive value given.
func (p StrengthPreset) WithLimits(depth, moveTimeMillis, nodes int) StrengthPreset {
	if depth > 0 {
		p.DepthCap = depth
	}
	if moveTimeMillis > 0 {
		p.MoveTimeMillis = moveTimeMillis
	}
	if nodes > 0 {
		p.NodeCap = nodes
	}
	return p
}

func ValidatePreset(p StrengthPreset) error {
	switch {
	case p.SkillLevel < 0 || p.SkillLevel > 20:
		return fmt.Errorf("skill level %d out of range 0-20", p.SkillLevel)
	case p.Threads <= 0:
		return fmt.Errorf("threads must be > 0: %d", p.Threads)
	case p.HashMB <= 0:
		return fmt.Errorf("hash size must be > 0: %d", p.HashMB)
	case p.Elo < 0:
		return fmt.Errorf("elo must be >= 0: %d", p.Elo)
	case p.MoveTimeMillis < 0:
		return fmt.Errorf("move time must be >= 0: %d", p.MoveTimeMillis)
	case p.NodeCap < 0:
		return fmt.Errorf("node cap must be >= 0: %d", p.NodeCap)
	case p.DepthCap < 0:
		return fmt.Errorf("depth cap must be >= 0: %d", p.DepthCap)
	}
	return nil
}

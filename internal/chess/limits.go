package chess

import (
	"fmt"

	"github.com/park285/chessbro/internal/chess/uci"
)

func optionsFromPreset(p StrengthPreset) uci.Options {
	return uci.Options{
		Threads:    p.Threads,
		SkillLevel: p.SkillLevel,
		HashMB:     p.HashMB,
		Elo:        p.Elo,
	}
}

func limitsFromPreset(p StrengthPreset) (uci.Limits, error) {
	if err := ValidatePreset(p); err != nil {
		return uci.Limits{}, err
	}
	l := uci.Limits{
		Depth:          p.DepthCap,
		MoveTimeMillis: p.MoveTimeMillis,
		NodeCap:        p.NodeCap,
	}
	if l.Depth == 0 && l.MoveTimeMillis == 0 && l.NodeCap == 0 {
		return uci.Limits{}, fmt.Errorf("preset %s does not define search limits", p.Name)
	}
	return l, nil
}

package engine

import (
	"fmt"
	"time"
)

// AnteType 前注模式
type AnteType string

const (
	// AnteTypeAll: every dealt player posts the ante.
	AnteTypeAll AnteType = "all"
	// AnteTypeBigBlind: the big blind posts one ante for the table.
	AnteTypeBigBlind AnteType = "bb"
)

type AnteSettings struct {
	Type   AnteType `json:"type"`
	Amount int64    `json:"amount"`
}

// Settings is the per-table configuration fixed at creation time.
// BlindTimer and TimeBank are carried for the surrounding clock; the
// engine itself never schedules anything.
type Settings struct {
	Variant       Variant       `json:"variant"`
	SmallBlind    int64         `json:"smallBlind"`
	BigBlind      int64         `json:"bigBlind"`
	StartingStack int64         `json:"startingStack"`
	MaxPlayers    int           `json:"maxPlayers"`
	Ante          *AnteSettings `json:"ante,omitempty"`
	BlindTimer    time.Duration `json:"blindTimer,omitempty"`
	TimeBank      time.Duration `json:"timeBank,omitempty"`

	// RNG seed (0 => time-based)
	Seed int64 `json:"-"`
}

func (s Settings) validate() error {
	if !s.Variant.valid() {
		return fmt.Errorf("unknown variant %q", s.Variant)
	}
	if s.MaxPlayers < 2 {
		return fmt.Errorf("MaxPlayers must be >= 2")
	}
	if s.MaxPlayers > 10 {
		return fmt.Errorf("MaxPlayers must be <= 10")
	}
	if s.SmallBlind <= 0 || s.BigBlind <= 0 || s.SmallBlind > s.BigBlind {
		return fmt.Errorf("invalid blinds: sb=%d bb=%d", s.SmallBlind, s.BigBlind)
	}
	if s.StartingStack < s.BigBlind {
		return fmt.Errorf("StartingStack %d below big blind %d", s.StartingStack, s.BigBlind)
	}
	if s.Ante != nil {
		if s.Ante.Amount <= 0 {
			return fmt.Errorf("ante amount must be > 0")
		}
		if s.Ante.Type != AnteTypeAll && s.Ante.Type != AnteTypeBigBlind {
			return fmt.Errorf("unknown ante type %q", s.Ante.Type)
		}
	}
	if s.BlindTimer < 0 || s.TimeBank < 0 {
		return fmt.Errorf("timers must be >= 0")
	}
	// 10 players * 4 hole cards + 5 board still fits one deck, so no
	// extra deck-size check is needed beyond MaxPlayers <= 10.
	return nil
}

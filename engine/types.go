package engine

// Phase 游戏阶段
type Phase byte

const (
	PhaseWaiting  Phase = 0
	PhasePreflop  Phase = 1
	PhaseFlop     Phase = 2
	PhaseTurn     Phase = 3
	PhaseRiver    Phase = 4
	PhaseShowdown Phase = 5
	PhaseFinished Phase = 6
)

var PhaseDictionary = map[Phase]string{
	PhaseWaiting:  "waiting",
	PhasePreflop:  "preflop",
	PhaseFlop:     "flop",
	PhaseTurn:     "turn",
	PhaseRiver:    "river",
	PhaseShowdown: "showdown",
	PhaseFinished: "finished",
}

func (p Phase) String() string { return PhaseDictionary[p] }

// isStreet reports whether betting actions are legal in this phase.
func (p Phase) isStreet() bool {
	return p >= PhasePreflop && p <= PhaseRiver
}

// ActionType 动作类型：0-NONE 1-CHECK 2-BET 3-CALL 4-RAISE 5-FOLD 6-ALLIN
type ActionType byte

const (
	ActionNone  ActionType = 0
	ActionCheck ActionType = 1
	ActionBet   ActionType = 2
	ActionCall  ActionType = 3
	ActionRaise ActionType = 4
	ActionFold  ActionType = 5
	ActionAllIn ActionType = 6
)

var ActionTypeDictionary = map[ActionType]string{
	ActionNone:  "NONE",
	ActionCheck: "CHECK",
	ActionBet:   "BET",
	ActionCall:  "CALL",
	ActionRaise: "RAISE",
	ActionFold:  "FOLD",
	ActionAllIn: "ALLIN",
}

func (a ActionType) String() string { return ActionTypeDictionary[a] }

// Variant selects hole-card count and evaluation rules. A single engine
// parameterized by this tag replaces per-variant subtypes.
type Variant string

const (
	VariantTexasHoldem Variant = "texas-holdem"
	VariantOmaha       Variant = "omaha"
	VariantOmahaHiLo   Variant = "omaha-hi-lo"
)

// HoleCardCount 每个玩家的底牌数
func (v Variant) HoleCardCount() int {
	switch v {
	case VariantOmaha, VariantOmahaHiLo:
		return 4
	default:
		return 2
	}
}

// SplitsLow reports whether the variant awards half of each pot to a
// qualifying low hand.
func (v Variant) SplitsLow() bool { return v == VariantOmahaHiLo }

func (v Variant) valid() bool {
	switch v {
	case VariantTexasHoldem, VariantOmaha, VariantOmahaHiLo:
		return true
	}
	return false
}

// 手牌常量定义
type HandCategory byte

const (
	HandHighCard      HandCategory = iota + 1 // 高牌
	HandOnePair                               // 一对
	HandTwoPair                               // 两对
	HandThreeOfKind                           // 三条
	HandStraight                              // 顺子
	HandFlush                                 // 同花
	HandFullHouse                             // 葫芦
	HandFourOfKind                            // 四条
	HandStraightFlush                         // 同花顺
	HandRoyalFlush                            // 皇家同花顺
)

var HandCategoryDictionary = map[HandCategory]string{
	HandHighCard:      "High Card",
	HandOnePair:       "One Pair",
	HandTwoPair:       "Two Pair",
	HandThreeOfKind:   "Three of a Kind",
	HandStraight:      "Straight",
	HandFlush:         "Flush",
	HandFullHouse:     "Full House",
	HandFourOfKind:    "Four of a Kind",
	HandStraightFlush: "Straight Flush",
	HandRoyalFlush:    "Royal Flush",
}

func (h HandCategory) String() string { return HandCategoryDictionary[h] }

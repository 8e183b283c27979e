package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"cardroom/engine"
)

// tablecli runs a hot-seat game against the engine: every player takes
// turns at the same terminal.
func main() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Card", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("room", pterm.FgDarkGray.ToStyle()),
	).Render()

	variant := pickVariant()
	names := pickPlayers()

	settings := engine.Settings{
		Variant:       variant,
		SmallBlind:    50,
		BigBlind:      100,
		StartingStack: 10000,
		MaxPlayers:    len(names),
	}
	tbl, err := engine.NewTable(settings, "local")
	if err != nil {
		pterm.Error.Printfln("Bad table settings: %v", err)
		return
	}
	for i, name := range names {
		if err := tbl.AddPlayer("seat-"+strconv.Itoa(i), name); err != nil {
			pterm.Error.Printfln("Seating %s failed: %v", name, err)
			return
		}
	}

	hostID := "seat-0"
	if err := tbl.StartGame(hostID); err != nil {
		pterm.Error.Printfln("Could not start: %v", err)
		return
	}

	for {
		playHand(tbl)

		again, _ := pterm.DefaultInteractiveConfirm.
			WithDefaultText("Play another hand?").
			WithDefaultValue(true).
			Show()
		if !again {
			return
		}
		if err := tbl.NextHand(hostID); err != nil {
			pterm.Error.Printfln("Cannot deal the next hand: %v", err)
			return
		}
	}
}

func pickVariant() engine.Variant {
	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("Select the game").
		WithOptions([]string{
			string(engine.VariantTexasHoldem),
			string(engine.VariantOmaha),
			string(engine.VariantOmahaHiLo),
		}).
		Show()
	return engine.Variant(choice)
}

func pickPlayers() []string {
	countStr, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("How many players? (2-10)").
		WithDefaultValue("2").
		Show()
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 2 || count > 10 {
		count = 2
	}

	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		name, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(fmt.Sprintf("Name of player %d", i+1)).
			WithDefaultValue(fmt.Sprintf("Player %d", i+1)).
			Show()
		names = append(names, name)
	}
	return names
}

func playHand(tbl *engine.Table) {
	for {
		s := tbl.State()
		if s.Phase == engine.PhaseFinished {
			break
		}
		if s.ActionSeat < 0 {
			break
		}

		p := s.Players[s.ActionSeat]
		view := tbl.StateForPlayer(p.ID)
		printState(view)

		action, amount := promptAction(view, p)
		if err := tbl.ProcessAction(p.ID, action, amount); err != nil {
			pterm.Error.Printfln("Invalid action: %v", err)
		}
	}

	final := tbl.State()
	pterm.Println(getResultPanel(final))
}

func promptAction(view engine.State, p engine.PlayerState) (engine.ActionType, int64) {
	owed := view.CurrentBet - p.StreetBet

	options := []string{"fold"}
	if owed <= 0 {
		options = append(options, "check")
	} else {
		options = append(options, fmt.Sprintf("call (%d)", owed))
	}
	if view.CurrentBet == 0 {
		options = append(options, "bet")
	} else {
		options = append(options, "raise")
	}
	options = append(options, "all-in")

	currentName := pterm.LightCyan(p.Name)
	selected, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText(pterm.Sprintf("%s, select your action", currentName)).
		WithOptions(options).
		Show()

	switch {
	case selected == "check":
		return engine.ActionCheck, 0
	case selected == "bet":
		return engine.ActionBet, promptAmount("Enter the amount to bet", view.Settings.BigBlind)
	case selected == "raise":
		return engine.ActionRaise, promptAmount("Enter the total to raise to", view.CurrentBet+view.MinRaise)
	case selected == "all-in":
		return engine.ActionAllIn, 0
	case selected == "fold":
		return engine.ActionFold, 0
	default:
		return engine.ActionCall, 0
	}
}

func promptAmount(prompt string, suggested int64) int64 {
	raw, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText(prompt).
		WithDefaultValue(strconv.FormatInt(suggested, 10)).
		Show()
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return suggested
	}
	return amount
}

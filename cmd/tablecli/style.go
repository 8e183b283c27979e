package main

import (
	"strconv"

	"github.com/pterm/pterm"

	"cardroom/engine"
)

func printState(view engine.State) {
	var panels []pterm.Panel
	var mainPlayer pterm.Panel
	for _, p := range view.Players {
		if p.Seat == view.ActionSeat {
			mainPlayer = pterm.Panel{Data: printPlayerInfo(p, view, true)}
		} else {
			panels = append(panels, pterm.Panel{Data: printPlayerInfo(p, view, false)})
		}
	}
	board := pterm.Panel{Data: printBoardInfo(view)}

	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		panels,
		{board},
		{mainPlayer},
	}).Render()
}

func printPlayerInfo(p engine.PlayerState, view engine.State, main bool) string {
	hpadding := 4
	if main {
		hpadding = 10
	}
	pbox := pterm.DefaultBox.WithLeftPadding(hpadding).WithRightPadding(hpadding).WithTopPadding(1).WithBottomPadding(1)

	var status string
	switch p.Status {
	case engine.StatusFolded:
		status = pterm.LightRed("Folded")
	case engine.StatusAllIn:
		status = pterm.LightYellow("All-In")
	case engine.StatusSittingOut:
		status = pterm.Gray("Sitting Out")
	default:
		status = pterm.LightGreen("Active")
	}

	hand := pterm.Gray("? - ?")
	if len(p.Cards) > 0 {
		text := ""
		for i, c := range p.Cards {
			if i > 0 {
				text += " - "
			}
			text += c.String()
		}
		hand = pterm.BgGreen.Sprint(text)
	}

	title := p.Name
	if p.Seat == view.Button {
		title += " (BTN)"
	}
	return pbox.WithTitle(title).WithTitleTopLeft().Sprintf(
		"%s\nCurrent Bet: %d\nStack: %d\n%s\n", status, p.StreetBet, p.Stack, hand)
}

func printBoardInfo(view engine.State) string {
	board := ""
	for _, c := range view.Community {
		board += c.String() + " - "
	}
	if board == "" {
		board = "(no cards yet) "
	}
	board += " Pot: " + strconv.FormatInt(view.Pot, 10)
	board += " | To call: " + strconv.FormatInt(view.CurrentBet, 10)

	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	return pbox.WithTitle(pterm.LightYellow("|" + view.Phase.String() + "|")).WithTitleTopCenter().Sprintf(board)
}

func getResultPanel(view engine.State) string {
	r := view.LastHandResult
	if r == nil {
		return ""
	}
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)

	names := make(map[string]string, len(view.Players))
	for _, p := range view.Players {
		names[p.ID] = p.Name
	}

	infoString := ""
	for _, w := range r.Winners {
		if r.Reason == engine.ReasonFold {
			infoString += pterm.Sprintfln("%s won %d taking down the pot", pterm.LightCyan(names[w]), r.Pot)
		} else {
			infoString += pterm.Sprintfln("%s won with %s", pterm.LightCyan(names[w]), r.HandDesc)
		}
	}
	if r.Reason == engine.ReasonShowdown {
		for _, pa := range r.Pots {
			label := "pot"
			if pa.Low {
				label = "low half"
			}
			for i, w := range pa.Winners {
				infoString += pterm.Sprintfln("  %s takes %d from the %s", names[w], pa.Shares[i], label)
			}
		}
	}
	return pbox.WithTitle(pterm.LightGreen("|SHOWDOWN|")).WithTitleTopCenter().Sprintf(infoString)
}

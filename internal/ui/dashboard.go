package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/daszybak/polyterm/internal/state"
)

// box identifies one of the four dashboard panes. The movement methods
// mirror the visual 2x2 layout.
type box int

const (
	boxTopMarkets box = iota
	boxGeneralInfo
	boxTopTraders
	boxNewMarkets
)

func (b box) left() box {
	switch b {
	case boxTopMarkets:
		return boxNewMarkets
	case boxGeneralInfo:
		return boxTopMarkets
	case boxTopTraders:
		return boxGeneralInfo
	default:
		return boxTopTraders
	}
}

func (b box) right() box {
	switch b {
	case boxTopMarkets:
		return boxGeneralInfo
	case boxGeneralInfo:
		return boxTopTraders
	case boxTopTraders:
		return boxNewMarkets
	default:
		return boxTopMarkets
	}
}

type dashboardPage struct {
	root *tview.Flex

	markets    *tview.TextView
	info       *tview.TextView
	traders    *tview.TextView
	newMarkets *tview.TextView

	selected       box
	marketIndex    int
	traderIndex    int
	newMarketIndex int

	// data is the last rendered snapshot, kept so key handling operates
	// on exactly what is on screen.
	data state.Snapshot
}

func newDashboardPage() *dashboardPage {
	d := &dashboardPage{
		markets:    tview.NewTextView(),
		info:       tview.NewTextView(),
		traders:    tview.NewTextView(),
		newMarkets: tview.NewTextView(),
		selected:   boxTopMarkets,
	}

	for view, title := range map[*tview.TextView]string{
		d.markets:    "Top Markets [↑/↓ select, Enter open, Tab switch]",
		d.info:       "General Info",
		d.traders:    "Top Traders",
		d.newMarkets: "New Markets",
	} {
		view.SetDynamicColors(true)
		view.SetBorder(true)
		view.SetTitle(title)
	}

	top := tview.NewFlex().
		AddItem(d.markets, 0, 1, false).
		AddItem(d.info, 0, 1, false)
	bottom := tview.NewFlex().
		AddItem(d.traders, 0, 1, false).
		AddItem(d.newMarkets, 0, 1, false)

	d.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 1, false).
		AddItem(bottom, 0, 1, false)

	return d
}

func (d *dashboardPage) render(snap state.Snapshot) {
	d.data = snap
	d.clampSelection()

	var markets strings.Builder
	for i, m := range snap.TopMarkets {
		line := fmt.Sprintf("%d. %s - %s", i+1, tview.Escape(m.Name), FormatVolume(m.Volume))
		writeLine(&markets, line, d.selected == boxTopMarkets && i == d.marketIndex)
	}
	d.markets.SetText(markets.String())

	d.info.SetText(fmt.Sprintf(
		"Running for: %d seconds\nTotal trades tracked: %d\nTotal markets discovered: %d\nTotal volume: $%s",
		snap.SecondsRunning,
		snap.TradesProcessed,
		snap.MarketCount,
		FormatVolume(snap.TotalVolume),
	))

	var traders strings.Builder
	for i, tr := range snap.TopTraders {
		line := fmt.Sprintf("%d. %s - %s", i+1, FormatAddress(tr.Address), FormatVolume(tr.Volume))
		writeLine(&traders, line, d.selected == boxTopTraders && i == d.traderIndex)
	}
	d.traders.SetText(traders.String())

	var newMarkets strings.Builder
	for i, m := range snap.NewMarkets {
		line := fmt.Sprintf("%s - %s", tview.Escape(m.Question), tview.Escape(m.Volume))
		writeLine(&newMarkets, line, d.selected == boxNewMarkets && i == d.newMarketIndex)
	}
	d.newMarkets.SetText(newMarkets.String())
	d.newMarkets.SetTitle(fmt.Sprintf("New Markets - Last updated %s ago", snap.NewMarketsAge))

	for view, b := range map[*tview.TextView]box{
		d.markets:    boxTopMarkets,
		d.info:       boxGeneralInfo,
		d.traders:    boxTopTraders,
		d.newMarkets: boxNewMarkets,
	} {
		if d.selected == b {
			view.SetBorderColor(tcell.ColorYellow)
		} else {
			view.SetBorderColor(tcell.ColorDefault)
		}
	}
}

func writeLine(b *strings.Builder, line string, highlighted bool) {
	if highlighted {
		b.WriteString("[black:blue]" + line + "[-:-]\n")
		return
	}
	b.WriteString(line + "\n")
}

func (d *dashboardPage) moveSelection(delta int) {
	switch d.selected {
	case boxTopMarkets:
		d.marketIndex += delta
	case boxTopTraders:
		d.traderIndex += delta
	case boxNewMarkets:
		d.newMarketIndex += delta
	}
	d.clampSelection()
}

func (d *dashboardPage) clampSelection() {
	d.marketIndex = clamp(d.marketIndex, len(d.data.TopMarkets))
	d.traderIndex = clamp(d.traderIndex, len(d.data.TopTraders))
	d.newMarketIndex = clamp(d.newMarketIndex, len(d.data.NewMarkets))
}

func clamp(i, length int) int {
	if length == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= length {
		return length - 1
	}
	return i
}

// detailItem is what Enter on a dashboard selection opens.
type detailItem struct {
	title       string
	content     string
	conditionID string // non-empty only for markets with a known condition ID
}

func (d *dashboardPage) selectedItem() (detailItem, bool) {
	switch d.selected {
	case boxTopMarkets:
		if d.marketIndex >= len(d.data.TopMarkets) {
			return detailItem{}, false
		}
		m := d.data.TopMarkets[d.marketIndex]
		return detailItem{
			title:       "Market: " + m.Name,
			content:     fmt.Sprintf("Name: %s\nVolume: %s", m.Name, FormatVolume(m.Volume)),
			conditionID: m.ConditionID,
		}, true
	case boxTopTraders:
		if d.traderIndex >= len(d.data.TopTraders) {
			return detailItem{}, false
		}
		tr := d.data.TopTraders[d.traderIndex]
		return detailItem{
			title:   "Trader: " + FormatAddress(tr.Address),
			content: fmt.Sprintf("Address: %s\nVolume: %s", tr.Address, FormatVolume(tr.Volume)),
		}, true
	case boxNewMarkets:
		if d.newMarketIndex >= len(d.data.NewMarkets) {
			return detailItem{}, false
		}
		m := d.data.NewMarkets[d.newMarketIndex]
		return detailItem{
			title:   "New Market: " + m.Question,
			content: fmt.Sprintf("Name: %s\nVolume: %s", m.Question, m.Volume),
		}, true
	}
	return detailItem{}, false
}

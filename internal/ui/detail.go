package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type detailPage struct {
	root    *tview.Flex
	title   *tview.TextView
	content *tview.TextView
}

func newDetailPage() *detailPage {
	d := &detailPage{
		title:   tview.NewTextView(),
		content: tview.NewTextView(),
	}

	d.title.SetBorder(true)
	d.title.SetBorderColor(tcell.ColorAqua)
	d.content.SetBorder(true)
	d.content.SetTitle("Details")
	d.content.SetScrollable(true)

	help := tview.NewTextView().SetText("Esc/Backspace Go Back   ↑/↓ Scroll   q Quit")
	help.SetBorder(true)
	help.SetBorderColor(tcell.ColorGray)

	d.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.title, 3, 0, false).
		AddItem(d.content, 0, 1, true).
		AddItem(help, 3, 0, false)

	return d
}

func (d *detailPage) show(title, content string) {
	d.title.SetText(tview.Escape(title))
	d.content.SetText(tview.Escape(content))
	d.content.ScrollToBeginning()
}

// openDetail switches to the detail page. When the item carries a condition
// ID the full market record is fetched in the background and merged in once
// it arrives.
func (a *App) openDetail(item detailItem) {
	a.detail.show(item.title, item.content)
	a.switchTo(pageDetail)
	a.app.SetFocus(a.detail.content)

	if item.conditionID == "" || a.clob == nil {
		return
	}

	go func() {
		market, err := a.clob.GetMarketByConditionID(item.conditionID)
		if err != nil {
			a.log.Warn("couldn't fetch market detail", "condition_id", item.conditionID, "error", err)
			return
		}

		var b strings.Builder
		b.WriteString(item.content + "\n")
		if market.EndDateISO != "" {
			fmt.Fprintf(&b, "Ends: %s\n", market.EndDateISO)
		}
		for _, token := range market.Tokens {
			fmt.Fprintf(&b, "%s: %.2f\n", token.Outcome, token.Price.Float64())
		}
		if market.Description != "" {
			b.WriteString("\n" + market.Description + "\n")
		}

		a.app.QueueUpdateDraw(func() {
			// The user may have navigated away while the request ran.
			if a.current != pageDetail {
				return
			}
			d := a.detail
			d.content.SetText(tview.Escape(b.String()))
		})
	}()
}

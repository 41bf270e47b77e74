package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const walletFetchTimeout = 15 * time.Second

type walletPage struct {
	root *tview.Flex
	text *tview.TextView
}

func newWalletPage() *walletPage {
	w := &walletPage{
		text: tview.NewTextView(),
	}

	w.text.SetBorder(true)
	w.text.SetTitle("Wallet")

	help := tview.NewTextView().SetText("Esc/Backspace Go Back   q Quit")
	help.SetBorder(true)
	help.SetBorderColor(tcell.ColorGray)

	w.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(w.text, 0, 1, true).
		AddItem(help, 3, 0, false)

	return w
}

// openWallet switches to the wallet page and fetches the on-chain summary in
// the background.
func (a *App) openWallet() {
	a.switchTo(pageWallet)

	if a.wallet == nil || a.walletKey == nil {
		a.walletView.text.SetText("No wallet configured.\n\nSet wallet.private_key in the config file or the POLYMARKET_PRIVATE_KEY environment variable.")
		return
	}

	a.walletView.text.SetText("Loading wallet info...")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), walletFetchTimeout)
		defer cancel()

		info, err := a.wallet.Info(ctx, a.walletKey)

		a.app.QueueUpdateDraw(func() {
			if a.current != pageWallet {
				return
			}
			if err != nil {
				a.log.Warn("couldn't fetch wallet info", "error", err)
				a.walletView.text.SetText("Couldn't fetch wallet info; see the log file.")
				return
			}

			approval := "missing - run the approval flow before trading"
			if info.Approved {
				approval = "all exchange contracts approved"
			}
			a.walletView.text.SetText(fmt.Sprintf(
				"Address: %s\nUSDC.e balance: %.2f\nPOL balance: %.4f\nApprovals: %s",
				info.Address.Hex(),
				info.USDCe,
				info.POL,
				approval,
			))
		})
	}()
}

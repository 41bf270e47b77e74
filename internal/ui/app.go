// Package ui renders the terminal dashboard. It reads the shared state only
// through the snapshot reader, so a redraw never waits on the ingestion
// writer.
package ui

import (
	"context"
	"crypto/ecdsa"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/daszybak/polyterm/internal/polymarket/clob"
	"github.com/daszybak/polyterm/internal/state"
	"github.com/daszybak/polyterm/internal/wallet"
)

type page string

const (
	pageDashboard page = "dashboard"
	pageDetail    page = "detail"
	pageWallet    page = "wallet"
)

type Config struct {
	// Tick is the redraw interval.
	Tick time.Duration
}

type App struct {
	config Config
	log    *slog.Logger

	reader    *state.SnapshotReader
	clob      *clob.Client
	wallet    *wallet.Client    // nil when no wallet is configured
	walletKey *ecdsa.PrivateKey // nil when no wallet is configured

	app     *tview.Application
	pages   *tview.Pages
	current page

	dashboard  *dashboardPage
	detail     *detailPage
	walletView *walletPage
}

// New builds the application. walletClient and walletKey may be nil; the
// wallet page then just explains how to configure one.
func New(cfg Config, reader *state.SnapshotReader, clobClient *clob.Client, walletClient *wallet.Client, walletKey *ecdsa.PrivateKey, log *slog.Logger) *App {
	if cfg.Tick <= 0 {
		cfg.Tick = 100 * time.Millisecond
	}

	a := &App{
		config:    cfg,
		log:       log.With("component", "ui"),
		reader:    reader,
		clob:      clobClient,
		wallet:    walletClient,
		walletKey: walletKey,
		app:       tview.NewApplication(),
		current:   pageDashboard,
	}

	a.dashboard = newDashboardPage()
	a.detail = newDetailPage()
	a.walletView = newWalletPage()

	a.pages = tview.NewPages().
		AddPage(string(pageDashboard), a.dashboard.root, true, true).
		AddPage(string(pageDetail), a.detail.root, true, false).
		AddPage(string(pageWallet), a.walletView.root, true, false)

	a.app.SetRoot(a.pages, true)
	a.app.SetInputCapture(a.handleKey)

	return a
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.tickLoop(ctx)
	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()
	return a.app.Run()
}

// tickLoop redraws the dashboard at a fixed cadence with whatever snapshot
// the reader can hand out without blocking.
func (a *App) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(a.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, _ := a.reader.Read()
			a.app.QueueUpdateDraw(func() {
				a.dashboard.render(snap)
			})
		}
	}
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch a.current {
	case pageDashboard:
		return a.handleDashboardKey(event)
	case pageDetail, pageWallet:
		switch event.Key() {
		case tcell.KeyEscape, tcell.KeyBackspace, tcell.KeyBackspace2:
			a.switchTo(pageDashboard)
			return nil
		}
		if event.Rune() == 'q' {
			a.app.Stop()
			return nil
		}
		// Leave the rest (arrow scrolling) to the focused view.
		return event
	}
	return event
}

func (a *App) handleDashboardKey(event *tcell.EventKey) *tcell.EventKey {
	d := a.dashboard

	switch event.Key() {
	case tcell.KeyEscape:
		a.app.Stop()
		return nil
	case tcell.KeyTAB:
		d.selected = d.selected.right()
		return nil
	case tcell.KeyLeft:
		d.selected = d.selected.left()
		return nil
	case tcell.KeyRight:
		d.selected = d.selected.right()
		return nil
	case tcell.KeyUp:
		d.moveSelection(-1)
		return nil
	case tcell.KeyDown:
		d.moveSelection(1)
		return nil
	case tcell.KeyEnter:
		if item, ok := d.selectedItem(); ok {
			a.openDetail(item)
		}
		return nil
	}

	switch event.Rune() {
	case 'q':
		a.app.Stop()
		return nil
	case 'w':
		a.openWallet()
		return nil
	}

	return event
}

func (a *App) switchTo(p page) {
	a.current = p
	a.pages.SwitchToPage(string(p))
}

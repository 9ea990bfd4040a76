// Package daemon runs the background side of the stash: it owns the save
// pipeline, keeps the quick-save menu in sync with the record, and turns
// menu clicks and keyboard commands into saves.
package daemon

import (
	"context"
	"errors"

	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/menu"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/pipeline"
	"github.com/visualstash/stash/internal/storage"
)

// CommandSaveToLast saves the active tab into the most recently used
// category without opening any surface.
const CommandSaveToLast = "save-to-last"

// fallbackLinkTitle seeds a link save that carries no usable text; the
// pipeline treats it as generic and backfills from the page itself.
const fallbackLinkTitle = "Saved Link"

var ErrUnknownCommand = errors.New("unknown command")

// Tab is the page a command acts on.
type Tab struct {
	URL   string
	Title string
}

// TabSource reports the currently focused page. The HTTP surface backs
// this with whatever the caller posted; tests back it with a stub.
type TabSource interface {
	ActiveTab(ctx context.Context) (Tab, error)
}

// ClickEvent is one activation of a quick-save menu item. PageURL and
// PageTitle describe the page the menu was opened on; LinkURL and
// SelectionText are set when the menu was opened on a link.
type ClickEvent struct {
	MenuID        string
	PageURL       string
	PageTitle     string
	LinkURL       string
	SelectionText string
}

// Daemon wires the store, the save pipeline, and the menu synchronizer
// together and reacts to record changes from any writer.
type Daemon struct {
	store     storage.Store
	pipe      *pipeline.Pipeline
	menus     *menu.Synchronizer
	tabs      TabSource
	log       logger.Logger
	cancelSub func()
}

// Params configures a Daemon.
type Params struct {
	Store        storage.Store
	Pipeline     *pipeline.Pipeline
	Synchronizer *menu.Synchronizer
	Tabs         TabSource
	Logger       logger.Logger
}

func New(p Params) *Daemon {
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &Daemon{
		store: p.Store,
		pipe:  p.Pipeline,
		menus: p.Synchronizer,
		tabs:  p.Tabs,
		log:   p.Logger,
	}
}

// Start rebuilds the menu from the current record and keeps it in sync
// with every subsequent write, local or external.
func (d *Daemon) Start() error {
	if err := d.menus.Rebuild(); err != nil {
		return err
	}
	d.cancelSub = d.store.Subscribe(func(rec *model.StorageRecord) {
		if err := d.menus.RebuildFrom(rec); err != nil {
			d.log.Error("menu rebuild failed", logger.Error(err))
		}
	})
	return nil
}

// Stop cancels the store subscription.
func (d *Daemon) Stop() {
	if d.cancelSub != nil {
		d.cancelSub()
		d.cancelSub = nil
	}
}

// HandleMenuClick routes a quick-save activation into the pipeline.
// Clicks on anything but a save item are ignored. A click on a link
// saves the link target, seeding the title from the selected text, then
// the link's hostname, then the generic fallback.
func (d *Daemon) HandleMenuClick(ctx context.Context, ev ClickEvent) {
	category, ok := menu.CategoryFromID(ev.MenuID)
	if !ok {
		return
	}

	url := ev.PageURL
	title := ev.PageTitle
	if ev.LinkURL != "" {
		url = ev.LinkURL
		title = ev.SelectionText
		if title == "" {
			if host := model.Hostname(ev.LinkURL); host != "unknown" {
				title = host
			} else {
				title = fallbackLinkTitle
			}
		}
	}

	d.log.Info("menu save",
		logger.String("category", category),
		logger.String("url", url))
	d.pipe.Save(ctx, url, title, category)
}

// HandleCommand executes a named keyboard command. save-to-last reuses
// the last saved category, falling back to the inbox when that category
// no longer exists.
func (d *Daemon) HandleCommand(ctx context.Context, name string) error {
	switch name {
	case CommandSaveToLast:
		rec, err := d.store.Read()
		if err != nil {
			return err
		}
		tab, err := d.tabs.ActiveTab(ctx)
		if err != nil {
			return err
		}
		category := rec.ValidCategory(rec.LastSavedCategory)
		d.log.Info("command save",
			logger.String("category", category),
			logger.String("url", tab.URL))
		d.pipe.Save(ctx, tab.URL, tab.Title, category)
		return nil
	default:
		return ErrUnknownCommand
	}
}

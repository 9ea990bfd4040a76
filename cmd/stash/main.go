package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/visualstash/stash/internal/config"
	"github.com/visualstash/stash/internal/culler"
	"github.com/visualstash/stash/internal/daemon"
	"github.com/visualstash/stash/internal/exporter"
	"github.com/visualstash/stash/internal/httpserver"
	"github.com/visualstash/stash/internal/importer"
	"github.com/visualstash/stash/internal/logger"
	"github.com/visualstash/stash/internal/menu"
	"github.com/visualstash/stash/internal/model"
	"github.com/visualstash/stash/internal/panel"
	"github.com/visualstash/stash/internal/picker"
	"github.com/visualstash/stash/internal/pipeline"
	"github.com/visualstash/stash/internal/search"
	"github.com/visualstash/stash/internal/storage"
	"github.com/visualstash/stash/internal/tui"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "daemon":
			runDaemon()
			return
		case "save":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: stash save <url> [category]\n")
				os.Exit(1)
			}
			category := ""
			if len(os.Args) >= 4 {
				category = os.Args[3]
			}
			runSave(os.Args[2], category)
			return
		case "check":
			prune := len(os.Args) >= 3 && os.Args[2] == "--prune"
			runCheck(prune)
			return
		case "import":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: stash import <file.html>\n")
				os.Exit(1)
			}
			runImport(os.Args[2])
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	// No args - run full TUI
	runTUI()
}

func printHelp() {
	help := `stash - bookmark stash with a secret shelf

Usage:
  stash                 Open interactive TUI
  stash <query>         Quick search → select → open
  stash save <url> [category]
                        Save a URL through the full pipeline
  stash daemon          Run the save daemon with its HTTP API
  stash check [--prune] Probe stored URLs, optionally drop dead ones
  stash import <file>   Import bookmarks from Netscape HTML
  stash export [path]   Export bookmarks to Netscape HTML
  stash help            Show this help

TUI Keybindings:
  Navigation:
    j/k         Move down/up
    gg/G        Jump to top/bottom
    tab/S-tab   Next/previous category

  Actions:
    /           Search (f cycles all/title/url scope)
    space       Mark bookmark
    y           Copy URL to clipboard

  Editing:
    e           Edit bookmark
    d           Delete marked (or current)
    m           Move marked to category
    A/R/D       Add/rename/delete category

  Secret shelf:
    L           Lock
    P           Change password

  Other:
    ?           Show help overlay
    q           Quit

Configuration:
  ~/.config/stash/config.yaml (STASH_* env vars override)
`
	fmt.Print(help)
}

// bootstrap loads config, builds the logger and opens the configured
// store backend.
func bootstrap() (*config.Config, logger.Logger, storage.Store) {
	path, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving config path: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	store, err := storage.Open(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s store: %v\n", cfg.Backend, err)
		os.Exit(1)
	}
	return cfg, log, store
}

// runTUI runs the full interactive TUI.
func runTUI() {
	cfg, log, store := bootstrap()
	defer store.Close()

	// The program is constructed after the controller, so external change
	// notifications go through this indirection.
	var program *tea.Program

	controller, err := panel.New(panel.Params{
		Store:     store,
		Logger:    log,
		LockDelay: cfg.LockDelay,
		OnAutoLock: func() {
			if program != nil {
				program.Send(tui.RefreshMsg{})
			}
		},
		OnChange: func() {
			if program != nil {
				program.Send(tui.RefreshMsg{})
			}
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}
	defer controller.Close()

	app := tui.NewApp(tui.AppParams{Controller: controller, Prefs: prefsStore(store)})
	program = tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

// prefsStore returns the store's preference surface when the backend has
// one.
func prefsStore(store storage.Store) storage.PrefsStore {
	if ps, ok := store.(storage.PrefsStore); ok {
		return ps
	}
	return nil
}

// runDaemon runs the save daemon: menu mirror, pipeline and HTTP API.
func runDaemon() {
	cfg, log, store := bootstrap()
	defer store.Close()

	badge := pipeline.NewBadge(cfg.StatusClearDelay, nil)
	pipe := pipeline.New(pipeline.Params{
		Store:  store,
		Logger: log,
		Notify: badge.Set,
	})
	menus := menu.NewSynchronizer(menu.SynchronizerParams{
		Store:  store,
		Menu:   menu.NewLogMenu(log),
		Logger: log,
	})
	d := daemon.New(daemon.Params{
		Store:        store,
		Pipeline:     pipe,
		Synchronizer: menus,
		Tabs:         httpserver.RequestTabs{},
		Logger:       log,
	})
	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting daemon: %v\n", err)
		os.Exit(1)
	}
	defer d.Stop()

	srv := httpserver.New(cfg, httpserver.Deps{
		Store:     store,
		Daemon:    d,
		Badge:     badge,
		Logger:    log,
		Backend:   cfg.Backend,
		StartTime: time.Now(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	log.Info("daemon listening", logger.String("addr", cfg.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		log.Info("shutting down", logger.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
			os.Exit(1)
		}
	}
}

// runSave pushes one URL through the save pipeline and prints the
// resulting status.
func runSave(rawURL, category string) {
	cfg, log, store := bootstrap()
	defer store.Close()

	done := make(chan pipeline.Status, 1)
	pipe := pipeline.New(pipeline.Params{
		Store:  store,
		Logger: log,
		Notify: func(s pipeline.Status) {
			select {
			case done <- s:
			default:
			}
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+5*time.Second)
	defer cancel()
	pipe.Save(ctx, rawURL, "", category)

	select {
	case status := <-done:
		fmt.Println(status.String())
		if status == pipeline.StatusError {
			os.Exit(1)
		}
	default:
		fmt.Println("no status reported")
	}
}

// runCheck probes every stored URL and reports dead links.
func runCheck(prune bool) {
	cfg, log, store := bootstrap()
	defer store.Close()

	rec, err := store.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}
	if len(rec.Bookmarks) == 0 {
		fmt.Println("Nothing to check.")
		return
	}

	checker := culler.New(culler.Params{
		Concurrency: 10,
		Timeout:     cfg.FetchTimeout,
		Logger:      log,
		OnProgress: func(completed, total int) {
			fmt.Printf("\rChecking %d/%d...", completed, total)
		},
	})
	results := checker.Check(context.Background(), rec.Bookmarks)
	fmt.Println()

	var dead, unreachable int
	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			dead++
			fmt.Printf("  dead         %s (HTTP %d)\n", r.Bookmark.URL, r.StatusCode)
		case culler.Unreachable:
			unreachable++
			fmt.Printf("  unreachable  %s (%s)\n", r.Bookmark.URL, r.Error)
		}
	}
	fmt.Printf("%d checked, %d dead, %d unreachable\n", len(results), dead, unreachable)

	if !prune || dead == 0 {
		return
	}

	deadIDs := culler.DeadIDs(results)
	drop := make(map[string]bool, len(deadIDs))
	for _, id := range deadIDs {
		drop[id] = true
	}
	kept := rec.Bookmarks[:0]
	for _, b := range rec.Bookmarks {
		if !drop[b.ID] {
			kept = append(kept, b)
		}
	}
	rec.Bookmarks = kept
	if err := store.Write(rec); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving bookmarks: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pruned %d dead bookmark(s)\n", len(deadIDs))
}

// runQuickSearch performs a fuzzy search and opens the selected bookmark.
func runQuickSearch(query string) {
	_, _, store := bootstrap()
	defer store.Close()

	rec, err := store.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	results := search.FuzzySearch(rec, query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		os.Exit(0)
	}

	var selected *model.Bookmark
	action := picker.ActionOpen

	if len(results) == 1 {
		// Single result - select it directly
		selected = results[0].Bookmark
	} else {
		// Multiple results - show picker
		p := picker.New(results, query)
		program := tea.NewProgram(p)
		finalModel, err := program.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running picker: %v\n", err)
			os.Exit(1)
		}

		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			os.Exit(0)
		}
		selected = finalPicker.SelectedBookmark()
		action = finalPicker.SelectedAction()
	}

	if selected == nil {
		os.Exit(0)
	}

	switch action {
	case picker.ActionYank:
		if err := clipboard.WriteAll(selected.URL); err != nil {
			fmt.Fprintf(os.Stderr, "Error copying URL: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Copied: %s\n", selected.URL)
	default:
		fmt.Printf("Opening: %s\n", selected.Title)
		openURL(selected.URL)
	}
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

// runImport handles the import subcommand.
func runImport(filePath string) {
	_, _, store := bootstrap()
	defer store.Close()

	rec, err := store.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	file, err := os.Open(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	res, err := importer.Parse(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing HTML: %v\n", err)
		os.Exit(1)
	}

	added := importer.Merge(rec, res)
	skipped := len(res.Bookmarks) - added

	if err := store.Write(rec); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving bookmarks: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d bookmarks, %d categories", added, len(res.Categories))
	if skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", skipped)
	}
	fmt.Println()
}

// runExport handles the export subcommand.
func runExport(outputPath string) {
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting default export path: %v\n", err)
			os.Exit(1)
		}
	}

	_, _, store := bootstrap()
	defer store.Close()

	rec, err := store.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bookmarks: %v\n", err)
		os.Exit(1)
	}

	html := exporter.ExportHTML(rec)

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d bookmarks, %d categories to %s\n",
		len(rec.Bookmarks), len(rec.Categories), outputPath)
}

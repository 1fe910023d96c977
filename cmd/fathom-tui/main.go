// Fathom TUI — interactive dive planner, site browser, and logbook.
//
// Usage:
//
//	fathom-tui [flags]
//
// Flags:
//
//	--config  Path to config file (default: ~/.fathom/config.yaml)
//	--db      Path to SQLite database file (overrides config)
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fathomdive/fathom/internal/auth"
	"github.com/fathomdive/fathom/internal/config"
	"github.com/fathomdive/fathom/internal/database"
	"github.com/fathomdive/fathom/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	dbPath := flag.String("db", "", "Path to SQLite database file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	store, err := database.NewDBService(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database at %s: %v\n"+
			"Seed it with: fathom sites import", cfg.DatabasePath, err)
	}
	defer store.Close()

	// A stored session unlocks feedback moderation; absent is fine.
	var session *auth.Session
	if s, err := auth.NewFileStore(config.Dir()).Load(); err == nil {
		session = &s
	}

	model := tui.NewModel(store, cfg, session)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

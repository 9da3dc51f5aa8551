package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/lifeos/internal/app"
	"github.com/nhle/lifeos/internal/checklist"
	"github.com/nhle/lifeos/internal/events"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lifeos failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", cfg.DataDir, err)
	}

	s, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "lifeos.db"))
	if err != nil {
		return err
	}
	defer s.Close()

	bus := events.NewBus()
	s.SetEventBus(bus)

	ctx := context.Background()
	if err := checklist.InitializeTemplates(ctx, s); err != nil {
		return err
	}

	scheduler := checklist.NewScheduler(s, bus)
	scheduler.Start()
	defer scheduler.Stop()

	program := tea.NewProgram(app.New(s, cfg, configPath, scheduler, bus), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

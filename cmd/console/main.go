package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/infinite-adventure/internal/bootstrap"
	"github.com/jwebster45206/infinite-adventure/internal/config"
	"github.com/jwebster45206/infinite-adventure/internal/game"
	"github.com/jwebster45206/infinite-adventure/internal/logger"
	"github.com/jwebster45206/infinite-adventure/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, closeLog, err := logger.SetupFile(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	llm, err := bootstrap.LLM(cfg, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	storageCtx, storageCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer storageCancel()
	store, err := storage.Open(storageCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	fmt.Printf("Preparing model %s...\n", cfg.ModelName)
	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Minute)
	defer initCancel()
	if err := llm.InitModel(initCtx, cfg.ModelName); err != nil {
		return fmt.Errorf("failed to initialize model %s: %w", cfg.ModelName, err)
	}

	runner := bootstrap.Runner(cfg, llm, log)
	g := game.New(store, runner, log)
	defer g.Wait()

	p := tea.NewProgram(NewConsoleUI(g), tea.WithAltScreen(), tea.WithMouseCellMotion())
	runner.OnAttempt = func(attempt, maxAttempts int) {
		p.Send(attemptMsg{attempt: attempt, max: maxAttempts})
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}

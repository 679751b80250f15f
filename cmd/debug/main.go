// Command debug is a plain stdin/stdout front end that prints the whole
// world state after every input, for scripted play and model testing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storageCtx, storageCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer storageCancel()
	store, err := storage.Open(storageCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Minute)
	defer initCancel()
	if err := llm.InitModel(initCtx, cfg.ModelName); err != nil {
		return fmt.Errorf("failed to initialize model %s: %w", cfg.ModelName, err)
	}

	g := game.New(store, bootstrap.Runner(cfg, llm, log), log)
	defer g.Wait()

	return newConsole(g, os.Stdin, os.Stdout).run(ctx)
}

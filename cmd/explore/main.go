// Command explore is a terminal client for course search.
//
// Each input line is treated as the new filter text; results appear once typing
// pauses for SEARCH_DEBOUNCE. Lines starting with ":" are commands (:help lists them).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sakif/course-marketplace/internal/client"
	"github.com/sakif/course-marketplace/internal/config"
	"github.com/sakif/course-marketplace/internal/search"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stderr, cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(client.Config{
		BaseURL: cfg.APIURL,
		Token:   cfg.APIToken,
		Timeout: cfg.HTTPTimeout,
	})

	x := newExplorer(api, os.Stdout, cfg.PageSize)
	engine := search.New(api,
		search.WithDebounce(cfg.Debounce),
		search.WithLogger(logger),
		search.WithObserver(x.onEvent),
	)
	x.engine = engine

	go func() {
		if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("search engine stopped", slog.String("error", err.Error()))
		}
	}()

	if err := run(ctx, x); err != nil {
		logger.Error("explore failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

// run loads every course, then feeds stdin lines to x until :quit, EOF or a signal.
func run(ctx context.Context, x *explorer) error {
	x.println(helpText)
	if err := x.engine.Refresh(ctx); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := x.handle(ctx, line)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

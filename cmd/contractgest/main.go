// Command contractgest parses one contract document into a structured JSON
// record.
//
//	contractgest <input> <output>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/contractgest/internal/cache"
	"github.com/dgallion1/contractgest/internal/config"
	"github.com/dgallion1/contractgest/internal/output"
	"github.com/dgallion1/contractgest/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "usage: contractgest <input> <output>")
		return 2
	}
	in, out := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "An unexpected error occurred: %v\n", err)
		return 1
	}
	log := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	var c pipeline.Cache
	if cfg.CacheDB != "" {
		store, err := cache.Open(cfg.CacheDB)
		if err != nil {
			log.Warn("cache disabled", "path", cfg.CacheDB, "error", err)
		} else {
			defer store.Close()
			c = store
		}
	}

	svc := pipeline.NewService(cfg, c, log)
	res, err := svc.ParseFile(ctx, in)
	switch {
	case errors.Is(err, pipeline.ErrSourceNotFound):
		fmt.Fprintf(stdout, "Error: The file '%s' was not found.\n", in)
		return 1
	case err != nil:
		fmt.Fprintf(stdout, "An unexpected error occurred: %v\n", err)
		return 1
	}

	if err := output.WriteJSON(out, res.Metadata); err != nil {
		if errors.Is(err, output.ErrWrite) {
			fmt.Fprintf(stdout, "An error occurred while saving the JSON file: %v\n", err)
		} else {
			fmt.Fprintf(stdout, "An unexpected error occurred: %v\n", err)
		}
		return 1
	}

	if cfg.TablesXLSX != "" {
		n, err := output.WriteTablesXLSX(cfg.TablesXLSX, res.Metadata)
		if err != nil {
			log.Warn("table export failed", "path", cfg.TablesXLSX, "error", err)
		} else if n > 0 {
			log.Info("tables exported", "path", cfg.TablesXLSX, "sheets", n)
		}
	}

	fmt.Fprintf(stdout, "Successfully parsed the document and saved to '%s'.\n", out)
	return 0
}

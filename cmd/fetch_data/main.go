package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"

	"exohab/catalog"
	"exohab/config"
	"exohab/logging"
)

func main() {
	configName := flag.String("config", "config.yaml", "config file")
	url := flag.String("url", "", "archive query URL")
	out := flag.String("out", "", "local CSV cache path")
	head := flag.Int("head", 5, "rows to print")
	flag.Parse()

	cfg, configPath, err := config.LoadOrDefault(*configName)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if configPath != "" {
		cfg.ResolvePaths(filepath.Dir(configPath))
	}
	if *url != "" {
		cfg.Data.URL = *url
	}
	if *out != "" {
		cfg.Data.Path = *out
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, source, err := catalog.NewFetcher(cfg.Data.URL, cfg.Data.Path, logger).Fetch(ctx)
	if err != nil {
		logger.Fatal("failed to load data", zap.Error(err))
	}

	printHead(records, *head)
	fmt.Printf("\n%d records loaded from %s (%s)\n", len(records), cfg.Data.Path, source)
}

func printHead(records []catalog.Record, n int) {
	if n > len(records) {
		n = len(records)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	for i, col := range catalog.Columns() {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)
	for _, r := range records[:n] {
		fmt.Fprint(w, r.Name)
		for _, col := range catalog.Columns()[1:] {
			if v := r.Value(col); v != nil {
				fmt.Fprintf(w, "\t%g", *v)
			} else {
				fmt.Fprint(w, "\tNaN")
			}
		}
		fmt.Fprintln(w)
	}
}

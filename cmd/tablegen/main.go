// Package main provides a CLI that rolls dice formulas and expands
// generator templates from a collection descriptor.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	tablegencmd "github.com/louisbranch/tablegen/internal/cmd/tablegen"
	"github.com/louisbranch/tablegen/internal/platform/config"
)

func main() {
	cfg, err := tablegencmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		if errors.Is(err, tablegencmd.ErrGeneratorRequired) {
			flag.Usage()
			os.Exit(2)
		}
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[TABLEGEN] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tablegencmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.ExitError(err, cfg.Locale)
	}
}

// Command scrapyard runs the recurrent feed-scraping engine: it loads
// scrapyard.json and feeds.json, starts one scheduler worker per feed, and
// serves no network surface of its own — callers that want rss/json out of
// it are expected to read cache.xml/cache.json from the store directly, or
// embed pkg/engine in a process that does (spec.md's Non-goals exclude a
// built-in HTTP server).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/siriusmart/scrapyard/pkg/config"
	"github.com/siriusmart/scrapyard/pkg/domain"
	"github.com/siriusmart/scrapyard/pkg/engine"
)

// Opts holds all CLI options.
type Opts struct {
	ConfigDir string `short:"c" long:"config-dir" env:"CONFIG_DIR" default:"" description:"directory holding scrapyard.json and feeds.json (defaults to the OS config dir)"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var (
	revision = "unknown"
	gitHash  = "unknown"
)

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	ident := domain.BuildIdent("scrapyard", revision, gitHash)
	lgr.Printf("[INFO] starting %s", ident)

	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			lgr.Printf("[ERROR] could not determine config dir: %v", err)
			os.Exit(1)
		}
		configDir = filepath.Join(dir, "scrapyard")
	}

	cfg, err := config.Load(
		filepath.Join(configDir, "scrapyard.json"),
		filepath.Join(configDir, "feeds.json"),
	)
	if err != nil {
		lgr.Printf("[ERROR] failed to load config: %v", err)
		os.Exit(1)
	}

	eng := engine.New(cfg.Master, ident, cfg.Feeds)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	sched := eng.Scheduler()
	sched.Start(ctx)

	<-ctx.Done()
	if err := sched.Stop(); err != nil {
		lgr.Printf("[ERROR] scheduler stop: %v", err)
	}

	lgr.Printf("[INFO] shutdown complete")
}

func setupLog(dbg, noColor bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if noColor {
		color.NoColor = true
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

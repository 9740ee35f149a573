package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"kemograb/pkg/config"
	"kemograb/pkg/crawler"
	"kemograb/pkg/logger"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	outputDir   = flag.String("output", "", "Base directory for downloads")
	mode        = flag.String("mode", "", "Post filter mode: both, files_only or no_files")
	noInfo      = flag.Bool("no-info", false, "Skip writing the per-post info document")
	attachments = flag.Bool("attachments", true, "Download attachment-class files")
	videos      = flag.Bool("videos", false, "Run the video pass over attachment links")
	concurrent  = flag.Int("concurrent", 0, "Number of concurrent post downloads")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kemograb [flags] <profile_url>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	profileURL := strings.TrimSpace(args[0])

	// Build command line flags map
	flags := make(map[string]interface{})
	if *outputDir != "" {
		flags["output"] = *outputDir
	}
	if *mode != "" {
		flags["mode"] = *mode
	}
	if *noInfo {
		flags["save-info"] = false
	}
	if !*attachments {
		flags["attachments"] = false
	}
	if *videos {
		flags["videos"] = true
	}
	if *concurrent > 0 {
		flags["concurrent"] = *concurrent
	}
	if *logLevel != "" {
		flags["log-level"] = *logLevel
	}

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}

	logger.WithField("url", profileURL).Info("Starting profile crawl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := crawler.New(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize crawler")
		os.Exit(1)
	}

	summary, err := c.Run(ctx, profileURL)
	if err != nil {
		logger.WithError(err).WithField("url", profileURL).Error("Crawl failed")
		os.Exit(1)
	}

	fmt.Printf("Collected %d posts, selected %d: %d downloaded, %d skipped, %d failed\n",
		summary.Collected, summary.Selected, summary.Downloaded, summary.Skipped, summary.Failed)

	if summary.Failed > 0 {
		logger.WithField("failed", summary.Failed).Warn("Some posts failed; rerun to retry them")
	}
}

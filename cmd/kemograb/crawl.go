package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"kemograb/pkg/config"
	"kemograb/pkg/crawler"
	"kemograb/pkg/logger"
)

var (
	// Crawl command flags
	outputDir   string
	filterMode  string
	concurrent  int
	rateLimit   int
	noInfo      bool
	attachments bool
	videos      bool
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <profile_url>",
	Short: "Download every post from a creator profile",
	Long: `Download all posts from a creator's profile listing.

The crawler pages through the listing fifty posts at a time, filters the
posts by the configured mode and downloads each selected post into:

  {output}/{bucket}/{author}-{platform}/posts/{post_id}/

A post whose folder already exists is skipped, so an interrupted run can
simply be started again.`,
	Example: `  # Download everything from a profile
  kemograb crawl https://kemono.su/patreon/user/12345

  # Only posts that carry files, five posts at a time
  kemograb crawl https://kemono.su/patreon/user/12345 --mode files_only --concurrent 5

  # Text-only posts into a specific directory
  kemograb crawl https://coomer.su/onlyfans/user/someone --mode no_files --output ./archive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runCrawl(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads (default: current directory)")
	crawlCmd.Flags().StringVarP(&filterMode, "mode", "m", "", "post filter mode: both, files_only or no_files")
	crawlCmd.Flags().IntVar(&concurrent, "concurrent", 0, "number of concurrent post downloads")
	crawlCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute (0 disables throttling)")
	crawlCmd.Flags().BoolVar(&noInfo, "no-info", false, "skip writing the per-post info document")
	crawlCmd.Flags().BoolVar(&attachments, "attachments", true, "download attachment-class files")
	crawlCmd.Flags().BoolVar(&videos, "videos", false, "run the video pass over attachment links")
}

func runCrawl(cmd *cobra.Command, args []string) {
	profileURL := strings.TrimSpace(args[0])

	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if filterMode != "" {
		flags["mode"] = filterMode
	}
	if concurrent > 0 {
		flags["concurrent"] = concurrent
	}
	if rateLimit > 0 {
		flags["rate-limit"] = rateLimit
	}
	if noInfo {
		flags["save-info"] = false
	}
	if !attachments {
		flags["attachments"] = false
	}
	if videos {
		flags["videos"] = true
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"version": version,
		"url":     profileURL,
	}).Info("Starting profile crawl")

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

// Make crawl the default command when no subcommand is specified
func init() {
	origRunE := rootCmd.RunE
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if origRunE != nil {
			return origRunE(cmd, args)
		}
		if len(args) > 0 && !isKnownCommand(args[0]) {
			// If the first argument is not a known command, treat it as a
			// profile URL
			return crawlCmd.RunE(crawlCmd, args)
		}
		return cmd.Help()
	}

	rootCmd.Args = cobra.ArbitraryArgs
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}

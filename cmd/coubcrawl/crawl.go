package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"coubcrawl/pkg/auth"
	"coubcrawl/pkg/config"
	"coubcrawl/pkg/coub"
	"coubcrawl/pkg/crawler"
	"coubcrawl/pkg/history"
	"coubcrawl/pkg/logger"
	"coubcrawl/pkg/output"
	"coubcrawl/pkg/ratelimit"
	"coubcrawl/pkg/ui"
)

var (
	// Crawl command flags
	tokenFlag    string
	waitTime     float64
	withSegments bool
	nsfwOnly     bool
	maxPages     int
	recrawlMode  string
	infoDir      string
	rateLimit    int
	noHistory    bool
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl <category>[,<category>...]",
	Short: "Crawl categories into URL lists and metadata",
	Long: `Crawl one or more categories, writing for each of them:

  <info-dir>/<category>/url_list.txt          original items
  <info-dir>/<category>/url_list_reposts.txt  reposts (when any)
  <info-dir>/<category>/metadata.txt          human readable metadata
  <info-dir>/<category>/raw_metadata.json     raw records
  <info-dir>/<category>/segments.json         segments (with --segments)

A category that already has a URL list is not crawled again unless the
recrawl policy allows it.`,
	Example: `  # Crawl your likes and a channel
  coubcrawl crawl liked,just.for.kicks

  # Only keep NSFW items, with segment data, waiting 1s between requests
  coubcrawl crawl somechannel --nsfw-only --segments --wait 1

  # Re-crawl everything without asking
  coubcrawl crawl liked,bookmarks --recrawl always`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	addCrawlFlags(crawlCmd)
}

func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tokenFlag, "token", "", "access token (remember_token cookie)")
	cmd.Flags().Float64Var(&waitTime, "wait", 2.5, "seconds to wait before every request")
	cmd.Flags().BoolVar(&withSegments, "segments", false, "download segments for every item")
	cmd.Flags().BoolVar(&nsfwOnly, "nsfw-only", false, "only keep items flagged NSFW")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop each category after this many pages (0 = no cap)")
	cmd.Flags().StringVar(&recrawlMode, "recrawl", "", "already crawled categories: ask, always or never")
	cmd.Flags().StringVar(&infoDir, "info-dir", "", "directory receiving crawl output (default Coubs-info)")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "maximum requests per minute (0 = only the fixed wait)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the crawl history")
}

// crawlFlags collects the flags that were set explicitly
func crawlFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := cmd.Flags().Changed

	if set("token") {
		flags["token"] = tokenFlag
	}
	if set("wait") {
		flags["wait"] = waitTime
	}
	if set("segments") {
		flags["segments"] = withSegments
	}
	if set("nsfw-only") {
		flags["nsfw-only"] = nsfwOnly
	}
	if set("max-pages") {
		flags["max-pages"] = maxPages
	}
	if set("recrawl") {
		flags["recrawl"] = recrawlMode
	}
	if set("info-dir") {
		flags["info-dir"] = infoDir
	}
	if set("rate-limit") {
		flags["rate-limit"] = rateLimit
	}
	return flags
}

func runCrawl(cmd *cobra.Command, args []string) error {
	categories := crawler.ParseCategories(args...)
	if len(categories) == 0 {
		return printError("Nothing to crawl", fmt.Errorf("no categories given"))
	}

	cfg, err := loadConfig(crawlFlags(cmd))
	if err != nil {
		return printError("Failed to load configuration", err)
	}

	log, err := setupLogger(cfg)
	if err != nil {
		return printError("Failed to initialize logging", err)
	}

	logger.WithField("version", version).Info("coubcrawl starting")

	ui.PrintLogo()
	ui.PrintInfo("Categories", joinCategories(categories))
	ui.PrintInfo("Info dir", cfg.Output.InfoDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, run, err := buildCrawler(ctx, cfg, categories, log)
	if err != nil {
		return printError("Failed to initialize crawler", err)
	}

	reports, err := c.Run(ctx, categories)
	if run != nil {
		if finishErr := run.Finish(context.Background()); finishErr != nil {
			log.WithError(finishErr).Warn("Failed to finish crawl history run")
		}
		_ = run.Close()
	}

	fmt.Println()
	ui.PrintReports(reports)

	if err != nil {
		log.WithError(err).Error("Crawl failed")
		ui.PrintError("CRAWL FAILED", err.Error())
		return fatal(err)
	}

	ui.PrintStage("DONE")
	return nil
}

// buildCrawler wires the client, token session, output store and history
// recorder. The returned run is nil when history is disabled or unavailable.
func buildCrawler(ctx context.Context, cfg *config.Config, categories []crawler.Category, log logger.Logger) (*crawler.Crawler, *history.Run, error) {
	limiter, err := ratelimit.New(cfg.Crawl.WaitDuration(), cfg.RateLimit.RequestsPerMinute)
	if err != nil {
		return nil, nil, err
	}

	client := coub.NewClient(coub.Options{
		Timeout:    cfg.HTTP.Timeout,
		Limiter:    limiter,
		UserAgents: cfg.Coub.UserAgents,
		Endpoints: coub.Endpoints{
			BaseURL: cfg.Coub.BaseURL,
			APIURL:  cfg.Coub.APIURL,
		},
		Logger: log,
	})

	// one buffer for stdin so piped answers reach the prompt they belong to
	stdin := bufio.NewReader(os.Stdin)

	session := auth.NewSession(auth.Chain{
		auth.Static(cfg.Coub.AccessToken),
		auth.NewTerminalPrompt(stdin),
	})

	recrawl, err := recrawlFunc(cfg.Crawl.Recrawl, stdin, os.Stdout)
	if err != nil {
		return nil, nil, err
	}

	opts := crawler.Options{
		API:                client,
		Store:              output.NewStore(cfg.Output.InfoDir),
		Session:            session,
		Recrawl:            recrawl,
		PageLimit:          cfg.Crawl.PageLimit,
		MaxPages:           cfg.Crawl.MaxPages,
		Order:              cfg.Crawl.OrderBy,
		NsfwOnly:           cfg.Crawl.NsfwOnly,
		DownloadSegments:   cfg.Crawl.DownloadSegments,
		ProbeChannelTotals: cfg.Crawl.ProbeChannelTotals,
		Logger:             log,
	}

	var run *history.Run
	if cfg.History.Enabled && !noHistory {
		run = openHistoryRun(ctx, cfg, categories, log)
		if run != nil {
			opts.Recorder = run
		}
	}

	logger.LogComponentStart(log, "crawler", map[string]interface{}{
		"info_dir":   cfg.Output.InfoDir,
		"wait_time":  cfg.Crawl.WaitTime,
		"page_limit": cfg.Crawl.PageLimit,
		"segments":   cfg.Crawl.DownloadSegments,
		"nsfw_only":  cfg.Crawl.NsfwOnly,
		"recrawl":    cfg.Crawl.Recrawl,
		"history":    run != nil,
	})

	return crawler.New(opts), run, nil
}

// openHistoryRun starts a history run. History is best effort; failures
// are logged and the crawl goes on without it.
func openHistoryRun(ctx context.Context, cfg *config.Config, categories []crawler.Category, log logger.Logger) *history.Run {
	path, err := cfg.HistoryPath()
	if err != nil {
		log.WithError(err).Warn("Crawl history disabled")
		return nil
	}

	db, err := history.Open(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Crawl history disabled")
		return nil
	}

	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.String()
	}

	run, err := db.BeginRun(ctx, names)
	if err != nil {
		_ = db.Close()
		log.WithError(err).Warn("Crawl history disabled")
		return nil
	}
	return run
}

func recrawlFunc(mode string, in io.Reader, out io.Writer) (crawler.RecrawlFunc, error) {
	switch mode {
	case config.RecrawlAlways:
		return crawler.AlwaysRecrawl, nil
	case config.RecrawlNever:
		return crawler.NeverRecrawl, nil
	case config.RecrawlAsk, "":
		return ui.RecrawlPrompt(in, out), nil
	default:
		return nil, fmt.Errorf("unknown recrawl mode %q", mode)
	}
}

func joinCategories(categories []crawler.Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

package crawler

import (
	"context"
	"fmt"
	"time"

	"coubcrawl/pkg/errors"
	"coubcrawl/pkg/logger"
)

// Outcome is the final state of a category in a run
type Outcome string

const (
	OutcomeCrawled Outcome = "crawled"
	OutcomeAborted Outcome = "aborted"
	OutcomeSkipped Outcome = "skipped"
)

// CategoryReport summarizes what happened to one category
type CategoryReport struct {
	Category       Category
	Kind           Kind
	Outcome        Outcome
	Reason         string
	Stop           StopReason
	Pages          int
	RawItems       int
	Filtered       int
	Emitted        int
	Reposts        int
	SegmentBundles int
	Dir            string
	StartedAt      time.Time
	FinishedAt     time.Time
	Err            error
}

// Options configures a Crawler
type Options struct {
	API      API
	Store    Store
	Session  TokenProvider
	Recrawl  RecrawlFunc
	Recorder Recorder

	PageLimit          int
	MaxPages           int
	Order              string
	NsfwOnly           bool
	DownloadSegments   bool
	ProbeChannelTotals bool

	Logger logger.Logger
}

// Crawler runs categories one after another
type Crawler struct {
	resolver     *Resolver
	walker       *Walker
	store        Store
	recorder     Recorder
	withSegments bool
	logger       logger.Logger
	now          func() time.Time
}

// New wires a crawler from its collaborators
func New(opts Options) *Crawler {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	enricher := NewEnricher(opts.API, opts.DownloadSegments, log)
	return &Crawler{
		resolver: NewResolver(opts.API, opts.Store, ResolverOptions{
			Session:            opts.Session,
			Recrawl:            opts.Recrawl,
			PageLimit:          opts.PageLimit,
			MaxPages:           opts.MaxPages,
			Order:              opts.Order,
			ProbeChannelTotals: opts.ProbeChannelTotals,
		}, log),
		walker:       NewWalker(opts.API, enricher, opts.NsfwOnly, log),
		store:        opts.Store,
		recorder:     opts.Recorder,
		withSegments: opts.DownloadSegments,
		logger:       log,
		now:          time.Now,
	}
}

// Run crawls every category in order. Skipped and aborted categories do
// not stop the run; a fatal error does, and is returned along with the
// reports gathered so far (including the failing category).
func (c *Crawler) Run(ctx context.Context, categories []Category) ([]CategoryReport, error) {
	reports := make([]CategoryReport, 0, len(categories))

	for _, category := range categories {
		report, err := c.CrawlCategory(ctx, category)
		reports = append(reports, report)

		if c.recorder != nil {
			if recErr := c.recorder.Record(ctx, report); recErr != nil {
				c.logger.WithError(recErr).WithField("category", category.String()).Warn("Failed to record crawl history")
			}
		}

		if err != nil {
			return reports, err
		}
	}

	return reports, nil
}

// CrawlCategory resolves, walks and writes a single category
func (c *Crawler) CrawlCategory(ctx context.Context, category Category) (CategoryReport, error) {
	report := CategoryReport{
		Category:  category,
		Kind:      category.Kind(),
		StartedAt: c.now(),
	}
	log := c.logger.WithField("category", category.String())

	finish := func(outcome Outcome, err error) (CategoryReport, error) {
		report.Outcome = outcome
		report.FinishedAt = c.now()
		if err != nil {
			report.Err = err
		}
		return report, err
	}

	plan, reason, err := c.resolver.resolve(ctx, category)
	if err != nil {
		report.Reason = err.Error()
		return finish(OutcomeAborted, err)
	}
	if plan == nil {
		report.Reason = reason
		return finish(OutcomeSkipped, nil)
	}

	log.Info("Starting gathering links")
	result := c.walker.Walk(ctx, *plan)

	report.Stop = result.Stop
	report.Pages = result.Pages
	report.RawItems = result.RawItems
	report.Filtered = result.Filtered

	summary, err := c.store.Write(category.String(), entries(result.Items), c.withSegments)
	if err != nil {
		err = fmt.Errorf("write results for %s: %w", category, err)
		report.Reason = err.Error()
		return finish(OutcomeAborted, err)
	}
	report.Emitted = summary.Records
	report.Reposts = summary.Reposts
	report.SegmentBundles = summary.SegmentBundles
	report.Dir = summary.Dir

	log.InfoWithFields("Saved crawl results", map[string]interface{}{
		"dir":      summary.Dir,
		"urls":     summary.URLs,
		"reposts":  summary.Reposts,
		"segments": summary.SegmentBundles,
		"stop":     string(result.Stop),
	})

	if result.Err != nil {
		report.Err = result.Err
		report.Reason = result.Err.Error()
		if errors.IsForbidden(result.Err) {
			report.Reason = ReasonInvalidToken
			log.Error("Invalid access token!")
		}
		return finish(OutcomeAborted, nil)
	}

	return finish(OutcomeCrawled, nil)
}

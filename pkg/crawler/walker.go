package crawler

import (
	"context"
	"fmt"

	"coubcrawl/pkg/coub"
	"coubcrawl/pkg/logger"
)

// StopReason says why a walk ended
type StopReason string

const (
	StopEmptyPage StopReason = "empty_page"
	StopLastPage  StopReason = "last_page"
	StopPageLimit StopReason = "page_limit"
	StopAborted   StopReason = "aborted"
)

// Plan is everything a walk needs to know about one category
type Plan struct {
	Category Category
	// URL is the timeline URL without page parameters
	URL       string
	Token     string
	PageLimit int
	StartPage int
	// ExpectedPages overrides the server-reported page count when > 0
	ExpectedPages int
	// MaxPages stops the walk after that many pages when > 0
	MaxPages int
}

// Result is the outcome of a walk. Items holds every item emitted from
// fully processed pages, including when the walk was aborted.
type Result struct {
	Items    []Item
	Pages    int
	RawItems int
	Filtered int
	Stop     StopReason
	Err      error
}

// Walker pages through a timeline until one of its stop conditions holds
type Walker struct {
	api      API
	enricher *Enricher
	nsfwOnly bool
	logger   logger.Logger
}

// NewWalker creates a walker. With nsfwOnly set, items not flagged NSFW are
// dropped from the output but still count toward page progress.
func NewWalker(api API, enricher *Enricher, nsfwOnly bool, log logger.Logger) *Walker {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Walker{
		api:      api,
		enricher: enricher,
		nsfwOnly: nsfwOnly,
		logger:   log,
	}
}

// Walk fetches pages in order. It stops normally on an empty page, on the
// last reported page, or at the page cap. Any fetch, decode or enrichment
// failure aborts the walk; the failing page contributes nothing and is
// not retried.
func (w *Walker) Walk(ctx context.Context, plan Plan) Result {
	var result Result
	log := w.logger.WithField("category", plan.Category.String())

	page := plan.StartPage
	if page < 1 {
		page = 1
	}

	abort := func(err error) Result {
		log.WithError(err).WarnWithFields("Crawl aborted", map[string]interface{}{
			"page":       page,
			"kept_items": len(result.Items),
		})
		result.Stop = StopAborted
		result.Err = err
		return result
	}

	for {
		if plan.MaxPages > 0 && result.Pages >= plan.MaxPages {
			result.Stop = StopPageLimit
			return result
		}

		pageURL, err := coub.WithPage(plan.URL, page, plan.PageLimit)
		if err != nil {
			return abort(err)
		}

		envelope, err := w.api.FetchPage(ctx, pageURL, plan.Token)
		if err != nil {
			return abort(fmt.Errorf("page %d: %w", page, err))
		}

		raw, err := envelope.Items()
		if err != nil {
			return abort(fmt.Errorf("page %d: %w", page, err))
		}

		if len(raw) == 0 {
			result.Stop = StopEmptyPage
			return result
		}

		total := envelope.Total()
		if plan.ExpectedPages > 0 {
			total = plan.ExpectedPages
		}

		pageItems := make([]Item, 0, len(raw))
		filtered := 0
		for _, r := range raw {
			item, err := w.enricher.Enrich(ctx, r)
			if err != nil {
				return abort(fmt.Errorf("page %d: %w", page, err))
			}
			if w.nsfwOnly && !item.NSFW {
				filtered++
				continue
			}
			pageItems = append(pageItems, item)
		}

		result.Items = append(result.Items, pageItems...)
		result.Pages++
		result.RawItems += len(raw)
		result.Filtered += filtered

		current := envelope.Current(page)
		logger.LogPageProgress(log, plan.Category.String(), current, total, len(pageItems))

		if total > 0 && current >= total {
			result.Stop = StopLastPage
			return result
		}
		page++
	}
}

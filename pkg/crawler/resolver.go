package crawler

import (
	"context"
	"fmt"

	"coubcrawl/pkg/coub"
	"coubcrawl/pkg/errors"
	"coubcrawl/pkg/logger"
)

// Skip reasons reported for categories that are not crawled
const (
	ReasonAlreadyCrawled = "already crawled"
	ReasonMissingToken   = "missing access token"
	ReasonInvalidToken   = "invalid access token"
	ReasonNoChannel      = "channel does not exist"
)

// ResolverOptions configures a Resolver
type ResolverOptions struct {
	Session   TokenProvider
	Recrawl   RecrawlFunc
	PageLimit int
	MaxPages  int
	Order     string
	// ProbeChannelTotals runs the page count probe for channels as well
	ProbeChannelTotals bool
}

// Resolver turns a category into a Plan, or decides to skip it
type Resolver struct {
	api       API
	store     Store
	endpoints coub.Endpoints
	opts      ResolverOptions
	logger    logger.Logger
}

// NewResolver creates a resolver
func NewResolver(api API, store Store, opts ResolverOptions, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.PageLimit <= 0 || opts.PageLimit > coub.MaxPerPage {
		opts.PageLimit = coub.MaxPerPage
	}
	return &Resolver{
		api:       api,
		store:     store,
		endpoints: api.Endpoints(),
		opts:      opts,
		logger:    log,
	}
}

// Resolve returns the plan for a category. A nil plan with a nil error
// means the category is skipped. Errors are fatal for the run.
func (r *Resolver) Resolve(ctx context.Context, c Category) (*Plan, error) {
	plan, _, err := r.resolve(ctx, c)
	return plan, err
}

func (r *Resolver) resolve(ctx context.Context, c Category) (*Plan, string, error) {
	log := r.logger.WithField("category", c.String())

	if r.store.HasURLList(c.String()) {
		count, err := r.store.CountURLs(c.String())
		if err != nil {
			return nil, "", fmt.Errorf("read existing URL list: %w", err)
		}
		log.InfoWithFields("URL list found", map[string]interface{}{"urls": count})

		recrawl := false
		if r.opts.Recrawl != nil {
			recrawl, err = r.opts.Recrawl(c.String(), count)
			if err != nil {
				return nil, "", fmt.Errorf("recrawl decision for %s: %w", c, err)
			}
		}
		if !recrawl {
			log.Info("Skipping crawl, existing results kept")
			return nil, ReasonAlreadyCrawled, nil
		}
		if err := r.store.RemoveURLList(c.String()); err != nil {
			return nil, "", err
		}
	}

	plan := &Plan{
		Category:  c,
		PageLimit: r.opts.PageLimit,
		StartPage: 1,
		MaxPages:  r.opts.MaxPages,
	}

	if c.IsReserved() {
		return r.resolveReserved(ctx, c, plan, log)
	}
	return r.resolveChannel(ctx, c, plan, log)
}

func (r *Resolver) resolveReserved(ctx context.Context, c Category, plan *Plan, log logger.Logger) (*Plan, string, error) {
	var token string
	if r.opts.Session != nil {
		t, err := r.opts.Session.Token(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("obtain access token: %w", err)
		}
		token = t
	}
	if token == "" {
		log.Warn("Invalid token! A valid token is required for user-specific categories like 'liked'. Skipping.")
		return nil, ReasonMissingToken, nil
	}

	if c == Liked {
		plan.URL = r.endpoints.LikesURL(r.opts.Order)
	} else {
		plan.URL = r.endpoints.BookmarksURL(r.opts.Order)
	}
	plan.Token = token

	expected, err := r.probeTotal(ctx, plan.URL, token)
	if errors.IsForbidden(err) {
		log.WithError(err).Error("Invalid access token!")
		return nil, ReasonInvalidToken, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("count probe for %s: %w", c, err)
	}
	plan.ExpectedPages = expected

	return plan, "", nil
}

func (r *Resolver) resolveChannel(ctx context.Context, c Category, plan *Plan, log logger.Logger) (*Plan, string, error) {
	err := r.api.Probe(ctx, r.endpoints.ChannelPageURL(c.String()))
	if errors.IsNotFound(err) {
		log.Warn("Channel does not exist. Skipping.")
		return nil, ReasonNoChannel, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("existence check for channel %s: %w", c, err)
	}

	plan.URL = r.endpoints.ChannelURL(c.String(), r.opts.Order)

	if r.opts.ProbeChannelTotals {
		expected, err := r.probeTotal(ctx, plan.URL, "")
		if err != nil {
			return nil, "", fmt.Errorf("count probe for %s: %w", c, err)
		}
		plan.ExpectedPages = expected
	}

	return plan, "", nil
}

// probeTotal requests page 1 with a page size of one, so that total_pages
// equals the number of items, and converts that to a page count
func (r *Resolver) probeTotal(ctx context.Context, timelineURL, token string) (int, error) {
	probeURL, err := coub.WithPage(timelineURL, 1, 1)
	if err != nil {
		return 0, err
	}
	page, err := r.api.FetchPage(ctx, probeURL, token)
	if err != nil {
		return 0, err
	}
	return ExpectedPages(page.Total(), r.opts.PageLimit), nil
}

// ExpectedPages converts an item count into a page count for a page size
func ExpectedPages(total, limit int) int {
	if limit <= 0 {
		limit = coub.MaxPerPage
	}
	if total > limit {
		return (total + limit - 1) / limit
	}
	return 1
}

// Package crawler walks Coub timelines and writes what it finds.
//
// A run processes categories strictly in order. For each category the
// Resolver decides whether to skip it (already crawled and no recrawl,
// missing or rejected token, unknown channel) or builds a Plan. The
// Walker then pages through the timeline, the Enricher turns every record
// into an Item, and the results go to the output Store:
//
//	c := crawler.New(crawler.Options{
//	    API:     client,
//	    Store:   output.NewStore("Coubs-info"),
//	    Session: auth.NewSession(tokens),
//	    Recrawl: crawler.NeverRecrawl,
//	})
//	reports, err := c.Run(ctx, crawler.ParseCategories("liked,demo"))
//
// A walk that fails partway still writes the items of every page it
// completed. Only setup failures (an unexpected probe error or a failed
// write) stop the run.
package crawler

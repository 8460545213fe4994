// Package logger provides a structured logging interface for the crawler.
//
// It wraps zerolog with a small interface so components can be handed a
// logger, or a TestLogger in tests, without depending on zerolog directly.
// Console output goes to stderr so that nothing interleaves with data the
// CLI prints on stdout.
//
// Basic Usage:
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	log.WithField("category", "likes").Info("Crawl started")
//	log.WithError(err).Error("Segments request failed")
//
// Tests can capture messages:
//
//	tl := logger.NewTestLogger()
//	component := NewThing(tl)
//	...
//	assert.True(t, tl.HasMessage("Crawl started"))
package logger

// Package history keeps an audit log of crawl runs in a SQLite database.
//
// Every run gets a row in the runs table and every category crawled in
// that run gets a row in the categories table. The log is write-mostly;
// nothing in the crawler reads it back to decide what to crawl.
//
//	db, err := history.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	run, err := db.BeginRun(ctx, []string{"liked", "somechannel"})
//	...
//	c := crawler.New(crawler.Options{Recorder: run, ...})
//	reports, err := c.Run(ctx, categories)
//	_ = run.Finish(ctx)
package history

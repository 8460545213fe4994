// Package coub is a small client for the Coub timeline API.
//
// It covers exactly what the crawler needs: paged timeline fetches
// (likes, favourites, channel), the per-item segments resource, and a
// HEAD probe for channel existence. Every request waits on a
// ratelimit.Limiter first and carries a user agent drawn from a pool.
// Failed responses are returned as *errors.Error so callers can tell a
// 404 from an auth rejection:
//
//	client := coub.NewClient(coub.Options{Limiter: limiter, Logger: log})
//	page, err := client.FetchPage(ctx, pageURL, token)
//	if errors.IsForbidden(err) {
//	    // token rejected
//	}
package coub

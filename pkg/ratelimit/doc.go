// Package ratelimit paces requests made to the Coub API.
//
// The crawler issues requests strictly one at a time and sleeps a fixed
// wait time before each of them. An optional per-minute cap, backed by
// golang.org/x/time/rate, can be layered on top.
//
// Usage:
//
//	limiter, err := ratelimit.New(2500*time.Millisecond, 0)
//	if err != nil {
//	    return err
//	}
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // context cancelled
//	}
//	// issue request
package ratelimit

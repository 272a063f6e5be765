// Package ratelimit paces requests to Flickr.
//
// TokenBucket caps search requests per period (fetch.requests_per_minute).
// FixedDelay is the constant pause the downloader takes after each image
// request (download.delay). Both honor context cancellation.
//
//	limiter := ratelimit.PerMinute(60)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit

// Package middleware provides the gin middleware stack for the desktop API.
//
//   - CORS: the browser front end is usually served from another origin
//   - RateLimit: per-IP token buckets with idle eviction
//   - GlobalRateLimit: one bucket for the whole process
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware

// Package gemini streams assistant replies from the Generative Language API.
//
// The client posts the conversation to models/{model}:streamGenerateContent
// with alt=sse and hands each text increment to a callback as soon as its
// server-sent event arrives. Requests go through a rate limiter and the
// resilience circuit breaker; the HTTP transport is resty on top of the
// go-retryablehttp pooled transport.
//
// A stream counts as complete only when a candidate reports a finish reason.
// A body that ends earlier yields ErrStreamIncomplete so the caller can show
// its failure text instead of a truncated reply.
package gemini

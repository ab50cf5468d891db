/*
Package tracing records request spans for the HTTP and gRPC surfaces.

Every request gets a span carrying a request id. An incoming X-Request-ID
header (or x-request-id gRPC metadata) is reused so a browser can correlate
its own logs; otherwise a ULID is generated. The id is echoed back in the
response header and stored in the request context.

Finished spans are handed to a buffered collector goroutine that logs them
through zap. When the buffer is full spans are dropped rather than slowing
the request path.

# Usage

	tracer := tracing.New("webdesk", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	server := grpc.NewServer(
		grpc.UnaryInterceptor(tracing.GRPCUnaryInterceptor(tracer)),
		grpc.StreamInterceptor(tracing.GRPCStreamInterceptor(tracer)),
	)
*/
package tracing

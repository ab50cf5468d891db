package tracing

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const maxRequestIDLen = 128

// incoming accepts a caller-supplied id if it is short and printable
func incoming(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxRequestIDLen {
		return ""
	}
	for _, r := range raw {
		if r < 0x21 || r > 0x7e {
			return ""
		}
	}
	return raw
}

// HTTPMiddleware creates gin middleware that traces each request
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if reqID := incoming(c.GetHeader(Header)); reqID != "" {
			ctx = WithRequestID(ctx, reqID)
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+route)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.route", route)
		c.Request = c.Request.WithContext(ctx)
		c.Header(Header, span.RequestID)

		c.Next()

		span.Status = c.Writer.Status()
		if len(c.Errors) > 0 {
			span.Err = c.Errors.Last()
		}
		span.Finish()
		tracer.Submit(span)
	}
}

func fromMetadata(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	if vals := md.Get(strings.ToLower(Header)); len(vals) > 0 {
		if reqID := incoming(vals[0]); reqID != "" {
			return WithRequestID(ctx, reqID)
		}
	}
	return ctx
}

// GRPCUnaryInterceptor creates a gRPC unary interceptor for tracing
func GRPCUnaryInterceptor(tracer *Tracer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		span, ctx := tracer.StartSpan(fromMetadata(ctx), info.FullMethod)
		span.SetTag("rpc.system", "grpc")

		resp, err := handler(ctx, req)

		span.Status = int(status.Code(err))
		span.Err = err
		span.Finish()
		tracer.Submit(span)
		return resp, err
	}
}

// GRPCStreamInterceptor creates a gRPC stream interceptor for tracing
func GRPCStreamInterceptor(tracer *Tracer) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		span, ctx := tracer.StartSpan(fromMetadata(ss.Context()), info.FullMethod)
		span.SetTag("rpc.system", "grpc")
		span.SetTag("rpc.streaming", "true")

		err := handler(srv, &tracedServerStream{ServerStream: ss, ctx: ctx})

		span.Status = int(status.Code(err))
		span.Err = err
		span.Finish()
		tracer.Submit(span)
		return err
	}
}

// tracedServerStream wraps grpc.ServerStream with the traced context
type tracedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *tracedServerStream) Context() context.Context {
	return s.ctx
}

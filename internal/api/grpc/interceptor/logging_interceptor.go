package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rental-backend/internal/logger"
)

// Unary logs every unary RPC and turns handler panics into Internal errors.
func Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", r)
				err = status.Error(codes.Internal, "internal error")
			}
			logger.Debug("gRPC call",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration_ms", time.Since(start).Milliseconds())
		}()
		return handler(ctx, req)
	}
}

package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rental-backend/internal/api/grpc/interceptor"
	"rental-backend/internal/logger"
)

// CheckFunc reports whether one dependency is reachable.
type CheckFunc func(ctx context.Context) error

// HealthServer exposes grpc.health.v1 and reflection. Each named check is
// reported as its own service, and the overall status ("") is SERVING only
// while every check passes.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	checks map[string]CheckFunc
}

func NewHealthServer(checks map[string]CheckFunc) *HealthServer {
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Unary()))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)

	return &HealthServer{server: s, health: h, checks: checks}
}

// Check runs every dependency check once and publishes the result.
func (s *HealthServer) Check(ctx context.Context) bool {
	healthy := true
	for name, check := range s.checks {
		status := healthpb.HealthCheckResponse_SERVING
		if err := check(ctx); err != nil {
			logger.Warn("Health check failed", "dependency", name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
			healthy = false
		}
		s.health.SetServingStatus(name, status)
	}
	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", overall)
	return healthy
}

// Watch re-runs the checks every interval until ctx is done.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval/2)
		s.Check(checkCtx)
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *HealthServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Stop marks everything NOT_SERVING and drains in-flight calls.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

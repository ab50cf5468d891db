package grpc

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the named service reported alongside the overall status
const ServiceName = "webdesk.Desktop"

// PhaseSource publishes session phase changes
type PhaseSource interface {
	Phase() types.Phase
	Subscribe(l session.Listener)
}

// HealthServer is a gRPC server exposing only health and reflection
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewHealthServer creates the server. tracer may be nil.
func NewHealthServer(tracer *tracing.Tracer, logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 5 * time.Minute,
			Time:              60 * time.Second,
			Timeout:           20 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             30 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	if tracer != nil {
		opts = append(opts,
			grpc.UnaryInterceptor(tracing.GRPCUnaryInterceptor(tracer)),
			grpc.StreamInterceptor(tracing.GRPCStreamInterceptor(tracer)),
		)
	}

	srv := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &HealthServer{server: srv, health: hs, logger: logger}
}

// Track follows the session phase from now on
func (s *HealthServer) Track(source PhaseSource) {
	s.set(source.Phase())
	source.Subscribe(func(snap types.PhaseSnapshot) {
		s.set(snap.Phase)
	})
}

func (s *HealthServer) set(phase types.Phase) {
	status := StatusFor(phase)
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.logger.Debug("health status", zap.String("phase", string(phase)), zap.String("status", status.String()))
}

// StatusFor maps a session phase to a health status
func StatusFor(phase types.Phase) healthpb.HealthCheckResponse_ServingStatus {
	switch phase {
	case types.PhaseBooting, types.PhaseRunning:
		return healthpb.HealthCheckResponse_SERVING
	default:
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
}

// Serve accepts connections on lis until Stop
func (s *HealthServer) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server listening", zap.String("addr", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop marks every service NOT_SERVING and drains connections
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

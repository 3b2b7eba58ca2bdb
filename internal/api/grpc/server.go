// Package grpcapi exposes the gRPC health and reflection services for the summary service.
package grpcapi

import (
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"ai-video-summary-service/internal/observability"
	"ai-video-summary-service/internal/observability/logging"
	"ai-video-summary-service/internal/observability/metrics"
)

// ServiceName is the health-check service name reported alongside the overall status.
const ServiceName = "ai.video.summary.VideoSummaryService"

// Server wraps a grpc.Server with health reporting.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger zerolog.Logger
}

// New creates a gRPC server with health, reflection and the metrics interceptor.
// Both health entries start as NOT_SERVING until SetServing(true).
func New(m *metrics.Metrics) *Server {
	g := grpc.NewServer(grpc.UnaryInterceptor(observability.UnaryServerInterceptor(m)))

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(g, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// grpcurl
	reflection.Register(g)

	return &Server{
		grpc:   g,
		health: hs,
		logger: logging.WithComponent("grpc-server"),
	}
}

// SetServing flips the reported health status.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks serving lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("Starting gRPC server")
	if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// Stop marks the server unhealthy and waits for in-flight calls.
func (s *Server) Stop() {
	s.logger.Info().Msg("Shutting down gRPC server")
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

package grpc

import (
	"context"
	"net"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check name reported for the catalog.
const ServiceName = "property.PropertySearch"

// Server exposes gRPC health checking and reflection for orchestration.
type Server struct {
	server *grpc.Server
	health *health.Server
	logger *logger.Logger
}

// NewServer creates the server with tracing and logging interceptors. Both
// the overall and the named service start out NOT_SERVING.
func NewServer(appLogger *logger.Logger) *Server {
	log := appLogger.Named("gRPCServer")

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(LoggingInterceptor(log)),
	)
	reflection.Register(server)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Server{server: server, health: healthServer, logger: log}
}

// SetServing flips the reported health of the server and the catalog service.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.logger.Info("Health status changed", zap.String("status", status.String()))
}

// Serve blocks until the listener fails or the server stops.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", zap.String("address", lis.Addr().String()))
	return s.server.Serve(lis)
}

// Shutdown reports NOT_SERVING and stops gracefully, forcing a stop when ctx ends first.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("gRPC graceful stop timed out, forcing stop")
		s.server.Stop()
	}
}

func LoggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		duration := time.Since(start)
		if err != nil {
			log.Warn("gRPC request failed", zap.String("method", info.FullMethod), zap.Duration("duration", duration), zap.Error(err))
		} else {
			log.Debug("gRPC request completed", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
		}
		return resp, err
	}
}

package grpc_control

import (
	"context"
	"fmt"
	"net"
	"time"

	"trading-backend/src/logger"
	"trading-backend/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// BrokerService is the health service name reporting the broker session.
const BrokerService = "trading.broker"

// BrokerStatus reports the broker session state.
type BrokerStatus interface {
	BrokerConfigured() bool
	Authenticated(ctx context.Context) bool
}

// ControlServer serves the gRPC health protocol. The broker service is
// SERVING only while the broker is configured and a token resolves.
type ControlServer struct {
	Config *models.MConfig
	Status BrokerStatus
	Logger *logger.Logger

	health *health.Server
	grpc   *grpc.Server
	ctx    context.Context
	cancel context.CancelFunc
}

// -----------------------------------------------------------------------------

func NewControlServer(cfg *models.MConfig, status BrokerStatus, log *logger.Logger) *ControlServer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &ControlServer{
		Config: cfg,
		Status: status,
		Logger: log,
		health: health.NewServer(),
		grpc:   grpc.NewServer(),
		ctx:    ctx,
		cancel: cancel,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(BrokerService, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// -----------------------------------------------------------------------------

// Refresh re-evaluates the broker status.
func (s *ControlServer) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.Status.BrokerConfigured() && s.Status.Authenticated(ctx) {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(BrokerService, status)
}

// watch refreshes the status until ctx ends.
func (s *ControlServer) watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s.Refresh(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// -----------------------------------------------------------------------------

// Serve serves on lis until Stop. The status is only updated by Refresh.
func (s *ControlServer) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Start listens on the configured gRPC address and refreshes the broker
// status periodically.
func (s *ControlServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.GrpcHost, s.Config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.Logger.Info("gRPC control server listening on %s", addr)
	go s.watch(s.ctx, 15*time.Second)
	return s.Serve(lis)
}

// -----------------------------------------------------------------------------

func (s *ControlServer) Stop(ctx context.Context) error {
	s.cancel()
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
	return nil
}

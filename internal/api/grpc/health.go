package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"toolshed-backend/internal/logger"
)

// LendingService is the service name reported alongside the overall status.
const LendingService = "toolshed.Lending"

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer publishes the standard gRPC health protocol for load balancers
// and orchestrators. Status follows the outcome of periodic database pings.
type HealthServer struct {
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
}

func NewHealthServer(pinger Pinger, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	h := &HealthServer{
		health:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		timeout:  2 * time.Second,
	}
	h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register installs the health and reflection services on s.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

// Check pings the database once and updates the published status.
func (h *HealthServer) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	logger.DatabaseCall("Ping", "health check")
	err := h.pinger.PingContext(ctx)
	if err != nil {
		logger.Warn("Health check failed", "error", err)
		h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return false
	}
	h.setStatus(healthpb.HealthCheckResponse_SERVING)
	return true
}

// Run checks health every interval until ctx is done, then marks every service
// as shutting down so clients drain before the listener closes.
func (h *HealthServer) Run(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			logger.Info("Health checks stopped")
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

func (h *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(LendingService, status)
}

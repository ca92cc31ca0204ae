package main

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// healthPollInterval is how often watchShardHealth re-checks the aggregate
// lifecycle of every shard and, on a change, updates the gRPC health status.
const healthPollInterval = 500 * time.Millisecond

func newHealthServer() *health.Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

func registerHealthServer(gs *grpc.Server, hs *health.Server) {
	healthpb.RegisterHealthServer(gs, hs)
}

// watchShardHealth flips the overall service's gRPC health status to SERVING
// while every shard is running, and to NOT_SERVING the moment any shard
// enters its stopping phase or was never started. It runs until ctx is
// canceled, at which point it marks the service NOT_SERVING one last time.
func watchShardHealth(ctx context.Context, hs *health.Server, router *shardRouter, log *zap.Logger) {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	for {
		select {
		case <-ctx.Done():
			hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		case <-ticker.C:
			status := healthpb.HealthCheckResponse_NOT_SERVING
			if router.everyRunning() && !router.anyStoppingOrDown() {
				status = healthpb.HealthCheckResponse_SERVING
			}
			if status == last {
				continue
			}
			log.Info("pool health transition", zap.Stringer("status", status))
			hs.SetServingStatus("", status)
			last = status
		}
	}
}

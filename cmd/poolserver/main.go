// Command poolserver fronts a bank of elastic worker pool shards with an
// HTTP submission API and a gRPC health surface, per the HTTP submission
// front and gRPC health surface described for this project.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/ecloudclub/elastipool/auth/authn"
	"github.com/ecloudclub/elastipool/pool"
)

func main() {
	httpAddr := flag.String("http-addr", ":8080", "HTTP listen address for submission/status/debug endpoints")
	grpcAddr := flag.String("grpc-addr", ":9090", "gRPC listen address for the health surface")
	shardCount := flag.Int("shards", 4, "number of independent pool shards behind the router")
	minThreads := flag.Int("min-threads", 2, "minimum worker threads per shard")
	maxThreads := flag.Int("max-threads", 16, "maximum worker threads per shard")
	idleTimeout := flag.Duration("idle-timeout", 60*time.Second, "idle duration before a shard starts shrinking")
	queueCapacity := flag.Int("queue-capacity", 1024, "bounded submission queue capacity per shard")
	stopTimeout := flag.Duration("stop-timeout", 10*time.Second, "grace period for each shard on shutdown")
	jwtSecret := flag.String("jwt-secret", "", "HMAC secret guarding /debug/dump; required to enable the endpoint")
	flag.Parse()

	log, err := pool.NewProductionLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	router, err := newShardRouter(*shardCount, func(name string) (*pool.Pool, error) {
		return pool.New(pool.NewConfig(
			pool.WithMinMaxThreads(*minThreads, *maxThreads),
			pool.WithIdleTimeout(*idleTimeout),
			pool.WithQueueCapacity(*queueCapacity),
			pool.WithStopTimeout(*stopTimeout),
			pool.WithNamePrefix(name),
			pool.WithLogger(log.Named(name)),
		))
	})
	if err != nil {
		log.Fatal("failed to build shard router", zap.Error(err))
	}
	if err := router.startAll(); err != nil {
		log.Fatal("failed to start shards", zap.Error(err))
	}

	var jwtHandler *authn.JWTHandler
	if *jwtSecret != "" {
		jwtHandler, err = authn.New(&authn.Config{SecretKey: []byte(*jwtSecret)})
		if err != nil {
			log.Fatal("failed to init jwt handler", zap.Error(err))
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/submit", submitHandler(router, log))
	engine.GET("/status", statusHandler(router))
	if jwtHandler != nil {
		engine.GET("/debug/dump", jwtAuth(jwtHandler), dumpHandler(router))
	} else {
		log.Warn("jwt-secret not set, /debug/dump is disabled")
	}

	httpServer := &http.Server{Addr: *httpAddr, Handler: engine}

	healthSrv := newHealthServer()
	grpcServer := grpc.NewServer()
	registerHealthServer(grpcServer, healthSrv)

	healthCtx, stopHealthWatch := context.WithCancel(context.Background())
	go watchShardHealth(healthCtx, healthSrv, router, log)

	go func() {
		log.Info("http server listening", zap.String("addr", *httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server exited", zap.Error(err))
		}
	}()

	go func() {
		lis, err := net.Listen("tcp", *grpcAddr)
		if err != nil {
			log.Error("grpc listener failed", zap.Error(err))
			return
		}
		log.Info("grpc server listening", zap.String("addr", *grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc server exited", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", zap.Stringer("signal", sig))

	stopHealthWatch()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *stopTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown error", zap.Error(err))
	}

	if err := router.stopAll(*stopTimeout); err != nil {
		log.Error("shard shutdown error", zap.Error(err))
	}
}

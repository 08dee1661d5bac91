package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/mavunohub/internal/config"
	"github.com/MikeMC777/mavunohub/internal/events"
	"github.com/MikeMC777/mavunohub/internal/kafka"
	"github.com/MikeMC777/mavunohub/internal/logging"
	"github.com/MikeMC777/mavunohub/internal/postgres"
	"github.com/MikeMC777/mavunohub/internal/telemetry"
	"github.com/MikeMC777/mavunohub/internal/user"
	pb "github.com/MikeMC777/mavunohub/internal/userpb"
)

func main() {
	cfg := config.Load("user-service")
	logging.Init(cfg.ServiceName, cfg.LogLevel)
	cfg.Log()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("tracer setup", "err", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("postgres connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		slog.Error("postgres migrate", "err", err)
		os.Exit(1)
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
		defer kp.Close()
		pub = kp
	}

	l, err := net.Listen("tcp", listenAddr(cfg.UserSvcAddr))
	if err != nil {
		slog.Error("listen", "addr", cfg.UserSvcAddr, "err", err)
		os.Exit(1)
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(user.RequestIDServerInterceptor()))
	pb.RegisterUserServiceServer(srv, user.NewService(user.NewPGRepo(pool), pub, cfg.ServiceName))
	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	slog.Info("user-service listening", "addr", l.Addr().String())
	if err := srv.Serve(l); err != nil {
		slog.Error("grpc serve", "err", err)
	}
}

// listenAddr turns a dial address such as "localhost:50051" into ":50051".
func listenAddr(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return ":" + port
	}
	return addr
}

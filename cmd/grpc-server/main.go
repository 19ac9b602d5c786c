package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"biodex/internal/bootstrap"
	"biodex/internal/grpcserver"
	"biodex/pkg/utils"
)

func main() {
	cfg := utils.Load()
	log := utils.MustLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("pipeline setup failed", zap.Error(err))
	}
	defer pipeline.Close()

	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal("grpc listen failed", zap.Error(err))
	}

	svc := grpcserver.NewServer(pipeline.Explorer, pipeline.Images, pipeline.Builder)
	grpcServer := grpc.NewServer()
	grpcserver.RegisterExploreServiceServer(grpcServer, svc)

	go func() {
		<-ctx.Done()
		log.Info("shutting down grpc server")
		grpcServer.GracefulStop()
	}()

	log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
	if err := grpcServer.Serve(listener); err != nil {
		log.Fatal("grpc server stopped", zap.Error(err))
	}
}

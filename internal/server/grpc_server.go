package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	_ "github.com/oggyb/muzz-chat/internal/api/codec"
	"github.com/oggyb/muzz-chat/internal/app"
)

// New builds a gRPC server with authentication and registers all provided
// services.
func New(appCtx *app.AppContext, registrars ...Registrar) *grpc.Server {
	var public []string
	for _, r := range registrars {
		public = append(public, r.PublicMethods()...)
	}
	auth := NewAuthenticator(appCtx.Tokens, appCtx.Gateway, public)

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(logUnary(appCtx.Logger), auth.Unary()),
		grpc.ChainStreamInterceptor(logStream(appCtx.Logger), auth.Stream()),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}
	return grpcServer
}

// StartGRPCServer serves on GRPC.Host:GRPC.Port until ctx is done, then stops
// gracefully.
func StartGRPCServer(ctx context.Context, appCtx *app.AppContext, registrars ...Registrar) error {
	cfg := appCtx.Config
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	grpcServer := New(appCtx, registrars...)

	go func() {
		<-ctx.Done()
		appCtx.Logger.Info("stopping gRPC server")
		grpcServer.GracefulStop()
	}()

	return grpcServer.Serve(lis)
}

func logUnary(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			log.Debug("rpc failed", "method", info.FullMethod, "err", err)
		}
		return resp, err
	}
}

func logStream(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		log.Debug("stream opened", "method", info.FullMethod)
		err := handler(srv, ss)
		log.Debug("stream closed", "method", info.FullMethod, "err", err)
		return err
	}
}

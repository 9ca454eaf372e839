package main

import (
	"context"
	"errors"
	"fmt"
	"groupchat/auth"
	"groupchat/identity"
	"groupchat/infrastructure/gateway"
	"groupchat/infrastructure/grpc/server"
	"groupchat/internal"
	"groupchat/repositories"
	"groupchat/repositories/postgres"
	"groupchat/runtime"
	"groupchat/runtime/workers"
	"groupchat/services"
	"groupchat/sink"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/grpc"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

type store struct {
	chats    repositories.IChatRepository
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	close    func()
}

// run wires every component and blocks until a signal or a server failure.
// Deferred cleanups always run before the exit code is returned.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	logger, logCloser, err := internal.NewLogger(config.LogLevel, config.LogFile)
	if err != nil {
		return exitConfig, fmt.Errorf("log file error: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	ctx := context.Background()

	// 2. Storage
	st, err := openStore(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer st.close()

	// 3. Event bus
	supervisor := workers.NewSupervisor(logger, config.RestartInterval)
	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(logger, supervisor, registry,
		config.NumberOfWorkers, config.BufferSize, config.SinkTimeout).
		WithCapacityMonitor(config.MetricInterval, config.LowCapacityThreshold).
		WithPublishTimeout(config.PublishTimeout)
	orchestrator.Add(sink.NewLogSink(logger))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting orchestrator...", "workers", config.NumberOfWorkers)
		orchestrator.Start(ctx)
	}()

	// 5. Services
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	validator := auth.NewValidator(config.PasswordMinLength)
	resolver := identity.NewResolver(logger, st.users)
	chatService := services.NewChatService(logger, resolver, st.chats, st.messages, orchestrator, validator)
	authService := services.NewAuthService(logger, st.users, tokens,
		auth.NewPasswordHasher(config.Argon2Params()), validator)

	errChan := make(chan error, 2)

	// 6. gRPC Server
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GRPCPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	chatServer := server.NewChatServer(logger, chatService, config.ConnectionBufferSize)
	grpcServer := server.NewGRPCServer(logger, tokens, server.NewAuthServer(authService), chatServer)

	go func() {
		logger.Info("Starting gRPC server", "address", grpcAddress, "at", time.Now().UTC())
		for serviceName := range grpcServer.GetServiceInfo() {
			logger.Debug("gRPC exposed service", "name", serviceName)
		}
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. HTTP gateway
	handler := gateway.NewHandler(logger, authService, chatService,
		config.ConnectionBufferSize, config.OriginPatterns())
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.HTTPPort),
		Handler:           gateway.NewRouter(logger, tokens, handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP gateway", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 9. Graceful Shutdown
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	stop()
	chatServer.Close()
	gracefulStop(shutdownCtx, logger, grpcServer)
	orchestrator.Stop()
	logger.Info("Program stopped cleanly")

	return code, runErr
}

// gracefulStop waits for in-flight RPCs, then forces the server down once ctx expires.
func gracefulStop(ctx context.Context, logger *slog.Logger, grpcServer *grpc.Server) {
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		logger.Warn("gRPC graceful stop timed out, closing remaining connections")
		grpcServer.Stop()
	}
}

func openStore(ctx context.Context, config internal.Config, logger *slog.Logger) (store, error) {
	switch config.StoreDriver {
	case internal.DriverPostgres:
		db, err := postgres.Open(ctx, config.PostgresDSN)
		if err != nil {
			return store{}, err
		}
		return store{
			chats:    postgres.NewChatRepository(db),
			messages: postgres.NewMessageRepository(db),
			users:    postgres.NewUserRepository(db),
			close: func() {
				logger.Info("Closing Postgres...")
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	default:
		db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
		if err != nil {
			return store{}, fmt.Errorf("database opening failed: %w", err)
		}
		messages, err := repositories.NewMessageRepository(db, logger)
		if err != nil {
			_ = db.Close()
			return store{}, err
		}
		if logger.Enabled(ctx, slog.LevelDebug) {
			internal.StartInspector(logger, db, config.DebugPort)
		}
		return store{
			chats:    repositories.NewChatRepository(db, logger),
			messages: messages,
			users:    repositories.NewUserRepository(db),
			close: func() {
				if err := messages.Close(); err != nil {
					logger.Warn("Message sequence not released", "error", err)
				}
				// Releases the directory lock and flushes the memtables
				logger.Info("Closing BadgerDB...")
				_ = db.Close()
			},
		}, nil
	}
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

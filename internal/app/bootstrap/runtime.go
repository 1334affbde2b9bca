package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/adapters/cache"
	eventadapter "github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/adapters/events"
	grpcadapter "github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/adapters/grpc"
	httpadapter "github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/adapters/http"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/adapters/postgres"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	worker     *eventadapter.Worker
	consumer   *eventadapter.QueueConsumer
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping m21 priority engine", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgres.NewRepositories(pool)
	publisher := eventadapter.NewLoggingPublisher(logger)
	dlqPublisher := eventadapter.NewLoggingDLQPublisher(logger)
	consumer := eventadapter.NewQueueConsumer()

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:           cfg.ServiceID,
			MinimumPriority:       cfg.MinimumPriority,
			MaximumDailyActions:   cfg.MaximumDailyActions,
			ConsistencyWindowDays: cfg.ConsistencyWindowDays,
			IdempotencyTTL:        cfg.IdempotencyTTL,
			EventDedupTTL:         cfg.EventDedupTTL,
			FocusListCacheTTL:     cfg.FocusListCacheTTL,
			OutboxFlushBatchSize:  cfg.OutboxFlushBatchSize,
			WebhookBearerToken:    cfg.WebhookBearerToken,
		},
		Contacts:      repos.Contacts,
		Interactions:  repos.Interactions,
		Transitions:   repos.Transitions,
		DailyActions:  repos.DailyActions,
		Idempotency:   repos.Idempotency,
		Outbox:        repos.Outbox,
		EventDedup:    cacheadapter.NewRedisEventDedupStore(redisClient),
		FocusCache:    cacheadapter.NewRedisFocusListCache(redisClient),
		Conversation:  grpcadapter.NewConversationClient(cfg.ConversationGRPCURL),
		Notifications: grpcadapter.NewNotificationClient(cfg.NotificationGRPCURL),
		DomainEvents:  publisher,
		Analytics:     publisher,
		DLQ:           dlqPublisher,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler, cfg.JWTSecret)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewPriorityInternalServer(svc))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	worker := eventadapter.NewWorker(logger, consumer, dlqPublisher, svc, cfg.ConsumerPollInterval)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		worker:     worker,
		consumer:   consumer,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("event worker started", "poll_interval", r.cfg.ConsumerPollInterval.String())
	err := r.worker.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}

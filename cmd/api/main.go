package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/escalation-service/internal/api/http"
	"github.com/spec-kit/escalation-service/internal/api/http/handlers"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/engine"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/notify"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/seed"
	"github.com/spec-kit/escalation-service/internal/service"
	"github.com/spec-kit/escalation-service/internal/store"
	"github.com/spec-kit/escalation-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New()
	if cfg.Seed.UsersPath != "" {
		if err := seed.LoadUsers(st, cfg.Seed.UsersPath, cfg.Auth.BcryptCost); err != nil {
			logger.Fatal("failed to seed users", zap.Error(err))
		}
	}
	if cfg.Seed.TicketsPath != "" {
		if err := seed.LoadTickets(st, cfg.Seed.TicketsPath); err != nil {
			logger.Fatal("failed to seed tickets", zap.Error(err))
		}
	}

	var mailbox notify.Mailbox
	var redisMailbox *notify.RedisMailbox
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		redisMailbox = notify.NewRedisMailbox(client, logger)
		mailbox = redisMailbox
	} else {
		mailbox = notify.NewMemoryMailbox()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	eng := engine.New(st, mailbox, dispatcher, logger)

	deps := service.Deps{
		Store:      st,
		Engine:     eng,
		Dispatcher: dispatcher,
		Mailbox:    mailbox,
		Logger:     logger,
		Metrics:    metrics,
	}
	ticketService := service.NewTicketService(deps)
	assignmentService := service.NewAssignmentService(deps)
	milestoneService := service.NewMilestoneService(deps)
	reportService := service.NewReportService(deps)
	notificationService := service.NewNotificationService(deps)

	worker.StartNotificationWorker(notificationService)
	worker.StartClockWorker(ctx, st, eng, metrics, cfg.Engine.TickInterval(), logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens, st)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redisMailbox, metrics),
		Auth:           handlers.NewAuthHandler(st, tokens),
		Tickets:        handlers.NewTicketsHandler(ticketService, assignmentService),
		Milestones:     handlers.NewMilestonesHandler(milestoneService),
		Reports:        handlers.NewReportsHandler(reportService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

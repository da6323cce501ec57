// server runs the live HTTP API, the control plane webhook and the gRPC health service.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"teatime-live/internal/audit"
	auditrepo "teatime-live/internal/audit/repository"
	boardrepo "teatime-live/internal/board/repository"
	"teatime-live/internal/config"
	"teatime-live/internal/db"
	healthhandler "teatime-live/internal/health/handler"
	"teatime-live/internal/live/credential"
	"teatime-live/internal/live/gate"
	livehandler "teatime-live/internal/live/handler"
	liverepo "teatime-live/internal/live/repository"
	"teatime-live/internal/live/roomctl"
	"teatime-live/internal/live/service"
	"teatime-live/internal/live/webhook"
	"teatime-live/internal/logging"
	memberrepo "teatime-live/internal/membership/repository"
	"teatime-live/internal/policy/engine"
	"teatime-live/internal/security"
	"teatime-live/internal/server"
	"teatime-live/internal/server/middleware"
	"teatime-live/internal/telemetry"
	oteltelemetry "teatime-live/internal/telemetry/otel"
	"teatime-live/internal/telemetry/producer"
)

const serviceName = "teatime-live"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	logger := logging.Module("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := oteltelemetry.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel providers")
	}
	providers.SetGlobal()

	var (
		boards      boardrepo.Repository
		roster      memberrepo.Repository
		registry    liverepo.Registry
		auditLogger audit.AuditLogger
		pinger      healthhandler.Pinger
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("database")
		}
		defer conn.Close()
		boards = boardrepo.NewPostgresRepository(conn)
		roster = memberrepo.NewPostgresRepository(conn)
		registry = liverepo.NewPostgresRepository(conn)
		auditLogger = audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.ClientIPFromContext)
		pinger = conn
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory boards and sessions (development only)")
		boards = boardrepo.NewMemoryRepository()
		roster = memberrepo.NewMemoryRepository()
		registry = liverepo.NewMemoryRepository()
	}

	events := telemetry.Fanout{oteltelemetry.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.LiveEventsTopic)
	if err != nil {
		logger.Fatal().Err(err).Msg("kafka producer")
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		events = append(events, kafkaProducer)
		logger.Info().Str("topic", cfg.LiveEventsTopic).Msg("publishing live events to kafka")
	}

	var (
		admitter      engine.Admitter
		policyChecker healthhandler.PolicyChecker
	)
	if cfg.EnforceAudienceLimit {
		policy := engine.DefaultAdmissionPolicy
		if cfg.AdmissionPolicyFile != "" {
			policy, err = engine.LoadPolicyFile(cfg.AdmissionPolicyFile)
			if err != nil {
				logger.Fatal().Err(err).Msg("admission policy")
			}
		}
		evaluator, err := engine.NewOPAEvaluator(ctx, policy)
		if err != nil {
			logger.Fatal().Err(err).Msg("admission policy")
		}
		admitter = evaluator
		policyChecker = evaluator
	}

	tokens, err := security.LoadTokenProvider("", cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	if err != nil {
		logger.Fatal().Err(err).Msg("JWT_PUBLIC_KEY must hold a PEM public key or a path to one")
	}

	rooms := roomctl.NewLiveKit(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, roomctl.Options{
		Timeout:        cfg.CallTimeout(),
		CallsPerSecond: cfg.LiveKitCallsPerSecond,
	})
	reconciler := webhook.NewReconciler(
		webhook.NewVerifier(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret),
		registry, boards, rooms, auditLogger, events,
	)
	svc := service.NewLiveService(
		boards, roster, registry,
		gate.New(cfg.Location()),
		credential.NewIssuer(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.TokenTTL()),
		rooms, reconciler,
		service.Options{Admission: admitter, Audit: auditLogger, Events: events},
	)

	health := healthhandler.NewServer(pinger, policyChecker)
	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.Deps{
			Live:   livehandler.NewHandler(svc, reconciler, cfg.PublicLiveKitURL()),
			Tokens: tokens,
			Health: health,
			Logger: logging.Module("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http serve")
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal().Err(err).Msg("grpc listen")
		}
		grpcSrv = server.NewGRPCServer(health)
		go func() {
			logger.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC health server listening")
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Fatal().Err(err).Msg("grpc serve")
			}
		}()
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("otel shutdown")
	}
	logger.Info().Msg("server stopped")
}

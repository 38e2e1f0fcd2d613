package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"motorcover/internal/admin"
	adminservice "motorcover/internal/admin/service"
	"motorcover/internal/claim"
	claimadapters "motorcover/internal/claim/adapters"
	claimservice "motorcover/internal/claim/service"
	claimstore "motorcover/internal/claim/store"
	"motorcover/internal/document"
	"motorcover/internal/document/blobstore"
	documentservice "motorcover/internal/document/service"
	documentstore "motorcover/internal/document/store"
	"motorcover/internal/identity"
	"motorcover/internal/issuance"
	issuanceadapters "motorcover/internal/issuance/adapters"
	"motorcover/internal/issuance/idempotency"
	issuanceservice "motorcover/internal/issuance/service"
	"motorcover/internal/notification"
	notifadapters "motorcover/internal/notification/adapters"
	"motorcover/internal/notification/mailer"
	"motorcover/internal/notification/publisher"
	"motorcover/internal/notification/relay"
	notifstore "motorcover/internal/notification/store"
	"motorcover/internal/payment"
	paymentstore "motorcover/internal/payment/store"
	"motorcover/internal/platform/config"
	"motorcover/internal/platform/database"
	"motorcover/internal/platform/httpserver"
	"motorcover/internal/platform/logger"
	"motorcover/internal/platform/metrics"
	"motorcover/internal/platform/middleware"
	platformredis "motorcover/internal/platform/redis"
	"motorcover/internal/policy"
	policyadapters "motorcover/internal/policy/adapters"
	policyservice "motorcover/internal/policy/service"
	policystore "motorcover/internal/policy/store"
	"motorcover/internal/proposal"
	proposaladapters "motorcover/internal/proposal/adapters"
	proposalservice "motorcover/internal/proposal/service"
	proposalstore "motorcover/internal/proposal/store"
	"motorcover/internal/user"
	userservice "motorcover/internal/user/service"
	userstore "motorcover/internal/user/store"
	"motorcover/internal/vehicle"
	vehicleservice "motorcover/internal/vehicle/service"
	vehiclestore "motorcover/internal/vehicle/store"
)

const (
	expirySweepInterval = time.Hour
	shutdownTimeout     = 10 * time.Second
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PostgresDSN == "" {
		return fmt.Errorf("MOTORCOVER_POSTGRES_DSN is required")
	}
	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	// Stores.
	users := userstore.NewPostgres(db)
	vehicles := vehiclestore.NewPostgres(db)
	proposals := proposalstore.NewPostgres(db)
	policies := policystore.NewPostgres(db)
	claims := claimstore.NewPostgres(db)
	payments := paymentstore.NewPostgres(db)
	documents := documentstore.NewPostgres(db)
	outbox := notifstore.NewPostgres(db)

	// Blob storage for uploaded documents and certificates.
	blobs, err := newBlobStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	documentSvc := document.NewService(documents, blobs, documentservice.WithLogger(log))
	emitter := notification.NewEmitter(outbox)

	userSvc := user.NewService(users, userservice.WithLogger(log))
	vehicleSvc := vehicle.NewService(vehicles, vehicleservice.WithLogger(log))
	proposalSvc := proposal.NewService(proposals, proposaladapters.NewVehicleAdapter(vehicles),
		proposalservice.WithLogger(log),
		proposalservice.WithMetrics(m),
		proposalservice.WithDocuments(documentSvc),
		proposalservice.WithEvents(emitter),
	)
	policySvc := policy.NewService(policies, policyadapters.NewVehicleAdapter(vehicles),
		policyservice.WithLogger(log),
		policyservice.WithMetrics(m),
	)
	claimSvc := claim.NewService(claims, claimadapters.NewPolicyAdapter(policies),
		claimservice.WithLogger(log),
		claimservice.WithMetrics(m),
		claimservice.WithDocuments(documentSvc),
		claimservice.WithEvents(emitter),
	)
	paymentSvc := payment.NewService(payments)
	adminSvc := admin.NewService(users, vehicles, proposals, policies, claims,
		adminservice.WithLogger(log))

	issuanceOpts := []issuanceservice.Option{
		issuanceservice.WithLogger(log),
		issuanceservice.WithMetrics(m),
		issuanceservice.WithEvents(emitter),
	}
	if redisClient != nil {
		issuanceOpts = append(issuanceOpts, issuanceservice.WithLocker(idempotency.NewRedis(redisClient.Client)))
	}
	issuanceSvc := issuance.NewService(proposals, policies, payments,
		issuanceadapters.NewUserAdapter(users), database.NewTxRunner(db), issuanceOpts...)

	// HTTP surface.
	verifier := identity.NewVerifier(cfg.JWTSigningKey)
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier, log))

		user.NewHandler(userSvc, log).Register(r)
		vehicle.NewHandler(vehicleSvc, log).Register(r)
		proposal.NewHandler(proposalSvc, log).Register(r)
		policy.NewHandler(policySvc, log).Register(r)
		claim.NewHandler(claimSvc, log).Register(r)
		payment.NewHandler(paymentSvc, log).Register(r)
		issuance.NewHandler(issuanceSvc, log).Register(r)

		r.Route("/admin", func(r chi.Router) {
			user.NewHandler(userSvc, log).RegisterAdmin(r)
			proposal.NewHandler(proposalSvc, log).RegisterAdmin(r)
			policy.NewHandler(policySvc, log).RegisterAdmin(r)
			claim.NewHandler(claimSvc, log).RegisterAdmin(r)
			payment.NewHandler(paymentSvc, log).RegisterAdmin(r)
			admin.NewHandler(adminSvc, log).RegisterAdmin(r)
		})
	})

	srv := httpserver.New(cfg.Addr, router)

	// Outbox relay.
	relayOpts := []relay.Option{
		relay.WithLogger(log),
		relay.WithMetrics(m),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := publisher.NewClient(cfg.Kafka.Brokers)
		if err != nil {
			return err
		}
		defer kafkaClient.Close()
		relayOpts = append(relayOpts, relay.WithPublisher(publisher.NewKafka(kafkaClient, cfg.Kafka.Topic)))
	}
	outboxRelay := notification.NewRelay(outbox, newMailer(cfg, log), notifadapters.NewUserAdapter(users), relayOpts...)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting motorcover", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		err := outboxRelay.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		err := policies.StartExpiry(ctx, expirySweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

// newBlobStore prefers S3 and falls back to in-process storage when no
// bucket is configured, which keeps local development dependency-free.
func newBlobStore(ctx context.Context, cfg config.Server, log *slog.Logger) (blobstore.Store, error) {
	if cfg.S3Bucket == "" {
		log.Warn("no document bucket configured, storing blobs in memory")
		return blobstore.NewMemory(), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return blobstore.NewS3(s3.NewFromConfig(awsCfg), cfg.S3Bucket), nil
}

// newMailer returns the SMTP dispatcher, or the recording mailer when no
// relay is configured so the outbox still drains in development.
func newMailer(cfg config.Server, log *slog.Logger) mailer.Mailer {
	if cfg.SMTP.Host == "" {
		log.Warn("no smtp relay configured, notifications will not leave the process")
		return mailer.NewMemory()
	}
	var auth smtp.Auth
	if cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	}
	return mailer.NewSMTP(cfg.SMTP.Host+":"+cfg.SMTP.Port, cfg.SMTP.From, auth)
}

package main

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/chainvoice/chainvoice/internal/api"
	"github.com/chainvoice/chainvoice/internal/api/cron"
	v1 "github.com/chainvoice/chainvoice/internal/api/v1"
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
	"github.com/chainvoice/chainvoice/internal/publisher"
	"github.com/chainvoice/chainvoice/internal/pubsub"
	"github.com/chainvoice/chainvoice/internal/pubsub/memory"
	"github.com/chainvoice/chainvoice/internal/repository"
	"github.com/chainvoice/chainvoice/internal/service"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/chainvoice/chainvoice/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// PubSub
			memory.NewPubSub,
			publisher.NewEventPublisher,

			// Repositories
			repository.NewCompanyRepository,
			repository.NewUserRepository,
			repository.NewDocumentRepository,
			repository.NewCounterRepository,
			repository.NewChainRepository,
			repository.NewAnchorRepository,
			repository.NewAuditRepository,
			repository.NewNotificationRepository,
		),
	)

	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewAccessService,
			service.NewIssuanceService,
			service.NewVerificationService,
			service.NewSweepService,
			service.NewBillingService,
			service.NewDocumentService,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startEventMonitor),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	documentService service.DocumentService,
	issuanceService service.IssuanceService,
	verificationService service.VerificationService,
	sweepService service.SweepService,
	billingService service.BillingService,
) api.Handlers {
	return api.Handlers{
		Document:      v1.NewDocumentHandler(documentService, logger),
		Ledger:        v1.NewLedgerHandler(issuanceService, verificationService, logger),
		IntegrityCron: cron.NewIntegrityCronHandler(logger, sweepService),
		BillingCron:   cron.NewBillingCronHandler(logger, billingService),
	}
}

// startEventMonitor drains the domain-event topics into the log. Delivery to
// external sinks hangs off the same subscriber interface.
func startEventMonitor(lc fx.Lifecycle, ps pubsub.PubSub, log *logger.Logger) {
	topics := []string{
		types.TopicDocumentIssued,
		types.TopicIntegrityBroken,
		types.TopicBillingTransitioned,
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, topic := range topics {
				msgs, err := ps.Subscribe(ctx, topic)
				if err != nil {
					return err
				}
				go func(topic string, msgs <-chan *message.Message) {
					for msg := range msgs {
						log.Debugw("ledger event",
							"topic", topic,
							"message_id", msg.UUID,
							"company_id", msg.Metadata.Get("company_id"),
						)
						msg.Ack()
					}
				}(topic, msgs)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return ps.Close()
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			db.Close()
			return nil
		},
	})
}

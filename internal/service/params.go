package service

import (
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/domain/audit"
	"github.com/chainvoice/chainvoice/internal/domain/chain"
	"github.com/chainvoice/chainvoice/internal/domain/company"
	"github.com/chainvoice/chainvoice/internal/domain/counter"
	"github.com/chainvoice/chainvoice/internal/domain/document"
	"github.com/chainvoice/chainvoice/internal/domain/notification"
	"github.com/chainvoice/chainvoice/internal/domain/user"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
	"github.com/chainvoice/chainvoice/internal/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	CompanyRepo      company.Repository
	UserRepo         user.Repository
	DocumentRepo     document.Repository
	CounterRepo      counter.Repository
	ChainRepo        chain.Repository
	AnchorRepo       chain.AnchorRepository
	AuditRepo        audit.Repository
	NotificationRepo notification.Repository

	// Publishers
	EventPublisher publisher.EventPublisher
}

// NewServiceParams assembles the shared dependency set handed to every service
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	companyRepo company.Repository,
	userRepo user.Repository,
	documentRepo document.Repository,
	counterRepo counter.Repository,
	chainRepo chain.Repository,
	anchorRepo chain.AnchorRepository,
	auditRepo audit.Repository,
	notificationRepo notification.Repository,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		CompanyRepo:      companyRepo,
		UserRepo:         userRepo,
		DocumentRepo:     documentRepo,
		CounterRepo:      counterRepo,
		ChainRepo:        chainRepo,
		AnchorRepo:       anchorRepo,
		AuditRepo:        auditRepo,
		NotificationRepo: notificationRepo,
		EventPublisher:   eventPublisher,
	}
}

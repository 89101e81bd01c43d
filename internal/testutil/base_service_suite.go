package testutil

import (
	"context"
	"time"

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
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/chainvoice/chainvoice/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	CompanyRepo      company.Repository
	UserRepo         user.Repository
	DocumentRepo     document.Repository
	CounterRepo      counter.Repository
	ChainRepo        chain.Repository
	AnchorRepo       chain.AnchorRepository
	AuditRepo        audit.Repository
	NotificationRepo notification.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	publisher *InMemoryEventPublisher
	db        postgres.IClient
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		CompanyRepo:      NewInMemoryCompanyStore(),
		UserRepo:         NewInMemoryUserStore(),
		DocumentRepo:     NewInMemoryDocumentStore(),
		CounterRepo:      NewInMemoryCounterStore(),
		ChainRepo:        NewInMemoryChainStore(),
		AnchorRepo:       NewInMemoryAnchorStore(),
		AuditRepo:        NewInMemoryAuditStore(),
		NotificationRepo: NewInMemoryNotificationStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.publisher = NewInMemoryEventPublisher()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.CompanyRepo.(*InMemoryCompanyStore).Clear()
	s.stores.UserRepo.(*InMemoryUserStore).Clear()
	s.stores.DocumentRepo.(*InMemoryDocumentStore).Clear()
	s.stores.CounterRepo.(*InMemoryCounterStore).Clear()
	s.stores.ChainRepo.(*InMemoryChainStore).Clear()
	s.stores.AnchorRepo.(*InMemoryAnchorStore).Clear()
	s.stores.AuditRepo.(*InMemoryAuditStore).Clear()
	s.stores.NotificationRepo.(*InMemoryNotificationStore).Clear()
	s.publisher.Clear()
}

// GetContext returns the test context carrying the default acting user
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// ContextFor returns the test context acting as the given user
func (s *BaseServiceTestSuite) ContextFor(userID string) context.Context {
	return types.SetUserID(s.ctx, userID)
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetStores returns the in-memory stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the mock postgres client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetPublisher returns the in-memory event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetNow returns the reference time fixed at test setup
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

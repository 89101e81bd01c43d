package repository

import (
	"github.com/chainvoice/chainvoice/internal/domain/audit"
	"github.com/chainvoice/chainvoice/internal/domain/chain"
	"github.com/chainvoice/chainvoice/internal/domain/company"
	"github.com/chainvoice/chainvoice/internal/domain/counter"
	"github.com/chainvoice/chainvoice/internal/domain/document"
	"github.com/chainvoice/chainvoice/internal/domain/notification"
	"github.com/chainvoice/chainvoice/internal/domain/user"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
	postgresRepo "github.com/chainvoice/chainvoice/internal/repository/postgres"
)

func NewCompanyRepository(db *postgres.DB, logger *logger.Logger) company.Repository {
	return postgresRepo.NewCompanyRepository(db, logger)
}

func NewUserRepository(db *postgres.DB, logger *logger.Logger) user.Repository {
	return postgresRepo.NewUserRepository(db, logger)
}

func NewDocumentRepository(db *postgres.DB, logger *logger.Logger) document.Repository {
	return postgresRepo.NewDocumentRepository(db, logger)
}

func NewCounterRepository(db *postgres.DB, logger *logger.Logger) counter.Repository {
	return postgresRepo.NewCounterRepository(db, logger)
}

func NewChainRepository(db *postgres.DB, logger *logger.Logger) chain.Repository {
	return postgresRepo.NewChainRepository(db, logger)
}

func NewAnchorRepository(db *postgres.DB, logger *logger.Logger) chain.AnchorRepository {
	return postgresRepo.NewAnchorRepository(db, logger)
}

func NewAuditRepository(db *postgres.DB, logger *logger.Logger) audit.Repository {
	return postgresRepo.NewAuditRepository(db, logger)
}

func NewNotificationRepository(db *postgres.DB, logger *logger.Logger) notification.Repository {
	return postgresRepo.NewNotificationRepository(db, logger)
}
